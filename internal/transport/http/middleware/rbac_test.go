package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/caseflow/auth-service/internal/domain"
)

func withIdentity(req *http.Request, userID, email, role string) *http.Request {
	return req.WithContext(WithUser(req.Context(), userID, email, role))
}

func TestRequireAtLeast_NoRoleInContext_Rejected(t *testing.T) {
	t.Parallel()

	we := &writeErrRecorder{}
	nx := &nextRecorder{}
	req := httptest.NewRequest(http.MethodPost, "/auth/admin/users/u2/role", nil)

	RequireAtLeast("admin", we.fn)(nx).ServeHTTP(httptest.NewRecorder(), req)

	if nx.calls != 0 {
		t.Fatalf("next should not run")
	}
	if !domain.Is(we.last, "token_invalid") {
		t.Fatalf("expected token_invalid, got %v", we.last)
	}
}

func TestRequireAtLeast_InsufficientRole_Rejected(t *testing.T) {
	t.Parallel()

	we := &writeErrRecorder{}
	nx := &nextRecorder{}
	req := withIdentity(httptest.NewRequest(http.MethodPost, "/auth/admin/users/u2/role", nil), "u1", "e@x.com", "lawyer")

	RequireAtLeast("admin", we.fn)(nx).ServeHTTP(httptest.NewRecorder(), req)

	if nx.calls != 0 {
		t.Fatalf("next should not run")
	}
	if !domain.Is(we.last, "insufficient_role") {
		t.Fatalf("expected insufficient_role, got %v", we.last)
	}
}

func TestRequireAtLeast_Hierarchy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role    string
		minRole string
		allowed bool
	}{
		{"user", "user", true},
		{"lawyer", "user", true},
		{"admin", "user", true},
		{"user", "lawyer", false},
		{"lawyer", "lawyer", true},
		{"admin", "lawyer", true},
		{"user", "admin", false},
		{"lawyer", "admin", false},
		{"admin", "admin", true},
	}

	for _, tc := range cases {
		we := &writeErrRecorder{}
		nx := &nextRecorder{}
		req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "u1", "e@x.com", tc.role)

		RequireAtLeast(tc.minRole, we.fn)(nx).ServeHTTP(httptest.NewRecorder(), req)

		if tc.allowed && nx.calls != 1 {
			t.Fatalf("role=%s min=%s: expected allowed, got %v", tc.role, tc.minRole, we.last)
		}
		if !tc.allowed && nx.calls != 0 {
			t.Fatalf("role=%s min=%s: expected rejected", tc.role, tc.minRole)
		}
	}
}

func TestRequireAtLeast_UnknownRole_Forbidden(t *testing.T) {
	t.Parallel()

	we := &writeErrRecorder{}
	nx := &nextRecorder{}
	req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), "u1", "e@x.com", "superuser")

	RequireAtLeast("user", we.fn)(nx).ServeHTTP(httptest.NewRecorder(), req)

	if nx.calls != 0 {
		t.Fatalf("next should not run")
	}
	if !domain.Is(we.last, "forbidden") {
		t.Fatalf("expected forbidden, got %v", we.last)
	}
}

func TestRequireSelfOrAdmin(t *testing.T) {
	t.Parallel()

	run := func(callerID, role, targetID string) (*writeErrRecorder, *nextRecorder) {
		we := &writeErrRecorder{}
		nx := &nextRecorder{}

		req := withIdentity(httptest.NewRequest(http.MethodGet, "/users/"+targetID, nil), callerID, "e@x.com", role)

		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", targetID)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		RequireSelfOrAdmin(we.fn)(nx).ServeHTTP(httptest.NewRecorder(), req)
		return we, nx
	}

	if _, nx := run("u1", "user", "u1"); nx.calls != 1 {
		t.Fatalf("self access should pass")
	}
	if we, nx := run("u1", "user", "u2"); nx.calls != 0 || !domain.Is(we.last, "forbidden") {
		t.Fatalf("cross-user access should be forbidden, got %v", we.last)
	}
	if _, nx := run("admin1", "admin", "u2"); nx.calls != 1 {
		t.Fatalf("admin access should pass")
	}
}
