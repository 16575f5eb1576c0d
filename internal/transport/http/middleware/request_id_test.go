package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	appCtx "github.com/caseflow/auth-service/internal/pkg/context"
)

func TestRequestID_PropagatesInboundID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appCtx.GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "upstream-id-42")
	rr := httptest.NewRecorder()

	RequestID(next).ServeHTTP(rr, req)

	if seen != "upstream-id-42" {
		t.Fatalf("expected inbound id in context, got %q", seen)
	}
	if got := rr.Header().Get(HeaderXRequestID); got != "upstream-id-42" {
		t.Fatalf("expected inbound id echoed on response, got %q", got)
	}
}

func TestRequestID_MintsIDWhenAbsent(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appCtx.GetRequestID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	RequestID(next).ServeHTTP(rr, req)

	if seen == "" {
		t.Fatalf("expected a minted request id")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("expected uuid, got %q: %v", seen, err)
	}
	if got := rr.Header().Get(HeaderXRequestID); got != seen {
		t.Fatalf("expected response header %q to match context id %q", got, seen)
	}
}
