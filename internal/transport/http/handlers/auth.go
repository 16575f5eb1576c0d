package http_handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/caseflow/auth-service/internal/application/auth"
	"github.com/caseflow/auth-service/internal/domain"
	"github.com/caseflow/auth-service/internal/logger"
	"github.com/caseflow/auth-service/internal/transport/http/dto"
	"github.com/caseflow/auth-service/internal/transport/http/middleware"
	"github.com/caseflow/auth-service/internal/transport/http/response"
)

type AuthHandler struct {
	svc *auth.Service
	// devMode echoes reset tokens in the forgot-password response instead
	// of relying on the mailer. Never enable outside local development.
	devMode bool
}

func NewAuthHandler(svc *auth.Service, devMode bool) *AuthHandler {
	return &AuthHandler{svc: svc, devMode: devMode}
}

func sessionData(res auth.SessionResult) dto.SessionData {
	return dto.SessionData{
		User:      dto.NewUserView(res.User),
		Token:     res.Token,
		TokenType: res.TokenType,
		ExpiresIn: res.ExpiresIn,
	}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.SignUp(r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Str("email", res.User.Email).
		Msg("user_signed_up")

	response.Created(w, sessionData(res))
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if domain.Is(err, "invalid_credentials") {
			middleware.SigninAttemptsTotal.WithLabelValues("invalid_credentials").Inc()
		} else {
			middleware.SigninAttemptsTotal.WithLabelValues("error").Inc()
		}
		response.WriteError(w, r, err)
		return
	}

	middleware.SigninAttemptsTotal.WithLabelValues("success").Inc()
	logger.WithCtx(r.Context()).Info().
		Str("user_id", res.User.ID).
		Msg("user_signed_in")

	response.OK(w, sessionData(res))
}

// SignOut revokes the presented token. Deliberately not mounted behind the
// auth middleware: an already-revoked or expired token still gets a 200 so
// retries stay safe, per the session registry contract.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token, err := middleware.ExtractBearer(r)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.SignOut(r.Context(), token); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MessageData{Message: "signed out"})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	res, err := h.svc.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	data := dto.ForgotPasswordData{Message: "password reset requested"}
	if h.devMode {
		data.Token = res.Token
	}

	response.OK(w, data)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.CompletePasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MessageData{Message: "password updated"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenInvalid())
		return
	}

	u, err := h.svc.GetUserByID(r.Context(), userID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.MeData{User: dto.NewUserView(u)})
}

// ---- Admin ----

func (h *AuthHandler) AdminSetUserRole(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())

	targetID := chi.URLParam(r, "id")
	if strings.TrimSpace(targetID) == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	var req dto.SetUserRoleRequest
	if err := response.DecodeJSON(r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if err := h.svc.SetUserRole(r.Context(), actorID, targetID, req.Role); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.SetUserRoleData{
		Status: "role_updated",
		UserID: targetID,
		Role:   req.Role,
	})
}

func (h *AuthHandler) AdminDeactivateUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false, "deactivated")
}

func (h *AuthHandler) AdminActivateUser(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true, "activated")
}

func (h *AuthHandler) setActive(w http.ResponseWriter, r *http.Request, active bool, status string) {
	actorID, _ := middleware.UserIDFromContext(r.Context())

	targetID := chi.URLParam(r, "id")
	if strings.TrimSpace(targetID) == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	if err := h.svc.SetUserActive(r.Context(), actorID, targetID, active); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.SetUserActiveData{Status: status, UserID: targetID})
}

func (h *AuthHandler) AdminRevokeSessions(w http.ResponseWriter, r *http.Request) {
	actorID, _ := middleware.UserIDFromContext(r.Context())

	targetID := chi.URLParam(r, "id")
	if strings.TrimSpace(targetID) == "" {
		response.WriteError(w, r, domain.ErrMissingField("id"))
		return
	}

	if err := h.svc.RevokeUserSessions(r.Context(), actorID, targetID); err != nil {
		response.WriteError(w, r, err)
		return
	}

	response.OK(w, dto.RevokeSessionsData{Status: "revoked", UserID: targetID})
}
