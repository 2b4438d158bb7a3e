package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/admin-access/internal"
	"github.com/frahmantamala/admin-access/internal/transport"
	"github.com/frahmantamala/admin-access/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.L()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.Service.Login(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "error", err)
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, token)
}

// ChangeTempPassword completes the forced password-change flow. It is the
// only endpoint a temp-password token can reach.
func (h *Handler) ChangeTempPassword(w http.ResponseWriter, r *http.Request) {
	bearer := h.ExtractTokenFromHeader(r)
	if bearer == "" {
		h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	principal, err := h.Service.ValidateTempPasswordToken(bearer)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.Service.ChangePassword(principal.ID, dto)
	if err != nil {
		h.Logger.Error("temp password change failed", "error", err, "user_id", principal.ID)
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, token)
}

// ChangePassword lets an authenticated user rotate their own password; the
// returned token replaces the one invalidated by the version bump.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.Service.ChangePassword(principal.ID, dto)
	if err != nil {
		h.Logger.Error("password change failed", "error", err, "user_id", principal.ID)
		h.writeAuthError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, token)
}

// Me returns the principal bundle as validated, mainly for front-ends
// re-hydrating navigation state.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.WriteJSON(w, http.StatusOK, principal)
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	var rejected *TokenRejectedError
	if errors.As(err, &rejected) {
		appErr := rejected.AppErr()
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}

	if appErr, ok := internal.IsAppError(err); ok {
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}

	var validation ValidationError
	if errors.As(err, &validation) {
		h.WriteError(w, http.StatusBadRequest, validation.Error())
		return
	}

	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
