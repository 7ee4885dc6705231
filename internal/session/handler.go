package session

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/audit"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

// Handler exposes HTTP endpoints for login and logout.
type Handler struct {
	svc      *Service
	recorder audit.Recorder
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
}

// NewHandler builds a Handler. recorder and m may be nil.
func NewHandler(svc *Service, recorder audit.Recorder, m *metrics.Metrics, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, recorder: recorder, metrics: m, logger: logger}
}

// LoginRequest login payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		utilities.WriteJSON(w, http.StatusBadRequest, LoginResult{Success: false, Message: "invalid payload"})
		return
	}
	res, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if fe, ok := failure.As(err); ok {
			h.logger.Debugw("login failed", "err", err)
			h.metrics.AuthEvent("login", metrics.ResultFailure)
			h.record(r, audit.RecordInput{Action: audit.ActionLoginFailed, Description: "login failed for " + req.Username})
			utilities.WriteJSON(w, http.StatusUnauthorized, LoginResult{Success: false, Message: fe.Message})
			return
		}
		h.logger.Errorw("login error", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.metrics.AuthEvent("login", metrics.ResultSuccess)
	h.record(r, audit.RecordInput{UserID: res.UserID, Action: audit.ActionLogin})
	utilities.WriteJSON(w, http.StatusOK, res)
}

// LogoutRequest carries the token in the body; an Authorization bearer header
// is accepted instead.
type LogoutRequest struct {
	Token string `json:"token"`
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := bearerToken(r)
	if raw == "" {
		var req LogoutRequest
		if err := utilities.DecodeJSON(r, &req); err != nil {
			h.logger.Debugw("invalid logout payload", "err", err)
			utilities.WriteJSON(w, http.StatusBadRequest, LogoutResult{Status: "error", Message: "invalid payload"})
			return
		}
		raw = req.Token
	}
	res, err := h.svc.Logout(r.Context(), raw)
	if err != nil {
		if fe, ok := failure.As(err); ok {
			h.metrics.AuthEvent("logout", metrics.ResultFailure)
			h.record(r, audit.RecordInput{Action: audit.ActionLogoutFailed})
			utilities.WriteJSON(w, http.StatusUnauthorized, LogoutResult{Status: "error", Message: fe.Message})
			return
		}
		h.logger.Errorw("logout error", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	h.metrics.AuthEvent("logout", metrics.ResultSuccess)
	h.record(r, audit.RecordInput{Action: audit.ActionLogout})
	utilities.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) record(r *http.Request, in audit.RecordInput) {
	if h.recorder == nil {
		return
	}
	if _, err := h.recorder.Record(r.Context(), in); err != nil {
		h.logger.Warnw("audit record failed", "action", in.Action, "err", err)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) < len("bearer ") || !strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(auth[len("bearer "):])
}
