package user

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/audit"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

// Handler exposes HTTP endpoints for user operations.
type Handler struct {
	svc      *UserService
	recorder audit.Recorder
	logger   *zap.SugaredLogger
}

// NewHandler builds a Handler. recorder may be nil.
func NewHandler(svc *UserService, recorder audit.Recorder, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, recorder: recorder, logger: logger}
}

// PermissionsRequest request body for the permissions endpoint.
type PermissionsRequest struct {
	NewPermissions []string `json:"newPermissions"`
}

func (h *Handler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	var req PermissionsRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		h.logger.Debugw("invalid permissions payload", "user_id", userID, "err", err)
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	res, err := h.svc.UpdatePermissions(r.Context(), userID, req.NewPermissions)
	if err != nil {
		if failure.KindOf(err) == failure.KindNotFound {
			perms := req.NewPermissions
			if perms == nil {
				perms = []string{}
			}
			utilities.WriteJSON(w, http.StatusNotFound, PermissionsResult{
				UserID:             userID,
				UpdatedPermissions: perms,
				Status:             StatusUserNotFound,
			})
			return
		}
		h.logger.Errorw("permissions update error", "user_id", userID, "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if h.recorder != nil && len(res.UpdatedPermissions) > 0 {
		in := audit.RecordInput{
			UserID:      userID,
			Action:      audit.ActionPermissionsUpdate,
			Description: "permissions set to " + strings.Join(res.UpdatedPermissions, ","),
		}
		if _, err := h.recorder.Record(r.Context(), in); err != nil {
			h.logger.Warnw("audit record failed", "action", in.Action, "err", err)
		}
	}
	utilities.WriteJSON(w, http.StatusOK, res)
}
