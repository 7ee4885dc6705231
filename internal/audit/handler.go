package audit

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

// Handler exposes the security audit log and interaction ingestion.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// LogsResponse is the body of GET /security/audit-logs.
type LogsResponse struct {
	Logs []entity.SecurityEvent `json:"logs"`
}

func (h *Handler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.Log(r.Context())
	if err != nil {
		h.logger.Errorw("audit log query failed", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	utilities.WriteJSON(w, http.StatusOK, LogsResponse{Logs: logs})
}

// InteractionRequest is posted by kiosks. Unknown fields (including any
// client-supplied timestamp) are rejected.
type InteractionRequest struct {
	UserID      string `json:"userId"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		h.logger.Debugw("invalid interaction payload", "err", err)
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	id, err := h.svc.Record(r.Context(), RecordInput{
		KioskID:     r.PathValue("kioskId"),
		UserID:      req.UserID,
		Action:      req.Action,
		Description: req.Description,
	})
	if err != nil {
		if fe, ok := failure.As(err); ok {
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": fe.Message})
			return
		}
		h.logger.Errorw("record interaction failed", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, map[string]string{"id": id})
}
