package content

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-kiosk/internal/audit"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/failure"
	"github.com/ovaphlow/pitchfork/service-kiosk/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-kiosk/pkg/utilities"
)

// Handler exposes HTTP endpoints for kiosk content.
type Handler struct {
	svc      *Service
	recorder audit.Recorder
	metrics  *metrics.Metrics
	logger   *zap.SugaredLogger
}

func NewHandler(svc *Service, recorder audit.Recorder, m *metrics.Metrics, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, recorder: recorder, metrics: m, logger: logger}
}

// UpdateRequest is the body of POST /content/{kioskId}/update.
type UpdateRequest struct {
	Title         string `json:"title"`
	ContentBody   string `json:"contentBody"`
	ContentType   string `json:"contentType"`
	ScheduledTime string `json:"scheduledTime"`
	IsActive      *bool  `json:"isActive"`
}

type ListResponse struct {
	ContentList []entity.Content `json:"contentList"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	kioskID := r.PathValue("kioskId")
	var req UpdateRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		h.logger.Debugw("invalid content payload", "kiosk_id", kioskID, "err", err)
		h.metrics.ContentWrite(metrics.ResultInvalid)
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if req.IsActive == nil {
		h.metrics.ContentWrite(metrics.ResultInvalid)
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "isActive is required"})
		return
	}
	res, err := h.svc.Upsert(r.Context(), UpsertInput{
		KioskID:       kioskID,
		Title:         req.Title,
		Body:          req.ContentBody,
		ContentType:   req.ContentType,
		ScheduledTime: req.ScheduledTime,
		IsActive:      *req.IsActive,
	})
	if err != nil {
		if fe, ok := failure.As(err); ok {
			h.metrics.ContentWrite(metrics.ResultInvalid)
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": fe.Message})
			return
		}
		h.logger.Errorw("content upsert error", "kiosk_id", kioskID, "err", err)
		h.metrics.ContentWrite(metrics.ResultFailure)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if res.Created {
		h.metrics.ContentWrite(metrics.ResultCreated)
	} else {
		h.metrics.ContentWrite(metrics.ResultUpdated)
	}
	if h.recorder != nil {
		in := audit.RecordInput{KioskID: kioskID, Action: audit.ActionContentUpdate, Description: req.Title}
		if _, err := h.recorder.Record(r.Context(), in); err != nil {
			h.logger.Warnw("audit record failed", "action", in.Action, "err", err)
		}
	}
	utilities.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Due(r.Context(), r.PathValue("kioskId"))
	if err != nil {
		h.logger.Errorw("content list error", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	utilities.WriteJSON(w, http.StatusOK, ListResponse{ContentList: items})
}
