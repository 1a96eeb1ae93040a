package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/learninghub-api/internal/application/notification"
	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/pkg/logger"
)

const (
	markedAsReadMessage    = "Notification marked as read"
	broadcastFailedMessage = "Failed to send broadcast"
)

// NotificationHandler serves the notification routes beyond plain CRUD.
type NotificationHandler struct {
	svc notification.Service
	log *logger.Logger
}

func NewNotificationHandler(svc notification.Service, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, log: log}
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	p := h.svc.Policy()
	if err := h.svc.MarkAsRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, p.NotFoundMessage(), p.UpdateFailedMessage()))
		return
	}
	writeEnvelope(w, r, h.log, domain.Done(markedAsReadMessage))
}

func (h *NotificationHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var tmpl domain.BroadcastTemplate
	if err := json.NewDecoder(r.Body).Decode(&tmpl); err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("%w: invalid JSON body: %w", domain.ErrBadRequest, err)
		writeEnvelope(w, r, h.log, domain.Failure(err, broadcastFailedMessage, broadcastFailedMessage))
		return
	}

	res, err := h.svc.Broadcast(r.Context(), tmpl)
	if err != nil {
		writeEnvelope(w, r, h.log, domain.Failure(err, broadcastFailedMessage, broadcastFailedMessage))
		return
	}
	writeEnvelope(w, r, h.log, domain.Created(res, fmt.Sprintf("Broadcast sent to %d users", res.Count)))
}
