package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	eventserrors "lexsched/internal/events/errors"
	"lexsched/internal/events/repository"
	"lexsched/internal/events/tracker"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/httputil"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

// Handler exposes calendar event CRUD. New events start bookable unless the
// payload sets its own colors.
type Handler struct {
	repo repository.EventRepository
	log  *logger.Logger
}

func NewHandler(repo repository.EventRepository, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	events, err := h.repo.FindAll(r.Context())
	if err != nil {
		h.log.Error("Failed to list events", "error", err)
		h.writeError(w, "GetAll", apperrors.Internal("Failed to retrieve events", err))
		return
	}

	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	event, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			h.writeError(w, "GetByID", apperrors.NotFoundWithID("Event", id))
			return
		}
		h.log.Error("Failed to retrieve event", "event_id", id, "error", err)
		h.writeError(w, "GetByID", apperrors.Internal("Failed to retrieve event", err))
		return
	}

	if err := httputil.WriteSuccess(w, event); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *Handler) GetByLegalService(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	serviceID := ps.ByName("id")

	events, err := h.repo.FindByLegalService(r.Context(), serviceID)
	if err != nil {
		h.log.Error("Failed to list events for legal service", "legal_service_id", serviceID, "error", err)
		h.writeError(w, "GetByLegalService", apperrors.Internal("Failed to retrieve events", err))
		return
	}

	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByLegalService", "error", err)
	}
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var event model.CalendarEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, "Add", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if event.Title == "" {
		h.writeError(w, "Add", apperrors.InvalidInput("Event title is required"))
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.BackgroundColor == "" {
		event.BackgroundColor = tracker.BookableColor
		event.BorderColor = tracker.BookableColor
	}

	if err := h.repo.Insert(r.Context(), &event); err != nil {
		h.log.Error("Failed to create event", "error", err)
		h.writeError(w, "Add", apperrors.Internal("Failed to create event", err))
		return
	}

	h.log.Info("Event created", "event_id", event.ID)
	if err := httputil.WriteCreated(w, event); err != nil {
		h.log.Error("failed to write success response", "handler", "Add", "error", err)
	}
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var event model.CalendarEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}
	event.ID = id

	updated, err := h.repo.Replace(r.Context(), id, &event)
	if err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			h.writeError(w, "Update", apperrors.NotFoundWithID("Event", id))
			return
		}
		h.log.Error("Failed to update event", "event_id", id, "error", err)
		h.writeError(w, "Update", apperrors.Internal("Failed to update event", err))
		return
	}

	h.log.Info("Event updated", "event_id", id)
	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "error", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	deleted, err := h.repo.DeleteByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			h.writeError(w, "Delete", apperrors.NotFoundWithID("Event", id))
			return
		}
		h.log.Error("Failed to delete event", "event_id", id, "error", err)
		h.writeError(w, "Delete", apperrors.Internal("Failed to delete event", err))
		return
	}

	h.log.Info("Event deleted", "event_id", id)
	if err := httputil.WriteSuccess(w, deleted); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/events", h.GetAll)
	router.GET("/api/v1/events/id/:id", h.GetByID)
	router.GET("/api/v1/events/services/:id", h.GetByLegalService)
	router.POST("/api/v1/events/add", h.Add)
	router.PUT("/api/v1/events/update/:id", h.Update)
	router.DELETE("/api/v1/events/delete/:id", h.Delete)
}
