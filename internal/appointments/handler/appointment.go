package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"lexsched/internal/appointments/service"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/httputil"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

type Handler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewHandler(svc service.AppointmentService, log *logger.Logger) *Handler {
	return &Handler{service: svc, log: log}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var appointment model.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		h.writeError(w, "Book", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booked, err := h.service.Book(r.Context(), &appointment)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, booked); err != nil {
		h.log.Error("failed to write success response", "handler", "Book", "error", err)
	}
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	cancelled, err := h.service.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, cancelled); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	appointments, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointments); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointment, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *Handler) GetByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointments, err := h.service.GetByUser(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByUser", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointments); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByUser", "error", err)
	}
}

// CurrentDate reports the server clock so calendar clients render "today"
// consistently regardless of the browser timezone.
func (h *Handler) CurrentDate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	payload := map[string]string{"date": time.Now().UTC().Format(time.RFC3339)}
	if err := httputil.WriteSuccess(w, payload); err != nil {
		h.log.Error("failed to write success response", "handler", "CurrentDate", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/appointments/book", h.Book)
	router.DELETE("/api/v1/appointments/cancel/:id", h.Cancel)
	router.GET("/api/v1/appointments", h.GetAll)
	router.GET("/api/v1/appointments/id/:id", h.GetByID)
	router.GET("/api/v1/users/:id/appointments", h.GetByUser)
	router.GET("/api/v1/date", h.CurrentDate)
}
