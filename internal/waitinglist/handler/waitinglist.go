package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"lexsched/internal/waitinglist/service"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/httputil"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

// Confirmer resolves a pending slot offer for a legal service. Satisfied by
// the reassignment engine.
type Confirmer interface {
	Confirm(ctx context.Context, legalServiceID string) (*model.WaitingListEntry, error)
}

type Handler struct {
	service   service.WaitingListService
	confirmer Confirmer
	log       *logger.Logger
}

func NewHandler(svc service.WaitingListService, confirmer Confirmer, log *logger.Logger) *Handler {
	return &Handler{service: svc, confirmer: confirmer, log: log}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var entry model.WaitingListEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		h.writeError(w, "Add", apperrors.InvalidInput("Invalid request body"))
		return
	}

	stored, err := h.service.Join(r.Context(), &entry)
	if err != nil {
		h.writeError(w, "Add", err)
		return
	}

	if err := httputil.WriteCreated(w, stored); err != nil {
		h.log.Error("failed to write success response", "handler", "Add", "error", err)
	}
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	removed, err := h.service.Remove(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Remove", err)
		return
	}

	if err := httputil.WriteSuccess(w, removed); err != nil {
		h.log.Error("failed to write success response", "handler", "Remove", "error", err)
	}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries, err := h.service.ListAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, entries); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *Handler) GetByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entries, err := h.service.ListForUser(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByUser", err)
		return
	}

	if err := httputil.WriteSuccess(w, entries); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByUser", "error", err)
	}
}

// Confirm claims the slot currently on offer for a legal service. 404 when
// no hold is pending, 409 when the hold lapsed first.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entry, err := h.confirmer.Confirm(r.Context(), ps.ByName("serviceId"))
	if err != nil {
		h.writeError(w, "Confirm", err)
		return
	}

	if err := httputil.WriteSuccess(w, entry); err != nil {
		h.log.Error("failed to write success response", "handler", "Confirm", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/waitinglist/add", h.Add)
	router.DELETE("/api/v1/waitinglist/remove/:id", h.Remove)
	router.GET("/api/v1/waitinglist/all", h.GetAll)
	router.POST("/api/v1/waitinglist/confirm/:serviceId", h.Confirm)
	router.GET("/api/v1/users/:id/waitinglist", h.GetByUser)
}
