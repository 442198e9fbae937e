package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	lserrors "lexsched/internal/legalservices/errors"
	"lexsched/internal/legalservices/repository"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/httputil"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

type Handler struct {
	repo repository.LegalServiceRepository
	log  *logger.Logger
}

func NewHandler(repo repository.LegalServiceRepository, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services, err := h.repo.FindAll(r.Context())
	if err != nil {
		h.log.Error("Failed to list legal services", "error", err)
		h.writeError(w, "GetAll", apperrors.Internal("Failed to retrieve legal services", err))
		return
	}

	if err := httputil.WriteSuccess(w, services); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var service model.LegalService
	if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
		h.writeError(w, "Add", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if service.Title == "" {
		h.writeError(w, "Add", apperrors.InvalidInput("Legal service title is required"))
		return
	}

	if service.ID == "" {
		service.ID = uuid.New().String()
	}

	if err := h.repo.Insert(r.Context(), &service); err != nil {
		h.log.Error("Failed to create legal service", "error", err)
		h.writeError(w, "Add", apperrors.Internal("Failed to create legal service", err))
		return
	}

	h.log.Info("Legal service created", "legal_service_id", service.ID)
	if err := httputil.WriteCreated(w, service); err != nil {
		h.log.Error("failed to write success response", "handler", "Add", "error", err)
	}
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	deleted, err := h.repo.DeleteByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, lserrors.ErrNotFound) {
			h.writeError(w, "Delete", apperrors.NotFoundWithID("Legal service", id))
			return
		}
		h.log.Error("Failed to delete legal service", "legal_service_id", id, "error", err)
		h.writeError(w, "Delete", apperrors.Internal("Failed to delete legal service", err))
		return
	}

	h.log.Info("Legal service deleted", "legal_service_id", id)
	if err := httputil.WriteSuccess(w, deleted); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/legalservices", h.GetAll)
	router.POST("/api/v1/legalservices/add", h.Add)
	router.DELETE("/api/v1/legalservices/delete/:id", h.Delete)
}
