package documents

import (
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/httputil"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

type Handler struct {
	store *GridFSStore
	log   *logger.Logger
}

func NewHandler(store *GridFSStore, log *logger.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Upload accepts a multipart form with one or more files plus the owning
// account fields, stores each file, and returns the stored metadata list.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid multipart form")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "error", writeErr)
		}
		return
	}

	accountID := r.FormValue("accountId")
	accountEmail := r.FormValue("accountEmail")

	var metadatas []*model.FileMetadata
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			if header.Size == 0 {
				continue
			}

			file, err := header.Open()
			if err != nil {
				h.log.Error("Error reading uploaded file", "file", header.Filename, "error", err)
				if writeErr := httputil.WriteError(w, apperrors.Internal("Error uploading file", err)); writeErr != nil {
					h.log.Error("failed to write error response", "handler", "Upload", "error", writeErr)
				}
				return
			}

			metadata, err := h.store.Save(uuid.New().String(), header.Filename, accountID, accountEmail, file)
			file.Close()
			if err != nil {
				h.log.Error("Error storing uploaded file", "file", header.Filename, "error", err)
				if writeErr := httputil.WriteError(w, apperrors.Internal("Error uploading file", err)); writeErr != nil {
					h.log.Error("failed to write error response", "handler", "Upload", "error", writeErr)
				}
				return
			}

			h.log.Info("File uploaded successfully", "file", header.Filename, "url", metadata.FileURL)
			metadatas = append(metadatas, metadata)
		}
	}

	if len(metadatas) == 0 {
		h.log.Warn("No file was uploaded in the request")
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("No file was uploaded in the request")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Upload", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, metadatas); err != nil {
		h.log.Error("failed to write success response", "handler", "Upload", "error", err)
	}
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	fileID := ps.ByName("id")

	stream, err := h.store.Open(fileID)
	if err != nil {
		if writeErr := httputil.WriteError(w, apperrors.NotFoundWithID("Document", fileID)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Download", "error", writeErr)
		}
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, stream); err != nil {
		h.log.Error("failed to stream document", "file_id", fileID, "error", err)
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/documents/upload", h.Upload)
	router.GET("/api/v1/documents/files/:id", h.Download)
}
