package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"lexsched/internal/documents"
	wlerrors "lexsched/internal/waitinglist/errors"
	"lexsched/internal/waitinglist/repository"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

// WaitingListService manages membership of per-service waiting lists. The
// reassignment cycle itself lives in the engine package; this service only
// covers join/leave/listing.
type WaitingListService interface {
	Join(ctx context.Context, entry *model.WaitingListEntry) (*model.WaitingListEntry, error)
	Remove(ctx context.Context, id string) (*model.WaitingListEntry, error)
	ListForUser(ctx context.Context, userID string) ([]*model.WaitingListEntry, error)
	ListAll(ctx context.Context) ([]*model.WaitingListEntry, error)
}

type waitingListService struct {
	repo     repository.WaitingListRepository
	files    documents.Store
	validate *validator.Validate
	capacity int64
	now      func() time.Time
	log      *logger.Logger
}

func NewWaitingListService(
	repo repository.WaitingListRepository,
	files documents.Store,
	capacity int,
	log *logger.Logger,
) WaitingListService {
	return &waitingListService{
		repo:     repo,
		files:    files,
		validate: validator.New(),
		capacity: int64(capacity),
		now:      time.Now,
		log:      log,
	}
}

// Join appends an entry to the list for its legal service. The list is
// considered full only once the existing count exceeds the configured bound,
// so one entry beyond the bound is still admitted; clients have relied on
// that behavior and it is kept intact.
func (s *waitingListService) Join(ctx context.Context, entry *model.WaitingListEntry) (*model.WaitingListEntry, error) {
	if err := s.validate.Struct(entry.Appointment); err != nil {
		return nil, validationError(err)
	}

	count, err := s.repo.CountForService(ctx, entry.Appointment.LegalServiceID)
	if err != nil {
		return nil, apperrors.Internal("Failed to check waiting list capacity", err)
	}
	if count > s.capacity {
		return nil, apperrors.CapacityExceeded("The waiting list is full.")
	}

	entry.ID = uuid.New().String()
	entry.AddedOn = s.now().UTC()

	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, apperrors.Internal("Failed to join waiting list", err)
	}

	s.log.Info("Waiting list entry added",
		"entry_id", entry.ID,
		"legal_service_id", entry.Appointment.LegalServiceID,
		"user_id", entry.Appointment.User.ID,
	)
	return entry, nil
}

// Remove takes an entry off the list and cleans up its uploaded documents.
// File cleanup is best-effort: a failed delete is logged per file and the
// removal still succeeds.
func (s *waitingListService) Remove(ctx context.Context, id string) (*model.WaitingListEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, wlerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Waiting list entry", id)
		}
		return nil, apperrors.Internal("Failed to retrieve waiting list entry", err)
	}

	for _, file := range entry.Appointment.FileMetadata {
		if err := s.files.DeleteIfExists(ctx, file.FileURL); err != nil {
			s.log.Error("Failed to delete waiting list entry document",
				"entry_id", id, "file_url", file.FileURL, "error", err)
		}
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, wlerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Waiting list entry", id)
		}
		return nil, apperrors.Internal("Failed to remove waiting list entry", err)
	}

	s.log.Info("Waiting list entry removed", "entry_id", id)
	return deleted, nil
}

func (s *waitingListService) ListForUser(ctx context.Context, userID string) ([]*model.WaitingListEntry, error) {
	entries, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve waiting list entries", err)
	}
	return entries, nil
}

func (s *waitingListService) ListAll(ctx context.Context) ([]*model.WaitingListEntry, error) {
	entries, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve waiting list entries", err)
	}
	return entries, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		return apperrors.Validation("Invalid waiting list entry", details)
	}
	return apperrors.InvalidInput("Invalid waiting list entry")
}
