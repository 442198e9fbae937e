package tracker

import (
	"context"
	"errors"

	eventserrors "lexsched/internal/events/errors"
	"lexsched/internal/events/repository"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

// Color pairs signal availability to the calendar UI. The occupant property
// and the booked color pair are always set or cleared together.
const (
	BookableColor = "#4CAF50"
	BookedColor   = "#F44336"

	OccupantProp = "appointment"
)

// Tracker flips an event between bookable and booked and keeps the occupant
// reference consistent with the color pair.
type Tracker interface {
	MarkBooked(ctx context.Context, eventID, appointmentID string) (*model.CalendarEvent, error)
	MarkBookable(ctx context.Context, eventID string) (*model.CalendarEvent, error)
}

type eventTracker struct {
	repo repository.EventRepository
	log  *logger.Logger
}

func NewTracker(repo repository.EventRepository, log *logger.Logger) Tracker {
	return &eventTracker{repo: repo, log: log}
}

func (t *eventTracker) MarkBooked(ctx context.Context, eventID, appointmentID string) (*model.CalendarEvent, error) {
	event, err := t.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Event", eventID)
		}
		return nil, apperrors.Internal("Failed to retrieve event", err)
	}

	if event.ExtendedProps == nil {
		event.ExtendedProps = map[string]any{}
	}
	event.ExtendedProps[OccupantProp] = appointmentID
	event.BackgroundColor = BookedColor
	event.BorderColor = BookedColor

	updated, err := t.repo.Replace(ctx, eventID, event)
	if err != nil {
		return nil, apperrors.Internal("Failed to update event", err)
	}

	t.log.Info("Event marked as booked", "event_id", eventID, "appointment_id", appointmentID)
	return updated, nil
}

func (t *eventTracker) MarkBookable(ctx context.Context, eventID string) (*model.CalendarEvent, error) {
	event, err := t.repo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Event", eventID)
		}
		return nil, apperrors.Internal("Failed to retrieve event", err)
	}

	// Already bookable: leave the stored document untouched.
	_, occupied := event.ExtendedProps[OccupantProp]
	if !occupied && event.BackgroundColor == BookableColor && event.BorderColor == BookableColor {
		return event, nil
	}

	delete(event.ExtendedProps, OccupantProp)
	event.BackgroundColor = BookableColor
	event.BorderColor = BookableColor

	updated, err := t.repo.Replace(ctx, eventID, event)
	if err != nil {
		return nil, apperrors.Internal("Failed to update event", err)
	}

	t.log.Info("Event marked as bookable", "event_id", eventID)
	return updated, nil
}
