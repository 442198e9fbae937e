package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apterrors "lexsched/internal/appointments/errors"
	"lexsched/internal/appointments/repository"
	"lexsched/internal/appointments/validator"
	"lexsched/internal/documents"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/kafka"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

const (
	EventBooked    = "appointment.booked.v1"
	EventCancelled = "appointment.cancelled.v1"
)

// EventMarker binds a calendar event to its occupying appointment.
type EventMarker interface {
	MarkBooked(ctx context.Context, eventID, appointmentID string) (*model.CalendarEvent, error)
}

// Reassigner runs the waiting-list cycle for a freed event. Satisfied by the
// reassignment engine.
type Reassigner interface {
	ReassignAfterCancellation(ctx context.Context, legalServiceID, legalServiceTitle, eventID, eventDate string) error
}

// Publisher emits lifecycle events. A nil Publisher disables publishing.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type AppointmentService interface {
	Book(ctx context.Context, appointment *model.Appointment) (*model.Appointment, error)
	Cancel(ctx context.Context, id string) (*model.Appointment, error)
	GetAll(ctx context.Context) ([]*model.Appointment, error)
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	GetByUser(ctx context.Context, userID string) ([]*model.Appointment, error)
}

type appointmentService struct {
	repo       repository.AppointmentRepository
	files      documents.Store
	events     EventMarker
	reassigner Reassigner
	producer   Publisher
	validator  *validator.BookingValidator
	log        *logger.Logger
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	files documents.Store,
	events EventMarker,
	reassigner Reassigner,
	producer Publisher,
	log *logger.Logger,
) AppointmentService {
	return &appointmentService{
		repo:       repo,
		files:      files,
		events:     events,
		reassigner: reassigner,
		producer:   producer,
		validator:  validator.NewBookingValidator(),
		log:        log,
	}
}

type lifecyclePayload struct {
	AppointmentID  string `json:"appointmentId"`
	LegalServiceID string `json:"legalServiceId"`
	EventID        string `json:"eventId"`
	UserID         string `json:"userId,omitempty"`
}

// Book stores the appointment and flips its calendar event to booked.
func (s *appointmentService) Book(ctx context.Context, appointment *model.Appointment) (*model.Appointment, error) {
	if err := s.validator.ValidateBooking(appointment); err != nil {
		return nil, err
	}

	appointment.ID = uuid.New().String()

	if err := s.repo.Insert(ctx, appointment); err != nil {
		return nil, apperrors.Internal("Failed to book appointment", err)
	}

	if _, err := s.events.MarkBooked(ctx, appointment.EventID, appointment.ID); err != nil {
		// The appointment stands; the calendar is out of step until the
		// event is fixed up.
		s.log.Error("Failed to mark event as booked",
			"appointment_id", appointment.ID, "event_id", appointment.EventID, "error", err)
		return nil, err
	}

	s.publish(ctx, EventBooked, appointment)

	s.log.Info("Appointment booked",
		"appointment_id", appointment.ID,
		"legal_service_id", appointment.LegalServiceID,
		"event_id", appointment.EventID,
	)
	return appointment, nil
}

// Cancel removes the appointment and hands its event to the waiting list.
// The reassignment cycle runs in the background: a cancellation response
// never waits out a hold window.
func (s *appointmentService) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}

	for _, file := range appointment.FileMetadata {
		if err := s.files.DeleteIfExists(ctx, file.FileURL); err != nil {
			s.log.Error("Failed to delete appointment document",
				"appointment_id", id, "file_url", file.FileURL, "error", err)
		}
	}

	cancelled, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, apterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		return nil, apperrors.Internal("Failed to cancel appointment", err)
	}

	if cancelled.EventID != "" {
		go func(a model.Appointment) {
			err := s.reassigner.ReassignAfterCancellation(
				context.Background(), a.LegalServiceID, a.LegalServiceTitle, a.EventID, a.EventDate)
			if err != nil {
				s.log.Error("Reassignment cycle failed",
					"legal_service_id", a.LegalServiceID, "event_id", a.EventID, "error", err)
			}
		}(*cancelled)
	}

	s.publish(ctx, EventCancelled, cancelled)

	s.log.Info("Appointment cancelled",
		"appointment_id", id,
		"legal_service_id", cancelled.LegalServiceID,
		"event_id", cancelled.EventID,
	)
	return cancelled, nil
}

func (s *appointmentService) GetAll(ctx context.Context) ([]*model.Appointment, error) {
	appointments, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}
	return appointments, nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appointment, nil
}

func (s *appointmentService) GetByUser(ctx context.Context, userID string) ([]*model.Appointment, error) {
	appointments, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve appointments", err)
	}
	return appointments, nil
}

func (s *appointmentService) publish(ctx context.Context, eventType string, appointment *model.Appointment) {
	if s.producer == nil {
		return
	}

	msg, err := kafka.NewEvent(eventType, appointment.LegalServiceID, lifecyclePayload{
		AppointmentID:  appointment.ID,
		LegalServiceID: appointment.LegalServiceID,
		EventID:        appointment.EventID,
		UserID:         appointment.User.ID,
	})
	if err != nil {
		s.log.Error("Failed to build lifecycle event", "event_type", eventType, "error", err)
		return
	}
	if err := s.producer.Publish(ctx, msg); err != nil {
		s.log.Error("Failed to publish lifecycle event", "event_type", eventType, "error", err)
	}
}
