package service

import (
	"context"
	"io"
	"testing"
	"time"

	apterrors "lexsched/internal/appointments/errors"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

type mockAppointmentRepository struct {
	insertFunc     func(ctx context.Context, appointment *model.Appointment) error
	findByIDFunc   func(ctx context.Context, id string) (*model.Appointment, error)
	findAllFunc    func(ctx context.Context) ([]*model.Appointment, error)
	findByUserFunc func(ctx context.Context, userID string) ([]*model.Appointment, error)
	deleteByIDFunc func(ctx context.Context, id string) (*model.Appointment, error)
}

func (m *mockAppointmentRepository) Insert(ctx context.Context, appointment *model.Appointment) error {
	return m.insertFunc(ctx, appointment)
}

func (m *mockAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockAppointmentRepository) FindAll(ctx context.Context) ([]*model.Appointment, error) {
	return m.findAllFunc(ctx)
}

func (m *mockAppointmentRepository) FindByUser(ctx context.Context, userID string) ([]*model.Appointment, error) {
	return m.findByUserFunc(ctx, userID)
}

func (m *mockAppointmentRepository) DeleteByID(ctx context.Context, id string) (*model.Appointment, error) {
	return m.deleteByIDFunc(ctx, id)
}

type mockMarker struct {
	bookedEventID string
	bookedApptID  string
}

func (m *mockMarker) MarkBooked(ctx context.Context, eventID, appointmentID string) (*model.CalendarEvent, error) {
	m.bookedEventID = eventID
	m.bookedApptID = appointmentID
	return &model.CalendarEvent{ID: eventID}, nil
}

type mockReassigner struct {
	calls chan string
	block chan struct{}
}

func (m *mockReassigner) ReassignAfterCancellation(ctx context.Context, legalServiceID, legalServiceTitle, eventID, eventDate string) error {
	if m.block != nil {
		<-m.block
	}
	m.calls <- eventID
	return nil
}

type mockStore struct {
	deletedURLs []string
}

func (m *mockStore) DeleteIfExists(ctx context.Context, fileURL string) error {
	m.deletedURLs = append(m.deletedURLs, fileURL)
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func validBooking() *model.Appointment {
	return &model.Appointment{
		LegalServiceID:    "svc-1",
		LegalServiceTitle: "Consulenza legale",
		EventID:           "event-1",
		EventDate:         "2026-09-02T10:00:00Z",
		User:              model.User{ID: "user-1", Email: "client@example.com"},
	}
}

func TestBook(t *testing.T) {
	var inserted *model.Appointment
	repo := &mockAppointmentRepository{
		insertFunc: func(ctx context.Context, appointment *model.Appointment) error {
			inserted = appointment
			return nil
		},
	}
	marker := &mockMarker{}

	svc := NewAppointmentService(repo, &mockStore{}, marker, &mockReassigner{}, nil, testLogger())

	appointment, err := svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if appointment.ID == "" {
		t.Error("appointment id must be assigned")
	}
	if inserted != appointment {
		t.Error("the stored appointment must be the returned appointment")
	}
	if marker.bookedEventID != "event-1" || marker.bookedApptID != appointment.ID {
		t.Errorf("event must be marked booked by the new appointment, got %q/%q",
			marker.bookedEventID, marker.bookedApptID)
	}
}

func TestBook_InvalidPayload(t *testing.T) {
	svc := NewAppointmentService(&mockAppointmentRepository{}, &mockStore{}, &mockMarker{}, &mockReassigner{}, nil, testLogger())

	booking := validBooking()
	booking.EventID = ""

	_, err := svc.Book(context.Background(), booking)
	if !apperrors.IsCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCancel_TriggersReassignment(t *testing.T) {
	appointment := validBooking()
	appointment.ID = "appt-1"
	appointment.FileMetadata = []model.FileMetadata{{FileURL: "/api/v1/documents/files/file-1"}}

	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return appointment, nil
		},
		deleteByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return appointment, nil
		},
	}
	reassigner := &mockReassigner{calls: make(chan string, 1)}
	store := &mockStore{}

	svc := NewAppointmentService(repo, store, &mockMarker{}, reassigner, nil, testLogger())

	cancelled, err := svc.Cancel(context.Background(), "appt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.ID != "appt-1" {
		t.Errorf("unexpected appointment returned: %+v", cancelled)
	}
	if len(store.deletedURLs) != 1 {
		t.Errorf("expected 1 document deletion, got %d", len(store.deletedURLs))
	}

	select {
	case eventID := <-reassigner.calls:
		if eventID != "event-1" {
			t.Errorf("reassignment must target the freed event, got %q", eventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation must hand the freed event to the waiting list")
	}
}

// A slow reassignment cycle must never hold up the cancellation response.
func TestCancel_DoesNotWaitForReassignment(t *testing.T) {
	appointment := validBooking()
	appointment.ID = "appt-1"

	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return appointment, nil
		},
		deleteByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return appointment, nil
		},
	}
	reassigner := &mockReassigner{calls: make(chan string, 1), block: make(chan struct{})}

	svc := NewAppointmentService(repo, &mockStore{}, &mockMarker{}, reassigner, nil, testLogger())

	done := make(chan struct{})
	go func() {
		svc.Cancel(context.Background(), "appt-1")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Cancel must return while the reassignment cycle is still running")
	}

	close(reassigner.block)
}

func TestCancel_NotFound(t *testing.T) {
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return nil, apterrors.ErrNotFound
		},
	}

	svc := NewAppointmentService(repo, &mockStore{}, &mockMarker{}, &mockReassigner{}, nil, testLogger())

	_, err := svc.Cancel(context.Background(), "missing")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := &mockAppointmentRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Appointment, error) {
			return nil, apterrors.ErrNotFound
		},
	}

	svc := NewAppointmentService(repo, &mockStore{}, &mockMarker{}, &mockReassigner{}, nil, testLogger())

	_, err := svc.GetByID(context.Background(), "missing")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}
