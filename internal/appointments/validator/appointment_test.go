package validator

import (
	"testing"

	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/model"
)

func validBooking() *model.Appointment {
	return &model.Appointment{
		LegalServiceID:    "svc-1",
		LegalServiceTitle: "Consulenza legale",
		EventID:           "event-1",
		EventDate:         "2026-09-02T10:00:00Z",
		User:              model.User{ID: "user-1", Email: "client@example.com"},
	}
}

func TestValidateBooking(t *testing.T) {
	v := NewBookingValidator()

	if err := v.ValidateBooking(validBooking()); err != nil {
		t.Errorf("valid booking rejected: %v", err)
	}
}

func TestValidateBooking_MissingFields(t *testing.T) {
	v := NewBookingValidator()

	for _, tc := range []struct {
		name   string
		mutate func(a *model.Appointment)
	}{
		{name: "no legal service", mutate: func(a *model.Appointment) { a.LegalServiceID = "" }},
		{name: "no event", mutate: func(a *model.Appointment) { a.EventID = "" }},
		{name: "no user id", mutate: func(a *model.Appointment) { a.User.ID = "" }},
		{name: "no user email", mutate: func(a *model.Appointment) { a.User.Email = "" }},
		{name: "malformed email", mutate: func(a *model.Appointment) { a.User.Email = "not-an-email" }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			booking := validBooking()
			tc.mutate(booking)

			err := v.ValidateBooking(booking)
			if !apperrors.IsCode(err, apperrors.CodeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}
