package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/model"
)

// BookingValidator checks a booking payload before it reaches the store. A
// booking must reference a legal service, a calendar event, and the booking
// user with a deliverable email address.
type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() *BookingValidator {
	return &BookingValidator{validate: validator.New()}
}

func (v *BookingValidator) ValidateBooking(appointment *model.Appointment) error {
	if appointment.EventID == "" {
		return apperrors.Validation("Invalid booking payload", map[string]any{
			"EventID": "required",
		})
	}

	if err := v.validate.Struct(appointment); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			details := make(map[string]any, len(verrs))
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
			return apperrors.Validation("Invalid booking payload", details)
		}
		return apperrors.InvalidInput("Invalid booking payload")
	}

	return nil
}
