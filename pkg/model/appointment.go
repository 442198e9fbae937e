package model

// User identifies the account that owns an appointment or waiting-list entry.
type User struct {
	ID    string `json:"id" bson:"id" validate:"required"`
	Name  string `json:"name,omitempty" bson:"name,omitempty"`
	Email string `json:"email" bson:"email" validate:"required,email"`
}

// FileMetadata describes one uploaded supporting document attached to an
// appointment. FileURL points at the document store; AccessToken, when set,
// grants time-limited download access.
type FileMetadata struct {
	OriginalFileName string `json:"originalFileName" bson:"original_file_name"`
	FileURL          string `json:"fileUrl" bson:"file_url"`
	AccountID        string `json:"accountId" bson:"account_id"`
	AccountEmail     string `json:"accountEmail" bson:"account_email"`
	AccessToken      string `json:"accessToken,omitempty" bson:"access_token,omitempty"`
}

// Appointment is the booking record for a legal service. EventID/EventDate are
// empty until the appointment is bound to a calendar event: at booking time, or
// when a waiting-list hold provisionally binds the entry to a freed event.
type Appointment struct {
	ID                string         `json:"id,omitempty" bson:"_id,omitempty"`
	LegalServiceID    string         `json:"legalServiceId" bson:"legal_service_id" validate:"required"`
	LegalServiceTitle string         `json:"legalServiceTitle" bson:"legal_service_title"`
	EventID           string         `json:"eventId,omitempty" bson:"event_id,omitempty"`
	EventDate         string         `json:"eventDate,omitempty" bson:"event_date,omitempty"`
	User              User           `json:"user" bson:"user" validate:"required"`
	FileMetadata      []FileMetadata `json:"fileMetadata" bson:"file_metadata"`
}
