package model

// LegalService is descriptive catalog data; the scheduler core only relies on
// its identity and title.
type LegalService struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Category    string `json:"category,omitempty" bson:"category,omitempty"`
}
