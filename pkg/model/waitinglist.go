package model

import "time"

// WaitingListEntry embeds the full appointment payload the entrant wishes to
// book. Entries for one legal service are ordered by AddedOn ascending; the id
// is the deterministic tiebreak when two entries share a timestamp.
type WaitingListEntry struct {
	ID          string      `json:"id,omitempty" bson:"_id,omitempty"`
	Appointment Appointment `json:"appointment" bson:"appointment" validate:"required"`
	AddedOn     time.Time   `json:"addedOn" bson:"added_on"`
}
