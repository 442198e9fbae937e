package model

import "time"

// CalendarEvent mirrors the calendar UI event shape. Bookable and booked
// states are signalled by the color pair; when booked, ExtendedProps carries
// the occupying appointment id. The color pair and the occupant property are
// always set or cleared together.
type CalendarEvent struct {
	ID              string         `json:"id,omitempty" bson:"_id,omitempty"`
	Title           string         `json:"title" bson:"title"`
	StartStr        string         `json:"startStr,omitempty" bson:"start_str,omitempty"`
	EndStr          string         `json:"endStr,omitempty" bson:"end_str,omitempty"`
	Start           *time.Time     `json:"start,omitempty" bson:"start,omitempty"`
	End             *time.Time     `json:"end,omitempty" bson:"end,omitempty"`
	AllDay          *bool          `json:"allDay,omitempty" bson:"all_day,omitempty"`
	ExtendedProps   map[string]any `json:"extendedProps,omitempty" bson:"extended_props,omitempty"`
	BackgroundColor string         `json:"backgroundColor,omitempty" bson:"background_color,omitempty"`
	BorderColor     string         `json:"borderColor,omitempty" bson:"border_color,omitempty"`
	TextColor       string         `json:"textColor,omitempty" bson:"text_color,omitempty"`
	Display         string         `json:"display,omitempty" bson:"display,omitempty"`
	Editable        *bool          `json:"editable,omitempty" bson:"editable,omitempty"`
	GroupID         string         `json:"groupId,omitempty" bson:"group_id,omitempty"`
	URL             string         `json:"url,omitempty" bson:"url,omitempty"`
}
