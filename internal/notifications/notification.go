package notifications

import (
	"context"
	"fmt"
	"time"
)

// Content is a rendered email ready for delivery.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// Notification is a tagged variant; each kind renders its own content.
type Notification interface {
	Kind() string
	Render() Content
}

// Notifier delivers a notification to one recipient. Callers treat failures
// as log-only: a failed send never fails the enclosing business operation.
type Notifier interface {
	Send(ctx context.Context, recipient string, n Notification) error
}

// SlotAvailable tells a waiting-list entrant that an appointment slot opened
// up and a hold is running in their favor.
type SlotAvailable struct {
	LegalServiceTitle string
	EventDate         string
	HoldDuration      time.Duration
}

func (SlotAvailable) Kind() string { return "slot_available" }

func (n SlotAvailable) Render() Content {
	minutes := int(n.HoldDuration.Minutes())
	return Content{
		Subject: "Appuntamento disponibile",
		HTML: fmt.Sprintf(
			"<p>Un appuntamento per il servizio <strong>%s</strong> è ora disponibile in data <strong>%s</strong>.<br>"+
				"Puoi confermare l'appuntamento dal tuo profilo entro i prossimi %d minuti.</p>",
			n.LegalServiceTitle, n.EventDate, minutes,
		),
		Text: fmt.Sprintf(
			"An appointment slot for %s has become available on %s. "+
				"Please confirm it from your profile within the next %d minutes.",
			n.LegalServiceTitle, n.EventDate, minutes,
		),
	}
}

// RemovedFromList tells an entrant their hold expired and they were dropped
// from the waiting list.
type RemovedFromList struct {
	LegalServiceTitle string
}

func (RemovedFromList) Kind() string { return "removed_from_list" }

func (n RemovedFromList) Render() Content {
	return Content{
		Subject: "Rimozione dalla lista d'attesa",
		HTML: fmt.Sprintf(
			"<p>Il tempo per confermare l'appuntamento per il servizio <strong>%s</strong> è scaduto "+
				"e sei stato rimosso dalla lista d'attesa.</p>",
			n.LegalServiceTitle,
		),
		Text: fmt.Sprintf(
			"The time to confirm your appointment for %s has expired and you have been removed from the waiting list.",
			n.LegalServiceTitle,
		),
	}
}
