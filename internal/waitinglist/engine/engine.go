package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"lexsched/internal/documents"
	"lexsched/internal/notifications"
	wlerrors "lexsched/internal/waitinglist/errors"
	"lexsched/internal/waitinglist/repository"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/kafka"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

const (
	EventSlotOffered = "waitinglist.slot_offered.v1"
	EventHoldExpired = "waitinglist.hold_expired.v1"
	EventConfirmed   = "waitinglist.confirmed.v1"
)

// EventMarker is the slice of the availability tracker the engine needs when
// a freed event finds no taker.
type EventMarker interface {
	MarkBookable(ctx context.Context, eventID string) (*model.CalendarEvent, error)
}

// Publisher emits lifecycle events. A nil Publisher disables publishing.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// hold tracks one pending offer. cancel wakes the waiting cycle early when
// the entrant confirms; it is advisory only, the entry delete decides the
// race.
type hold struct {
	entryID string
	cancel  context.CancelFunc
}

// Engine runs the waiting-list reassignment cycle: when an appointment is
// cancelled, the earliest entrant for that legal service is offered the freed
// event and given a hold window to confirm. An unconfirmed hold expires, the
// entrant is dropped from the list, and the cycle rolls over to the next
// entrant until someone confirms or the list is empty.
//
// Holds are volatile in-process state; a restart forfeits pending holds and
// the affected event stays booked-looking until the next cancellation.
type Engine struct {
	entries      repository.WaitingListRepository
	files        documents.Store
	events       EventMarker
	notifier     notifications.Notifier
	producer     Publisher
	holdDuration time.Duration
	log          *logger.Logger

	mu    sync.Mutex
	holds map[string]*hold
}

func NewEngine(
	entries repository.WaitingListRepository,
	files documents.Store,
	events EventMarker,
	notifier notifications.Notifier,
	producer Publisher,
	holdDuration time.Duration,
	log *logger.Logger,
) *Engine {
	return &Engine{
		entries:      entries,
		files:        files,
		events:       events,
		notifier:     notifier,
		producer:     producer,
		holdDuration: holdDuration,
		log:          log,
		holds:        make(map[string]*hold),
	}
}

type lifecyclePayload struct {
	EntryID        string `json:"entryId"`
	LegalServiceID string `json:"legalServiceId"`
	EventID        string `json:"eventId"`
	UserID         string `json:"userId,omitempty"`
}

// ReassignAfterCancellation offers the freed event to waiting entrants, one
// at a time in arrival order, and blocks until the cycle resolves. Callers
// that must not wait out the hold window run it in a goroutine.
func (e *Engine) ReassignAfterCancellation(ctx context.Context, legalServiceID, legalServiceTitle, eventID, eventDate string) error {
	for {
		entry, err := e.entries.PeekFirst(ctx, legalServiceID)
		if err != nil {
			if errors.Is(err, wlerrors.ErrNotFound) {
				return e.releaseEvent(ctx, legalServiceID, eventID)
			}
			return err
		}

		err = e.entries.UpdateEventBinding(ctx, entry.ID, eventID, eventDate)
		if err != nil {
			if errors.Is(err, wlerrors.ErrNotFound) {
				// Entry left the list between peek and bind; take the next one.
				continue
			}
			return err
		}

		h, holdCtx, ok := e.registerHold(legalServiceID, entry.ID)
		if !ok {
			e.log.Warn("Refusing reassignment: a hold is already active for this legal service",
				"legal_service_id", legalServiceID, "event_id", eventID)
			return nil
		}

		e.offerSlot(ctx, entry, legalServiceTitle, eventDate)
		e.publish(ctx, EventSlotOffered, legalServiceID, lifecyclePayload{
			EntryID:        entry.ID,
			LegalServiceID: legalServiceID,
			EventID:        eventID,
			UserID:         entry.Appointment.User.ID,
		})

		confirmed, err := e.waitOut(holdCtx, h, legalServiceID, eventID)
		if err != nil {
			return err
		}
		if confirmed {
			return nil
		}
		// Hold expired and the entrant was dropped; offer the event to the
		// next entrant.
	}
}

// releaseEvent flips the freed event back to bookable when nobody is waiting.
func (e *Engine) releaseEvent(ctx context.Context, legalServiceID, eventID string) error {
	if _, err := e.events.MarkBookable(ctx, eventID); err != nil {
		return err
	}
	e.log.Info("Waiting list empty, event released",
		"legal_service_id", legalServiceID, "event_id", eventID)
	return nil
}

// registerHold installs a hold for the legal service unless one is already
// active. The hold context outlives the caller's: confirmation may arrive on
// any request.
func (e *Engine) registerHold(legalServiceID, entryID string) (*hold, context.Context, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, active := e.holds[legalServiceID]; active {
		return nil, nil, false
	}

	holdCtx, cancel := context.WithCancel(context.Background())
	h := &hold{entryID: entryID, cancel: cancel}
	e.holds[legalServiceID] = h
	return h, holdCtx, true
}

// deregister removes the hold only if it is still ours; Confirm may already
// have swapped it out.
func (e *Engine) deregister(legalServiceID string, h *hold) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.holds[legalServiceID] == h {
		delete(e.holds, legalServiceID)
	}
}

// offerSlot emails the candidate. A failed send is logged and the hold still
// runs: the entrant may learn of the offer elsewhere, and the expiry path
// keeps the list moving either way.
func (e *Engine) offerSlot(ctx context.Context, entry *model.WaitingListEntry, legalServiceTitle, eventDate string) {
	n := notifications.SlotAvailable{
		LegalServiceTitle: legalServiceTitle,
		EventDate:         eventDate,
		HoldDuration:      e.holdDuration,
	}
	if err := e.notifier.Send(ctx, entry.Appointment.User.Email, n); err != nil {
		e.log.Error("Failed to send slot-available notification",
			"entry_id", entry.ID, "recipient", entry.Appointment.User.Email, "error", err)
		return
	}
	e.log.Info("Slot offered to waiting list candidate",
		"entry_id", entry.ID, "recipient", entry.Appointment.User.Email)
}

// waitOut blocks until the hold is confirmed or the window lapses. It reports
// whether the cycle is over (confirmed) or should roll over to the next
// entrant (expired).
func (e *Engine) waitOut(holdCtx context.Context, h *hold, legalServiceID, eventID string) (bool, error) {
	timer := time.NewTimer(e.holdDuration)
	defer timer.Stop()

	select {
	case <-holdCtx.Done():
		// Confirm cancelled the hold and already removed the entry.
		e.log.Info("Hold confirmed", "legal_service_id", legalServiceID, "entry_id", h.entryID)
		return true, nil
	case <-timer.C:
	}

	e.deregister(legalServiceID, h)

	// The request context that started the cycle is long gone by now.
	ctx := context.Background()

	entry, err := e.entries.FindByID(ctx, h.entryID)
	if err != nil {
		if errors.Is(err, wlerrors.ErrNotFound) {
			e.log.Info("Hold resolved concurrently, entry already gone",
				"legal_service_id", legalServiceID, "entry_id", h.entryID)
			return true, nil
		}
		return false, err
	}

	// The delete is the arbiter: losing it means a confirmation landed
	// between the timer firing and now.
	removed, err := e.entries.DeleteByID(ctx, entry.ID)
	if err != nil {
		if errors.Is(err, wlerrors.ErrNotFound) {
			e.log.Info("Hold confirmed during expiry", "legal_service_id", legalServiceID, "entry_id", entry.ID)
			return true, nil
		}
		return false, err
	}

	e.cleanupFiles(ctx, removed)

	n := notifications.RemovedFromList{LegalServiceTitle: removed.Appointment.LegalServiceTitle}
	if err := e.notifier.Send(ctx, removed.Appointment.User.Email, n); err != nil {
		e.log.Error("Failed to send removed-from-list notification",
			"entry_id", removed.ID, "recipient", removed.Appointment.User.Email, "error", err)
	}

	e.publish(ctx, EventHoldExpired, legalServiceID, lifecyclePayload{
		EntryID:        removed.ID,
		LegalServiceID: legalServiceID,
		EventID:        eventID,
		UserID:         removed.Appointment.User.ID,
	})

	e.log.Info("Hold expired, entry dropped from waiting list",
		"legal_service_id", legalServiceID, "entry_id", removed.ID)
	return false, nil
}

// Confirm resolves the active hold for a legal service in the entrant's
// favor: the held entry leaves the list and the offered event stays theirs.
// Losing the entry delete means the hold expired first.
func (e *Engine) Confirm(ctx context.Context, legalServiceID string) (*model.WaitingListEntry, error) {
	e.mu.Lock()
	h, active := e.holds[legalServiceID]
	if active {
		delete(e.holds, legalServiceID)
	}
	e.mu.Unlock()

	if !active {
		return nil, apperrors.NotFound("Active hold")
	}

	entry, err := e.entries.DeleteByID(ctx, h.entryID)
	if err != nil {
		h.cancel()
		if errors.Is(err, wlerrors.ErrNotFound) {
			return nil, apperrors.Conflict("The hold has already expired")
		}
		return nil, apperrors.Internal("Failed to confirm waiting list entry", err)
	}

	h.cancel()
	e.cleanupFiles(ctx, entry)

	e.publish(ctx, EventConfirmed, legalServiceID, lifecyclePayload{
		EntryID:        entry.ID,
		LegalServiceID: legalServiceID,
		EventID:        entry.Appointment.EventID,
		UserID:         entry.Appointment.User.ID,
	})

	e.log.Info("Waiting list entry confirmed",
		"legal_service_id", legalServiceID, "entry_id", entry.ID)
	return entry, nil
}

func (e *Engine) cleanupFiles(ctx context.Context, entry *model.WaitingListEntry) {
	for _, file := range entry.Appointment.FileMetadata {
		if err := e.files.DeleteIfExists(ctx, file.FileURL); err != nil {
			e.log.Error("Failed to delete waiting list entry document",
				"entry_id", entry.ID, "file_url", file.FileURL, "error", err)
		}
	}
}

func (e *Engine) publish(ctx context.Context, eventType, legalServiceID string, payload lifecyclePayload) {
	if e.producer == nil {
		return
	}

	msg, err := kafka.NewEvent(eventType, legalServiceID, payload)
	if err != nil {
		e.log.Error("Failed to build lifecycle event", "event_type", eventType, "error", err)
		return
	}
	if err := e.producer.Publish(ctx, msg); err != nil {
		e.log.Error("Failed to publish lifecycle event", "event_type", eventType, "error", err)
	}
}
