package engine

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"lexsched/internal/notifications"
	wlerrors "lexsched/internal/waitinglist/errors"
	apperrors "lexsched/pkg/errors"
	"lexsched/pkg/kafka"
	"lexsched/pkg/logger"
	"lexsched/pkg/model"
)

// fakeRepo is an in-memory, mutex-guarded waiting list that preserves
// arrival order per legal service, mirroring the store's delete-once
// guarantee the engine relies on.
type fakeRepo struct {
	mu      sync.Mutex
	entries []*model.WaitingListEntry
}

func (f *fakeRepo) Insert(ctx context.Context, entry *model.WaitingListEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeRepo) CountForService(ctx context.Context, legalServiceID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, e := range f.entries {
		if e.Appointment.LegalServiceID == legalServiceID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) PeekFirst(ctx context.Context, legalServiceID string) (*model.WaitingListEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.Appointment.LegalServiceID == legalServiceID {
			snapshot := *e
			return &snapshot, nil
		}
	}
	return nil, wlerrors.ErrNotFound
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*model.WaitingListEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id {
			snapshot := *e
			return &snapshot, nil
		}
	}
	return nil, wlerrors.ErrNotFound
}

func (f *fakeRepo) FindByUser(ctx context.Context, userID string) ([]*model.WaitingListEntry, error) {
	return nil, nil
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]*model.WaitingListEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.WaitingListEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeRepo) DeleteByID(ctx context.Context, id string) (*model.WaitingListEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return e, nil
		}
	}
	return nil, wlerrors.ErrNotFound
}

func (f *fakeRepo) UpdateEventBinding(ctx context.Context, id, eventID, eventDate string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id {
			e.Appointment.EventID = eventID
			e.Appointment.EventDate = eventDate
			return nil
		}
	}
	return wlerrors.ErrNotFound
}

type sentMail struct {
	recipient string
	kind      string
}

type recordingNotifier struct {
	sends chan sentMail
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sends: make(chan sentMail, 16)}
}

func (r *recordingNotifier) Send(ctx context.Context, recipient string, n notifications.Notification) error {
	r.sends <- sentMail{recipient: recipient, kind: n.Kind()}
	return nil
}

func (r *recordingNotifier) next(t *testing.T) sentMail {
	t.Helper()
	select {
	case m := <-r.sends:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a notification")
		return sentMail{}
	}
}

func (r *recordingNotifier) assertNoneSent(t *testing.T) {
	t.Helper()
	select {
	case m := <-r.sends:
		t.Fatalf("unexpected notification %q to %q", m.kind, m.recipient)
	default:
	}
}

type recordingMarker struct {
	mu       sync.Mutex
	bookable []string
}

func (r *recordingMarker) MarkBookable(ctx context.Context, eventID string) (*model.CalendarEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookable = append(r.bookable, eventID)
	return &model.CalendarEvent{ID: eventID}, nil
}

func (r *recordingMarker) bookableEvents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.bookable))
	copy(out, r.bookable)
	return out
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (r *recordingPublisher) Publish(ctx context.Context, msg kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recordingPublisher) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, m := range r.msgs {
		if eventType, ok := m.Headers[kafka.HeaderEventType]; ok {
			out = append(out, eventType)
		}
	}
	return out
}

type discardStore struct{}

func (discardStore) DeleteIfExists(ctx context.Context, fileURL string) error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func waitingEntry(id, serviceID, email string) *model.WaitingListEntry {
	return &model.WaitingListEntry{
		ID: id,
		Appointment: model.Appointment{
			LegalServiceID:    serviceID,
			LegalServiceTitle: "Consulenza legale",
			User:              model.User{ID: "user-" + id, Email: email},
		},
		AddedOn: time.Now().UTC(),
	}
}

func newTestEngine(repo *fakeRepo, notifier *recordingNotifier, marker *recordingMarker, pub Publisher, hold time.Duration) *Engine {
	return NewEngine(repo, discardStore{}, marker, notifier, pub, hold, testLogger())
}

func TestReassign_EmptyListReleasesEvent(t *testing.T) {
	repo := &fakeRepo{}
	notifier := newRecordingNotifier()
	marker := &recordingMarker{}

	e := newTestEngine(repo, notifier, marker, nil, 10*time.Millisecond)

	if err := e.ReassignAfterCancellation(context.Background(), "svc-1", "Consulenza legale", "event-1", "2026-09-02T10:00:00Z"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := marker.bookableEvents(); len(got) != 1 || got[0] != "event-1" {
		t.Errorf("freed event must be marked bookable, got %v", got)
	}
	notifier.assertNoneSent(t)
}

func TestReassign_ExpiryDropsEntrantAndReleasesEvent(t *testing.T) {
	repo := &fakeRepo{}
	repo.Insert(context.Background(), waitingEntry("entry-a", "svc-1", "a@example.com"))
	notifier := newRecordingNotifier()
	marker := &recordingMarker{}
	pub := &recordingPublisher{}

	e := newTestEngine(repo, notifier, marker, pub, 10*time.Millisecond)

	if err := e.ReassignAfterCancellation(context.Background(), "svc-1", "Consulenza legale", "event-1", "2026-09-02T10:00:00Z"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if offer := notifier.next(t); offer.kind != "slot_available" || offer.recipient != "a@example.com" {
		t.Errorf("expected slot offer to a@example.com, got %+v", offer)
	}
	if removal := notifier.next(t); removal.kind != "removed_from_list" || removal.recipient != "a@example.com" {
		t.Errorf("expected removal notice to a@example.com, got %+v", removal)
	}

	if remaining, _ := repo.FindAll(context.Background()); len(remaining) != 0 {
		t.Errorf("expired entrant must leave the list, %d entries remain", len(remaining))
	}
	if got := marker.bookableEvents(); len(got) != 1 || got[0] != "event-1" {
		t.Errorf("event must be released after the list empties, got %v", got)
	}

	types := pub.eventTypes()
	if len(types) != 2 || types[0] != EventSlotOffered || types[1] != EventHoldExpired {
		t.Errorf("unexpected lifecycle events: %v", types)
	}
}

func TestReassign_ConfirmEndsCycle(t *testing.T) {
	repo := &fakeRepo{}
	repo.Insert(context.Background(), waitingEntry("entry-a", "svc-1", "a@example.com"))
	notifier := newRecordingNotifier()
	marker := &recordingMarker{}

	e := newTestEngine(repo, notifier, marker, nil, 5*time.Second)

	done := make(chan error, 1)
	go func() {
		done <- e.ReassignAfterCancellation(context.Background(), "svc-1", "Consulenza legale", "event-1", "2026-09-02T10:00:00Z")
	}()

	// The offer email means the hold is registered.
	if offer := notifier.next(t); offer.kind != "slot_available" {
		t.Fatalf("expected slot offer first, got %+v", offer)
	}

	confirmed, err := e.Confirm(context.Background(), "svc-1")
	if err != nil {
		t.Fatalf("unexpected confirm error: %v", err)
	}
	if confirmed.ID != "entry-a" {
		t.Errorf("unexpected confirmed entry: %+v", confirmed)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cycle must end cleanly after confirm, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cycle must resolve promptly after confirm, not wait out the hold")
	}

	notifier.assertNoneSent(t)
	if got := marker.bookableEvents(); len(got) != 0 {
		t.Errorf("confirmed event must stay booked, got MarkBookable for %v", got)
	}
	if remaining, _ := repo.FindAll(context.Background()); len(remaining) != 0 {
		t.Errorf("confirmed entry must leave the list, %d entries remain", len(remaining))
	}
}

func TestReassign_RollsOverUntilConfirmation(t *testing.T) {
	repo := &fakeRepo{}
	repo.Insert(context.Background(), waitingEntry("entry-a", "svc-1", "a@example.com"))
	repo.Insert(context.Background(), waitingEntry("entry-b", "svc-1", "b@example.com"))
	repo.Insert(context.Background(), waitingEntry("entry-c", "svc-1", "c@example.com"))
	notifier := newRecordingNotifier()
	marker := &recordingMarker{}

	e := newTestEngine(repo, notifier, marker, nil, 100*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- e.ReassignAfterCancellation(context.Background(), "svc-1", "Consulenza legale", "event-1", "2026-09-02T10:00:00Z")
	}()

	// A and B let their holds lapse.
	for _, want := range []sentMail{
		{recipient: "a@example.com", kind: "slot_available"},
		{recipient: "a@example.com", kind: "removed_from_list"},
		{recipient: "b@example.com", kind: "slot_available"},
		{recipient: "b@example.com", kind: "removed_from_list"},
		{recipient: "c@example.com", kind: "slot_available"},
	} {
		if got := notifier.next(t); got != want {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	}

	// C confirms within the window.
	confirmed, err := e.Confirm(context.Background(), "svc-1")
	if err != nil {
		t.Fatalf("unexpected confirm error: %v", err)
	}
	if confirmed.ID != "entry-c" {
		t.Errorf("expected entry-c to confirm, got %+v", confirmed)
	}
	if confirmed.Appointment.EventID != "event-1" {
		t.Errorf("confirmed entry must be bound to the freed event, got %q", confirmed.Appointment.EventID)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cycle must end cleanly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cycle must resolve after confirmation")
	}

	if got := marker.bookableEvents(); len(got) != 0 {
		t.Errorf("event must stay with the confirmed entrant, got MarkBookable for %v", got)
	}
	if remaining, _ := repo.FindAll(context.Background()); len(remaining) != 0 {
		t.Errorf("list must be empty after the cycle, %d entries remain", len(remaining))
	}
}

func TestReassign_RefusesSecondConcurrentHold(t *testing.T) {
	repo := &fakeRepo{}
	repo.Insert(context.Background(), waitingEntry("entry-a", "svc-1", "a@example.com"))
	notifier := newRecordingNotifier()
	marker := &recordingMarker{}

	e := newTestEngine(repo, notifier, marker, nil, 5*time.Second)

	if _, _, ok := e.registerHold("svc-1", "entry-other"); !ok {
		t.Fatal("failed to install the first hold")
	}

	if err := e.ReassignAfterCancellation(context.Background(), "svc-1", "Consulenza legale", "event-2", "2026-09-03T10:00:00Z"); err != nil {
		t.Fatalf("refusal must not be an error: %v", err)
	}

	notifier.assertNoneSent(t)
}

func TestConfirm_NoActiveHold(t *testing.T) {
	e := newTestEngine(&fakeRepo{}, newRecordingNotifier(), &recordingMarker{}, nil, time.Minute)

	_, err := e.Confirm(context.Background(), "svc-1")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestConfirm_LosesRaceToExpiry(t *testing.T) {
	// A hold whose entry is already gone stands in for an expiry that won
	// the delete.
	e := newTestEngine(&fakeRepo{}, newRecordingNotifier(), &recordingMarker{}, nil, time.Minute)

	if _, _, ok := e.registerHold("svc-1", "entry-gone"); !ok {
		t.Fatal("failed to install the hold")
	}

	_, err := e.Confirm(context.Background(), "svc-1")
	if !apperrors.IsCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}
