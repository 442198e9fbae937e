package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	wlerrors "lexsched/internal/waitinglist/errors"
	"lexsched/pkg/config"
	"lexsched/pkg/model"
)

const CollectionName = "waiting_list"

// WaitingListRepository stores waiting-list entries. DeleteByID is the
// linearization point of the confirm/expiry race: exactly one caller gets the
// entry back, the other gets ErrNotFound.
type WaitingListRepository interface {
	Insert(ctx context.Context, entry *model.WaitingListEntry) error
	CountForService(ctx context.Context, legalServiceID string) (int64, error)
	PeekFirst(ctx context.Context, legalServiceID string) (*model.WaitingListEntry, error)
	FindByID(ctx context.Context, id string) (*model.WaitingListEntry, error)
	FindByUser(ctx context.Context, userID string) ([]*model.WaitingListEntry, error)
	FindAll(ctx context.Context) ([]*model.WaitingListEntry, error)
	DeleteByID(ctx context.Context, id string) (*model.WaitingListEntry, error)
	UpdateEventBinding(ctx context.Context, id, eventID, eventDate string) error
}

type mongoWaitingListRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoWaitingListRepository(cfg *config.Config) WaitingListRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWaitingListRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoWaitingListRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoWaitingListRepository) Insert(ctx context.Context, entry *model.WaitingListEntry) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert waiting list entry: %w", err)
	}
	return nil
}

func (r *mongoWaitingListRepository) CountForService(ctx context.Context, legalServiceID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"appointment.legal_service_id": legalServiceID})
	if err != nil {
		return 0, fmt.Errorf("failed to count waiting list entries: %w", err)
	}
	return count, nil
}

// PeekFirst returns the earliest entry for a legal service without removing
// it. Entries sharing a timestamp are broken by id so the order is stable.
func (r *mongoWaitingListRepository) PeekFirst(ctx context.Context, legalServiceID string) (*model.WaitingListEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "added_on", Value: 1}, {Key: "_id", Value: 1}})

	var entry model.WaitingListEntry
	err := r.collection.FindOne(ctx, bson.M{"appointment.legal_service_id": legalServiceID}, opts).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wlerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to peek waiting list: %w", err)
	}

	return &entry, nil
}

func (r *mongoWaitingListRepository) FindByID(ctx context.Context, id string) (*model.WaitingListEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	var entry model.WaitingListEntry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wlerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find waiting list entry: %w", err)
	}

	return &entry, nil
}

func (r *mongoWaitingListRepository) FindByUser(ctx context.Context, userID string) ([]*model.WaitingListEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"appointment.user.id": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to find waiting list entries by user: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.WaitingListEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waiting list entries: %w", err)
	}

	return entries, nil
}

func (r *mongoWaitingListRepository) FindAll(ctx context.Context) ([]*model.WaitingListEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "added_on", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find waiting list entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.WaitingListEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waiting list entries: %w", err)
	}

	return entries, nil
}

// DeleteByID removes an entry atomically. ErrNotFound means another caller
// removed it first; the confirm and expiry paths both depend on that signal.
func (r *mongoWaitingListRepository) DeleteByID(ctx context.Context, id string) (*model.WaitingListEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	var entry model.WaitingListEntry
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wlerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete waiting list entry: %w", err)
	}

	return &entry, nil
}

// UpdateEventBinding points the embedded appointment at a freed calendar
// event while a hold is pending.
func (r *mongoWaitingListRepository) UpdateEventBinding(ctx context.Context, id, eventID, eventDate string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"appointment.event_id":   eventID,
		"appointment.event_date": eventDate,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update event binding: %w", err)
	}
	if result.MatchedCount == 0 {
		return wlerrors.ErrNotFound
	}

	return nil
}
