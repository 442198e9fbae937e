package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	eventserrors "lexsched/internal/events/errors"
	"lexsched/pkg/config"
	"lexsched/pkg/model"
)

const CollectionName = "event"

type EventRepository interface {
	Insert(ctx context.Context, event *model.CalendarEvent) error
	FindByID(ctx context.Context, id string) (*model.CalendarEvent, error)
	FindAll(ctx context.Context) ([]*model.CalendarEvent, error)
	FindByLegalService(ctx context.Context, legalServiceID string) ([]*model.CalendarEvent, error)
	Replace(ctx context.Context, id string, event *model.CalendarEvent) (*model.CalendarEvent, error)
	DeleteByID(ctx context.Context, id string) (*model.CalendarEvent, error)
}

type mongoEventRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEventRepository(cfg *config.Config) EventRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEventRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoEventRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoEventRepository) Insert(ctx context.Context, event *model.CalendarEvent) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *mongoEventRepository) FindByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	var event model.CalendarEvent
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, eventserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}

	return &event, nil
}

func (r *mongoEventRepository) FindAll(ctx context.Context) ([]*model.CalendarEvent, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*model.CalendarEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return events, nil
}

func (r *mongoEventRepository) FindByLegalService(ctx context.Context, legalServiceID string) ([]*model.CalendarEvent, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"extended_props.legalService": legalServiceID})
	if err != nil {
		return nil, fmt.Errorf("failed to find events by legal service: %w", err)
	}
	defer cursor.Close(ctx)

	var events []*model.CalendarEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	return events, nil
}

func (r *mongoEventRepository) Replace(ctx context.Context, id string, event *model.CalendarEvent) (*model.CalendarEvent, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id}, event)
	if err != nil {
		return nil, fmt.Errorf("failed to replace event: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, eventserrors.ErrNotFound
	}

	return event, nil
}

func (r *mongoEventRepository) DeleteByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	var event model.CalendarEvent
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, eventserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete event: %w", err)
	}

	return &event, nil
}
