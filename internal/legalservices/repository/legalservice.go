package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	lserrors "lexsched/internal/legalservices/errors"
	"lexsched/pkg/config"
	"lexsched/pkg/model"
)

const CollectionName = "legal_service"

type LegalServiceRepository interface {
	Insert(ctx context.Context, service *model.LegalService) error
	FindAll(ctx context.Context) ([]*model.LegalService, error)
	DeleteByID(ctx context.Context, id string) (*model.LegalService, error)
}

type mongoLegalServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLegalServiceRepository(cfg *config.Config) LegalServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLegalServiceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoLegalServiceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoLegalServiceRepository) Insert(ctx context.Context, service *model.LegalService) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, service); err != nil {
		return fmt.Errorf("failed to insert legal service: %w", err)
	}
	return nil
}

func (r *mongoLegalServiceRepository) FindAll(ctx context.Context) ([]*model.LegalService, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find legal services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.LegalService
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode legal services: %w", err)
	}

	return services, nil
}

func (r *mongoLegalServiceRepository) DeleteByID(ctx context.Context, id string) (*model.LegalService, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.StoreWriteTimeout)
	defer cancel()

	var service model.LegalService
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, lserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete legal service: %w", err)
	}

	return &service, nil
}
