package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/impairment-ledger/internal/domain/history"
)

const (
	// HistoryCollectionName is the name of the posting history collection in MongoDB
	HistoryCollectionName = "impairment_postings"
)

// HistoryRepository implements the history.Repository interface for MongoDB
type HistoryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewHistoryRepository creates a new MongoDB posting history repository
func NewHistoryRepository(logger *slog.Logger, db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique and listing indexes of the collection.
// Each event and each calculation is projected at most once.
func (r *HistoryRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(HistoryCollectionName)

	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "calculation_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "posted_at", Value: -1}}},
	}

	if _, err := collection.Indexes().CreateMany(ctx, models); err != nil {
		r.logger.Error("Failed to create posting history indexes", "error", err)
		return fmt.Errorf("failed to create posting history indexes: %w", err)
	}

	return nil
}

// Create stores a projected record.
// Returns ErrDuplicateRecord if the event or its calculation was already projected.
func (r *HistoryRepository) Create(ctx context.Context, record *history.Record) error {
	collection := r.db.Collection(HistoryCollectionName)

	_, err := collection.InsertOne(ctx, record)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return history.ErrDuplicateRecord{EventID: record.EventID}
		}
		r.logger.Error("Failed to create posting history record",
			"calculation_id", record.CalculationID.String(),
			"error", err)
		return fmt.Errorf("failed to create posting history record: %w", err)
	}

	return nil
}

// GetByCalculationID retrieves the record of a posted calculation.
// Returns ErrRecordNotFound if the calculation has not been projected yet.
func (r *HistoryRepository) GetByCalculationID(ctx context.Context, calculationID uuid.UUID) (*history.Record, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"calculation_id": calculationID}
	var record history.Record
	err := collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, history.ErrRecordNotFound{CalculationID: calculationID}
		}
		r.logger.Error("Failed to get posting history record",
			"calculation_id", calculationID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get posting history record: %w", err)
	}

	return &record, nil
}

// ListByTenant retrieves a page of a tenant's records, newest posting first
func (r *HistoryRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*history.Record, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"tenant_id": tenantID}
	opts := options.Find().
		SetSort(bson.D{{Key: "posted_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list posting history",
			"tenant_id", tenantID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list posting history: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*history.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode posting history",
			"tenant_id", tenantID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode posting history: %w", err)
	}

	return records, nil
}

// CountByTenant counts a tenant's projected records
func (r *HistoryRepository) CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	collection := r.db.Collection(HistoryCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		r.logger.Error("Failed to count posting history",
			"tenant_id", tenantID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count posting history: %w", err)
	}

	return count, nil
}
