package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	mdb "github.com/fulfillment-platform/warehouse-core/pkg/mongodb"
)

// EventRepository persists the append-only order event log. Events are never
// updated; the only delete path is purging a draft order's whole stream.
type EventRepository struct {
	collection *mongo.Collection
}

func NewEventRepository(client *mdb.Client) *EventRepository {
	repo := &EventRepository{
		collection: client.Collection("order_events"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *EventRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		// history reads for one order
		{Keys: bson.D{
			{Key: "order_type", Value: 1},
			{Key: "order_id", Value: 1},
			{Key: "created_at", Value: 1},
		}},
		// agency-wide scans for availability and occupancy
		{Keys: bson.D{
			{Key: "agency", Value: 1},
			{Key: "order_type", Value: 1},
			{Key: "created_at", Value: 1},
		}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Append inserts one event. The caller's context decides whether the insert
// joins an outer transaction.
func (r *EventRepository) Append(ctx context.Context, event *domain.OrderEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// History returns one order's events ascending by creation order. ObjectID
// breaks ties between events sharing a created_at timestamp.
func (r *EventRepository) History(ctx context.Context, orderType domain.OrderType, orderID string) ([]domain.OrderEvent, error) {
	filter := bson.M{
		"order_type": orderType,
		"order_id":   orderID,
	}
	opts := options.Find().SetSort(mdb.SortAsc("created_at", "_id"))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer cursor.Close(ctx)

	var events []domain.OrderEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	return events, nil
}

// FindByAgencyAndType loads every event of one order type for an agency,
// ascending. Availability and occupancy folds consume this.
func (r *EventRepository) FindByAgencyAndType(ctx context.Context, agency string, orderType domain.OrderType) ([]domain.OrderEvent, error) {
	filter := bson.M{
		"agency":     agency,
		"order_type": orderType,
	}
	opts := options.Find().SetSort(mdb.SortAsc("created_at", "_id"))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []domain.OrderEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

// ListOrderIDs returns the distinct order ids of one type for an agency
func (r *EventRepository) ListOrderIDs(ctx context.Context, agency string, orderType domain.OrderType) ([]string, error) {
	filter := bson.M{
		"agency":     agency,
		"order_type": orderType,
	}
	raw, err := r.collection.Distinct(ctx, "order_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list order ids: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Purge removes an order's entire event stream
func (r *EventRepository) Purge(ctx context.Context, orderType domain.OrderType, orderID string) (int64, error) {
	filter := bson.M{
		"order_type": orderType,
		"order_id":   orderID,
	}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to purge events: %w", err)
	}
	return result.DeletedCount, nil
}
