package projections

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	mdb "github.com/fulfillment-platform/warehouse-core/pkg/mongodb"
)

type OrderStatusRepository struct {
	collection *mongo.Collection
}

func NewOrderStatusRepository(client *mdb.Client) *OrderStatusRepository {
	repo := &OrderStatusRepository{
		collection: client.Collection("order_status_projections"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *OrderStatusRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "order_type", Value: 1},
				{Key: "order_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		// dashboard column queries
		{Keys: bson.D{
			{Key: "agency", Value: 1},
			{Key: "bucket", Value: 1},
			{Key: "last_event_at", Value: -1},
		}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Upsert writes the order's derived status, replacing any previous record
func (r *OrderStatusRepository) Upsert(ctx context.Context, p *OrderStatusProjection) error {
	p.UpdatedAt = time.Now().UTC()

	filter := bson.M{
		"order_type": p.OrderType,
		"order_id":   p.OrderID,
	}
	update := bson.M{"$set": bson.M{
		"agency":        p.Agency,
		"status_code":   p.StatusCode,
		"status_label":  p.StatusLabel,
		"bucket":        p.Bucket,
		"event_count":   p.EventCount,
		"last_event_at": p.LastEventAt,
		"updated_at":    p.UpdatedAt,
	}}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert status projection: %w", err)
	}
	return nil
}

// Find returns one order's projected status, nil when absent
func (r *OrderStatusRepository) Find(ctx context.Context, orderType domain.OrderType, orderID string) (*OrderStatusProjection, error) {
	filter := bson.M{
		"order_type": orderType,
		"order_id":   orderID,
	}

	var p OrderStatusProjection
	err := r.collection.FindOne(ctx, filter).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load status projection: %w", err)
	}
	return &p, nil
}

// List returns projections matching the filter, newest activity first
func (r *OrderStatusRepository) List(ctx context.Context, filter StatusFilter) ([]OrderStatusProjection, error) {
	query := bson.M{}
	if filter.Agency != "" {
		query["agency"] = filter.Agency
	}
	if filter.OrderType != "" {
		query["order_type"] = filter.OrderType
	}
	if filter.Bucket != "" {
		query["bucket"] = filter.Bucket
	}

	opts := options.Find().SetSort(mdb.SortDesc("last_event_at"))
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list status projections: %w", err)
	}
	defer cursor.Close(ctx)

	var out []OrderStatusProjection
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode status projections: %w", err)
	}
	return out, nil
}

// Delete removes an order's projected status, used when a draft is purged
func (r *OrderStatusRepository) Delete(ctx context.Context, orderType domain.OrderType, orderID string) error {
	filter := bson.M{
		"order_type": orderType,
		"order_id":   orderID,
	}
	if _, err := r.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete status projection: %w", err)
	}
	return nil
}
