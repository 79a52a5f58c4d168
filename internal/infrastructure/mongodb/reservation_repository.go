package mongodb

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

// ReservationRepository persists the reservation ledger. Replace is the only
// write path: a processing order's rows are always rewritten as a whole.
type ReservationRepository struct {
	client     *mdb.Client
	collection *mongo.Collection
}

func NewReservationRepository(client *mdb.Client) *ReservationRepository {
	repo := &ReservationRepository{
		client:     client,
		collection: client.Collection("stock_reservations"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ReservationRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		// one ledger row per position and order
		{
			Keys: bson.D{
				{Key: "agency", Value: 1},
				{Key: "order_type", Value: 1},
				{Key: "order_id", Value: 1},
				{Key: "sku", Value: 1},
				{Key: "size", Value: 1},
				{Key: "barcode", Value: 1},
				{Key: "goods_type", Value: 1},
				{Key: "state", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		// ledger rewrite and per-order lookup
		{Keys: bson.D{
			{Key: "agency", Value: 1},
			{Key: "order_type", Value: 1},
			{Key: "order_id", Value: 1},
			{Key: "state", Value: 1},
		}},
		// reserved quantity sums
		{Keys: bson.D{
			{Key: "agency", Value: 1},
			{Key: "sku", Value: 1},
			{Key: "size", Value: 1},
			{Key: "state", Value: 1},
		}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Replace rewrites one order's ledger rows inside a single transaction so
// readers never observe a half-deleted ledger. Rows must already be
// aggregated; an empty set just clears the order's reservations.
func (r *ReservationRepository) Replace(ctx context.Context, agency, orderID string, rows []domain.StockRow) error {
	return r.client.InTransaction(ctx, func(txCtx context.Context) error {
		filter := bson.M{
			"agency":     agency,
			"order_type": domain.OrderTypeProcessing,
			"order_id":   orderID,
			"state":      domain.ReservationStateProcessing,
		}
		if _, err := r.collection.DeleteMany(txCtx, filter); err != nil {
			return fmt.Errorf("failed to clear reservations: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		now := time.Now().UTC()
		docs := make([]interface{}, 0, len(rows))
		for _, row := range rows {
			docs = append(docs, domain.Reservation{
				Agency:    agency,
				OrderType: domain.OrderTypeProcessing,
				OrderID:   orderID,
				SKU:       row.Article,
				Size:      row.Size,
				Barcode:   row.Barcode,
				GoodsType: row.GoodsType,
				Qty:       row.Qty,
				State:     domain.ReservationStateProcessing,
				CreatedAt: now,
			})
		}
		if _, err := r.collection.InsertMany(txCtx, docs); err != nil {
			return fmt.Errorf("failed to insert reservations: %w", err)
		}
		return nil
	})
}

// FindActive returns every live ledger row for an agency
func (r *ReservationRepository) FindActive(ctx context.Context, agency string) ([]domain.Reservation, error) {
	filter := bson.M{
		"agency": agency,
		"state":  domain.ReservationStateProcessing,
	}
	opts := options.Find().SetSort(mdb.SortAsc("sku", "size"))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []domain.Reservation
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return rows, nil
}

// FindByOrder returns one order's live ledger rows
func (r *ReservationRepository) FindByOrder(ctx context.Context, agency, orderID string) ([]domain.Reservation, error) {
	filter := bson.M{
		"agency":     agency,
		"order_type": domain.OrderTypeProcessing,
		"order_id":   orderID,
		"state":      domain.ReservationStateProcessing,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []domain.Reservation
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return rows, nil
}

// ReservedQty sums reserved stock for a position across all other orders.
// An untyped ledger row counts against every goods type; a concrete goodsType
// therefore matches its own rows plus the untyped ones.
func (r *ReservationRepository) ReservedQty(ctx context.Context, agency, sku, size, goodsType, excludeOrderID string) (int, error) {
	match := bson.M{
		"agency": agency,
		"sku":    sku,
		"size":   size,
		"state":  domain.ReservationStateProcessing,
	}
	if excludeOrderID != "" {
		match["order_id"] = bson.M{"$ne": excludeOrderID}
	}
	if goodsType != "" {
		match["$or"] = bson.A{
			bson.M{"goods_type": goodsType},
			bson.M{"goods_type": bson.M{"$in": bson.A{"", nil}}},
		}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$qty"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var out []struct {
		Total int `bson:"total"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, fmt.Errorf("failed to decode reservation sum: %w", err)
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Total, nil
}
