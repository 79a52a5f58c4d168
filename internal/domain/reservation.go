package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReservationState marks rows belonging to a live processing order
const ReservationStateProcessing = "processing"

// Reservation is one ledger row claiming stock for a processing order.
// Key fields keep their empty values in storage so equality filters on
// size, barcode and goods_type match size-less rows too.
type Reservation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Agency    string             `bson:"agency" json:"agency"`
	OrderType OrderType          `bson:"order_type" json:"order_type"`
	OrderID   string             `bson:"order_id" json:"order_id"`
	SKU       string             `bson:"sku" json:"sku"`
	Size      string             `bson:"size" json:"size"`
	Barcode   string             `bson:"barcode" json:"barcode"`
	GoodsType string             `bson:"goods_type" json:"goods_type"`
	Qty       int                `bson:"qty" json:"qty"`
	State     string             `bson:"state" json:"state"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// AggregateRows collapses incoming reservation requests by
// (sku, size, barcode, goods_type), summing quantities. Positions that sum to
// zero or below are dropped rather than stored.
func AggregateRows(rows []StockRow) []StockRow {
	type rowKey struct {
		sku, size, barcode, goodsType string
	}
	sums := make(map[rowKey]int)
	order := make([]rowKey, 0, len(rows))
	for _, r := range rows {
		key := rowKey{r.Article, r.Size, r.Barcode, r.GoodsType}
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += r.Qty
	}

	out := make([]StockRow, 0, len(order))
	for _, key := range order {
		qty := sums[key]
		if qty <= 0 {
			continue
		}
		out = append(out, StockRow{
			Article:   key.sku,
			Size:      key.size,
			Barcode:   key.barcode,
			GoodsType: key.goodsType,
			Qty:       qty,
		})
	}
	return out
}

// ReservedQty sums reserved stock across all orders other than
// excludeOrderID. An empty goodsType matches every row for the sku and size.
// A concrete goodsType matches its own rows plus the untyped rows: a
// reservation without a goods type acts as a wildcard consumed by every typed
// query.
func ReservedQty(rows []Reservation, sku, size, goodsType, excludeOrderID string) int {
	total := 0
	for _, r := range rows {
		if r.OrderID == excludeOrderID {
			continue
		}
		if r.SKU != sku || r.Size != size {
			continue
		}
		if goodsType != "" && r.GoodsType != "" && r.GoodsType != goodsType {
			continue
		}
		total += r.Qty
	}
	return total
}
