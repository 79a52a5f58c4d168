package projections

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
)

// OrderStatusProjection is the materialized current status of one order,
// refreshed on every append. The event log stays the source of truth; this
// record only spares dashboards a full history rescan.
type OrderStatusProjection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderType   domain.OrderType   `bson:"order_type" json:"order_type"`
	OrderID     string             `bson:"order_id" json:"order_id"`
	Agency      string             `bson:"agency" json:"agency"`
	StatusCode  string             `bson:"status_code" json:"status_code"`
	StatusLabel string             `bson:"status_label" json:"status_label"`
	Bucket      domain.Bucket      `bson:"bucket" json:"bucket"`
	EventCount  int                `bson:"event_count" json:"event_count"`
	LastEventAt time.Time          `bson:"last_event_at" json:"last_event_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// StatusFilter narrows dashboard listings
type StatusFilter struct {
	Agency    string
	OrderType domain.OrderType
	Bucket    domain.Bucket
}
