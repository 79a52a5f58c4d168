package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderType partitions the event stream. Each order lives in exactly one partition.
type OrderType string

const (
	OrderTypeReceiving  OrderType = "receiving"
	OrderTypeProcessing OrderType = "processing"
	OrderTypeStockMove  OrderType = "stock_move"
	OrderTypePacking    OrderType = "packing"
)

// IsValid checks if the order type is valid
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeReceiving, OrderTypeProcessing, OrderTypeStockMove, OrderTypePacking:
		return true
	default:
		return false
	}
}

// Action classifies what an event records
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionStatus  Action = "status"
	ActionComment Action = "comment"
	ActionUpload  Action = "upload"
)

// IsValid checks if the action is valid
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionStatus, ActionComment, ActionUpload:
		return true
	default:
		return false
	}
}

// Payload is the free-form structured body of an event. Its schema varies by
// order type and by the point in the workflow that produced it; readers must
// tolerate missing and extra keys.
type Payload map[string]any

// OrderEvent is a single immutable entry in the per-order event log.
// Events for one (orderType, orderId) pair form a totally ordered append-only
// sequence; created_at (with the ObjectID as tiebreak) is the only ordering key.
type OrderEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderType OrderType          `bson:"order_type" json:"order_type"`
	OrderID   string             `bson:"order_id" json:"order_id"`
	Action    Action             `bson:"action" json:"action"`
	Payload   Payload            `bson:"payload" json:"payload"`
	Agency    string             `bson:"agency,omitempty" json:"agency,omitempty"`
	User      string             `bson:"user,omitempty" json:"user,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Str returns a string payload field, tolerating absent or mistyped values
func (p Payload) Str(key string) string {
	if p == nil {
		return ""
	}
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Int returns an integer payload field. JSON and BSON decoding produce
// float64/int32/int64 depending on the source, so all are accepted.
func (p Payload) Int(key string) int {
	if p == nil {
		return 0
	}
	switch v := p[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Bool returns a boolean payload field
func (p Payload) Bool(key string) bool {
	if p == nil {
		return false
	}
	if v, ok := p[key].(bool); ok {
		return v
	}
	return false
}

// Has reports whether the key is present with a non-nil value
func (p Payload) Has(key string) bool {
	if p == nil {
		return false
	}
	v, ok := p[key]
	return ok && v != nil
}

// Map returns a nested map payload field
func (p Payload) Map(key string) Payload {
	if p == nil {
		return nil
	}
	switch v := p[key].(type) {
	case map[string]any:
		return Payload(v)
	case Payload:
		return v
	default:
		return nil
	}
}

// Slice returns a list payload field
func (p Payload) Slice(key string) []any {
	if p == nil {
		return nil
	}
	if v, ok := p[key].([]any); ok {
		return v
	}
	return nil
}
