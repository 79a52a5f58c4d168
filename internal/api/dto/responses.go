package dto

import (
	"time"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
)

// EventResponse is one event in a history listing
type EventResponse struct {
	ID        string         `json:"id"`
	OrderType string         `json:"order_type"`
	OrderID   string         `json:"order_id"`
	Action    string         `json:"action"`
	Payload   domain.Payload `json:"payload"`
	Agency    string         `json:"agency"`
	User      string         `json:"user,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// HistoryResponse is an order's full stream plus its derived status
type HistoryResponse struct {
	OrderID string            `json:"order_id"`
	Status  domain.StatusInfo `json:"status"`
	Events  []EventResponse   `json:"events"`
}

func NewHistoryResponse(orderID string, status domain.StatusInfo, events []domain.OrderEvent) HistoryResponse {
	out := HistoryResponse{
		OrderID: orderID,
		Status:  status,
		Events:  make([]EventResponse, 0, len(events)),
	}
	for _, e := range events {
		out.Events = append(out.Events, EventResponse{
			ID:        e.ID.Hex(),
			OrderType: string(e.OrderType),
			OrderID:   e.OrderID,
			Action:    string(e.Action),
			Payload:   e.Payload,
			Agency:    e.Agency,
			User:      e.User,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// AvailabilityResponse is the agency's reservable stock table
type AvailabilityResponse struct {
	Agency string                   `json:"agency"`
	Rows   []domain.AvailabilityRow `json:"rows"`
}
