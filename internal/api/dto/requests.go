package dto

import "github.com/fulfillment-platform/warehouse-core/internal/domain"

// AppendEventRequest appends one event to an order's stream. The payload is
// stored without shape validation.
type AppendEventRequest struct {
	Action  string         `json:"action" binding:"required,oneof=create update status comment upload"`
	Payload domain.Payload `json:"payload"`
	Agency  string         `json:"agency" binding:"required"`
	User    string         `json:"user"`
}

// ReservationRowRequest is one requested reservation position
type ReservationRowRequest struct {
	Article   string `json:"article" binding:"required"`
	Size      string `json:"size"`
	Barcode   string `json:"barcode"`
	GoodsType string `json:"goods_type"`
	Qty       int    `json:"qty" binding:"required"`
}

// ReplaceReservationsRequest rewrites a processing order's ledger rows
type ReplaceReservationsRequest struct {
	Agency string                  `json:"agency" binding:"required"`
	Rows   []ReservationRowRequest `json:"rows"`
}

// LocationRequest addresses one warehouse slot. Zone accepts canonical codes
// and free-text hints; it is normalized server side.
type LocationRequest struct {
	Zone    string `json:"zone" binding:"required"`
	Row     int    `json:"row" binding:"omitempty,min=0"`
	Section int    `json:"section" binding:"omitempty,min=0"`
	Tier    int    `json:"tier" binding:"omitempty,min=0"`
	Cell    int    `json:"cell" binding:"omitempty,min=0"`
}

// ToLocation converts the request into the domain value
func (r LocationRequest) ToLocation() domain.Location {
	return domain.Location{
		Zone:    domain.NormalizeZone(r.Zone),
		Row:     r.Row,
		Section: r.Section,
		Tier:    r.Tier,
		Cell:    r.Cell,
	}
}

// CreateMoveRequest starts a pallet move
type CreateMoveRequest struct {
	Agency     string          `json:"agency" binding:"required"`
	PalletCode string          `json:"pallet_code" binding:"required,pallet_code"`
	Target     LocationRequest `json:"target" binding:"required"`
	ActorID    string          `json:"actor_id" binding:"required"`
	ActorName  string          `json:"actor_name"`
}

// DriverRequest identifies the driver taking or completing a move
type DriverRequest struct {
	DriverID   string `json:"driver_id" binding:"required"`
	DriverName string `json:"driver_name"`
}
