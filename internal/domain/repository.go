package domain

import "context"

// EventRepository is the append-only order event log
type EventRepository interface {
	Append(ctx context.Context, event *OrderEvent) error
	History(ctx context.Context, orderType OrderType, orderID string) ([]OrderEvent, error)
	FindByAgencyAndType(ctx context.Context, agency string, orderType OrderType) ([]OrderEvent, error)
	ListOrderIDs(ctx context.Context, agency string, orderType OrderType) ([]string, error)
	Purge(ctx context.Context, orderType OrderType, orderID string) (int64, error)
}

// ReservationRepository is the processing order reservation ledger
type ReservationRepository interface {
	Replace(ctx context.Context, agency, orderID string, rows []StockRow) error
	FindActive(ctx context.Context, agency string) ([]Reservation, error)
	FindByOrder(ctx context.Context, agency, orderID string) ([]Reservation, error)
	ReservedQty(ctx context.Context, agency, sku, size, goodsType, excludeOrderID string) (int, error)
}

// Transactor runs a function inside one storage transaction. Writes issued
// through the passed context become visible together or not at all.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
