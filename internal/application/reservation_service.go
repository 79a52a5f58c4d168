package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	"github.com/fulfillment-platform/warehouse-core/pkg/logging"
	"github.com/fulfillment-platform/warehouse-core/pkg/metrics"
)

// ReservationService guards the reservation ledger. A replace that would
// claim more stock than is physically available is rejected as a whole.
type ReservationService struct {
	reservations domain.ReservationRepository
	events       domain.EventRepository
	logger       *logging.Logger
	metrics      *metrics.Metrics

	// serializes the availability check against the ledger rewrite so two
	// concurrent replaces cannot both pass the check on the same stock
	replaceMu sync.Mutex
}

func NewReservationService(
	reservations domain.ReservationRepository,
	events domain.EventRepository,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		events:       events,
		logger:       logger.WithComponent("reservation-service"),
		metrics:      m,
	}
}

// ReplaceCommand rewrites one processing order's reservations
type ReplaceCommand struct {
	Agency  string
	OrderID string
	Rows    []domain.StockRow
}

// Replace aggregates the incoming rows, verifies each position against
// received stock minus everyone else's reservations and rewrites the order's
// ledger. The check fails closed: any doubt rejects the write.
func (s *ReservationService) Replace(ctx context.Context, cmd ReplaceCommand) error {
	rows := domain.AggregateRows(cmd.Rows)

	s.replaceMu.Lock()
	defer s.replaceMu.Unlock()

	if len(rows) > 0 {
		receivingEvents, err := s.events.FindByAgencyAndType(ctx, cmd.Agency, domain.OrderTypeReceiving)
		if err != nil {
			return err
		}
		received := domain.ReceivedTotals(receivingEvents)

		for _, row := range rows {
			reserved, err := s.reservations.ReservedQty(ctx, cmd.Agency, row.Article, row.Size, row.GoodsType, cmd.OrderID)
			if err != nil {
				return err
			}
			available := receivedFor(received, row.Article, row.Size, row.GoodsType) - reserved
			if row.Qty > available {
				return fmt.Errorf("%w: %s/%s requested %d, available %d",
					domain.ErrQuantityExceeded, row.Article, row.Size, row.Qty, available)
			}
		}
	}

	if err := s.reservations.Replace(ctx, cmd.Agency, cmd.OrderID, rows); err != nil {
		return err
	}

	s.metrics.ReservationsReplaced.Inc()
	s.logger.Event(ctx, "reservations_replaced", map[string]any{
		"agency":   cmd.Agency,
		"order_id": cmd.OrderID,
		"rows":     len(rows),
	})
	return nil
}

// receivedFor sums received stock for a position. An empty goodsType counts
// every goods type for the sku and size; a concrete goodsType counts its own
// rows plus the untyped ones, mirroring the ledger's wildcard semantics.
func receivedFor(totals map[domain.StockKey]int, sku, size, goodsType string) int {
	sum := 0
	for key, qty := range totals {
		if key.SKU != sku || key.Size != size {
			continue
		}
		if goodsType != "" && key.GoodsType != "" && key.GoodsType != goodsType {
			continue
		}
		sum += qty
	}
	return sum
}

// ReservedQty exposes the ledger sum for one position
func (s *ReservationService) ReservedQty(ctx context.Context, agency, sku, size, goodsType, excludeOrderID string) (int, error) {
	return s.reservations.ReservedQty(ctx, agency, sku, size, goodsType, excludeOrderID)
}

// ListByOrder returns one order's live ledger rows
func (s *ReservationService) ListByOrder(ctx context.Context, agency, orderID string) ([]domain.Reservation, error) {
	return s.reservations.FindByOrder(ctx, agency, orderID)
}
