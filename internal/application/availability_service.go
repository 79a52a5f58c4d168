package application

import (
	"context"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	"github.com/fulfillment-platform/warehouse-core/pkg/logging"
)

// AvailabilityService computes the per-agency reservable stock table
type AvailabilityService struct {
	events       domain.EventRepository
	reservations domain.ReservationRepository
	logger       *logging.Logger
}

func NewAvailabilityService(
	events domain.EventRepository,
	reservations domain.ReservationRepository,
	logger *logging.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		events:       events,
		reservations: reservations,
		logger:       logger.WithComponent("availability-service"),
	}
}

// Table joins received stock from closed placements with the reservation
// ledger. excludeOrderID removes the asking order's own reservations so it
// can re-plan without competing against itself.
func (s *AvailabilityService) Table(ctx context.Context, agency, excludeOrderID string) ([]domain.AvailabilityRow, error) {
	receivingEvents, err := s.events.FindByAgencyAndType(ctx, agency, domain.OrderTypeReceiving)
	if err != nil {
		return nil, err
	}
	received := domain.ReceivedTotals(receivingEvents)

	ledger, err := s.reservations.FindActive(ctx, agency)
	if err != nil {
		return nil, err
	}

	lookup := func(sku, size, goodsType string) int {
		return domain.ReservedQty(ledger, sku, size, goodsType, excludeOrderID)
	}
	return domain.AvailabilityTable(received, lookup), nil
}
