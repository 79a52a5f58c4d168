package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	"github.com/fulfillment-platform/warehouse-core/internal/infrastructure/projections"
	"github.com/fulfillment-platform/warehouse-core/pkg/logging"
	"github.com/fulfillment-platform/warehouse-core/pkg/metrics"
)

// StatusProjector maintains the materialized per-order status records
type StatusProjector interface {
	Upsert(ctx context.Context, p *projections.OrderStatusProjection) error
	Find(ctx context.Context, orderType domain.OrderType, orderID string) (*projections.OrderStatusProjection, error)
	List(ctx context.Context, filter projections.StatusFilter) ([]projections.OrderStatusProjection, error)
	Delete(ctx context.Context, orderType domain.OrderType, orderID string) error
}

// EventService owns the append-only order event log and everything derived
// from a single order's history
type EventService struct {
	events    domain.EventRepository
	projector StatusProjector
	tx        domain.Transactor
	logger    *logging.Logger
	metrics   *metrics.Metrics
}

func NewEventService(
	events domain.EventRepository,
	projector StatusProjector,
	tx domain.Transactor,
	logger *logging.Logger,
	m *metrics.Metrics,
) *EventService {
	return &EventService{
		events:    events,
		projector: projector,
		tx:        tx,
		logger:    logger.WithComponent("event-service"),
		metrics:   m,
	}
}

// AppendCommand carries one event to append. An empty OrderID starts a new
// draft order.
type AppendCommand struct {
	OrderType string
	OrderID   string
	Action    string
	Payload   domain.Payload
	Agency    string
	User      string
}

// AppendResult reports the written event and the order's new derived status
type AppendResult struct {
	EventID string            `json:"event_id"`
	OrderID string            `json:"order_id"`
	Status  domain.StatusInfo `json:"status"`
}

// Append validates the envelope, writes the event and refreshes the order's
// status projection. The payload itself is stored as-is, without shape
// validation: producers from several workflow generations share the log.
func (s *EventService) Append(ctx context.Context, cmd AppendCommand) (*AppendResult, error) {
	orderType := domain.OrderType(cmd.OrderType)
	if !orderType.IsValid() {
		return nil, domain.ErrInvalidOrderType
	}
	action := domain.Action(cmd.Action)
	if !action.IsValid() {
		return nil, domain.ErrInvalidAction
	}

	orderID := cmd.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("DRAFT-%s", uuid.New().String()[:8])
	}

	event := &domain.OrderEvent{
		OrderType: orderType,
		OrderID:   orderID,
		Action:    action,
		Payload:   cmd.Payload,
		Agency:    cmd.Agency,
		User:      cmd.User,
	}
	if event.Payload == nil {
		event.Payload = domain.Payload{}
	}

	var status domain.StatusInfo
	err := s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.events.Append(txCtx, event); err != nil {
			return err
		}

		history, err := s.events.History(txCtx, orderType, orderID)
		if err != nil {
			return err
		}
		status = domain.ResolveStatus(history)

		return s.projector.Upsert(txCtx, &projections.OrderStatusProjection{
			OrderType:   orderType,
			OrderID:     orderID,
			Agency:      cmd.Agency,
			StatusCode:  status.Code,
			StatusLabel: status.Label,
			Bucket:      status.Bucket,
			EventCount:  len(history),
			LastEventAt: event.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordEventAppended(cmd.OrderType, cmd.Action)
	s.logger.Event(ctx, "order_event_appended", map[string]any{
		"order_type": cmd.OrderType,
		"order_id":   orderID,
		"action":     cmd.Action,
		"status":     status.Code,
	})

	return &AppendResult{
		EventID: event.ID.Hex(),
		OrderID: orderID,
		Status:  status,
	}, nil
}

// History returns one order's full ascending event stream
func (s *EventService) History(ctx context.Context, orderType domain.OrderType, orderID string) ([]domain.OrderEvent, error) {
	history, err := s.events.History(ctx, orderType, orderID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, domain.ErrOrderNotFound
	}
	return history, nil
}

// GetStatus derives one order's current status from its history
func (s *EventService) GetStatus(ctx context.Context, orderType domain.OrderType, orderID string) (domain.StatusInfo, error) {
	history, err := s.History(ctx, orderType, orderID)
	if err != nil {
		return domain.StatusInfo{}, err
	}
	return domain.ResolveStatus(history), nil
}

// ListStatuses returns projected statuses for dashboard columns
func (s *EventService) ListStatuses(ctx context.Context, filter projections.StatusFilter) ([]projections.OrderStatusProjection, error) {
	return s.projector.List(ctx, filter)
}

// ListOrders returns the distinct order ids of one type for an agency,
// straight from the event log. Unlike ListStatuses it sees every order that
// ever wrote an event, projected or not.
func (s *EventService) ListOrders(ctx context.Context, agency, orderType string) ([]string, error) {
	ot := domain.OrderType(orderType)
	if !ot.IsValid() {
		return nil, domain.ErrInvalidOrderType
	}
	return s.events.ListOrderIDs(ctx, agency, ot)
}

// PurgeDraft removes an order's whole event stream. Only draft orders may be
// purged; anything past draft stays for audit.
func (s *EventService) PurgeDraft(ctx context.Context, orderType domain.OrderType, orderID string) error {
	history, err := s.History(ctx, orderType, orderID)
	if err != nil {
		return err
	}
	if !domain.IsDraft(history) {
		return domain.ErrNotDraft
	}

	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.events.Purge(txCtx, orderType, orderID); err != nil {
			return err
		}
		return s.projector.Delete(txCtx, orderType, orderID)
	})
	if err != nil {
		return err
	}

	s.metrics.DraftsPurged.Inc()
	s.logger.Event(ctx, "draft_purged", map[string]any{
		"order_type": string(orderType),
		"order_id":   orderID,
	})
	return nil
}
