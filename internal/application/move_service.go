package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	"github.com/fulfillment-platform/warehouse-core/pkg/logging"
	"github.com/fulfillment-platform/warehouse-core/pkg/metrics"
)

// MoveNotifier announces workflow transitions to driver terminals
type MoveNotifier interface {
	MoveCreated(ctx context.Context, task *domain.MoveTask) error
	MoveTaken(ctx context.Context, task *domain.MoveTask) error
	MoveCompleted(ctx context.Context, task *domain.MoveTask) error
}

// MoveService runs the pallet move workflow. Cell assignment is serialized
// with a process-wide mutex: the occupancy check and the event append must
// not interleave between two concurrent moves targeting the same cell.
type MoveService struct {
	events   domain.EventRepository
	tx       domain.Transactor
	notifier MoveNotifier
	logger   *logging.Logger
	metrics  *metrics.Metrics

	cellMu sync.Mutex
}

func NewMoveService(
	events domain.EventRepository,
	tx domain.Transactor,
	notifier MoveNotifier,
	logger *logging.Logger,
	m *metrics.Metrics,
) *MoveService {
	return &MoveService{
		events:   events,
		tx:       tx,
		notifier: notifier,
		logger:   logger.WithComponent("move-service"),
		metrics:  m,
	}
}

// CreateMoveCommand requests moving one pallet to a target slot
type CreateMoveCommand struct {
	Agency     string
	PalletCode string
	Target     domain.Location
	ActorID    string
	ActorName  string
}

// MoveQueue is the driver-facing task list
type MoveQueue struct {
	Active []domain.MoveTask `json:"active"`
	Done   []domain.MoveTask `json:"done"`
}

// CreateMove resolves the pallet's current slot, validates the target
// address, checks OS cell occupancy and appends the move's first event.
func (s *MoveService) CreateMove(ctx context.Context, cmd CreateMoveCommand) (*domain.MoveTask, error) {
	target := cmd.Target
	target.Zone = domain.NormalizeZone(string(target.Zone))
	if !target.IsComplete() {
		return nil, domain.ErrIncompleteAddress
	}

	s.cellMu.Lock()
	defer s.cellMu.Unlock()

	receivingEvents, err := s.events.FindByAgencyAndType(ctx, cmd.Agency, domain.OrderTypeReceiving)
	if err != nil {
		return nil, err
	}

	record, pallet, err := domain.FindPalletPlacement(receivingEvents, cmd.PalletCode)
	if err != nil {
		return nil, err
	}

	if target.Zone == domain.ZoneRack {
		occupied := domain.OccupiedCells(receivingEvents, cmd.PalletCode)
		if holder, taken := occupied[target.CellKey()]; taken {
			s.metrics.CellConflicts.Inc()
			return nil, fmt.Errorf("%w: %s held by pallet %s", domain.ErrCellOccupied, target.Label(), holder)
		}

		// cells claimed by moves still in flight are taken too; without
		// this, two moves could race for the same free cell
		holder, taken, err := s.pendingCellHolder(ctx, cmd.Agency, target.CellKey(), cmd.PalletCode)
		if err != nil {
			return nil, err
		}
		if taken {
			s.metrics.CellConflicts.Inc()
			return nil, fmt.Errorf("%w: %s targeted by pallet %s", domain.ErrCellOccupied, target.Label(), holder)
		}
	}

	moveID := fmt.Sprintf("MV-%s", uuid.New().String()[:8])
	details := domain.MoveDetails{
		Status:           string(domain.MoveStatusCreated),
		StatusLabel:      domain.MoveStatusCreated.Label(),
		PalletCode:       cmd.PalletCode,
		To:               &target,
		ToLabel:          target.Label(),
		ReceivingOrderID: record.OrderID,
		FromLabel:        "-",
	}
	if pallet.Location != nil {
		details.From = pallet.Location
		details.FromLabel = pallet.Location.Label()
	}

	event := &domain.OrderEvent{
		OrderType: domain.OrderTypeStockMove,
		OrderID:   moveID,
		Action:    domain.ActionCreate,
		Payload:   details.Encode(),
		Agency:    cmd.Agency,
		User:      cmd.ActorID,
	}
	if err := s.events.Append(ctx, event); err != nil {
		return nil, err
	}

	task, err := domain.MoveFromHistory(moveID, []domain.OrderEvent{*event})
	if err != nil {
		return nil, err
	}

	s.metrics.MovesCreated.Inc()
	s.logger.Event(ctx, "move_created", map[string]any{
		"move_id":     moveID,
		"pallet_code": cmd.PalletCode,
		"to":          details.ToLabel,
	})
	s.notify(ctx, s.notifier.MoveCreated, task)
	return task, nil
}

// TakeMove assigns the task to a driver and moves it to in_progress
func (s *MoveService) TakeMove(ctx context.Context, moveID, driverID, driverName string) (*domain.MoveTask, error) {
	task, err := s.GetMove(ctx, moveID)
	if err != nil {
		return nil, err
	}
	if err := task.CanTake(driverID); err != nil {
		return nil, err
	}

	details := domain.MoveDetails{
		Status:         string(domain.MoveStatusInProgress),
		StatusLabel:    domain.MoveStatusInProgress.Label(),
		AssignedToID:   driverID,
		AssignedToName: driverName,
	}
	event := &domain.OrderEvent{
		OrderType: domain.OrderTypeStockMove,
		OrderID:   moveID,
		Action:    domain.ActionStatus,
		Payload:   details.Encode(),
		Agency:    task.Agency,
		User:      driverID,
	}
	if err := s.events.Append(ctx, event); err != nil {
		return nil, err
	}

	task.Status = domain.MoveStatusInProgress
	task.AssignedToID = driverID
	task.AssignedToName = driverName

	s.logger.Event(ctx, "move_taken", map[string]any{
		"move_id": moveID,
		"driver":  driverID,
	})
	s.notify(ctx, s.notifier.MoveTaken, task)
	return task, nil
}

// CompleteMove finishes the task: the pallet's placement event is re-appended
// with the new location and the move stream gets its terminal event. Both
// writes land in one transaction so occupancy and availability readers never
// see the pallet half-moved.
func (s *MoveService) CompleteMove(ctx context.Context, moveID, driverID string) (*domain.MoveTask, error) {
	task, err := s.GetMove(ctx, moveID)
	if err != nil {
		return nil, err
	}
	if err := task.CanComplete(driverID); err != nil {
		return nil, err
	}
	if task.To == nil {
		return nil, domain.ErrIncompleteAddress
	}

	s.cellMu.Lock()
	defer s.cellMu.Unlock()

	receivingEvents, err := s.events.FindByAgencyAndType(ctx, task.Agency, domain.OrderTypeReceiving)
	if err != nil {
		return nil, err
	}
	record, _, err := domain.FindPalletPlacement(receivingEvents, task.PalletCode)
	if err != nil {
		return nil, err
	}

	relocated, err := domain.RelocatePallet(record.Event.Payload, task.PalletCode, *task.To)
	if err != nil {
		return nil, err
	}

	placementEvent := &domain.OrderEvent{
		OrderType: domain.OrderTypeReceiving,
		OrderID:   record.OrderID,
		Action:    domain.ActionUpdate,
		Payload:   relocated,
		Agency:    record.Event.Agency,
		User:      driverID,
	}
	doneDetails := domain.MoveDetails{
		Status:      string(domain.MoveStatusDone),
		StatusLabel: domain.MoveStatusDone.Label(),
	}
	doneEvent := &domain.OrderEvent{
		OrderType: domain.OrderTypeStockMove,
		OrderID:   moveID,
		Action:    domain.ActionStatus,
		Payload:   doneDetails.Encode(),
		Agency:    task.Agency,
		User:      driverID,
	}

	err = s.tx.InTransaction(ctx, func(txCtx context.Context) error {
		if err := s.events.Append(txCtx, placementEvent); err != nil {
			return err
		}
		return s.events.Append(txCtx, doneEvent)
	})
	if err != nil {
		return nil, err
	}

	task.Status = domain.MoveStatusDone
	task.From = task.To
	task.FromLabel = task.ToLabel

	s.metrics.MovesCompleted.Inc()
	s.logger.Event(ctx, "move_completed", map[string]any{
		"move_id":     moveID,
		"pallet_code": task.PalletCode,
		"to":          task.ToLabel,
	})
	s.notify(ctx, s.notifier.MoveCompleted, task)
	return task, nil
}

// pendingCellHolder reports whether an unfinished move already targets the
// cell. Must be called with cellMu held.
func (s *MoveService) pendingCellHolder(ctx context.Context, agency, cellKey, excludePallet string) (string, bool, error) {
	events, err := s.events.FindByAgencyAndType(ctx, agency, domain.OrderTypeStockMove)
	if err != nil {
		return "", false, err
	}

	streams := make(map[string][]domain.OrderEvent)
	for _, e := range events {
		streams[e.OrderID] = append(streams[e.OrderID], e)
	}
	for moveID, history := range streams {
		task, err := domain.MoveFromHistory(moveID, history)
		if err != nil || !task.IsActive() || task.To == nil {
			continue
		}
		if task.PalletCode == excludePallet {
			continue
		}
		if task.To.CellKey() == cellKey {
			return task.PalletCode, true, nil
		}
	}
	return "", false, nil
}

// GetMove folds one move's event stream into its current state
func (s *MoveService) GetMove(ctx context.Context, moveID string) (*domain.MoveTask, error) {
	history, err := s.events.History(ctx, domain.OrderTypeStockMove, moveID)
	if err != nil {
		return nil, err
	}
	return domain.MoveFromHistory(moveID, history)
}

// ListMoves partitions an agency's move tasks into active and done
func (s *MoveService) ListMoves(ctx context.Context, agency string) (*MoveQueue, error) {
	events, err := s.events.FindByAgencyAndType(ctx, agency, domain.OrderTypeStockMove)
	if err != nil {
		return nil, err
	}

	streams := make(map[string][]domain.OrderEvent)
	for _, e := range events {
		streams[e.OrderID] = append(streams[e.OrderID], e)
	}

	queue := &MoveQueue{}
	for moveID, history := range streams {
		task, err := domain.MoveFromHistory(moveID, history)
		if err != nil {
			continue
		}
		if task.IsActive() {
			queue.Active = append(queue.Active, *task)
		} else {
			queue.Done = append(queue.Done, *task)
		}
	}

	// oldest active first so drivers work the backlog in order
	sort.Slice(queue.Active, func(i, j int) bool {
		return queue.Active[i].CreatedAt.Before(queue.Active[j].CreatedAt)
	})
	sort.Slice(queue.Done, func(i, j int) bool {
		return queue.Done[i].UpdatedAt.After(queue.Done[j].UpdatedAt)
	})
	return queue, nil
}

// notify delivers a notification without failing the workflow
func (s *MoveService) notify(ctx context.Context, fn func(context.Context, *domain.MoveTask) error, task *domain.MoveTask) {
	if s.notifier == nil {
		return
	}
	if err := fn(ctx, task); err != nil {
		s.logger.WithError(err).WarnContext(ctx, "move notification failed", "move_id", task.ID)
	}
}
