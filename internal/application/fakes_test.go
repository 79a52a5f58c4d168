package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	"github.com/fulfillment-platform/warehouse-core/internal/infrastructure/projections"
	"github.com/fulfillment-platform/warehouse-core/pkg/logging"
	"github.com/fulfillment-platform/warehouse-core/pkg/metrics"
)

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("test")
	config.Output = nopWriter{}
	return logging.New(config)
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("test"))
}

// fakeEventRepo is an in-memory event log with strictly increasing timestamps
type fakeEventRepo struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	clock  time.Time
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{clock: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (r *fakeEventRepo) Append(_ context.Context, event *domain.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = r.clock.Add(time.Second)
	event.ID = primitive.NewObjectID()
	event.CreatedAt = r.clock
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeEventRepo) History(_ context.Context, orderType domain.OrderType, orderID string) ([]domain.OrderEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.OrderEvent
	for _, e := range r.events {
		if e.OrderType == orderType && e.OrderID == orderID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeEventRepo) FindByAgencyAndType(_ context.Context, agency string, orderType domain.OrderType) ([]domain.OrderEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.OrderEvent
	for _, e := range r.events {
		if e.Agency == agency && e.OrderType == orderType {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeEventRepo) ListOrderIDs(_ context.Context, agency string, orderType domain.OrderType) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var out []string
	for _, e := range r.events {
		if e.Agency != agency || e.OrderType != orderType {
			continue
		}
		if _, ok := seen[e.OrderID]; !ok {
			seen[e.OrderID] = struct{}{}
			out = append(out, e.OrderID)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) Purge(_ context.Context, orderType domain.OrderType, orderID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []domain.OrderEvent
	var purged int64
	for _, e := range r.events {
		if e.OrderType == orderType && e.OrderID == orderID {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return purged, nil
}

// fakeReservationRepo keeps the ledger in memory. qtyDelay widens the window
// between the availability check and the rewrite for concurrency tests.
type fakeReservationRepo struct {
	mu       sync.Mutex
	rows     []domain.Reservation
	qtyDelay time.Duration
}

func (r *fakeReservationRepo) Replace(_ context.Context, agency, orderID string, rows []domain.StockRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []domain.Reservation
	for _, row := range r.rows {
		if row.Agency == agency && row.OrderID == orderID {
			continue
		}
		kept = append(kept, row)
	}
	for _, row := range rows {
		kept = append(kept, domain.Reservation{
			Agency:    agency,
			OrderType: domain.OrderTypeProcessing,
			OrderID:   orderID,
			SKU:       row.Article,
			Size:      row.Size,
			Barcode:   row.Barcode,
			GoodsType: row.GoodsType,
			Qty:       row.Qty,
			State:     domain.ReservationStateProcessing,
		})
	}
	r.rows = kept
	return nil
}

func (r *fakeReservationRepo) FindActive(_ context.Context, agency string) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reservation
	for _, row := range r.rows {
		if row.Agency == agency {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) FindByOrder(_ context.Context, agency, orderID string) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Reservation
	for _, row := range r.rows {
		if row.Agency == agency && row.OrderID == orderID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (r *fakeReservationRepo) ReservedQty(_ context.Context, agency, sku, size, goodsType, excludeOrderID string) (int, error) {
	if r.qtyDelay > 0 {
		time.Sleep(r.qtyDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var scoped []domain.Reservation
	for _, row := range r.rows {
		if row.Agency == agency {
			scoped = append(scoped, row)
		}
	}
	return domain.ReservedQty(scoped, sku, size, goodsType, excludeOrderID), nil
}

// fakeTransactor runs the function directly, no transaction semantics
type fakeTransactor struct{}

func (fakeTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeProjector records status projections in memory
type fakeProjector struct {
	mu      sync.Mutex
	records map[string]*projections.OrderStatusProjection
}

func newFakeProjector() *fakeProjector {
	return &fakeProjector{records: make(map[string]*projections.OrderStatusProjection)}
}

func projectionKey(orderType domain.OrderType, orderID string) string {
	return string(orderType) + "/" + orderID
}

func (p *fakeProjector) Upsert(_ context.Context, record *projections.OrderStatusProjection) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records[projectionKey(record.OrderType, record.OrderID)] = record
	return nil
}

func (p *fakeProjector) Find(_ context.Context, orderType domain.OrderType, orderID string) (*projections.OrderStatusProjection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records[projectionKey(orderType, orderID)], nil
}

func (p *fakeProjector) List(_ context.Context, filter projections.StatusFilter) ([]projections.OrderStatusProjection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []projections.OrderStatusProjection
	for _, r := range p.records {
		if filter.Agency != "" && r.Agency != filter.Agency {
			continue
		}
		if filter.OrderType != "" && r.OrderType != filter.OrderType {
			continue
		}
		if filter.Bucket != "" && r.Bucket != filter.Bucket {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (p *fakeProjector) Delete(_ context.Context, orderType domain.OrderType, orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.records, projectionKey(orderType, orderID))
	return nil
}

// fakeNotifier counts notifications
type fakeNotifier struct {
	mu        sync.Mutex
	created   int
	taken     int
	completed int
}

func (n *fakeNotifier) MoveCreated(context.Context, *domain.MoveTask) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created++
	return nil
}

func (n *fakeNotifier) MoveTaken(context.Context, *domain.MoveTask) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.taken++
	return nil
}

func (n *fakeNotifier) MoveCompleted(context.Context, *domain.MoveTask) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed++
	return nil
}
