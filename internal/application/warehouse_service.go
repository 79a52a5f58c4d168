package application

import (
	"context"
	"sort"

	"github.com/fulfillment-platform/warehouse-core/internal/domain"
	"github.com/fulfillment-platform/warehouse-core/pkg/logging"
)

// WarehouseLayout describes the physical rack geometry of one warehouse.
// Capacity per row is derived, not stored.
type WarehouseLayout struct {
	Rows            int
	SectionsPerRow  int
	TiersPerSection int
	CellsPerTier    int
}

// DefaultLayout matches the rack plan of the main facility
func DefaultLayout() WarehouseLayout {
	return WarehouseLayout{
		Rows:            10,
		SectionsPerRow:  6,
		TiersPerSection: 4,
		CellsPerTier:    8,
	}
}

// RowCapacity is the number of addressable cells in one row
func (l WarehouseLayout) RowCapacity() int {
	return l.SectionsPerRow * l.TiersPerSection * l.CellsPerTier
}

// RowInfo is one line of the warehouse map view
type RowInfo struct {
	Row      int `json:"row"`
	Occupied int `json:"occupied"`
	Capacity int `json:"capacity"`
	Free     int `json:"free"`
}

// PalletInfo reports where a pallet currently sits
type PalletInfo struct {
	Code             string          `json:"code"`
	Location         domain.Location `json:"location"`
	Label            string          `json:"label"`
	ReceivingOrderID string          `json:"receiving_order_id,omitempty"`
}

// WarehouseService answers occupancy questions over the placement log
type WarehouseService struct {
	events domain.EventRepository
	layout WarehouseLayout
	logger *logging.Logger
}

func NewWarehouseService(events domain.EventRepository, layout WarehouseLayout, logger *logging.Logger) *WarehouseService {
	return &WarehouseService{
		events: events,
		layout: layout,
		logger: logger.WithComponent("warehouse-service"),
	}
}

// Map returns per-row occupancy for every row in the layout, including empty
// ones, so the UI can draw the full rack plan.
func (s *WarehouseService) Map(ctx context.Context, agency string) ([]RowInfo, error) {
	events, err := s.events.FindByAgencyAndType(ctx, agency, domain.OrderTypeReceiving)
	if err != nil {
		return nil, err
	}
	occupancy := domain.RowOccupancy(events)

	capacity := s.layout.RowCapacity()
	rows := make([]RowInfo, 0, s.layout.Rows)
	for row := 1; row <= s.layout.Rows; row++ {
		occupied := occupancy[row]
		rows = append(rows, RowInfo{
			Row:      row,
			Occupied: occupied,
			Capacity: capacity,
			Free:     capacity - occupied,
		})
	}

	// rows outside the configured layout still show up when legacy data
	// placed pallets there
	for row, occupied := range occupancy {
		if row > s.layout.Rows || row < 1 {
			rows = append(rows, RowInfo{Row: row, Occupied: occupied, Capacity: occupied, Free: 0})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Row < rows[j].Row })
	return rows, nil
}

// FindPallet resolves a pallet's current location from closed placements
func (s *WarehouseService) FindPallet(ctx context.Context, agency, palletCode string) (*PalletInfo, error) {
	events, err := s.events.FindByAgencyAndType(ctx, agency, domain.OrderTypeReceiving)
	if err != nil {
		return nil, err
	}

	record, pallet, err := domain.FindPalletPlacement(events, palletCode)
	if err != nil {
		return nil, err
	}

	info := &PalletInfo{
		Code:             pallet.Code,
		ReceivingOrderID: record.OrderID,
	}
	if pallet.Location != nil {
		info.Location = *pallet.Location
		info.Label = pallet.Location.Label()
	}
	return info, nil
}
