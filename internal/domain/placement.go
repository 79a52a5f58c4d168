package domain

import (
	"sort"
	"time"
)

// PlacementRecord is one order's effective placement state. An order can have
// many placement events over its lifetime; only the newest one is effective,
// and it only counts as received stock while closed.
type PlacementRecord struct {
	OrderID   string
	Event     OrderEvent
	Act       *PlacementAct
	CreatedAt time.Time
}

// EffectivePlacements folds a receiving event history spanning many orders
// down to at most one placement record per order (the newest placement event,
// open or closed). Input order does not matter; the result is sorted newest
// first.
func EffectivePlacements(events []OrderEvent) []PlacementRecord {
	latest := make(map[string]*PlacementRecord)
	for i := range events {
		e := &events[i]
		act, ok := DecodePlacementAct(e.Payload)
		if !ok {
			continue
		}
		cur, exists := latest[e.OrderID]
		if exists && !e.CreatedAt.After(cur.CreatedAt) {
			continue
		}
		latest[e.OrderID] = &PlacementRecord{
			OrderID:   e.OrderID,
			Event:     *e,
			Act:       act,
			CreatedAt: e.CreatedAt,
		}
	}

	records := make([]PlacementRecord, 0, len(latest))
	for _, r := range latest {
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

// ClosedPlacements returns the effective placements that count as received
// stock. An order whose newest placement is open contributes nothing: the open
// act blocks its own older closed acts.
func ClosedPlacements(events []OrderEvent) []PlacementRecord {
	var closed []PlacementRecord
	for _, r := range EffectivePlacements(events) {
		if r.Act.IsClosed() {
			closed = append(closed, r)
		}
	}
	return closed
}

// FindPalletPlacement locates the pallet's current placement. The newest
// closed placement containing a pallet with the matching code wins.
func FindPalletPlacement(events []OrderEvent, palletCode string) (*PlacementRecord, *ActPallet, error) {
	for _, r := range ClosedPlacements(events) {
		for i := range r.Act.Pallets {
			if r.Act.Pallets[i].Code == palletCode {
				rec := r
				return &rec, &r.Act.Pallets[i], nil
			}
		}
	}
	return nil, nil, ErrPalletNotFound
}

// OccupiedCells maps every taken OS cell key to the pallet code occupying it,
// computed from closed placements. excludePallet names a pallet whose own cell
// should not count, so a pallet can be moved back to its current cell.
func OccupiedCells(events []OrderEvent, excludePallet string) map[string]string {
	occupied := make(map[string]string)
	for _, r := range ClosedPlacements(events) {
		for _, p := range r.Act.Pallets {
			if p.Code == excludePallet || p.Location == nil {
				continue
			}
			if p.Location.Zone != ZoneRack || !p.Location.IsComplete() {
				continue
			}
			key := p.Location.CellKey()
			if _, taken := occupied[key]; !taken {
				occupied[key] = p.Code
			}
		}
	}
	return occupied
}

// RowOccupancy counts occupied OS cells per row for the warehouse map view
func RowOccupancy(events []OrderEvent) map[int]int {
	rows := make(map[int]int)
	seen := make(map[string]struct{})
	for _, r := range ClosedPlacements(events) {
		for _, p := range r.Act.Pallets {
			if p.Location == nil || p.Location.Zone != ZoneRack || !p.Location.IsComplete() {
				continue
			}
			key := p.Location.CellKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			rows[p.Location.Row]++
		}
	}
	return rows
}
