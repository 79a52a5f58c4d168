package domain

import "sort"

// StockKey identifies one aggregated stock position
type StockKey struct {
	SKU       string
	Name      string
	Size      string
	GoodsType string
}

// AvailabilityRow is one line of the per-agency availability table
type AvailabilityRow struct {
	SKU       string `json:"sku"`
	Name      string `json:"name,omitempty"`
	Size      string `json:"size,omitempty"`
	GoodsType string `json:"goods_type,omitempty"`
	Received  int    `json:"received"`
	Reserved  int    `json:"reserved"`
	Available int    `json:"available"`
}

// ReceivedTotals folds closed placements into received quantities per stock
// position. Each order contributes from exactly one source, the first
// non-empty of boxes, pallets, flat item list, so repackaged stock is never
// double counted.
func ReceivedTotals(events []OrderEvent) map[StockKey]int {
	totals := make(map[StockKey]int)
	for _, r := range ClosedPlacements(events) {
		for _, it := range placementItems(r.Act) {
			if it.Qty <= 0 {
				continue
			}
			key := StockKey{SKU: it.SKU, Name: it.Name, Size: it.Size, GoodsType: it.GoodsType}
			totals[key] += it.Qty
		}
	}
	return totals
}

// placementItems picks the act's single effective item source
func placementItems(act *PlacementAct) []ActItem {
	var items []ActItem
	for _, b := range act.Boxes {
		items = append(items, b.Items...)
	}
	if len(items) > 0 {
		return items
	}

	for _, p := range act.Pallets {
		items = append(items, p.Items...)
		for _, b := range p.Boxes {
			items = append(items, b.Items...)
		}
	}
	if len(items) > 0 {
		return items
	}

	return act.Items
}

// ReservedLookup resolves the reserved quantity for one stock position,
// excluding the asking order's own rows
type ReservedLookup func(sku, size, goodsType string) int

// AvailabilityTable joins received totals with the reservation ledger.
// Positions with nothing left to reserve are omitted. Rows are sorted by
// SKU, then size, then goods type for a stable table.
func AvailabilityTable(received map[StockKey]int, reserved ReservedLookup) []AvailabilityRow {
	rows := make([]AvailabilityRow, 0, len(received))
	for key, qty := range received {
		res := reserved(key.SKU, key.Size, key.GoodsType)
		available := qty - res
		if available <= 0 {
			continue
		}
		rows = append(rows, AvailabilityRow{
			SKU:       key.SKU,
			Name:      key.Name,
			Size:      key.Size,
			GoodsType: key.GoodsType,
			Received:  qty,
			Reserved:  res,
			Available: available,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SKU != rows[j].SKU {
			return rows[i].SKU < rows[j].SKU
		}
		if rows[i].Size != rows[j].Size {
			return rows[i].Size < rows[j].Size
		}
		return rows[i].GoodsType < rows[j].GoodsType
	})
	return rows
}
