package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placementEvent(orderID string, minute int, payload Payload) OrderEvent {
	return OrderEvent{
		OrderType: OrderTypeReceiving,
		OrderID:   orderID,
		Action:    ActionUpdate,
		Payload:   payload,
		Agency:    "agency-1",
		CreatedAt: time.Date(2024, 3, 1, 12, minute, 0, 0, time.UTC),
	}
}

func palletPayload(state string, pallets ...map[string]any) Payload {
	list := make([]any, 0, len(pallets))
	for _, p := range pallets {
		list = append(list, p)
	}
	return Payload{"act_state": state, "act_pallets": list}
}

func osCell(row, section, tier, cell int) map[string]any {
	return map[string]any{
		"zone": "OS", "row": float64(row), "section": float64(section),
		"tier": float64(tier), "cell": float64(cell),
	}
}

func TestEffectivePlacementsNewestWinsPerOrder(t *testing.T) {
	events := []OrderEvent{
		placementEvent("R1", 0, palletPayload("closed", map[string]any{"code": "PAL-1", "location": osCell(1, 1, 1, 1)})),
		placementEvent("R1", 5, palletPayload("closed", map[string]any{"code": "PAL-1", "location": osCell(2, 2, 2, 2)})),
		placementEvent("R2", 3, palletPayload("closed", map[string]any{"code": "PAL-2", "location": osCell(3, 3, 3, 3)})),
	}

	records := EffectivePlacements(events)
	require.Len(t, records, 2)
	// newest first
	assert.Equal(t, "R1", records[0].OrderID)
	assert.Equal(t, 5, records[0].CreatedAt.Minute())
}

func TestClosedPlacementsOpenActBlocksOrder(t *testing.T) {
	events := []OrderEvent{
		placementEvent("R1", 0, palletPayload("closed", map[string]any{"code": "PAL-1", "location": osCell(1, 1, 1, 1)})),
		placementEvent("R1", 5, palletPayload("open", map[string]any{"code": "PAL-1", "location": osCell(1, 1, 1, 1)})),
		placementEvent("R2", 1, palletPayload("closed", map[string]any{"code": "PAL-2", "location": osCell(2, 1, 1, 1)})),
	}

	closed := ClosedPlacements(events)
	require.Len(t, closed, 1)
	assert.Equal(t, "R2", closed[0].OrderID)
}

func TestFindPalletPlacement(t *testing.T) {
	events := []OrderEvent{
		placementEvent("R1", 0, palletPayload("closed", map[string]any{"code": "PAL-1", "location": osCell(1, 1, 1, 1)})),
		placementEvent("R2", 5, palletPayload("closed", map[string]any{"code": "PAL-1", "location": osCell(2, 2, 2, 2)})),
	}

	record, pallet, err := FindPalletPlacement(events, "PAL-1")
	require.NoError(t, err)
	// latest closed placement wins
	assert.Equal(t, "R2", record.OrderID)
	assert.Equal(t, "OS:2:2:2:2", pallet.Location.CellKey())

	_, _, err = FindPalletPlacement(events, "PAL-404")
	assert.ErrorIs(t, err, ErrPalletNotFound)
}

func TestOccupiedCells(t *testing.T) {
	events := []OrderEvent{
		placementEvent("R1", 0, palletPayload("closed",
			map[string]any{"code": "PAL-1", "location": osCell(1, 1, 1, 1)},
			map[string]any{"code": "PAL-2", "location": osCell(1, 1, 1, 2)},
			map[string]any{"code": "PAL-3", "location": map[string]any{"zone": "PR"}},
		)),
	}

	occupied := OccupiedCells(events, "")
	assert.Len(t, occupied, 2)
	assert.Equal(t, "PAL-1", occupied["OS:1:1:1:1"])

	// the moved pallet's own cell does not count
	excluded := OccupiedCells(events, "PAL-1")
	assert.Len(t, excluded, 1)
	_, taken := excluded["OS:1:1:1:1"]
	assert.False(t, taken)
}

func TestOccupiedCellsIgnoresOpenActs(t *testing.T) {
	events := []OrderEvent{
		placementEvent("R1", 0, palletPayload("open", map[string]any{"code": "PAL-1", "location": osCell(1, 1, 1, 1)})),
	}
	assert.Empty(t, OccupiedCells(events, ""))
}

func TestRowOccupancy(t *testing.T) {
	events := []OrderEvent{
		placementEvent("R1", 0, palletPayload("closed",
			map[string]any{"code": "PAL-1", "location": osCell(1, 1, 1, 1)},
			map[string]any{"code": "PAL-2", "location": osCell(1, 2, 1, 1)},
			map[string]any{"code": "PAL-3", "location": osCell(4, 1, 1, 1)},
		)),
	}

	rows := RowOccupancy(events)
	assert.Equal(t, 2, rows[1])
	assert.Equal(t, 1, rows[4])
	assert.Zero(t, rows[2])
}
