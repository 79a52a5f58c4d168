package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceivedTotalsBoxesWinOverPallets(t *testing.T) {
	payload := Payload{
		"act_state": "closed",
		"act_boxes": []any{
			map[string]any{"code": "BOX-1", "items": []any{
				map[string]any{"sku": "SKU-1", "qty": float64(10)},
			}},
		},
		"act_pallets": []any{
			map[string]any{"code": "PAL-1", "items": []any{
				map[string]any{"sku": "SKU-1", "qty": float64(999)},
			}},
		},
	}
	events := []OrderEvent{placementEvent("R1", 0, payload)}

	totals := ReceivedTotals(events)
	assert.Equal(t, 10, totals[StockKey{SKU: "SKU-1"}])
}

func TestReceivedTotalsPalletsWinOverFlatItems(t *testing.T) {
	payload := Payload{
		"act_state": "closed",
		"act_pallets": []any{
			map[string]any{"code": "PAL-1",
				"items": []any{map[string]any{"sku": "SKU-1", "qty": float64(40)}},
				"boxes": []any{map[string]any{"code": "BOX-1", "items": []any{
					map[string]any{"sku": "SKU-2", "qty": float64(5)},
				}}},
			},
		},
		"items": []any{map[string]any{"sku_code": "SKU-1", "qty": float64(999)}},
	}
	events := []OrderEvent{placementEvent("R1", 0, payload)}

	totals := ReceivedTotals(events)
	assert.Equal(t, 40, totals[StockKey{SKU: "SKU-1"}])
	assert.Equal(t, 5, totals[StockKey{SKU: "SKU-2"}])
}

func TestReceivedTotalsFlatItemsFallback(t *testing.T) {
	payload := Payload{
		"act": true,
		"items": []any{
			map[string]any{"sku_code": "SKU-3", "name": "Свитер", "qty": float64(7)},
		},
	}
	events := []OrderEvent{placementEvent("R1", 0, payload)}

	totals := ReceivedTotals(events)
	assert.Equal(t, 7, totals[StockKey{SKU: "SKU-3", Name: "Свитер"}])
}

func TestReceivedTotalsOpenActContributesNothing(t *testing.T) {
	events := []OrderEvent{
		placementEvent("R1", 0, Payload{
			"act_state": "closed",
			"items":     []any{map[string]any{"sku": "SKU-1", "qty": float64(100)}},
		}),
		placementEvent("R1", 5, Payload{
			"act_state": "open",
			"items":     []any{map[string]any{"sku": "SKU-1", "qty": float64(100)}},
		}),
	}

	assert.Empty(t, ReceivedTotals(events))
}

func TestReceivedTotalsSumsAcrossOrders(t *testing.T) {
	events := []OrderEvent{
		placementEvent("R1", 0, Payload{
			"act_state": "closed",
			"items":     []any{map[string]any{"sku": "SKU-1", "qty": float64(60)}},
		}),
		placementEvent("R2", 1, Payload{
			"act_state": "closed",
			"items":     []any{map[string]any{"sku": "SKU-1", "qty": float64(40)}},
		}),
	}

	assert.Equal(t, 100, ReceivedTotals(events)[StockKey{SKU: "SKU-1"}])
}

func TestAvailabilityTable(t *testing.T) {
	received := map[StockKey]int{
		{SKU: "SKU-1", Size: "M"}: 100,
		{SKU: "SKU-2", Size: "L"}: 20,
		{SKU: "SKU-3"}:            5,
	}
	reserved := func(sku, size, goodsType string) int {
		switch sku {
		case "SKU-1":
			return 30
		case "SKU-3":
			return 5 // fully reserved, row omitted
		default:
			return 0
		}
	}

	rows := AvailabilityTable(received, reserved)
	require.Len(t, rows, 2)
	assert.Equal(t, "SKU-1", rows[0].SKU)
	assert.Equal(t, 70, rows[0].Available)
	assert.Equal(t, 30, rows[0].Reserved)
	assert.Equal(t, "SKU-2", rows[1].SKU)
	assert.Equal(t, 20, rows[1].Available)
}

// Reservation replace scenario: 100 received, reservation grows from 30 to 50
func TestAvailabilityAfterReservationReplace(t *testing.T) {
	received := map[StockKey]int{{SKU: "SKU-1"}: 100}

	ledger := []Reservation{
		{OrderID: "P1", SKU: "SKU-1", Qty: 30},
	}
	rows := AvailabilityTable(received, func(sku, size, goodsType string) int {
		return ReservedQty(ledger, sku, size, goodsType, "")
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 70, rows[0].Available)

	// replace P1's single row 30 -> 50
	ledger = []Reservation{
		{OrderID: "P1", SKU: "SKU-1", Qty: 50},
	}
	rows = AvailabilityTable(received, func(sku, size, goodsType string) int {
		return ReservedQty(ledger, sku, size, goodsType, "")
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 50, rows[0].Available)

	// the asking order itself sees its own reservation excluded
	rows = AvailabilityTable(received, func(sku, size, goodsType string) int {
		return ReservedQty(ledger, sku, size, goodsType, "P1")
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 100, rows[0].Available)
}
