package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadAccessors(t *testing.T) {
	p := Payload{
		"name":   "Коробка 40х40",
		"qty":    float64(12), // json numbers decode as float64
		"count":  7,
		"sent":   true,
		"nested": map[string]any{"inner": "x"},
		"list":   []any{"a", "b"},
	}

	assert.Equal(t, "Коробка 40х40", p.Str("name"))
	assert.Equal(t, "", p.Str("missing"))
	assert.Equal(t, 12, p.Int("qty"))
	assert.Equal(t, 7, p.Int("count"))
	assert.Equal(t, 0, p.Int("name"))
	assert.True(t, p.Bool("sent"))
	assert.False(t, p.Bool("missing"))
	assert.True(t, p.Has("nested"))
	assert.Equal(t, "x", p.Map("nested").Str("inner"))
	assert.Len(t, p.Slice("list"), 2)
}

func TestDecodePlacementAct(t *testing.T) {
	t.Run("no act marker", func(t *testing.T) {
		_, ok := DecodePlacementAct(Payload{"items": []any{}})
		assert.False(t, ok)
	})

	t.Run("pallets with locations", func(t *testing.T) {
		p := Payload{
			"act_state": "closed",
			"act_pallets": []any{
				map[string]any{
					"code": "PAL-001",
					"items": []any{
						map[string]any{"sku": "SKU-1", "qty": float64(10)},
					},
					"location": map[string]any{
						"zone": "OS", "row": float64(1), "section": float64(2),
						"tier": float64(3), "cell": float64(4),
					},
				},
			},
		}

		act, ok := DecodePlacementAct(p)
		require.True(t, ok)
		assert.True(t, act.IsClosed())
		require.Len(t, act.Pallets, 1)
		assert.Equal(t, "PAL-001", act.Pallets[0].Code)
		require.NotNil(t, act.Pallets[0].Location)
		assert.Equal(t, "OS:1:2:3:4", act.Pallets[0].Location.CellKey())
	})

	t.Run("flat items accept sku_code spelling", func(t *testing.T) {
		p := Payload{
			"act": true,
			"items": []any{
				map[string]any{"sku_code": "SKU-9", "name": "Футболка", "qty": float64(5)},
			},
		}

		act, ok := DecodePlacementAct(p)
		require.True(t, ok)
		require.Len(t, act.Items, 1)
		assert.Equal(t, "SKU-9", act.Items[0].SKU)
		assert.Equal(t, 5, act.Items[0].Qty)
	})

	t.Run("absent act_state defaults closed", func(t *testing.T) {
		act, ok := DecodePlacementAct(Payload{"act_pallets": []any{}})
		require.True(t, ok)
		assert.True(t, act.IsClosed())
		assert.False(t, act.IsOpen())
	})
}

func TestDecodeStockRows(t *testing.T) {
	p := Payload{
		"product_name": "Куртка зимняя",
		"stock_rows": []any{
			map[string]any{"article": "ART-1", "size": "M", "qty": float64(3)},
			map[string]any{"article": "ART-1", "size": "L", "qty": float64(2), "goods_type": "outerwear"},
		},
	}

	rows := DecodeStockRows(p)
	require.Len(t, rows, 2)
	assert.Equal(t, "ART-1", rows[0].Article)
	assert.Equal(t, "outerwear", rows[1].GoodsType)
}

func TestMoveDetailsRoundTrip(t *testing.T) {
	details := MoveDetails{
		Status:     string(MoveStatusCreated),
		PalletCode: "PAL-7",
		To:         &Location{Zone: ZoneRack, Row: 1, Section: 1, Tier: 1, Cell: 1},
		ToLabel:    "OS · Ряд 1 · Секция 1 · Ярус 1 · Ячейка 1",
	}

	decoded, err := DecodeMoveDetails(details.Encode())
	require.NoError(t, err)
	assert.Equal(t, details.PalletCode, decoded.PalletCode)
	require.NotNil(t, decoded.To)
	assert.True(t, details.To.Equals(*decoded.To))
}

func TestRelocatePallet(t *testing.T) {
	payload := Payload{
		"act_state": "closed",
		"comment":   "размещение после приемки",
		"act_pallets": []any{
			map[string]any{
				"code":     "PAL-1",
				"location": map[string]any{"zone": "PR"},
			},
			map[string]any{
				"code":     "PAL-2",
				"location": map[string]any{"zone": "OS", "row": float64(1), "section": float64(1), "tier": float64(1), "cell": float64(1)},
			},
		},
	}

	target := Location{Zone: ZoneRack, Row: 2, Section: 3, Tier: 1, Cell: 4}
	moved, err := RelocatePallet(payload, "PAL-1", target)
	require.NoError(t, err)

	// original untouched
	act, _ := DecodePlacementAct(payload)
	assert.Equal(t, ZoneReceiving, act.Pallets[0].Location.Zone)

	movedAct, ok := DecodePlacementAct(moved)
	require.True(t, ok)
	assert.True(t, target.Equals(*movedAct.Pallets[0].Location))
	// sibling pallet and unrelated fields survive
	assert.Equal(t, "OS:1:1:1:1", movedAct.Pallets[1].Location.CellKey())
	assert.Equal(t, "размещение после приемки", moved.Str("comment"))
	assert.Equal(t, "closed", moved.Str("act_state"))
}

func TestRelocatePalletNotFound(t *testing.T) {
	payload := Payload{"act_pallets": []any{map[string]any{"code": "PAL-1"}}}

	_, err := RelocatePallet(payload, "PAL-404", Location{Zone: ZoneRack, Row: 1, Section: 1, Tier: 1, Cell: 1})
	assert.ErrorIs(t, err, ErrPalletNotFound)

	_, err = RelocatePallet(Payload{}, "PAL-1", Location{Zone: ZoneRack, Row: 1, Section: 1, Tier: 1, Cell: 1})
	assert.ErrorIs(t, err, ErrPalletNotFound)
}
