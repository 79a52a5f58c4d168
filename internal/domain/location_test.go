package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeZone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Zone
	}{
		{"exact PR", "PR", ZoneReceiving},
		{"lowercase pr", "pr", ZoneReceiving},
		{"exact OTG", "OTG", ZoneShipping},
		{"exact MR", "MR", ZoneBuffer},
		{"exact OS", "OS", ZoneRack},
		{"russian receiving", "Зона приемки", ZoneReceiving},
		{"russian shipping", "зона отгрузки", ZoneShipping},
		{"russian buffer", "между рядами", ZoneBuffer},
		{"russian rack", "стеллаж", ZoneRack},
		{"russian row", "Ряд 3", ZoneRack},
		{"russian section", "секция", ZoneRack},
		{"unknown passthrough", "dock-7", Zone("DOCK-7")},
		{"empty", "", Zone("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeZone(tt.input))
		})
	}
}

func TestLocationIsComplete(t *testing.T) {
	tests := []struct {
		name     string
		loc      Location
		expected bool
	}{
		{"PR needs nothing", Location{Zone: ZoneReceiving}, true},
		{"OTG needs nothing", Location{Zone: ZoneShipping}, true},
		{"MR with row", Location{Zone: ZoneBuffer, Row: 2}, true},
		{"MR without row", Location{Zone: ZoneBuffer}, false},
		{"OS full tuple", Location{Zone: ZoneRack, Row: 3, Section: 2, Tier: 1, Cell: 4}, true},
		{"OS missing cell", Location{Zone: ZoneRack, Row: 3, Section: 2, Tier: 1}, false},
		{"OS zero row", Location{Zone: ZoneRack, Row: 0, Section: 2, Tier: 1, Cell: 4}, false},
		{"OS negative tier", Location{Zone: ZoneRack, Row: 3, Section: 2, Tier: -1, Cell: 4}, false},
		{"pass-through zone", Location{Zone: Zone("DOCK-7")}, true},
		{"empty zone", Location{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.loc.IsComplete())
		})
	}
}

func TestLocationLabel(t *testing.T) {
	tests := []struct {
		name     string
		loc      Location
		expected string
	}{
		{"receiving", Location{Zone: ZoneReceiving}, "PR · Зона приемки"},
		{"shipping", Location{Zone: ZoneShipping}, "OTG · Зона отгрузки"},
		{"buffer", Location{Zone: ZoneBuffer, Row: 5}, "MR · Ряд 5"},
		{"rack", Location{Zone: ZoneRack, Row: 3, Section: 2, Tier: 1, Cell: 4}, "OS · Ряд 3 · Секция 2 · Ярус 1 · Ячейка 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.loc.Label())
		})
	}
}

func TestLocationCellKey(t *testing.T) {
	loc := Location{Zone: ZoneRack, Row: 3, Section: 2, Tier: 1, Cell: 4}
	assert.Equal(t, "OS:3:2:1:4", loc.CellKey())

	other := Location{Zone: ZoneRack, Row: 3, Section: 2, Tier: 1, Cell: 5}
	assert.NotEqual(t, loc.CellKey(), other.CellKey())
}

func TestLocationEquals(t *testing.T) {
	a := Location{Zone: ZoneRack, Row: 1, Section: 1, Tier: 1, Cell: 1}
	b := Location{Zone: ZoneRack, Row: 1, Section: 1, Tier: 1, Cell: 1}
	c := Location{Zone: ZoneRack, Row: 1, Section: 1, Tier: 1, Cell: 2}

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}
