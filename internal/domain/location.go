package domain

import (
	"fmt"
	"strings"
)

// Zone is a canonical warehouse zone code
type Zone string

const (
	// ZoneReceiving is the receiving staging area
	ZoneReceiving Zone = "PR"
	// ZoneShipping is the shipping staging area
	ZoneShipping Zone = "OTG"
	// ZoneBuffer is the inter-row buffer, addressed by row only
	ZoneBuffer Zone = "MR"
	// ZoneRack is long-term racked storage, addressed by row/section/tier/cell
	ZoneRack Zone = "OS"
)

// NormalizeZone maps free-text or structured zone hints to canonical codes.
// Exact 2-3 letter codes are recognized first, then Russian-language keywords
// written by older workflow versions. Unmatched input is upper-cased and
// passed through verbatim; normalization never rejects.
func NormalizeZone(raw string) Zone {
	trimmed := strings.TrimSpace(raw)
	upper := strings.ToUpper(trimmed)

	switch upper {
	case "PR", "OTG", "MR", "OS":
		return Zone(upper)
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "прием"):
		return ZoneReceiving
	case strings.Contains(lower, "отгрузк"):
		return ZoneShipping
	case strings.Contains(lower, "между ряд"):
		return ZoneBuffer
	case strings.Contains(lower, "стеллаж"),
		strings.Contains(lower, "ряд"),
		strings.Contains(lower, "секци"),
		strings.Contains(lower, "ярус"),
		strings.Contains(lower, "ячейк"):
		return ZoneRack
	}

	return Zone(upper)
}

// Location is a value object addressing physical storage.
// PR/OTG need no sub-address, MR is addressed by row, OS by the full 4-tuple.
type Location struct {
	Zone    Zone `bson:"zone" json:"zone"`
	Row     int  `bson:"row,omitempty" json:"row,omitempty"`
	Section int  `bson:"section,omitempty" json:"section,omitempty"`
	Tier    int  `bson:"tier,omitempty" json:"tier,omitempty"`
	Cell    int  `bson:"cell,omitempty" json:"cell,omitempty"`
}

// IsComplete reports whether the location is fully addressed for its zone
func (l Location) IsComplete() bool {
	switch l.Zone {
	case ZoneRack:
		return l.Row > 0 && l.Section > 0 && l.Tier > 0 && l.Cell > 0
	case ZoneBuffer:
		return l.Row > 0
	case ZoneReceiving, ZoneShipping:
		return true
	default:
		// pass-through zones carry no sub-address requirements
		return l.Zone != ""
	}
}

// CellKey returns a unique key for a fully-addressed OS cell, used for
// occupancy checks. Empty for anything other than a complete OS address.
func (l Location) CellKey() string {
	if l.Zone != ZoneRack || !l.IsComplete() {
		return ""
	}
	return fmt.Sprintf("OS:%d:%d:%d:%d", l.Row, l.Section, l.Tier, l.Cell)
}

// Label returns the deterministic human-facing label for the location.
// The move workflow relies on labels being stable for equality display.
func (l Location) Label() string {
	switch l.Zone {
	case ZoneReceiving:
		return "PR · Зона приемки"
	case ZoneShipping:
		return "OTG · Зона отгрузки"
	case ZoneBuffer:
		if l.Row > 0 {
			return fmt.Sprintf("MR · Ряд %d", l.Row)
		}
		return "MR"
	case ZoneRack:
		if l.IsComplete() {
			return fmt.Sprintf("OS · Ряд %d · Секция %d · Ярус %d · Ячейка %d",
				l.Row, l.Section, l.Tier, l.Cell)
		}
		return "OS"
	default:
		return string(l.Zone)
	}
}

// Equals compares two locations field for field
func (l Location) Equals(other Location) bool {
	return l == other
}
