package domain

import (
	"encoding/json"
	"fmt"
)

// ActItem is one stock line inside a placement act (pallet, box or flat list).
// Legacy payloads address the SKU as sku_code on order lines and sku inside
// acts; decoding accepts both.
type ActItem struct {
	SKU       string `json:"sku"`
	Name      string `json:"name,omitempty"`
	Size      string `json:"size,omitempty"`
	GoodsType string `json:"goods_type,omitempty"`
	Qty       int    `json:"qty"`
}

// ActBox is a box recorded in a placement act
type ActBox struct {
	Code  string    `json:"code"`
	Items []ActItem `json:"items,omitempty"`
}

// ActPallet is a pallet recorded in a placement act. Code is the business key,
// unique across the warehouse.
type ActPallet struct {
	Code             string    `json:"code"`
	Items            []ActItem `json:"items,omitempty"`
	Boxes            []ActBox  `json:"boxes,omitempty"`
	Location         *Location `json:"location,omitempty"`
	ReceivingOrderID string    `json:"receiving_order_id,omitempty"`
}

// PlacementAct is the typed view of a receiving order's placement act payload
type PlacementAct struct {
	State   string      `json:"act_state,omitempty"`
	Boxes   []ActBox    `json:"act_boxes,omitempty"`
	Pallets []ActPallet `json:"act_pallets,omitempty"`
	Items   []ActItem   `json:"-"`
}

// IsClosed reports whether the act counts as received stock.
// Absent act_state defaults to closed.
func (a *PlacementAct) IsClosed() bool {
	return a.State == "" || a.State == "closed"
}

// IsOpen reports whether the act is still being edited
func (a *PlacementAct) IsOpen() bool {
	return a.State == "open"
}

// flatItem tolerates both order-line and act-line key spellings
type flatItem struct {
	SKU       string `json:"sku"`
	SkuCode   string `json:"sku_code"`
	Name      string `json:"name"`
	Size      string `json:"size"`
	GoodsType string `json:"goods_type"`
	Qty       int    `json:"qty"`
}

type placementEnvelope struct {
	State   string      `json:"act_state"`
	Boxes   []ActBox    `json:"act_boxes"`
	Pallets []ActPallet `json:"act_pallets"`
	Items   []flatItem  `json:"items"`
}

// HasPlacementAct reports whether the payload carries a placement act marker
func HasPlacementAct(p Payload) bool {
	return p.Has("act") || p.Has("act_state") || p.Has("act_boxes") || p.Has("act_pallets")
}

// DecodePlacementAct extracts the typed placement act from an event payload.
// Returns false when the payload carries no act marker.
func DecodePlacementAct(p Payload) (*PlacementAct, bool) {
	if !HasPlacementAct(p) {
		return nil, false
	}

	var env placementEnvelope
	if err := roundTrip(p, &env); err != nil {
		return nil, false
	}

	act := &PlacementAct{
		State:   env.State,
		Boxes:   env.Boxes,
		Pallets: env.Pallets,
	}
	for _, it := range env.Items {
		sku := it.SKU
		if sku == "" {
			sku = it.SkuCode
		}
		act.Items = append(act.Items, ActItem{
			SKU:       sku,
			Name:      it.Name,
			Size:      it.Size,
			GoodsType: it.GoodsType,
			Qty:       it.Qty,
		})
	}
	return act, true
}

// StockRow is one line of a processing order's reservation request
type StockRow struct {
	Article   string `json:"article"`
	Size      string `json:"size,omitempty"`
	Barcode   string `json:"barcode,omitempty"`
	GoodsType string `json:"goods_type,omitempty"`
	Qty       int    `json:"qty"`
}

// DecodeStockRows extracts stock_rows from a processing order payload
func DecodeStockRows(p Payload) []StockRow {
	var env struct {
		Rows []StockRow `json:"stock_rows"`
	}
	if err := roundTrip(p, &env); err != nil {
		return nil
	}
	return env.Rows
}

// MoveDetails is the typed view of a stock_move event payload
type MoveDetails struct {
	Status           string    `json:"status,omitempty"`
	StatusLabel      string    `json:"status_label,omitempty"`
	PalletCode       string    `json:"pallet_code,omitempty"`
	From             *Location `json:"from_location,omitempty"`
	To               *Location `json:"to_location,omitempty"`
	FromLabel        string    `json:"from_label,omitempty"`
	ToLabel          string    `json:"to_label,omitempty"`
	AssignedToID     string    `json:"assigned_to_id,omitempty"`
	AssignedToName   string    `json:"assigned_to_name,omitempty"`
	ReceivingOrderID string    `json:"receiving_order_id,omitempty"`
}

// DecodeMoveDetails extracts the typed move details from an event payload
func DecodeMoveDetails(p Payload) (*MoveDetails, error) {
	var d MoveDetails
	if err := roundTrip(p, &d); err != nil {
		return nil, fmt.Errorf("failed to decode move payload: %w", err)
	}
	return &d, nil
}

// Encode converts the move details back into an event payload
func (d *MoveDetails) Encode() Payload {
	var p Payload
	// encoding a plain struct cannot fail
	_ = roundTrip(d, &p)
	return p
}

// RelocatePallet returns a deep copy of a placement payload with the matching
// pallet's location replaced. All other payload fields are preserved verbatim
// so that re-appending the event does not lose workflow data.
func RelocatePallet(p Payload, palletCode string, to Location) (Payload, error) {
	var copied Payload
	if err := roundTrip(p, &copied); err != nil {
		return nil, fmt.Errorf("failed to copy placement payload: %w", err)
	}

	pallets, ok := copied["act_pallets"].([]any)
	if !ok {
		return nil, ErrPalletNotFound
	}

	for _, raw := range pallets {
		pallet, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if code, _ := pallet["code"].(string); code == palletCode {
			var loc map[string]any
			if err := roundTrip(to, &loc); err != nil {
				return nil, fmt.Errorf("failed to encode location: %w", err)
			}
			pallet["location"] = loc
			return copied, nil
		}
	}

	return nil, ErrPalletNotFound
}

// roundTrip re-encodes src as JSON into dst. BSON-decoded payloads surface as
// map/slice trees, which JSON handles uniformly regardless of origin.
func roundTrip(src any, dst any) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
