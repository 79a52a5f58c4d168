package domain

import "errors"

// Domain errors. All are returned as typed results to the caller and mapped
// to API error codes at the application boundary.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrPalletNotFound    = errors.New("pallet not found")
	ErrMoveNotFound      = errors.New("move task not found")
	ErrCellOccupied      = errors.New("target cell is already occupied")
	ErrAlreadyTaken      = errors.New("move task already taken by another driver")
	ErrNotAssigned       = errors.New("move task is not assigned to this driver")
	ErrIncompleteAddress = errors.New("incomplete address for target zone")
	ErrQuantityExceeded  = errors.New("reserved quantity exceeds received stock")
	ErrNotDraft          = errors.New("order is not a draft")
	ErrInvalidTransition = errors.New("invalid move status transition")
	ErrInvalidOrderType  = errors.New("invalid order type")
	ErrInvalidAction     = errors.New("invalid event action")
)
