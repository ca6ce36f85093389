package domain

import (
	"errors"
	"fmt"
)

// ErrBookingNotFound marks lookups for a booking id that does not exist, so
// callers can tell a missing booking apart from a storage failure.
var ErrBookingNotFound = errors.New("Booking not found")

type ValidationError struct {
	Message string `json:"message"`
}

func (v *ValidationError) Error() string {
	return v.Message
}

// InsufficientInventoryError is raised before any write happens, when a
// reservation is requested against a unit with nothing left to hold.
type InsufficientInventoryError struct {
	UnitId string
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("no available units left for inventory unit %s", e.UnitId)
}

// InventoryAdjustmentError is raised after the booking status has already been
// written and the inventory counter could not follow. StatusReverted reports
// whether the compensating write restored the previous status.
type InventoryAdjustmentError struct {
	UnitId         string
	StatusReverted bool
	Err            error
}

func (e *InventoryAdjustmentError) Error() string {
	if e.StatusReverted {
		return fmt.Sprintf("inventory adjustment failed for unit %s, booking status reverted: %v", e.UnitId, e.Err)
	}
	return fmt.Sprintf("inventory adjustment failed for unit %s and the booking status could not be reverted: %v", e.UnitId, e.Err)
}

func (e *InventoryAdjustmentError) Unwrap() error {
	return e.Err
}

type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}
