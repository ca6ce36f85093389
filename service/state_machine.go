package application

import (
	"strings"

	"booking_service/domain"
)

// reserving statuses hold one unit of inventory against release.
func reserving(status domain.BookingStatus) bool {
	return status == domain.StatusConfirmed
}

// releasing statuses return a previously held unit to the available pool.
func releasing(status domain.BookingStatus) bool {
	switch status {
	case domain.StatusCompleted, domain.StatusCancelled, domain.StatusDeclined:
		return true
	}
	return false
}

// PlanTransition decides whether a requested status change is legal and what
// change it implies for the unit's available quantity. Positive delta returns
// a unit to the pool, negative delta consumes one. No I/O happens here.
//
// Leaving confirmed for any non-reserving status releases the held unit, so a
// confirmed -> pending downgrade counts as an undo of the reservation.
func PlanTransition(oldStatus, newStatus domain.BookingStatus, declineReason string) (int, error) {
	if !newStatus.Valid() {
		return 0, &domain.ValidationError{Message: "Unknown booking status: " + string(newStatus)}
	}

	if newStatus == domain.StatusDeclined && strings.TrimSpace(declineReason) == "" {
		return 0, &domain.ValidationError{Message: "Decline reason required"}
	}

	switch {
	case !reserving(oldStatus) && reserving(newStatus):
		return -1, nil
	case reserving(oldStatus) && !reserving(newStatus):
		return +1, nil
	}

	return 0, nil
}
