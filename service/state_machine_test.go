package application

import (
	"errors"
	"testing"

	"booking_service/domain"
)

// Every cell of the 5x5 transition matrix. Only entering or leaving confirmed
// moves inventory; declined transitions carry a reason here so the reason
// check does not interfere with the delta table.
func TestPlanTransitionMatrix(t *testing.T) {
	cases := []struct {
		from  domain.BookingStatus
		to    domain.BookingStatus
		delta int
	}{
		{domain.StatusPending, domain.StatusPending, 0},
		{domain.StatusPending, domain.StatusConfirmed, -1},
		{domain.StatusPending, domain.StatusCompleted, 0},
		{domain.StatusPending, domain.StatusCancelled, 0},
		{domain.StatusPending, domain.StatusDeclined, 0},

		{domain.StatusConfirmed, domain.StatusPending, +1},
		{domain.StatusConfirmed, domain.StatusConfirmed, 0},
		{domain.StatusConfirmed, domain.StatusCompleted, +1},
		{domain.StatusConfirmed, domain.StatusCancelled, +1},
		{domain.StatusConfirmed, domain.StatusDeclined, +1},

		{domain.StatusCompleted, domain.StatusPending, 0},
		{domain.StatusCompleted, domain.StatusConfirmed, -1},
		{domain.StatusCompleted, domain.StatusCompleted, 0},
		{domain.StatusCompleted, domain.StatusCancelled, 0},
		{domain.StatusCompleted, domain.StatusDeclined, 0},

		{domain.StatusCancelled, domain.StatusPending, 0},
		{domain.StatusCancelled, domain.StatusConfirmed, -1},
		{domain.StatusCancelled, domain.StatusCompleted, 0},
		{domain.StatusCancelled, domain.StatusCancelled, 0},
		{domain.StatusCancelled, domain.StatusDeclined, 0},

		{domain.StatusDeclined, domain.StatusPending, 0},
		{domain.StatusDeclined, domain.StatusConfirmed, -1},
		{domain.StatusDeclined, domain.StatusCompleted, 0},
		{domain.StatusDeclined, domain.StatusCancelled, 0},
		{domain.StatusDeclined, domain.StatusDeclined, 0},
	}

	if len(cases) != 25 {
		t.Fatalf("transition matrix must cover all 25 pairs, has %d", len(cases))
	}

	for _, c := range cases {
		delta, err := PlanTransition(c.from, c.to, "vehicle unavailable")
		if err != nil {
			t.Errorf("%s -> %s: unexpected error: %v", c.from, c.to, err)
			continue
		}
		if delta != c.delta {
			t.Errorf("%s -> %s: expected delta %+d, got %+d", c.from, c.to, c.delta, delta)
		}
	}
}

func TestPlanTransitionDeclineReasonRequired(t *testing.T) {
	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := PlanTransition(domain.StatusPending, domain.StatusDeclined, reason)

		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("reason %q: expected ValidationError, got: %v", reason, err)
		}
	}
}

func TestPlanTransitionDeclineWithReason(t *testing.T) {
	delta, err := PlanTransition(domain.StatusConfirmed, domain.StatusDeclined, "no valid license presented")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delta != 1 {
		t.Errorf("expected delta +1, got %+d", delta)
	}
}

func TestPlanTransitionUnknownStatus(t *testing.T) {
	_, err := PlanTransition(domain.StatusPending, domain.BookingStatus("archived"), "")

	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got: %v", err)
	}
}
