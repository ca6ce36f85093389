package application

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"

	"booking_service/domain"
)

func newTestNotificationService() (*NotificationService, *fakeNotificationStore) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	store := &fakeNotificationStore{}
	return NewNotificationService(store, tracer, logger), store
}

func notificationTestBooking(status domain.BookingStatus, start, end time.Time) *domain.Booking {
	id, _ := gocql.RandomUUID()
	return &domain.Booking{
		ID:              id,
		CustomerName:    "Ana Reyes",
		CustomerEmail:   "ana.reyes@example.com",
		StartDate:       start,
		EndDate:         end,
		InventoryUnitId: "unit-1",
		Status:          status,
	}
}

func TestReconcileNewBooking(t *testing.T) {
	service, store := newTestNotificationService()
	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	booking := notificationTestBooking(domain.StatusPending, now.AddDate(0, 0, 5), now.AddDate(0, 0, 8))

	created, err := service.Reconcile(context.Background(), booking, now)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(created) != 1 || created[0].Type != domain.NotificationNewBooking {
		t.Fatalf("expected one new_booking notification, got %v", created)
	}
	if count := store.countByType(booking.ID.String(), domain.NotificationNewBooking); count != 1 {
		t.Errorf("expected one stored notification, got %d", count)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	service, store := newTestNotificationService()
	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	booking := notificationTestBooking(domain.StatusPending, now.AddDate(0, 0, 5), now.AddDate(0, 0, 8))

	if _, err := service.Reconcile(context.Background(), booking, now); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	created, err := service.Reconcile(context.Background(), booking, now)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}

	if len(created) != 0 {
		t.Errorf("expected no new notifications on unchanged state, got %d", len(created))
	}
	if count := store.countByType(booking.ID.String(), domain.NotificationNewBooking); count != 1 {
		t.Errorf("expected exactly one stored notification, got %d", count)
	}
}

func TestReconcilePickupToday(t *testing.T) {
	service, _ := newTestNotificationService()
	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	// starts later today, ends in three days
	booking := notificationTestBooking(domain.StatusConfirmed, now.Add(2*time.Hour), now.AddDate(0, 0, 3))

	created, err := service.Reconcile(context.Background(), booking, now)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if len(created) != 1 || created[0].Type != domain.NotificationPickupToday {
		t.Fatalf("expected one pickup_today notification, got %v", created)
	}
}

func TestReconcileReturnTodayAndOverdue(t *testing.T) {
	service, store := newTestNotificationService()
	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)

	dueToday := notificationTestBooking(domain.StatusConfirmed, now.AddDate(0, 0, -3), now)
	created, err := service.Reconcile(context.Background(), dueToday, now)
	if err != nil {
		t.Fatalf("reconcile due today: %v", err)
	}
	if len(created) != 1 || created[0].Type != domain.NotificationReturnToday {
		t.Fatalf("expected one return_today notification, got %v", created)
	}

	overdue := notificationTestBooking(domain.StatusConfirmed, now.AddDate(0, 0, -5), now.AddDate(0, 0, -2))
	created, err = service.Reconcile(context.Background(), overdue, now)
	if err != nil {
		t.Fatalf("reconcile overdue: %v", err)
	}
	if len(created) != 1 || created[0].Type != domain.NotificationReturnOverdue {
		t.Fatalf("expected one return_overdue notification, got %v", created)
	}
	if count := store.countByType(overdue.ID.String(), domain.NotificationReturnToday); count != 0 {
		t.Errorf("expected no return_today for an overdue booking, got %d", count)
	}
}

func TestReconcileQuietWhenNothingWarranted(t *testing.T) {
	service, _ := newTestNotificationService()
	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	booking := notificationTestBooking(domain.StatusConfirmed, now.AddDate(0, 0, 5), now.AddDate(0, 0, 8))

	created, err := service.Reconcile(context.Background(), booking, now)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("expected no notifications for a far-off confirmed booking, got %d", len(created))
	}
}

func TestReconcileTerminalStatuses(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusCompleted, domain.StatusCancelled, domain.StatusDeclined} {
		service, _ := newTestNotificationService()
		now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
		booking := notificationTestBooking(status, now.AddDate(0, 0, 2), now.AddDate(0, 0, 4))

		created, err := service.Reconcile(context.Background(), booking, now)
		if err != nil {
			t.Fatalf("%s: reconcile: %v", status, err)
		}
		if len(created) != 1 || created[0].Type != domain.NotificationStatusChange {
			t.Errorf("%s: expected one status_change notification, got %v", status, created)
		}
	}
}

func TestReconcileReadNotificationStillDedupes(t *testing.T) {
	service, store := newTestNotificationService()
	now := time.Date(2026, time.June, 15, 10, 0, 0, 0, time.UTC)
	booking := notificationTestBooking(domain.StatusPending, now.AddDate(0, 0, 5), now.AddDate(0, 0, 8))

	created, err := service.Reconcile(context.Background(), booking, now)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	// marking read keeps the notification active, only dismissal retires it
	store.mu.Lock()
	store.notifications[0].Read = true
	store.mu.Unlock()

	created, err = service.Reconcile(context.Background(), booking, now)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("expected a read-but-active notification to suppress duplicates, got %d new", len(created))
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)

	cases := []struct {
		date time.Time
		want int
	}{
		{time.Date(2026, time.March, 10, 0, 15, 0, 0, time.UTC), 0},
		{time.Date(2026, time.March, 11, 0, 15, 0, 0, time.UTC), 1},
		{time.Date(2026, time.March, 9, 23, 45, 0, 0, time.UTC), -1},
		{time.Date(2026, time.March, 17, 12, 0, 0, 0, time.UTC), 7},
	}

	for _, c := range cases {
		if got := daysUntil(now, c.date); got != c.want {
			t.Errorf("daysUntil(%s): expected %d, got %d", c.date, c.want, got)
		}
	}
}
