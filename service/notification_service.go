package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"booking_service/domain"
)

type NotificationService struct {
	store  domain.NotificationStore
	tracer trace.Tracer
	logger *logrus.Logger
}

func NewNotificationService(store domain.NotificationStore, tracer trace.Tracer, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		tracer: tracer,
		logger: logger,
	}
}

// Reconcile derives which notification types the booking currently warrants
// and creates the ones that have no active record yet. Running it again on an
// unchanged booking creates nothing, and a dismissed notification is never
// flipped back.
func (service *NotificationService) Reconcile(ctx context.Context, booking *domain.Booking, now time.Time) ([]*domain.Notification, error) {
	ctx, span := service.tracer.Start(ctx, "NotificationService.Reconcile")
	defer span.End()

	candidates := candidateTypes(booking, now)
	if len(candidates) == 0 {
		return nil, nil
	}

	active, err := service.store.ListActive(ctx, booking.ID.String())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	existing := make(map[domain.NotificationType]bool, len(active))
	for _, notification := range active {
		existing[notification.Type] = true
	}

	var created []*domain.Notification
	for _, candidate := range candidates {
		if existing[candidate] {
			continue
		}

		notification, err := service.store.Create(ctx, &domain.Notification{
			BookingId: booking.ID.String(),
			Type:      candidate,
			CreatedAt: now,
		})
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return created, err
		}

		service.logger.Infof("notification %s created for booking %s", candidate, booking.ID)
		created = append(created, notification)
	}

	return created, nil
}

func (service *NotificationService) ListActive(ctx context.Context, bookingId string) ([]*domain.Notification, error) {
	ctx, span := service.tracer.Start(ctx, "NotificationService.ListActive")
	defer span.End()

	return service.store.ListActive(ctx, bookingId)
}

func (service *NotificationService) MarkRead(ctx context.Context, notificationId string) error {
	ctx, span := service.tracer.Start(ctx, "NotificationService.MarkRead")
	defer span.End()

	return service.store.MarkRead(ctx, notificationId)
}

func (service *NotificationService) Dismiss(ctx context.Context, notificationId string) error {
	ctx, span := service.tracer.Start(ctx, "NotificationService.Dismiss")
	defer span.End()

	return service.store.Dismiss(ctx, notificationId)
}

// candidateTypes is the fixed mapping from booking state to the notification
// types that state warrants.
func candidateTypes(booking *domain.Booking, now time.Time) []domain.NotificationType {
	var candidates []domain.NotificationType

	switch {
	case booking.Status == domain.StatusPending:
		candidates = append(candidates, domain.NotificationNewBooking)

	case booking.Status == domain.StatusConfirmed:
		if daysUntil(now, booking.StartDate) == 0 {
			candidates = append(candidates, domain.NotificationPickupToday)
		}
		if daysUntil(now, booking.EndDate) == 0 {
			candidates = append(candidates, domain.NotificationReturnToday)
		}
		if daysUntil(now, booking.EndDate) < 0 {
			candidates = append(candidates, domain.NotificationReturnOverdue)
		}

	case releasing(booking.Status):
		candidates = append(candidates, domain.NotificationStatusChange)
	}

	return candidates
}

// daysUntil counts whole calendar days from now to date, negative once the
// date has passed. Time-of-day is ignored on both sides.
func daysUntil(now, date time.Time) int {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := date.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
