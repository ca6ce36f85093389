package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"booking_service/domain"
)

// Timeout for each individual write against a repository. An inventory write
// that times out is compensated exactly like an explicit failure.
const opTimeout = 5 * time.Second

type BookingService struct {
	bookings      domain.BookingStore
	inventory     domain.InventoryStore
	cache         domain.AvailabilityCache
	notifications *NotificationService
	mailer        StatusMailer
	cb            *gobreaker.CircuitBreaker
	tracer        trace.Tracer
	logger        *logrus.Logger
}

func NewBookingService(bookings domain.BookingStore, inventory domain.InventoryStore,
	cache domain.AvailabilityCache, notifications *NotificationService,
	mailer StatusMailer, tracer trace.Tracer, logger *logrus.Logger) *BookingService {
	return &BookingService{
		bookings:      bookings,
		inventory:     inventory,
		cache:         cache,
		notifications: notifications,
		mailer:        mailer,
		cb:            CircuitBreaker("statusMailer", logger),
		tracer:        tracer,
		logger:        logger,
	}
}

func (service *BookingService) CreateBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.CreateBooking")
	defer span.End()

	if _, err := service.inventory.Get(ctx, booking.InventoryUnitId); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.RepositoryError{Op: "load inventory unit", Err: err}
	}

	now := time.Now()
	booking.Status = domain.StatusPending
	booking.DeclineReason = ""
	booking.CreatedAt = now
	booking.UpdatedAt = now

	created, err := service.bookings.Insert(ctx, booking)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.RepositoryError{Op: "insert booking", Err: err}
	}

	if _, err := service.notifications.Reconcile(ctx, created, time.Now()); err != nil {
		service.logger.Warnf("notification reconcile failed for new booking %s: %v", created.ID, err)
	}

	return created, nil
}

func (service *BookingService) GetBooking(ctx context.Context, bookingId string) (*domain.Booking, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.GetBooking")
	defer span.End()

	return service.bookings.GetByID(ctx, bookingId)
}

func (service *BookingService) GetBookingsByUnit(ctx context.Context, unitId string) (domain.Bookings, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.GetBookingsByUnit")
	defer span.End()

	return service.bookings.GetByUnit(ctx, unitId)
}

func (service *BookingService) GetBookingsByCustomer(ctx context.Context, email string) (domain.Bookings, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.GetBookingsByCustomer")
	defer span.End()

	return service.bookings.GetByCustomer(ctx, email)
}

func (service *BookingService) GetInventoryUnit(ctx context.Context, unitId string) (*domain.InventoryUnit, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.GetInventoryUnit")
	defer span.End()

	return service.inventory.Get(ctx, unitId)
}

// ChangeStatus is the single entry point for moving a booking through its
// lifecycle. The booking record and the inventory counter live in different
// stores and fail independently; the booking status is written first and
// reverted if the inventory write cannot follow, so the caller never observes
// a committed inconsistent pair.
func (service *BookingService) ChangeStatus(ctx context.Context, bookingId string, newStatus domain.BookingStatus, declineReason string) (*domain.Booking, error) {
	ctx, span := service.tracer.Start(ctx, "BookingService.ChangeStatus")
	defer span.End()

	opId := uuid.NewString()

	booking, err := service.bookings.GetByID(ctx, bookingId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.RepositoryError{Op: "load booking", Err: err}
	}

	oldStatus := booking.Status
	oldReason := booking.DeclineReason

	delta, err := PlanTransition(oldStatus, newStatus, declineReason)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if newStatus != domain.StatusDeclined {
		declineReason = ""
	}

	if delta < 0 {
		available, err := service.availableUnits(ctx, booking.InventoryUnitId)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, &domain.RepositoryError{Op: "read availability", Err: err}
		}
		if available <= 0 {
			span.SetStatus(codes.Error, "Insufficient inventory")
			return nil, &domain.InsufficientInventoryError{UnitId: booking.InventoryUnitId}
		}
	}

	writeCtx, cancelWrite := context.WithTimeout(ctx, opTimeout)
	err = service.bookings.UpdateStatus(writeCtx, booking, newStatus, declineReason)
	cancelWrite()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, &domain.RepositoryError{Op: "update booking status", Err: err}
	}

	if delta != 0 {
		adjustCtx, cancelAdjust := context.WithTimeout(ctx, opTimeout)
		err = service.inventory.AdjustQuantity(adjustCtx, booking.InventoryUnitId, delta)
		cancelAdjust()
		if err != nil {
			service.logger.Warnf("[%s] inventory adjustment failed for unit %s, reverting booking %s to %s: %v",
				opId, booking.InventoryUnitId, bookingId, oldStatus, err)

			// The original request context may already be dead here, the
			// revert must still be attempted.
			revertCtx, cancelRevert := context.WithTimeout(context.Background(), opTimeout)
			revertErr := service.bookings.UpdateStatus(revertCtx, booking, oldStatus, oldReason)
			cancelRevert()
			if revertErr != nil {
				service.logger.Errorf("[%s] failed to revert booking %s to %s: %v", opId, bookingId, oldStatus, revertErr)
			}

			span.SetStatus(codes.Error, err.Error())
			return nil, &domain.InventoryAdjustmentError{
				UnitId:         booking.InventoryUnitId,
				StatusReverted: revertErr == nil,
				Err:            err,
			}
		}

		if service.cache != nil {
			if err := service.cache.Invalidate(ctx, booking.InventoryUnitId); err != nil {
				service.logger.Warnf("[%s] availability cache invalidation failed for unit %s: %v", opId, booking.InventoryUnitId, err)
			}
		}
	}

	booking.Status = newStatus
	booking.DeclineReason = declineReason
	booking.UpdatedAt = time.Now()

	if _, err := service.notifications.Reconcile(ctx, booking, time.Now()); err != nil {
		service.logger.Warnf("[%s] notification reconcile failed for booking %s: %v", opId, bookingId, err)
	}

	service.sendStatusMail(booking, newStatus, opId)

	return booking, nil
}

// DeleteBooking removes a booking record for good. A confirmed booking still
// holds a unit, which has to go back to the pool before the record disappears.
func (service *BookingService) DeleteBooking(ctx context.Context, bookingId string) error {
	ctx, span := service.tracer.Start(ctx, "BookingService.DeleteBooking")
	defer span.End()

	booking, err := service.bookings.GetByID(ctx, bookingId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &domain.RepositoryError{Op: "load booking", Err: err}
	}

	if booking.Status == domain.StatusConfirmed {
		adjustCtx, cancelAdjust := context.WithTimeout(ctx, opTimeout)
		err = service.inventory.AdjustQuantity(adjustCtx, booking.InventoryUnitId, 1)
		cancelAdjust()
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return &domain.InventoryAdjustmentError{UnitId: booking.InventoryUnitId, Err: err}
		}

		if service.cache != nil {
			if err := service.cache.Invalidate(ctx, booking.InventoryUnitId); err != nil {
				service.logger.Warnf("availability cache invalidation failed for unit %s: %v", booking.InventoryUnitId, err)
			}
		}
	}

	if err := service.bookings.Delete(ctx, bookingId); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return &domain.RepositoryError{Op: "delete booking", Err: err}
	}

	return nil
}

// availableUnits reads the cached availability when possible and falls back
// to the inventory store. Staleness is acceptable, the storage-level guard in
// AdjustQuantity is what actually protects the counter.
func (service *BookingService) availableUnits(ctx context.Context, unitId string) (int, error) {
	if service.cache != nil {
		if available, err := service.cache.Get(ctx, unitId); err == nil {
			return available, nil
		}
	}

	available, err := service.inventory.GetAvailable(ctx, unitId)
	if err != nil {
		return 0, err
	}

	if service.cache != nil {
		if err := service.cache.Post(ctx, unitId, available); err != nil {
			service.logger.Warnf("availability cache write failed for unit %s: %v", unitId, err)
		}
	}
	return available, nil
}

// The status change is already durable at this point. Mail delivery is
// best-effort and must never trigger compensation, failures only surface as
// warnings in the log.
func (service *BookingService) sendStatusMail(booking *domain.Booking, newStatus domain.BookingStatus, opId string) {
	snapshot := *booking
	go func() {
		_, err := service.cb.Execute(func() (interface{}, error) {
			return nil, service.mailer.SendStatusUpdateEmail(&snapshot, newStatus)
		})
		if err != nil {
			service.logger.Warnf("[%s] status mail for booking %s not delivered: %v", opId, snapshot.ID, err)
		}
	}()
}
