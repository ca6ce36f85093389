package domain

import "context"

type BookingStore interface {
	Insert(ctx context.Context, booking *Booking) (*Booking, error)
	GetByID(ctx context.Context, bookingId string) (*Booking, error)
	GetByUnit(ctx context.Context, unitId string) (Bookings, error)
	GetByCustomer(ctx context.Context, email string) (Bookings, error)
	UpdateStatus(ctx context.Context, booking *Booking, status BookingStatus, declineReason string) error
	Delete(ctx context.Context, bookingId string) error
}
