package domain

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gocql/gocql"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusDeclined  BookingStatus = "declined"
)

func (status BookingStatus) Valid() bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusDeclined:
		return true
	}
	return false
}

// cassandra
type Booking struct {
	ID              gocql.UUID    `json:"id" db:"booking_id"`
	CustomerName    string        `json:"customerName" db:"customer_name"`
	CustomerEmail   string        `json:"customerEmail" db:"customer_email"`
	CustomerPhone   string        `json:"customerPhone" db:"customer_phone"`
	StartDate       time.Time     `json:"startDate" db:"start_date"`
	EndDate         time.Time     `json:"endDate" db:"end_date"`
	TotalPrice      int           `json:"totalPrice" db:"total_price"`
	PickupLocation  string        `json:"pickupLocation" db:"pickup_location"`
	LicenseNumber   string        `json:"licenseNumber" db:"license_number"`
	InventoryUnitId string        `json:"inventoryUnitId" db:"unit_id"`
	Status          BookingStatus `json:"status" db:"status"`
	DeclineReason   string        `json:"declineReason" db:"decline_reason"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
}

// mongo
type InventoryUnit struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleId         string             `bson:"vehicleId,omitempty" json:"vehicleId"`
	TotalQuantity     int                `bson:"totalQuantity" json:"totalQuantity"`
	AvailableQuantity int                `bson:"availableQuantity" json:"availableQuantity"`
}

type NotificationType string

const (
	NotificationNewBooking    NotificationType = "new_booking"
	NotificationPickupToday   NotificationType = "pickup_today"
	NotificationReturnToday   NotificationType = "return_today"
	NotificationReturnOverdue NotificationType = "return_overdue"
	NotificationStatusChange  NotificationType = "status_change"
)

type Notification struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	BookingId string             `bson:"bookingId,omitempty" json:"bookingId"`
	Type      NotificationType   `bson:"type,omitempty" json:"type"`
	Read      bool               `bson:"read" json:"read"`
	Dismissed bool               `bson:"dismissed" json:"dismissed"`
	CreatedAt time.Time          `bson:"createdAt,omitempty" json:"createdAt"`
}

type Bookings []*Booking
type Notifications []*Notification

func (o *Booking) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}

func (o *Booking) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(o)
}

func (o *Bookings) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}

func (o *Notifications) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}
