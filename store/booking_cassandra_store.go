package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	// NoSQL: module containing Cassandra api client
	"github.com/gocql/gocql"

	"booking_service/domain"
)

const bookingColumns = `unit_id, booking_id, customer_name, customer_email, customer_phone,
		start_date, end_date, total_price, pickup_location, license_number,
		status, decline_reason, created_at, updated_at`

type BookingCassandraStore struct {
	session *gocql.Session
	logger  *log.Logger
	tracer  trace.Tracer
}

func NewBookingCassandraStore(tracer trace.Tracer, logger *log.Logger) (*BookingCassandraStore, error) {

	db := os.Getenv("BOOKING_DB_HOST")

	// Connect to default keyspace
	cluster := gocql.NewCluster(db)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logger.Println(err)
		return nil, err
	}

	// Create 'booking' keyspace
	err = session.Query(
		fmt.Sprintf(`CREATE KEYSPACE IF NOT EXISTS %s
					WITH replication = {
						'class' : 'SimpleStrategy',
						'replication_factor' : %d
					}`, "booking", 1)).Exec()
	if err != nil {
		logger.Println(err)
	}
	session.Close()

	// Connect to booking keyspace
	cluster.Keyspace = "booking"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logger.Println(err)
		return nil, err
	}

	return &BookingCassandraStore{
		session: session,
		logger:  logger,
		tracer:  tracer,
	}, nil
}

// Disconnect from database
func (bs *BookingCassandraStore) CloseSession() {
	bs.session.Close()
}

// Create tables
func (bs *BookingCassandraStore) CreateTables() {

	err := bs.session.Query(
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s
					(unit_id text, booking_id UUID, customer_name text, customer_email text,
					customer_phone text, start_date timestamp, end_date timestamp, total_price int,
					pickup_location text, license_number text, status text, decline_reason text,
					created_at timestamp, updated_at timestamp,
					PRIMARY KEY ((unit_id), booking_id))
					WITH CLUSTERING ORDER BY (booking_id ASC)`, "bookings")).Exec()
	if err != nil {
		bs.logger.Println(err)
	}
}

func (bs *BookingCassandraStore) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	ctx, span := bs.tracer.Start(ctx, "BookingCassandraStore.Insert")
	defer span.End()

	bookingId, _ := gocql.RandomUUID()

	err := bs.session.Query(
		fmt.Sprintf(`INSERT INTO bookings (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, bookingColumns),
		booking.InventoryUnitId, bookingId, booking.CustomerName, booking.CustomerEmail,
		booking.CustomerPhone, booking.StartDate, booking.EndDate, booking.TotalPrice,
		booking.PickupLocation, booking.LicenseNumber, string(booking.Status), booking.DeclineReason,
		booking.CreatedAt, booking.UpdatedAt).WithContext(ctx).Exec()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		bs.logger.Println(err)
		return nil, err
	}

	created := *booking
	created.ID = bookingId

	return &created, nil
}

func (bs *BookingCassandraStore) GetByID(ctx context.Context, bookingId string) (*domain.Booking, error) {
	ctx, span := bs.tracer.Start(ctx, "BookingCassandraStore.GetByID")
	defer span.End()

	parsedUUID, err := gocql.ParseUUID(bookingId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		bs.logger.Println("Error parsing UUID:", err, bookingId)
		return nil, err
	}

	scanner := bs.session.Query(
		fmt.Sprintf(`SELECT %s FROM bookings WHERE booking_id = ? ALLOW FILTERING`, bookingColumns),
		parsedUUID).WithContext(ctx).Iter().Scanner()

	var booking domain.Booking
	found := false
	for scanner.Next() {
		err := scanInto(scanner, &booking)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			bs.logger.Println(err)
			return nil, err
		}
		found = true
	}

	if err := scanner.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		bs.logger.Println(err)
		return nil, err
	}

	if !found {
		span.SetStatus(codes.Error, domain.ErrBookingNotFound.Error())
		return nil, domain.ErrBookingNotFound
	}

	return &booking, nil
}

func (bs *BookingCassandraStore) GetByUnit(ctx context.Context, unitId string) (domain.Bookings, error) {
	ctx, span := bs.tracer.Start(ctx, "BookingCassandraStore.GetByUnit")
	defer span.End()

	scanner := bs.session.Query(
		fmt.Sprintf(`SELECT %s FROM bookings WHERE unit_id = ?`, bookingColumns),
		unitId).WithContext(ctx).Iter().Scanner()

	return bs.scanAll(span, scanner)
}

func (bs *BookingCassandraStore) GetByCustomer(ctx context.Context, email string) (domain.Bookings, error) {
	ctx, span := bs.tracer.Start(ctx, "BookingCassandraStore.GetByCustomer")
	defer span.End()

	scanner := bs.session.Query(
		fmt.Sprintf(`SELECT %s FROM bookings WHERE customer_email = ? ALLOW FILTERING`, bookingColumns),
		email).WithContext(ctx).Iter().Scanner()

	return bs.scanAll(span, scanner)
}

func (bs *BookingCassandraStore) UpdateStatus(ctx context.Context, booking *domain.Booking, status domain.BookingStatus, declineReason string) error {
	ctx, span := bs.tracer.Start(ctx, "BookingCassandraStore.UpdateStatus")
	defer span.End()

	err := bs.session.Query(
		`UPDATE bookings SET status = ?, decline_reason = ?, updated_at = ? WHERE unit_id = ? AND booking_id = ?`,
		string(status), declineReason, time.Now(), booking.InventoryUnitId, booking.ID).WithContext(ctx).Exec()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		bs.logger.Println(err)
		return err
	}

	return nil
}

func (bs *BookingCassandraStore) Delete(ctx context.Context, bookingId string) error {
	ctx, span := bs.tracer.Start(ctx, "BookingCassandraStore.Delete")
	defer span.End()

	booking, err := bs.GetByID(ctx, bookingId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		bs.logger.Println(err)
		return err
	}

	err = bs.session.Query(
		`DELETE FROM bookings WHERE unit_id = ? AND booking_id = ?`,
		booking.InventoryUnitId, booking.ID).WithContext(ctx).Exec()
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		bs.logger.Println(err)
		return err
	}

	return nil
}

func (bs *BookingCassandraStore) scanAll(span trace.Span, scanner gocql.Scanner) (domain.Bookings, error) {
	var bookings domain.Bookings
	for scanner.Next() {
		var b domain.Booking
		err := scanInto(scanner, &b)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			bs.logger.Println(err)
			return nil, err
		}

		bookings = append(bookings, &b)
	}
	if err := scanner.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		bs.logger.Println(err)
		return nil, err
	}
	return bookings, nil
}

func scanInto(scanner gocql.Scanner, b *domain.Booking) error {
	var status string
	err := scanner.Scan(
		&b.InventoryUnitId,
		&b.ID,
		&b.CustomerName,
		&b.CustomerEmail,
		&b.CustomerPhone,
		&b.StartDate,
		&b.EndDate,
		&b.TotalPrice,
		&b.PickupLocation,
		&b.LicenseNumber,
		&status,
		&b.DeclineReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	b.Status = domain.BookingStatus(status)
	return err
}
