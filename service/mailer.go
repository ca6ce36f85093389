package application

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"gopkg.in/gomail.v2"

	"booking_service/domain"
)

var (
	smtpServer     = "smtp.office365.com"
	smtpServerPort = 587
	smtpEmail      = os.Getenv("SMTP_AUTH_MAIL")
	smtpPassword   = os.Getenv("SMTP_AUTH_PASSWORD")
)

type StatusMailer interface {
	SendStatusUpdateEmail(booking *domain.Booking, newStatus domain.BookingStatus) error
}

type SMTPStatusMailer struct {
	logger *logrus.Logger
}

func NewSMTPStatusMailer(logger *logrus.Logger) *SMTPStatusMailer {
	return &SMTPStatusMailer{
		logger: logger,
	}
}

func (mailer *SMTPStatusMailer) SendStatusUpdateEmail(booking *domain.Booking, newStatus domain.BookingStatus) error {
	email := strings.TrimSpace(booking.CustomerEmail)
	if email == "" {
		return errors.New("Empty email address")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", fmt.Sprintf("Your booking is now %s", newStatus))

	bodyString := fmt.Sprintf(
		"Hello %s,\n\nYour booking from %s to %s (pickup at %s) is now %s.",
		booking.CustomerName,
		booking.StartDate.Format("2006-01-02"),
		booking.EndDate.Format("2006-01-02"),
		booking.PickupLocation,
		newStatus,
	)
	if newStatus == domain.StatusDeclined && booking.DeclineReason != "" {
		bodyString += fmt.Sprintf("\n\nReason: %s", booking.DeclineReason)
	}
	m.SetBody("text", bodyString)

	client := gomail.NewDialer(smtpServer, smtpServerPort, smtpEmail, smtpPassword)

	if err := client.DialAndSend(m); err != nil {
		mailer.logger.Warnf("Failed to send status mail: %s", err)
		return err
	}

	return nil
}

func CircuitBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(
		gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     10 * time.Second,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Infof("Circuit Breaker '%s' changed from '%s' to '%s'", name, from, to)
			},
		},
	)
}
