package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"booking_service/domain"
	application "booking_service/service"
)

var validate = validator.New()

type BookingHandler struct {
	service       *application.BookingService
	notifications *application.NotificationService
	tracer        trace.Tracer
	logger        *logrus.Logger
}

func NewBookingHandler(service *application.BookingService, notifications *application.NotificationService,
	tracer trace.Tracer, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		service:       service,
		notifications: notifications,
		tracer:        tracer,
		logger:        logger,
	}
}

func (handler *BookingHandler) Init(router *mux.Router) {
	router.Use(ExtractTraceInfoMiddleware)

	router.HandleFunc("/bookings", handler.CreateBooking).Methods("POST")
	router.HandleFunc("/bookings/{id}", handler.GetBooking).Methods("GET")
	router.HandleFunc("/bookings/{id}", handler.DeleteBooking).Methods("DELETE")
	router.HandleFunc("/bookings/{id}/status", handler.ChangeBookingStatus).Methods("PATCH")
	router.HandleFunc("/bookings/unit/{unitId}", handler.GetBookingsByUnit).Methods("GET")
	router.HandleFunc("/bookings/customer/{email}", handler.GetBookingsByCustomer).Methods("GET")
	router.HandleFunc("/inventory/{unitId}", handler.GetInventoryUnit).Methods("GET")
	router.HandleFunc("/notifications/{bookingId}", handler.GetActiveNotifications).Methods("GET")
	router.HandleFunc("/notifications/{id}/read", handler.MarkNotificationRead).Methods("PATCH")
	router.HandleFunc("/notifications/{id}/dismiss", handler.DismissNotification).Methods("PATCH")
}

type createBookingRequest struct {
	CustomerName    string    `json:"customerName" validate:"required"`
	CustomerEmail   string    `json:"customerEmail" validate:"required,email"`
	CustomerPhone   string    `json:"customerPhone" validate:"required"`
	StartDate       time.Time `json:"startDate" validate:"required"`
	EndDate         time.Time `json:"endDate" validate:"required"`
	TotalPrice      int       `json:"totalPrice" validate:"gte=0"`
	PickupLocation  string    `json:"pickupLocation" validate:"required"`
	LicenseNumber   string    `json:"licenseNumber" validate:"required"`
	InventoryUnitId string    `json:"inventoryUnitId" validate:"required"`
}

type changeStatusRequest struct {
	Status        domain.BookingStatus `json:"status" validate:"required"`
	DeclineReason string               `json:"declineReason"`
}

func (handler *BookingHandler) CreateBooking(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.CreateBooking")
	defer span.End()

	var request createBookingRequest
	err := json.NewDecoder(req.Body).Decode(&request)
	if err != nil {
		handler.logger.Warnln(err)
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(request); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	if !request.EndDate.After(request.StartDate) {
		http.Error(writer, "Rental end date must be after the start date", http.StatusBadRequest)
		return
	}

	booking := &domain.Booking{
		CustomerName:    request.CustomerName,
		CustomerEmail:   request.CustomerEmail,
		CustomerPhone:   request.CustomerPhone,
		StartDate:       request.StartDate,
		EndDate:         request.EndDate,
		TotalPrice:      request.TotalPrice,
		PickupLocation:  request.PickupLocation,
		LicenseNumber:   request.LicenseNumber,
		InventoryUnitId: request.InventoryUnitId,
	}

	created, err := handler.service.CreateBooking(ctx, booking)
	if err != nil {
		handler.writeError(writer, err)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	created.ToJSON(writer)
}

func (handler *BookingHandler) GetBooking(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.GetBooking")
	defer span.End()

	vars := mux.Vars(req)
	booking, err := handler.service.GetBooking(ctx, vars["id"])
	if err != nil {
		writer.WriteHeader(http.StatusNotFound)
		return
	}
	jsonResponse(booking, writer)
}

func (handler *BookingHandler) GetBookingsByUnit(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.GetBookingsByUnit")
	defer span.End()

	vars := mux.Vars(req)
	bookings, err := handler.service.GetBookingsByUnit(ctx, vars["unitId"])
	if err != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	jsonResponse(bookings, writer)
}

func (handler *BookingHandler) GetBookingsByCustomer(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.GetBookingsByCustomer")
	defer span.End()

	vars := mux.Vars(req)
	bookings, err := handler.service.GetBookingsByCustomer(ctx, vars["email"])
	if err != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	jsonResponse(bookings, writer)
}

func (handler *BookingHandler) ChangeBookingStatus(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.ChangeBookingStatus")
	defer span.End()

	vars := mux.Vars(req)

	var request changeStatusRequest
	err := json.NewDecoder(req.Body).Decode(&request)
	if err != nil {
		handler.logger.Warnln(err)
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	if err := validate.Struct(request); err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	booking, err := handler.service.ChangeStatus(ctx, vars["id"], request.Status, request.DeclineReason)
	if err != nil {
		handler.writeError(writer, err)
		return
	}

	jsonResponse(booking, writer)
}

func (handler *BookingHandler) DeleteBooking(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.DeleteBooking")
	defer span.End()

	vars := mux.Vars(req)
	if err := handler.service.DeleteBooking(ctx, vars["id"]); err != nil {
		handler.writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}

func (handler *BookingHandler) GetInventoryUnit(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.GetInventoryUnit")
	defer span.End()

	vars := mux.Vars(req)
	unit, err := handler.service.GetInventoryUnit(ctx, vars["unitId"])
	if err != nil {
		writer.WriteHeader(http.StatusNotFound)
		return
	}
	jsonResponse(unit, writer)
}

func (handler *BookingHandler) GetActiveNotifications(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.GetActiveNotifications")
	defer span.End()

	vars := mux.Vars(req)
	notifications, err := handler.notifications.ListActive(ctx, vars["bookingId"])
	if err != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	jsonResponse(notifications, writer)
}

func (handler *BookingHandler) MarkNotificationRead(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.MarkNotificationRead")
	defer span.End()

	vars := mux.Vars(req)
	if err := handler.notifications.MarkRead(ctx, vars["id"]); err != nil {
		handler.writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusOK)
}

func (handler *BookingHandler) DismissNotification(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.DismissNotification")
	defer span.End()

	vars := mux.Vars(req)
	if err := handler.notifications.Dismiss(ctx, vars["id"]); err != nil {
		handler.writeError(writer, err)
		return
	}
	writer.WriteHeader(http.StatusOK)
}

func (handler *BookingHandler) writeError(writer http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var inventoryErr *domain.InsufficientInventoryError
	var adjustmentErr *domain.InventoryAdjustmentError

	switch {
	case errors.Is(err, domain.ErrBookingNotFound):
		http.Error(writer, domain.ErrBookingNotFound.Error(), http.StatusNotFound)
	case errors.As(err, &validationErr):
		http.Error(writer, validationErr.Message, http.StatusBadRequest)
	case errors.As(err, &inventoryErr):
		http.Error(writer, err.Error(), http.StatusConflict)
	case errors.As(err, &adjustmentErr):
		http.Error(writer, err.Error(), http.StatusBadGateway)
	default:
		handler.logger.Warnln(err)
		http.Error(writer, err.Error(), http.StatusInternalServerError)
	}
}

func jsonResponse(object interface{}, writer http.ResponseWriter) {
	resp, err := json.Marshal(object)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)
		return
	}
	writer.Write(resp)
}

func ExtractTraceInfoMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
