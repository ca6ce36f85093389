package startup

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"

	"booking_service/cache"
	"booking_service/handlers"
	application "booking_service/service"
	"booking_service/startup/config"
	"booking_service/store"
)

type Server struct {
	config *config.Config
}

var Logger = logrus.New()

const (
	LogFilePath = "/app/logs/booking.log"
)

type CustomFormatter struct{}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	msg := fmt.Sprintf("[%s] [%s] %s\n",
		entry.Time.Format("2006-01-02T15:04:05Z07:00"),
		entry.Level,
		entry.Message,
	)

	return []byte(msg), nil
}

func initLogger() {
	writer, err := rotatelogs.New(
		LogFilePath+"_%Y%m%d%H%M",
		rotatelogs.WithRotationTime(15*time.Minute),
	)
	if err != nil {
		Logger.Warnf("Failed to create rotatelogs hook, logging to stdout: %v", err)
	} else {
		Logger.SetOutput(writer)
	}

	Logger.SetFormatter(&CustomFormatter{})
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
	}
}

func (server *Server) initMongoClient(httpClient *http.Client) *mongo.Client {
	client, err := store.GetClientWithHTTPConfig(server.config.InventoryDBHost, server.config.InventoryDBPort, httpClient)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) Start() {

	initLogger()

	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	mongoClient := server.initMongoClient(httpClient)
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		err := mongoClient.Disconnect(ctx)
		if err != nil {
			log.Println(err)
		}
	}(mongoClient, context.Background())

	ctx := context.Background()
	exp, err := newExporter(server.config.JaegerAddress)
	if err != nil {
		log.Fatalf("Failed to Initialize Exporter: %v", err)
	}

	tp := newTraceProvider(exp)
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("booking_service")
	otel.SetTextMapPropagator(propagation.TraceContext{})

	storeLogger := log.New(os.Stdout, "[booking-store] ", log.LstdFlags)
	cacheLogger := log.New(os.Stdout, "[inventory-cache] ", log.LstdFlags)

	bookingStore, err := store.NewBookingCassandraStore(tracer, storeLogger)
	if err != nil {
		log.Fatal(err)
	}
	defer bookingStore.CloseSession()
	bookingStore.CreateTables()

	inventoryStore := store.NewInventoryMongoDBStore(mongoClient, tracer, storeLogger)
	notificationStore := store.NewNotificationMongoDBStore(mongoClient, tracer, storeLogger)

	availabilityCache, err := cache.New(cacheLogger, tracer)
	if err != nil {
		log.Fatal(err)
	}
	availabilityCache.Ping()

	notificationService := application.NewNotificationService(notificationStore, tracer, Logger)
	mailer := application.NewSMTPStatusMailer(Logger)
	bookingService := application.NewBookingService(bookingStore, inventoryStore, availabilityCache,
		notificationService, mailer, tracer, Logger)

	bookingHandler := handlers.NewBookingHandler(bookingService, notificationService, tracer, Logger)

	server.start(bookingHandler)
}

func (server *Server) start(bookingHandler *handlers.BookingHandler) {
	router := mux.NewRouter()
	router.Use(MiddlewareContentTypeSet)
	bookingHandler.Init(router)

	cors := gorillaHandlers.CORS(gorillaHandlers.AllowedOrigins([]string{"*"}))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", server.config.Port),
		Handler:      cors(router),
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	wait := time.Second * 15
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Error Shutting Down Server %s", err)
	}
	log.Println("Server Gracefully Stopped")
}

func newExporter(address string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(address)))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func newTraceProvider(exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("booking_service"),
		),
	)

	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Add("Content-Type", "application/json")
		rw.Header().Set("X-Content-Type-Options", "nosniff")

		next.ServeHTTP(rw, h)
	})
}
