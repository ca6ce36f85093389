package store

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"booking_service/domain"
)

const (
	NOTIFICATION_COLLECTION = "notifications"
)

type NotificationMongoDBStore struct {
	notifications *mongo.Collection
	logger        *log.Logger
	tracer        trace.Tracer
}

func NewNotificationMongoDBStore(client *mongo.Client, tracer trace.Tracer, logger *log.Logger) domain.NotificationStore {
	notifications := client.Database(DATABASE).Collection(NOTIFICATION_COLLECTION)
	return &NotificationMongoDBStore{
		notifications: notifications,
		logger:        logger,
		tracer:        tracer,
	}
}

func (store *NotificationMongoDBStore) Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error) {
	ctx, span := store.tracer.Start(ctx, "NotificationMongoDBStore.Create")
	defer span.End()

	notification.ID = primitive.NewObjectID()
	result, err := store.notifications.InsertOne(ctx, notification)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Println(err)
		return nil, err
	}
	notification.ID = result.InsertedID.(primitive.ObjectID)
	return notification, nil
}

func (store *NotificationMongoDBStore) ListActive(ctx context.Context, bookingId string) ([]*domain.Notification, error) {
	ctx, span := store.tracer.Start(ctx, "NotificationMongoDBStore.ListActive")
	defer span.End()

	filter := bson.M{"bookingId": bookingId, "dismissed": false}
	return store.filter(ctx, filter)
}

func (store *NotificationMongoDBStore) MarkRead(ctx context.Context, notificationId string) error {
	ctx, span := store.tracer.Start(ctx, "NotificationMongoDBStore.MarkRead")
	defer span.End()

	return store.setFlag(ctx, span, notificationId, "read")
}

func (store *NotificationMongoDBStore) Dismiss(ctx context.Context, notificationId string) error {
	ctx, span := store.tracer.Start(ctx, "NotificationMongoDBStore.Dismiss")
	defer span.End()

	return store.setFlag(ctx, span, notificationId, "dismissed")
}

func (store *NotificationMongoDBStore) setFlag(ctx context.Context, span trace.Span, notificationId string, field string) error {
	id, err := primitive.ObjectIDFromHex(notificationId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	_, err = store.notifications.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: true}})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Println(err)
		return err
	}
	return nil
}

func (store *NotificationMongoDBStore) filter(ctx context.Context, filter interface{}) ([]*domain.Notification, error) {
	cursor, err := store.notifications.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decode(ctx, cursor)
}

func decode(ctx context.Context, cursor *mongo.Cursor) (notifications []*domain.Notification, err error) {
	for cursor.Next(ctx) {
		var notification domain.Notification
		err = cursor.Decode(&notification)
		if err != nil {
			return
		}
		notifications = append(notifications, &notification)
	}
	err = cursor.Err()
	return
}
