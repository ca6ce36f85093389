package store

import (
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"booking_service/domain"
)

const (
	DATABASE             = "rental"
	INVENTORY_COLLECTION = "inventory_units"
)

type InventoryMongoDBStore struct {
	units  *mongo.Collection
	logger *log.Logger
	tracer trace.Tracer
}

func NewInventoryMongoDBStore(client *mongo.Client, tracer trace.Tracer, logger *log.Logger) domain.InventoryStore {
	units := client.Database(DATABASE).Collection(INVENTORY_COLLECTION)
	return &InventoryMongoDBStore{
		units:  units,
		logger: logger,
		tracer: tracer,
	}
}

func (store *InventoryMongoDBStore) Insert(ctx context.Context, unit *domain.InventoryUnit) (*domain.InventoryUnit, error) {
	ctx, span := store.tracer.Start(ctx, "InventoryMongoDBStore.Insert")
	defer span.End()

	unit.ID = primitive.NewObjectID()
	result, err := store.units.InsertOne(ctx, unit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Println(err)
		return nil, err
	}
	unit.ID = result.InsertedID.(primitive.ObjectID)
	return unit, nil
}

func (store *InventoryMongoDBStore) Get(ctx context.Context, unitId string) (*domain.InventoryUnit, error) {
	ctx, span := store.tracer.Start(ctx, "InventoryMongoDBStore.Get")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(unitId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var unit domain.InventoryUnit
	err = store.units.FindOne(ctx, bson.M{"_id": id}).Decode(&unit)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Println(err)
		return nil, err
	}
	return &unit, nil
}

func (store *InventoryMongoDBStore) GetAvailable(ctx context.Context, unitId string) (int, error) {
	ctx, span := store.tracer.Start(ctx, "InventoryMongoDBStore.GetAvailable")
	defer span.End()

	unit, err := store.Get(ctx, unitId)
	if err != nil {
		return 0, err
	}
	return unit.AvailableQuantity, nil
}

// AdjustQuantity moves the available counter by delta in one guarded update.
// The filter proves the adjusted value stays inside [0, totalQuantity] before
// anything is written, so concurrent adjustments from any number of service
// instances cannot drive the counter out of bounds.
func (store *InventoryMongoDBStore) AdjustQuantity(ctx context.Context, unitId string, delta int) error {
	ctx, span := store.tracer.Start(ctx, "InventoryMongoDBStore.AdjustQuantity")
	defer span.End()

	if delta == 0 {
		return nil
	}

	id, err := primitive.ObjectIDFromHex(unitId)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	filter := bson.M{
		"_id":               id,
		"availableQuantity": bson.M{"$gte": -delta},
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$availableQuantity", delta}},
			"$totalQuantity",
		}},
	}
	update := bson.M{"$inc": bson.M{"availableQuantity": delta}}

	result, err := store.units.UpdateOne(ctx, filter, update)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		store.logger.Println(err)
		return err
	}

	if result.MatchedCount == 0 {
		// The guard filter also fails to match when the unit itself is gone,
		// so look the document up before blaming the quantity bounds.
		if _, getErr := store.Get(ctx, unitId); getErr != nil {
			span.SetStatus(codes.Error, "Inventory unit not found")
			return errors.New("Inventory unit not found")
		}
		span.SetStatus(codes.Error, "Inventory adjustment rejected")
		return errors.New("Inventory adjustment rejected. Quantity would leave the allowed range.")
	}

	return nil
}
