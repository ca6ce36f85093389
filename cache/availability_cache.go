package cache

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const availabilityTTL = 30 * time.Second

type AvailabilityCache struct {
	cli    *redis.Client
	logger *log.Logger
	tracer trace.Tracer
}

// Construct Redis client
func New(logger *log.Logger, tracer trace.Tracer) (*AvailabilityCache, error) {
	redisHost := os.Getenv("INVENTORY_CACHE_HOST")
	redisPort := os.Getenv("INVENTORY_CACHE_PORT")
	redisAddress := fmt.Sprintf("%s:%s", redisHost, redisPort)

	client := redis.NewClient(&redis.Options{
		Addr: redisAddress,
	})

	return &AvailabilityCache{
		cli:    client,
		logger: logger,
		tracer: tracer,
	}, nil
}

// Check connection function
func (ac *AvailabilityCache) Ping() {
	val, _ := ac.cli.Ping().Result()
	ac.logger.Println(val)
}

func (ac *AvailabilityCache) Post(ctx context.Context, unitId string, available int) error {
	ctx, span := ac.tracer.Start(ctx, "AvailabilityCache.Post")
	defer span.End()

	err := ac.cli.Set(constructKey(unitId), strconv.Itoa(available), availabilityTTL).Err()
	if err != nil {
		span.SetStatus(codes.Error, "Error posting cached value")
		ac.logger.Printf("redis set error: %s", err)
	}
	return err
}

func (ac *AvailabilityCache) Get(ctx context.Context, unitId string) (int, error) {
	ctx, span := ac.tracer.Start(ctx, "AvailabilityCache.Get")
	defer span.End()

	value, err := ac.cli.Get(constructKey(unitId)).Result()
	if err != nil {
		span.SetStatus(codes.Error, "Error getting cached value")
		return 0, err
	}

	available, err := strconv.Atoi(value)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		ac.logger.Println(err)
		return 0, err
	}
	return available, nil
}

func (ac *AvailabilityCache) Invalidate(ctx context.Context, unitId string) error {
	ctx, span := ac.tracer.Start(ctx, "AvailabilityCache.Invalidate")
	defer span.End()

	err := ac.cli.Del(constructKey(unitId)).Err()
	if err != nil {
		span.SetStatus(codes.Error, "Error deleting cached value")
		ac.logger.Println(err)
	}
	return err
}

func constructKey(unitId string) string {
	return fmt.Sprintf("availability:%s", unitId)
}
