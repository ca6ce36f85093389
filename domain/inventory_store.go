package domain

import "context"

type InventoryStore interface {
	Insert(ctx context.Context, unit *InventoryUnit) (*InventoryUnit, error)
	Get(ctx context.Context, unitId string) (*InventoryUnit, error)
	GetAvailable(ctx context.Context, unitId string) (int, error)
	// AdjustQuantity applies delta to the unit's available quantity as one
	// atomic storage operation and rejects any adjustment that would leave
	// the counter outside [0, totalQuantity].
	AdjustQuantity(ctx context.Context, unitId string, delta int) error
}

// AvailabilityCache is a fail-fast view of available quantities. It is never
// consulted for correctness, only to reject hopeless reservations early.
type AvailabilityCache interface {
	Get(ctx context.Context, unitId string) (int, error)
	Post(ctx context.Context, unitId string, available int) error
	Invalidate(ctx context.Context, unitId string) error
}
