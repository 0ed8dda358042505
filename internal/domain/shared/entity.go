package shared

import (
	"time"

	"github.com/google/uuid"
)

// Now stamps entity timestamps. Values are UTC at microsecond precision so
// they compare equal after a round trip through a TIMESTAMPTZ column.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// BaseEntity carries the identity and audit timestamps shared by ledger
// rows such as receipts, payments and movements
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewBaseEntity() BaseEntity {
	now := Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch records a modification
func (e *BaseEntity) Touch() {
	e.UpdatedAt = Now()
}

// BaseAggregateRoot is a BaseEntity whose row is locked for update before it
// is mutated. Version counts committed mutations and starts at 1.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// IncrementVersion marks one more mutation of the aggregate
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.Touch()
}
