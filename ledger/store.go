package ledger

import (
	"context"
	"time"
)

// Store persists ledger records and their index. Implementations translate
// these operations to a single physical collection whose records are
// discriminated by type.
type Store interface {
	// TagUntypedRecords classifies every record lacking a type as a change-set
	// execution. Untyped records predate the typed schema. Idempotent.
	TagUntypedRecords(ctx context.Context) error

	// FindConfiguration returns the singleton configuration record, or nil
	// when none exists yet.
	FindConfiguration(ctx context.Context) (*Configuration, error)

	// InsertConfiguration persists the singleton configuration record.
	InsertConfiguration(ctx context.Context, cfg Configuration) error

	// CountRecords returns the total number of records of any type.
	CountRecords(ctx context.Context) (int64, error)

	// DropLegacyIndex removes the index named LegacyIndexName when present.
	DropLegacyIndex(ctx context.Context) error

	// EnsureExecutionIndex creates, or confirms, the compound ascending index
	// on the record type followed by the scheme's attributes in scheme order.
	// Idempotent.
	EnsureExecutionIndex(ctx context.Context, scheme Scheme) error

	// ExecutionExists reports whether an execution record matches the change
	// set on every scheme attribute.
	ExecutionExists(ctx context.Context, scheme Scheme, cs ChangeSet) (bool, error)

	// InsertExecution appends an execution record carrying the change set's
	// scheme attribute values and the execution timestamp.
	InsertExecution(ctx context.Context, scheme Scheme, cs ChangeSet, executedAt time.Time) error
}
