// Package ledger maintains the durable record of applied change sets and the
// fingerprint scheme that defines change-set identity for a database.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/docmigrate-dev/docmigrate/log"
)

// Ledger is the execution record for one database, bound to the fingerprint
// scheme resolved for that database.
type Ledger struct {
	store  Store
	scheme Scheme
}

// Open initializes the ledger and is safe to call on every run. It upgrades
// untyped legacy records, resolves (creating if necessary) the configuration
// record, and reshapes the execution index to the active scheme. Index
// failures are fatal and propagate.
func Open(ctx context.Context, store Store) (*Ledger, error) {
	// Untyped records must be classified before the configuration existence
	// check: the "does the ledger have pre-existing records" decision depends
	// on every record being counted.
	if err := store.TagUntypedRecords(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade untyped ledger records: %w", err)
	}

	cfg, err := resolveConfiguration(ctx, store)
	if err != nil {
		return nil, err
	}

	scheme := NewScheme(cfg.SupportResourcePath)

	if err := store.DropLegacyIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to drop legacy execution index: %w", err)
	}

	if err := store.EnsureExecutionIndex(ctx, scheme); err != nil {
		return nil, fmt.Errorf("failed to ensure execution index: %w", err)
	}

	return &Ledger{store: store, scheme: scheme}, nil
}

// resolveConfiguration loads the configuration record, creating it when
// missing. An existing record is trusted as-is and never revalidated.
func resolveConfiguration(ctx context.Context, store Store) (Configuration, error) {
	cfg, err := store.FindConfiguration(ctx)
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to load configuration record: %w", err)
	}
	if cfg != nil {
		return *cfg, nil
	}

	count, err := store.CountRecords(ctx)
	if err != nil {
		return Configuration{}, fmt.Errorf("failed to count ledger records: %w", err)
	}

	// Pre-existing records cannot be assumed to carry resourcePath, so only a
	// brand-new ledger starts on the latest scheme.
	created := Configuration{SupportResourcePath: count == 0}
	if err := store.InsertConfiguration(ctx, created); err != nil {
		return Configuration{}, fmt.Errorf("failed to insert configuration record: %w", err)
	}

	log.InfoContext(ctx, "configuration record created", "supportResourcePath", created.SupportResourcePath)

	return created, nil
}

// Scheme returns the fingerprint scheme resolved for this ledger.
func (l *Ledger) Scheme() Scheme {
	return l.scheme
}

// WasExecuted reports whether the change set was already applied. Only the
// attributes the active scheme tracks are compared; anything outside the
// scheme never participates.
func (l *Ledger) WasExecuted(ctx context.Context, cs ChangeSet) (bool, error) {
	exists, err := l.store.ExecutionExists(ctx, l.scheme, cs)
	if err != nil {
		return false, fmt.Errorf("failed to query execution record: %w", err)
	}
	return exists, nil
}

// LogExecution appends the change set's execution record with the current
// timestamp. It performs no existence check; callers are expected to check
// WasExecuted first.
func (l *Ledger) LogExecution(ctx context.Context, cs ChangeSet) error {
	if err := l.store.InsertExecution(ctx, l.scheme, cs, time.Now()); err != nil {
		return fmt.Errorf("failed to insert execution record: %w", err)
	}
	return nil
}
