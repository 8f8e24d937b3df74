// Package engine applies ordered change sets exactly once per ledger,
// recording each successful application.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/docmigrate-dev/docmigrate/ledger"
	"github.com/docmigrate-dev/docmigrate/log"
)

// ScriptRunner executes a change set's opaque payload against the target
// database. A non-nil error means the payload reported failure.
type ScriptRunner interface {
	RunScript(ctx context.Context, script string) error
}

// Engine orchestrates a migration run over one ledger.
type Engine struct {
	ledger *ledger.Ledger
	runner ScriptRunner
}

// New returns an Engine applying change sets through the given runner and
// recording them in the given ledger.
func New(l *ledger.Ledger, runner ScriptRunner) *Engine {
	return &Engine{ledger: l, runner: runner}
}

// Run applies the change sets strictly in the order given: already-recorded
// change sets are skipped, everything else is executed and then recorded. The
// first failure aborts the run; change sets recorded before it stay recorded.
//
// The check-then-record sequence is not atomic. Two runners racing against
// the same ledger can both execute a change set and both record it; callers
// needing duplicate-run prevention under concurrency must add external mutual
// exclusion.
func (e *Engine) Run(ctx context.Context, changeSets []ledger.ChangeSet) error {
	ctx = context.WithValue(ctx, log.RunIDKey, uuid.NewString())

	applied := 0
	for _, cs := range changeSets {
		executed, err := e.ledger.WasExecuted(ctx, cs)
		if err != nil {
			return fmt.Errorf("failed to check change set %s: %w", changeSetID(cs), err)
		}

		if executed {
			log.InfoContext(ctx, "change set already executed, skipping", "changeSet", changeSetID(cs))
			continue
		}

		if err := e.runner.RunScript(ctx, cs.Script); err != nil {
			return fmt.Errorf("change set %s failed: %w", changeSetID(cs), err)
		}

		// A failure here leaves the change set executed but unrecorded; the
		// ledger has no recovery policy for that and the error propagates.
		if err := e.ledger.LogExecution(ctx, cs); err != nil {
			return fmt.Errorf("failed to record change set %s: %w", changeSetID(cs), err)
		}

		log.InfoContext(ctx, "change set applied", "changeSet", changeSetID(cs))
		applied++
	}

	log.InfoContext(ctx, "migration run finished", "applied", applied, "total", len(changeSets))
	return nil
}

// changeSetID renders the change set's identity attributes for error messages
// and logs.
func changeSetID(cs ledger.ChangeSet) string {
	return fmt.Sprintf("%s:%s (author %s)", cs.File, cs.ChangeID, cs.Author)
}
