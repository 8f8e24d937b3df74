// Package memory provides an in-memory ledger store for testing.
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/docmigrate-dev/docmigrate/ledger"
)

// Record is one ledger document. An empty Type marks a record written before
// the typed schema existed.
type Record struct {
	Type       ledger.RecordType
	Fields     map[ledger.Attribute]string
	ExecutedAt string
}

// Store is an in-memory implementation of ledger.Store. It is safe for
// concurrent use.
type Store struct {
	mu      sync.Mutex
	records []Record
	config  *ledger.Configuration
	indexes map[string]struct{}

	// InsertExecutionErr, when set, is returned by InsertExecution to
	// simulate a failed ledger write.
	InsertExecutionErr error
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{indexes: make(map[string]struct{})}
}

// SeedRecord adds a raw record, bypassing the Store interface. Tests use it
// to stage pre-existing (possibly untyped) ledger contents.
func (s *Store) SeedRecord(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
}

// SeedIndex registers an index name, bypassing the Store interface.
func (s *Store) SeedIndex(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.indexes[name] = struct{}{}
}

// Configuration returns a copy of the stored configuration record, or nil.
func (s *Store) Configuration() *ledger.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config == nil {
		return nil
	}
	cfg := *s.config
	return &cfg
}

// Records returns a copy of all non-configuration records.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// IndexNames returns the current index names in no particular order.
func (s *Store) IndexNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.indexes))
	for name := range s.indexes {
		names = append(names, name)
	}
	return names
}

// TagUntypedRecords classifies every untyped record as a change-set
// execution.
func (s *Store) TagUntypedRecords(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].Type == "" {
			s.records[i].Type = ledger.RecordTypeExecution
		}
	}
	return nil
}

// FindConfiguration returns the configuration record, or nil when absent.
func (s *Store) FindConfiguration(_ context.Context) (*ledger.Configuration, error) {
	return s.Configuration(), nil
}

// InsertConfiguration persists the configuration record. A second insert is
// an error so tests catch violations of the singleton invariant loudly.
func (s *Store) InsertConfiguration(_ context.Context, cfg ledger.Configuration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config != nil {
		return errors.New("configuration record already exists")
	}
	s.config = &cfg
	return nil
}

// CountRecords returns the number of records of any type, the configuration
// record included.
func (s *Store) CountRecords(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := int64(len(s.records))
	if s.config != nil {
		count++
	}
	return count, nil
}

// DropLegacyIndex removes the legacy-named index when present.
func (s *Store) DropLegacyIndex(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.indexes, ledger.LegacyIndexName)
	return nil
}

// EnsureExecutionIndex registers the index named after the scheme's key
// order, mirroring the server's derived index names.
func (s *Store) EnsureExecutionIndex(_ context.Context, scheme ledger.Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.indexes[IndexName(scheme)] = struct{}{}
	return nil
}

// IndexName derives the index name from the key order, the way the server
// names an index created without an explicit name.
func IndexName(scheme ledger.Scheme) string {
	parts := []string{"type_1"}
	for _, attr := range scheme.Attributes() {
		parts = append(parts, string(attr)+"_1")
	}
	return strings.Join(parts, "_")
}

// ExecutionExists reports whether an execution record matches the change set
// on every scheme attribute.
func (s *Store) ExecutionExists(_ context.Context, scheme ledger.Scheme, cs ledger.ChangeSet) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.Type == ledger.RecordTypeExecution && matches(rec, scheme, cs) {
			return true, nil
		}
	}
	return false, nil
}

// InsertExecution appends an execution record with the scheme's attribute
// values and the formatted timestamp.
func (s *Store) InsertExecution(_ context.Context, scheme ledger.Scheme, cs ledger.ChangeSet, executedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.InsertExecutionErr != nil {
		return s.InsertExecutionErr
	}

	fields := make(map[ledger.Attribute]string, len(scheme.Attributes()))
	for _, attr := range scheme.Attributes() {
		fields[attr] = attr.ValueOf(cs)
	}

	s.records = append(s.records, Record{
		Type:       ledger.RecordTypeExecution,
		Fields:     fields,
		ExecutedAt: executedAt.Format(ledger.ExecutedAtLayout),
	})
	return nil
}

func matches(rec Record, scheme ledger.Scheme, cs ledger.ChangeSet) bool {
	for _, attr := range scheme.Attributes() {
		if rec.Fields[attr] != attr.ValueOf(cs) {
			return false
		}
	}
	return true
}
