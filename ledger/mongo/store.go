// Package mongo implements the execution ledger on a single MongoDB
// collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/docmigrate-dev/docmigrate/ledger"
)

// DefaultCollection is the ledger collection used when no name is given.
const DefaultCollection = "docmigrate"

// Store persists the execution ledger in one MongoDB collection, with the
// two record shapes discriminated by their type field.
type Store struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// New returns a Store over the given database. An empty collection name
// selects DefaultCollection. The database handle is expected to be already
// authenticated and pointed at the target database.
func New(db *mongo.Database, collection string) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{db: db, coll: db.Collection(collection)}
}

type configurationDoc struct {
	Type                string `bson:"type"`
	SupportResourcePath bool   `bson:"supportResourcePath"`
}

// TagUntypedRecords sets the execution type on every record where the type
// field does not exist. Records without a type predate the typed schema.
func (s *Store) TagUntypedRecords(ctx context.Context) error {
	filter := bson.M{"type": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"type": string(ledger.RecordTypeExecution)}}

	if _, err := s.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to tag untyped records: %w", err)
	}
	return nil
}

// FindConfiguration returns the configuration record, or nil when the ledger
// has none yet.
func (s *Store) FindConfiguration(ctx context.Context) (*ledger.Configuration, error) {
	var doc configurationDoc

	err := s.coll.FindOne(ctx, bson.M{"type": string(ledger.RecordTypeConfiguration)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find configuration record: %w", err)
	}

	return &ledger.Configuration{SupportResourcePath: doc.SupportResourcePath}, nil
}

// InsertConfiguration persists the singleton configuration record.
func (s *Store) InsertConfiguration(ctx context.Context, cfg ledger.Configuration) error {
	doc := configurationDoc{
		Type:                string(ledger.RecordTypeConfiguration),
		SupportResourcePath: cfg.SupportResourcePath,
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert configuration record: %w", err)
	}
	return nil
}

// CountRecords returns the total number of ledger records of any type.
func (s *Store) CountRecords(ctx context.Context) (int64, error) {
	count, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count ledger records: %w", err)
	}
	return count, nil
}

// DropLegacyIndex drops the fixed-name index left behind by old tool
// versions, when present. That index shape is rejected by modern server
// versions regardless of the active scheme.
func (s *Store) DropLegacyIndex(ctx context.Context) error {
	cursor, err := s.coll.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var idx struct {
			Name string `bson:"name"`
		}
		if err := cursor.Decode(&idx); err != nil {
			return fmt.Errorf("failed to decode index document: %w", err)
		}

		if idx.Name != ledger.LegacyIndexName {
			continue
		}

		if _, err := s.coll.Indexes().DropOne(ctx, ledger.LegacyIndexName); err != nil {
			return fmt.Errorf("failed to drop legacy index: %w", err)
		}
	}

	if err := cursor.Err(); err != nil {
		return fmt.Errorf("failed to iterate indexes: %w", err)
	}
	return nil
}

// EnsureExecutionIndex creates the compound ascending index on the record
// type followed by the scheme's attributes. Creating an index with identical
// keys on an already-indexed collection is a server-side no-op.
func (s *Store) EnsureExecutionIndex(ctx context.Context, scheme ledger.Scheme) error {
	keys := bson.D{{Key: "type", Value: 1}}
	for _, attr := range scheme.Attributes() {
		keys = append(keys, bson.E{Key: string(attr), Value: 1})
	}

	if _, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
		return fmt.Errorf("failed to create execution index: %w", err)
	}
	return nil
}

// ExecutionExists reports whether at least one execution record matches the
// change set on every scheme attribute.
func (s *Store) ExecutionExists(ctx context.Context, scheme ledger.Scheme, cs ledger.ChangeSet) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, executionFilter(scheme, cs))
	if err != nil {
		return false, fmt.Errorf("failed to count execution records: %w", err)
	}
	return count > 0, nil
}

// InsertExecution appends an execution record with the scheme's attribute
// values and the formatted timestamp.
func (s *Store) InsertExecution(ctx context.Context, scheme ledger.Scheme, cs ledger.ChangeSet, executedAt time.Time) error {
	doc := executionFilter(scheme, cs)
	doc = append(doc, bson.E{Key: "date", Value: executedAt.Format(ledger.ExecutedAtLayout)})

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert execution record: %w", err)
	}
	return nil
}

// executionFilter builds the equality document over the type field and every
// scheme attribute, in scheme order. The same shape serves both as the
// existence predicate and as the persisted record body.
func executionFilter(scheme ledger.Scheme, cs ledger.ChangeSet) bson.D {
	doc := bson.D{{Key: "type", Value: string(ledger.RecordTypeExecution)}}
	for _, attr := range scheme.Attributes() {
		doc = append(doc, bson.E{Key: string(attr), Value: attr.ValueOf(cs)})
	}
	return doc
}
