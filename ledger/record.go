package ledger

// RecordType discriminates the two record shapes stored in the ledger
// collection.
type RecordType string

const (
	// RecordTypeConfiguration marks the singleton configuration record.
	RecordTypeConfiguration RecordType = "configuration"
	// RecordTypeExecution marks one successfully applied change set.
	RecordTypeExecution RecordType = "changeSetExecution"
)

// Configuration is the singleton ledger record deciding which fingerprint
// attributes are active for this database. It is created once, on first
// initialization, and never rewritten by this engine.
type Configuration struct {
	SupportResourcePath bool
}

// ExecutedAtLayout is the timestamp layout persisted on execution records:
// ISO-8601 with an always-numeric zone offset.
const ExecutedAtLayout = "2006-01-02T15:04:05-07:00"

// LegacyIndexName is the fixed name of the compound index created by tool
// versions that always included resourcePath. Modern server versions reject
// that index shape, so it is dropped on every initialization when present.
const LegacyIndexName = "type_changeSetExecution_file_1_changeId_1_author_1_resourcePath_1"
