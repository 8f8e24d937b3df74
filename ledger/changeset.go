package ledger

// ChangeSet is a single named, idempotent migration unit supplied by the
// caller. Its identity is the combination of attribute values tracked by the
// active Scheme; there is no surrogate key.
type ChangeSet struct {
	File         string
	ChangeID     string
	Author       string
	ResourcePath string

	// Script is the opaque executable payload run against the target database.
	// The ledger never interprets it.
	Script string
}
