package ledger

import "slices"

// Attribute names a change-set field that can participate in identity
// comparison.
type Attribute string

// The attributes a scheme can be built from, in their canonical order.
const (
	AttributeFile         Attribute = "file"
	AttributeChangeID     Attribute = "changeId"
	AttributeAuthor       Attribute = "author"
	AttributeResourcePath Attribute = "resourcePath"
)

// ValueOf extracts the attribute's value from a change set.
func (a Attribute) ValueOf(cs ChangeSet) string {
	switch a {
	case AttributeFile:
		return cs.File
	case AttributeChangeID:
		return cs.ChangeID
	case AttributeAuthor:
		return cs.Author
	case AttributeResourcePath:
		return cs.ResourcePath
	}
	return ""
}

// Scheme is the ordered attribute set that defines change-set identity for
// one ledger. It is resolved once from the configuration record in Open and
// does not change for the lifetime of a Ledger, so databases initialized
// before resourcePath existed keep comparing change sets on the legacy
// attributes only.
type Scheme struct {
	attributes []Attribute
}

// NewScheme builds the active scheme: file, changeId and author always
// participate; resourcePath is appended when the ledger's configuration
// supports it.
func NewScheme(supportResourcePath bool) Scheme {
	attrs := []Attribute{AttributeFile, AttributeChangeID, AttributeAuthor}
	if supportResourcePath {
		attrs = append(attrs, AttributeResourcePath)
	}
	return Scheme{attributes: attrs}
}

// Attributes returns the scheme's attributes in comparison order.
func (s Scheme) Attributes() []Attribute {
	return slices.Clone(s.attributes)
}

// Values returns the change set's values for the scheme's attributes, in
// scheme order.
func (s Scheme) Values(cs ChangeSet) []string {
	values := make([]string, 0, len(s.attributes))
	for _, attr := range s.attributes {
		values = append(values, attr.ValueOf(cs))
	}
	return values
}
