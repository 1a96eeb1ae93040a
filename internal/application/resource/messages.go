package resource

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func (p Policy) createVerb() Verb {
	if p.CreateVerb.Base == "" {
		return verbCreate
	}
	return p.CreateVerb
}

func (p Policy) title() string {
	r, size := utf8.DecodeRuneInString(p.Singular)
	return string(unicode.ToUpper(r)) + p.Singular[size:]
}

func (p Policy) NotFoundMessage() string { return p.title() + " not found" }

func (p Policy) ListFailedMessage() string   { return "Failed to fetch " + p.Plural }
func (p Policy) GetFailedMessage() string    { return "Failed to fetch " + p.Singular }
func (p Policy) SearchFailedMessage() string { return "Failed to search " + p.Plural }

func (p Policy) CreatedMessage() string {
	return p.title() + " " + p.createVerb().Past + " successfully"
}

func (p Policy) CreateFailedMessage() string {
	return "Failed to " + p.createVerb().Base + " " + p.Singular
}

func (p Policy) UpdatedMessage() string      { return p.title() + " updated successfully" }
func (p Policy) UpdateFailedMessage() string { return "Failed to update " + p.Singular }
func (p Policy) DeletedMessage() string      { return p.title() + " deleted successfully" }
func (p Policy) DeleteFailedMessage() string { return "Failed to delete " + p.Singular }

// containsFold reports whether substr occurs in s, ignoring case.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
