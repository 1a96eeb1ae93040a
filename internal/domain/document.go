package domain

// Field names stamped or controlled by the access layer.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// TimestampLayout formats created_at/updated_at. The fixed fractional width keeps
// lexical order equal to chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Fields is the untyped content of a stored document.
type Fields map[string]any

// Clone returns a shallow copy of f. A nil receiver yields an empty map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Without returns a copy of f with the named keys removed.
func (f Fields) Without(keys ...string) Fields {
	out := f.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Document is a stored record: the store identifier plus the stored fields.
type Document struct {
	ID     string
	Fields Fields
}

// Merged flattens d into one map. ID wins over a stored field of the same name.
func (d Document) Merged() Fields {
	out := make(Fields, len(d.Fields)+1)
	for k, v := range d.Fields {
		out[k] = v
	}
	out[FieldID] = d.ID
	return out
}
