package domain

import "context"

// DocumentStore is the capability surface every resource service is built on.
// Collections are addressed by name and documents by identifier.
//
// Failures wrap one of ErrNotFound, ErrStoreUnavailable or ErrInvalidDocument.
// Implementations perform no caching and no retries.
type DocumentStore interface {
	// Find returns the documents selected by q (get-all, filter-equals, order-by).
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
	// Get returns one document or an ErrNotFound error.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Insert persists a new document and returns its identifier. An empty id asks
	// the store to assign one; a caller-assigned id replaces any existing document.
	Insert(ctx context.Context, collection, id string, fields Fields) (string, error)
	// Update merges fields into an existing document; absent fields are untouched.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes a document, or fails with ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
	// BatchInsert writes all records or none of them and returns one id per record.
	BatchInsert(ctx context.Context, collection string, records []Fields) ([]string, error)
}
