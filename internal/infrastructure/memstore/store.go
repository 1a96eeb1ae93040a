// Package memstore is an in-process DocumentStore used by STORE_DRIVER=memory
// and by service tests.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/pkg/docvalue"
	"github.com/learninghub-api/internal/pkg/id"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.Fields
	newID       func() string
}

var _ domain.DocumentStore = (*Store)(nil)

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]domain.Fields),
		newID:       id.New,
	}
}

func (s *Store) Find(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0)
	for docID, fields := range s.collections[collection] {
		if !docvalue.Matches(fields, q.Filters) {
			continue
		}
		docs = append(docs, domain.Document{ID: docID, Fields: docvalue.CloneFields(fields)})
	}
	// Map iteration is random; sort by id for a stable listing.
	slices.SortFunc(docs, func(a, b domain.Document) int {
		return docvalue.Compare(a.ID, b.ID)
	})
	return docvalue.Order(docs, q.Order), nil
}

func (s *Store) Get(ctx context.Context, collection, docID string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.collections[collection][docID]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, docID, domain.ErrNotFound)
	}
	return &domain.Document{ID: docID, Fields: docvalue.CloneFields(fields)}, nil
}

func (s *Store) Insert(ctx context.Context, collection, docID string, fields domain.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := docvalue.Validate(fields); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	if docID == "" {
		docID = s.newID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[docID] = docvalue.CloneFields(fields.Without(domain.FieldID))
	return docID, nil
}

func (s *Store) Update(ctx context.Context, collection, docID string, fields domain.Fields) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := docvalue.Validate(fields); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.collections[collection][docID]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, docID, domain.ErrNotFound)
	}
	for k, v := range fields.Without(domain.FieldID) {
		current[k] = docvalue.Clone(v)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, docID string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][docID]; !ok {
		return fmt.Errorf("%s/%s: %w", collection, docID, domain.ErrNotFound)
	}
	delete(s.collections[collection], docID)
	return nil
}

// BatchInsert validates every record before writing any of them.
func (s *Store) BatchInsert(ctx context.Context, collection string, records []domain.Fields) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	for i, rec := range records {
		if err := docvalue.Validate(rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", domain.ErrInvalidDocument, i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collection(collection)
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = s.newID()
		docs[ids[i]] = docvalue.CloneFields(rec.Without(domain.FieldID))
	}
	return ids, nil
}

// collection must be called with mu held for writing.
func (s *Store) collection(name string) map[string]domain.Fields {
	docs, ok := s.collections[name]
	if !ok {
		docs = make(map[string]domain.Fields)
		s.collections[name] = docs
	}
	return docs
}
