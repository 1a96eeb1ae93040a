package resource

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/learninghub-api/internal/domain"
)

// Service exposes one resource's operations with its policy applied.
type Service interface {
	Policy() Policy
	// List returns every document, or those whose foreign key equals ref when
	// ref is non-empty. A ref that is not an integer matches nothing.
	List(ctx context.Context, ref string) ([]domain.Fields, error)
	Get(ctx context.Context, id string) (domain.Fields, error)
	Create(ctx context.Context, payload domain.Fields) (domain.Fields, error)
	// CreateWithID stores payload under a caller-assigned id, replacing any
	// existing document.
	CreateWithID(ctx context.Context, id string, payload domain.Fields) (domain.Fields, error)
	Update(ctx context.Context, id string, payload domain.Fields) (domain.Fields, error)
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, text string) ([]domain.Fields, error)
}

type documentStore interface {
	Find(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error)
	Get(ctx context.Context, collection, id string) (*domain.Document, error)
	Insert(ctx context.Context, collection, id string, fields domain.Fields) (string, error)
	Update(ctx context.Context, collection, id string, fields domain.Fields) error
	Delete(ctx context.Context, collection, id string) error
}

type service struct {
	store  documentStore
	policy Policy
	now    func() time.Time
}

// Option customises a Service.
type Option func(*service)

// WithClock replaces time.Now for timestamp stamping.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(store documentStore, policy Policy, opts ...Option) Service {
	s := &service{store: store, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Policy() Policy { return s.policy }

func (s *service) List(ctx context.Context, ref string) ([]domain.Fields, error) {
	q := domain.All()
	if ref != "" && s.policy.ForeignKey != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
		if err != nil {
			return []domain.Fields{}, nil
		}
		q = domain.Where(s.policy.ForeignKey, n)
	}
	if s.policy.Order != nil {
		q = q.OrderBy(s.policy.Order.Field, s.policy.Order.Direction)
	}

	docs, err := s.store.Find(ctx, s.policy.Collection, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.policy.Collection, err)
	}
	return s.present(docs), nil
}

func (s *service) Get(ctx context.Context, id string) (domain.Fields, error) {
	doc, err := s.store.Get(ctx, s.policy.Collection, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.policy.Collection, err)
	}
	return s.redact(doc.Merged()), nil
}

func (s *service) Create(ctx context.Context, payload domain.Fields) (domain.Fields, error) {
	return s.CreateWithID(ctx, "", payload)
}

func (s *service) CreateWithID(ctx context.Context, id string, payload domain.Fields) (domain.Fields, error) {
	fields := payload.Without(domain.FieldID)
	for k, v := range s.policy.Defaults {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	ts := s.timestamp()
	fields[domain.FieldCreatedAt] = ts
	fields[domain.FieldUpdatedAt] = ts
	if s.policy.SyncStatus {
		fields[domain.FieldSyncStatus] = int64(1)
	}

	newID, err := s.store.Insert(ctx, s.policy.Collection, id, fields)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.policy.Collection, err)
	}
	return s.redact(domain.Document{ID: newID, Fields: fields}.Merged()), nil
}

// Update merges payload into the document and returns the payload as applied,
// not a re-read of the whole document.
func (s *service) Update(ctx context.Context, id string, payload domain.Fields) (domain.Fields, error) {
	fields := payload.Without(domain.FieldID)
	fields[domain.FieldUpdatedAt] = s.timestamp()

	if err := s.store.Update(ctx, s.policy.Collection, id, fields); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.policy.Collection, err)
	}
	return s.redact(domain.Document{ID: id, Fields: fields}.Merged()), nil
}

func (s *service) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, s.policy.Collection, id); err != nil {
		return fmt.Errorf("delete %s: %w", s.policy.Collection, err)
	}
	return nil
}

// Search scans the collection and keeps documents where any search field is a
// string containing text, ignoring case.
func (s *service) Search(ctx context.Context, text string) ([]domain.Fields, error) {
	docs, err := s.store.Find(ctx, s.policy.Collection, domain.All())
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.policy.Collection, err)
	}
	matched := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		for _, field := range s.policy.SearchFields {
			if v, ok := d.Fields[field].(string); ok && containsFold(v, text) {
				matched = append(matched, d)
				break
			}
		}
	}
	return s.present(matched), nil
}

func (s *service) present(docs []domain.Document) []domain.Fields {
	out := make([]domain.Fields, 0, len(docs))
	for _, d := range docs {
		out = append(out, s.redact(d.Merged()))
	}
	return out
}

func (s *service) redact(f domain.Fields) domain.Fields {
	if len(s.policy.Redact) == 0 {
		return f
	}
	return f.Without(s.policy.Redact...)
}

func (s *service) timestamp() string {
	return s.now().UTC().Format(domain.TimestampLayout)
}
