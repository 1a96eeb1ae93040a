package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/learninghub-api/internal/domain"
)

// StoreMetrics records document store operations by collection.
type StoreMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewStoreMetrics registers the store metrics on the provided registerer.
// A nil registerer yields a recorder that drops every observation.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "docstore_operations_total",
		Help: "Document store operations by collection, operation and outcome.",
	}, []string{"collection", "operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "docstore_operation_duration_seconds",
		Help:    "Duration of document store operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection", "operation"})
	reg.MustRegister(operations, duration)
	return &StoreMetrics{
		operations: operations,
		duration:   duration,
	}
}

// Observe records one completed operation.
func (m *StoreMetrics) Observe(collection, operation string, elapsed time.Duration, err error) {
	if m == nil || m.operations == nil {
		return
	}
	collection = normalizeLabel(collection)
	m.operations.WithLabelValues(collection, operation, Outcome(err)).Inc()
	m.duration.WithLabelValues(collection, operation).Observe(elapsed.Seconds())
}

// Outcome buckets a store error into a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidDocument):
		return "invalid"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}

// InstrumentedStore decorates a DocumentStore with StoreMetrics.
type InstrumentedStore struct {
	next    domain.DocumentStore
	metrics *StoreMetrics
	now     func() time.Time
}

var _ domain.DocumentStore = (*InstrumentedStore)(nil)

func Instrument(next domain.DocumentStore, m *StoreMetrics) *InstrumentedStore {
	return &InstrumentedStore{next: next, metrics: m, now: time.Now}
}

func (s *InstrumentedStore) observe(collection, op string, start time.Time, err error) {
	s.metrics.Observe(collection, op, s.now().Sub(start), err)
}

func (s *InstrumentedStore) Find(ctx context.Context, collection string, q domain.Query) ([]domain.Document, error) {
	start := s.now()
	docs, err := s.next.Find(ctx, collection, q)
	s.observe(collection, "find", start, err)
	return docs, err
}

func (s *InstrumentedStore) Get(ctx context.Context, collection, id string) (*domain.Document, error) {
	start := s.now()
	doc, err := s.next.Get(ctx, collection, id)
	s.observe(collection, "get", start, err)
	return doc, err
}

func (s *InstrumentedStore) Insert(ctx context.Context, collection, id string, fields domain.Fields) (string, error) {
	start := s.now()
	newID, err := s.next.Insert(ctx, collection, id, fields)
	s.observe(collection, "insert", start, err)
	return newID, err
}

func (s *InstrumentedStore) Update(ctx context.Context, collection, id string, fields domain.Fields) error {
	start := s.now()
	err := s.next.Update(ctx, collection, id, fields)
	s.observe(collection, "update", start, err)
	return err
}

func (s *InstrumentedStore) Delete(ctx context.Context, collection, id string) error {
	start := s.now()
	err := s.next.Delete(ctx, collection, id)
	s.observe(collection, "delete", start, err)
	return err
}

func (s *InstrumentedStore) BatchInsert(ctx context.Context, collection string, records []domain.Fields) ([]string, error) {
	start := s.now()
	ids, err := s.next.BatchInsert(ctx, collection, records)
	s.observe(collection, "batch_insert", start, err)
	return ids, err
}
