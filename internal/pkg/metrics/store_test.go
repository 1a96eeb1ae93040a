package metrics

import (
	"context"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/infrastructure/memstore"
)

func TestInstrumentedStoreExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := Instrument(memstore.New(), NewStoreMetrics(reg))
	ctx := context.Background()

	docID, err := store.Insert(ctx, "courses", "", domain.Fields{"title": "Go"})
	require.NoError(t, err)
	_, err = store.Get(ctx, "courses", docID)
	require.NoError(t, err)
	_, err = store.Get(ctx, "courses", "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "docstore_operations_total", map[string]string{
		"collection": "courses", "operation": "get", "outcome": "ok",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	got, err = fetchCounterValue(mfs, "docstore_operations_total", map[string]string{
		"collection": "courses", "operation": "get", "outcome": "not_found",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	count, err := fetchHistogramCount(mfs, "docstore_operation_duration_seconds", map[string]string{
		"collection": "courses", "operation": "get",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewStoreMetrics(nil)
	assert.NotPanics(t, func() {
		m.Observe("courses", "find", 0, nil)
	})

	var nilMetrics *StoreMetrics
	assert.NotPanics(t, func() {
		nilMetrics.Observe("courses", "find", 0, nil)
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(fmt.Errorf("x: %w", domain.ErrNotFound)))
	assert.Equal(t, "invalid", Outcome(fmt.Errorf("x: %w", domain.ErrInvalidDocument)))
	assert.Equal(t, "unavailable", Outcome(fmt.Errorf("x: %w", domain.ErrStoreUnavailable)))
	assert.Equal(t, "error", Outcome(fmt.Errorf("x")))
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	m, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return m.GetCounter().GetValue(), nil
}

func fetchHistogramCount(mfs []*dto.MetricFamily, name string, labels map[string]string) (uint64, error) {
	m, err := findMetric(mfs, name, labels)
	if err != nil {
		return 0, err
	}
	return m.GetHistogram().GetSampleCount(), nil
}

func findMetric(mfs []*dto.MetricFamily, name string, labels map[string]string) (*dto.Metric, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric, nil
			}
		}
		return nil, fmt.Errorf("metric %q missing labels %v", name, labels)
	}
	return nil, fmt.Errorf("metric %q not found", name)
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, lp := range pairs {
		if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
