// Package storage opens the document store selected by STORE_DRIVER.
package storage

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/learninghub-api/internal/config"
	"github.com/learninghub-api/internal/domain"
	"github.com/learninghub-api/internal/infrastructure/dynamo"
	"github.com/learninghub-api/internal/infrastructure/memstore"
	"github.com/learninghub-api/internal/infrastructure/mongostore"
	"github.com/learninghub-api/internal/pkg/logger"
	"github.com/learninghub-api/internal/pkg/metrics"
)

type Options struct {
	// Indexes are created on drivers that support secondary indexes.
	Indexes []domain.IndexSpec
	// Registerer receives the store metrics; nil disables them.
	Registerer prometheus.Registerer
	Logger     *logger.Logger
}

// Handle is an open document store. Close releases the driver's connections.
type Handle struct {
	Store  domain.DocumentStore
	Driver string
	close  func(context.Context) error
}

func (h *Handle) Close(ctx context.Context) error {
	if h.close == nil {
		return nil
	}
	return h.close(ctx)
}

// Open connects the configured driver, prepares its tables or indexes and
// wraps it with store metrics.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Handle, error) {
	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	ctx = logg.WithField(ctx, "driver", cfg.Store.Driver)

	h := &Handle{Driver: cfg.Store.Driver}
	var store domain.DocumentStore

	switch cfg.Store.Driver {
	case config.DriverDynamo:
		client, err := dynamo.NewClient(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		if cfg.AWS.DynamoBootstrap {
			dynamo.Bootstrap(ctx, client, cfg.Collections.All(), logg)
		}
		store = dynamo.NewStore(client)

	case config.DriverMongo:
		ms, err := mongostore.NewStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		if err := ms.EnsureIndexes(ctx, opts.Indexes); err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "mongo index creation failed")
		}
		store = ms
		h.close = ms.Close

	case config.DriverMemory:
		logg.Warn(ctx, "in-memory store selected; data is lost on exit")
		store = memstore.New()

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	h.Store = metrics.Instrument(store, metrics.NewStoreMetrics(opts.Registerer))
	logg.Info(ctx, "document store ready")
	return h, nil
}
