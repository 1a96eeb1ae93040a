package http

import (
	"time"

	"github.com/learninghub-api/internal/application/catalog"
	"github.com/learninghub-api/internal/pkg/logger"
	appmiddleware "github.com/learninghub-api/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds everything the router needs.
type Deps struct {
	Services *catalog.Catalog
	Logger   *logger.Logger
	// Gatherer backs GET /metrics; nil disables the route.
	Gatherer prometheus.Gatherer
	// BroadcastLimiter guards POST /api/notifications/broadcast; nil disables limiting.
	BroadcastLimiter *appmiddleware.RateLimiter
	Now              func() time.Time
}
