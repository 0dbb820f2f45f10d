// Package http assembles the scafsplit HTTP API on gin.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/scaffold-split/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/scaffold-split/internal/interfaces/http/handlers"
	"github.com/turtacn/scaffold-split/internal/interfaces/http/middleware"
)

// APIPrefix is the path prefix of the versioned API.
const APIPrefix = "/api/v1"

// RouterConfig holds all dependencies needed to build the router.
type RouterConfig struct {
	SplitHandler  *handlers.SplitHandler
	HealthHandler *handlers.HealthHandler

	Logger logging.Logger

	// MetricsHandler serves MetricsPath when set.
	MetricsHandler http.Handler
	MetricsPath    string
	// Recorder receives one observation per request when set.
	Recorder middleware.HTTPRecorder

	// CORS is applied when set.
	CORS *middleware.CORSConfig

	// MaxBodySize caps request bodies; zero disables the limit.
	MaxBodySize int64
}

// NewRouter builds the engine.  The middleware chain is Recovery, RequestID,
// Logging, Metrics, CORS, BodyLimit.  Nil handlers leave their routes
// unregistered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	e := gin.New()
	e.Use(gin.Recovery())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogging(logger.Named("http"), middleware.DefaultLoggingConfig()))
	if cfg.Recorder != nil {
		e.Use(middleware.Metrics(cfg.Recorder))
	}
	if cfg.CORS != nil {
		e.Use(middleware.CORS(*cfg.CORS))
	}
	e.Use(middleware.BodyLimit(cfg.MaxBodySize))

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(e)
	}

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		e.GET(path, gin.WrapH(cfg.MetricsHandler))
	}

	if cfg.SplitHandler != nil {
		cfg.SplitHandler.RegisterRoutes(e.Group(APIPrefix))
	}

	return e
}

//Personal.AI order the ending
