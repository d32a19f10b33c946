package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gcbaptista/go-trademark-similarity/internal/metrics"
	"github.com/gcbaptista/go-trademark-similarity/model"
	"github.com/gcbaptista/go-trademark-similarity/services"
)

// DefaultMaxRequestBytes is the body size limit used when RouterConfig leaves it unset
const DefaultMaxRequestBytes = 10 << 20

// Backend is everything the handlers need from the similarity engine.
type Backend interface {
	services.SimilarityService
	services.BatchScorer
	services.JobManager
	Dashboard() (model.AuditDashboard, error)
}

// RouterConfig holds the optional collaborators of the HTTP layer.
type RouterConfig struct {
	MaxRequestBytes int64
	Registry        *prometheus.Registry // served on /metrics; a private registry is used when nil
	Metrics         *metrics.Metrics     // HTTP request metrics; skipped when nil
	Logger          *slog.Logger         // request logging; skipped when nil
}

// API holds dependencies for API handlers, primarily the similarity engine.
type API struct {
	backend  Backend
	registry *prometheus.Registry
}

// NewAPI creates a new API handler structure.
func NewAPI(backend Backend, registry *prometheus.Registry) *API {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return &API{
		backend:  backend,
		registry: registry,
	}
}

// NewRouter builds a gin engine with the middleware chain and every route.
func NewRouter(backend Backend, cfg RouterConfig) *gin.Engine {
	maxBytes := cfg.MaxRequestBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(TracingMiddleware())
	if cfg.Logger != nil {
		router.Use(LoggingMiddleware(cfg.Logger))
	}
	if cfg.Metrics != nil {
		router.Use(MetricsMiddleware(cfg.Metrics))
	}
	router.Use(CORSMiddleware())
	router.Use(RequestSizeLimitMiddleware(maxBytes))

	SetupRoutes(router, NewAPI(backend, cfg.Registry))
	return router
}

// SetupRoutes defines all the API routes for the similarity service.
func SetupRoutes(router *gin.Engine, apiHandler *API) {
	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler(apiHandler.registry)))
	router.GET("/weights", apiHandler.GetWeightsHandler)

	router.GET("/analytics", apiHandler.GetAnalyticsHandler)

	similarityRoutes := router.Group("/similarity")
	{
		similarityRoutes.POST("/score", apiHandler.ScoreHandler)         // Score and rank a candidate set
		similarityRoutes.POST("/explore", apiHandler.ExploreHandler)     // Score, filter and page
		similarityRoutes.POST("/batches", apiHandler.SubmitBatchHandler) // Async batch scoring
	}

	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)                   // List jobs, filter by label and status
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)      // Get job performance metrics
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)              // Get job status by ID
		jobRoutes.GET("/:jobId/result", apiHandler.GetJobResultHandler) // Get batch result once completed
	}
}
