package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scopesentry_analyses_total",
			Help: "Total scope analyses by classification and strategy",
		},
		[]string{"classification", "strategy"},
	)

	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scopesentry_analysis_duration_seconds",
			Help:    "Scope analysis duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scopesentry_confidence_score",
			Help:    "Analysis confidence scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	FallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scopesentry_analysis_fallback_total",
			Help: "Total analyses where the model strategy fell back to rules",
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scopesentry_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"type"},
	)

	RequestsLogged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scopesentry_requests_logged_total",
			Help: "Total client requests logged by source",
		},
		[]string{"source"},
	)

	ProposalsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scopesentry_proposals_created_total",
			Help: "Total proposals created",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scopesentry_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scopesentry_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(ConfidenceScore)
	prometheus.MustRegister(FallbackTotal)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(RequestsLogged)
	prometheus.MustRegister(ProposalsCreated)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
