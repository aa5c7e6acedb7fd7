package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	EventsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsTracked,
			Help: HelpTextEventsTracked,
		},
		[]string{LabelEventType, LabelSource},
	)

	StageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameStageTransitions,
			Help: HelpTextStageTransitions,
		},
		[]string{LabelFromStage, LabelToStage},
	)

	MilestonesFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameMilestonesFired,
			Help: HelpTextMilestonesFired,
		},
		[]string{LabelKind},
	)

	RuleEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameRuleEvaluations,
			Help: HelpTextRuleEvaluations,
		},
		[]string{LabelResult},
	)

	DailyChecksRun = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameDailyChecksRun,
			Help: HelpTextDailyChecksRun,
		},
	)

	SnapshotsComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameSnapshotsComputed,
			Help: HelpTextSnapshotsComputed,
		},
	)

	UsersByStage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameUsersByStage,
			Help: HelpTextUsersByStage,
		},
		[]string{LabelStage},
	)
)
