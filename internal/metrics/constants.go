package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameEventsTracked     = "lifecycle_events_tracked_total"
	MetricNameStageTransitions  = "lifecycle_stage_transitions_total"
	MetricNameMilestonesFired   = "lifecycle_milestones_fired_total"
	MetricNameRuleEvaluations   = "lifecycle_rule_evaluations_total"
	MetricNameDailyChecksRun    = "lifecycle_daily_checks_total"
	MetricNameSnapshotsComputed = "lifecycle_snapshots_computed_total"
	MetricNameUsersByStage      = "lifecycle_users_by_stage"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextEventsTracked     = "Total number of lifecycle events tracked"
	HelpTextStageTransitions  = "Total number of stage transitions applied"
	HelpTextMilestonesFired   = "Total number of milestones fired"
	HelpTextRuleEvaluations   = "Total number of rule evaluation passes"
	HelpTextDailyChecksRun    = "Total number of daily lifecycle checks run"
	HelpTextSnapshotsComputed = "Total number of user snapshots computed"
	HelpTextUsersByStage      = "Current number of users in each lifecycle stage"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod    = "method"
	LabelPath      = "path"
	LabelStatus    = "status"
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelSource    = "source"
	LabelFromStage = "from_stage"
	LabelToStage   = "to_stage"
	LabelKind      = "kind"
	LabelResult    = "result"
	LabelStage     = "stage"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
