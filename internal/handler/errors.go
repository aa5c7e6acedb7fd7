package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain
// consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidDateParam  = "Invalid %s parameter, expected RFC 3339 or YYYY-MM-DD"
	ErrMsgInvalidLimit      = "Invalid limit parameter"
	ErrMsgInvalidOffset     = "Invalid offset parameter"

	// Event tracking error messages
	ErrMsgTrackEventFailed   = "Failed to track event"
	ErrMsgBatchItemsRejected = "Batch contained rejected events"
	ErrMsgGetHistoryFailed   = "Failed to retrieve event history"
	ErrMsgEmptyBatch         = "Batch must contain at least one event"
	ErrMsgBatchTooLarge      = "Batch exceeds maximum size (%d)"

	// Lifecycle error messages
	ErrMsgGetLifecycleFailed  = "Failed to retrieve lifecycle data"
	ErrMsgListLifecycleFailed = "Failed to list lifecycle data"
	ErrMsgPredictChurnFailed  = "Failed to predict churn"

	// Analytics error messages
	ErrMsgGetDashboardFailed  = "Failed to retrieve dashboard"
	ErrMsgGetHeatmapFailed    = "Failed to retrieve heatmap"
	ErrMsgGetJourneysFailed   = "Failed to retrieve journey flows"
	ErrMsgGetCohortsFailed    = "Failed to retrieve cohort retention"
	ErrMsgGetInsightsFailed   = "Failed to retrieve insights"
	ErrMsgGetReportFailed     = "Failed to generate report"
	ErrMsgInvalidCohortPeriod = "Invalid period parameter, expected weekly or monthly"

	// Admin error messages
	ErrMsgForceStageFailed = "Failed to force stage transition"
	ErrMsgDailyCheckFailed = "Failed to run daily check"
	ErrMsgStageRequired    = "A target stage is required"
	ErrMsgReasonRequired   = "A reason is required"
)
