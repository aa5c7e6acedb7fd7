package handler

import (
	"net/http"

	"github.com/taskreel/lifecycle/internal/analytics"
	"github.com/taskreel/lifecycle/internal/lifecycle"
	"github.com/taskreel/lifecycle/internal/logger"
)

// HandleDashboard handles GET requests for the analytics dashboard
// @Summary Analytics dashboard
// @Description Aggregate user counts, distributions and the event trend for a date range
// @Tags analytics
// @Produce json
// @Param from query string false "Range start (RFC 3339 or YYYY-MM-DD), defaults to 30 days ago"
// @Param to query string false "Range end, defaults to now"
// @Success 200 {object} analytics.Dashboard
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/dashboard [get]
func HandleDashboard(svc analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		from, to, ok := parseDateRange(r, w)
		if !ok {
			return
		}

		dashboard, err := svc.Dashboard(r.Context(), from, to)
		if err != nil {
			log.Error(ErrMsgGetDashboardFailed, "error", err)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusOK, dashboard)
	}
}

// HandleHeatmap handles GET requests for the activity heatmap
// @Summary Activity heatmap
// @Description Event counts by hour of day, weekday, date and month
// @Tags analytics
// @Produce json
// @Param from query string false "Range start"
// @Param to query string false "Range end"
// @Success 200 {object} analytics.Heatmap
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/heatmap [get]
func HandleHeatmap(svc analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		from, to, ok := parseDateRange(r, w)
		if !ok {
			return
		}

		heatmap, err := svc.Heatmap(r.Context(), from, to)
		if err != nil {
			log.Error(ErrMsgGetHeatmapFailed, "error", err)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusOK, heatmap)
	}
}

// HandleJourneys handles GET requests for journey flow analysis
// @Summary Journey flows
// @Description Stage transition counts, conversion rates, drop-off points and common paths
// @Tags analytics
// @Produce json
// @Param from query string false "Range start"
// @Param to query string false "Range end"
// @Success 200 {object} analytics.JourneyReport
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/journeys [get]
func HandleJourneys(svc analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		from, to, ok := parseDateRange(r, w)
		if !ok {
			return
		}

		report, err := svc.JourneyFlows(r.Context(), from, to)
		if err != nil {
			log.Error(ErrMsgGetJourneysFailed, "error", err)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusOK, report)
	}
}

// HandleCohorts handles GET requests for cohort retention
// @Summary Cohort retention
// @Description Registration cohorts with retention rates at fixed day offsets
// @Tags analytics
// @Produce json
// @Param from query string false "Range start"
// @Param to query string false "Range end"
// @Param period query string false "Cohort period: weekly (default) or monthly"
// @Success 200 {object} analytics.CohortReport
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/cohorts [get]
func HandleCohorts(svc analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		from, to, ok := parseDateRange(r, w)
		if !ok {
			return
		}

		period := analytics.CohortWeekly
		switch r.URL.Query().Get("period") {
		case "", "weekly":
		case "monthly":
			period = analytics.CohortMonthly
		default:
			respondError(w, http.StatusBadRequest, ErrMsgInvalidCohortPeriod)
			return
		}

		report, err := svc.CohortRetention(r.Context(), from, to, period)
		if err != nil {
			log.Error(ErrMsgGetCohortsFailed, "error", err)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusOK, report)
	}
}

// HandleInsights handles GET requests for generated insights
// @Summary Insights
// @Description Deterministic insight battery over the date range
// @Tags analytics
// @Produce json
// @Param from query string false "Range start"
// @Param to query string false "Range end"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /analytics/insights [get]
func HandleInsights(svc analytics.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		from, to, ok := parseDateRange(r, w)
		if !ok {
			return
		}

		insights, err := svc.Insights(r.Context(), from, to)
		if err != nil {
			log.Error(ErrMsgGetInsightsFailed, "error", err)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: insights})
	}
}

// HandleLifecycleReport handles GET requests for the composed report
// @Summary Lifecycle report
// @Description Composed dashboard, journeys, cohorts and insights for a date range
// @Tags analytics
// @Produce json
// @Param from query string false "Range start"
// @Param to query string false "Range end"
// @Param stages query string false "Comma-separated stage filter"
// @Param segments query string false "Comma-separated segment filter"
// @Success 200 {object} lifecycle.Report
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports/lifecycle [get]
func HandleLifecycleReport(svc lifecycle.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		from, to, ok := parseDateRange(r, w)
		if !ok {
			return
		}
		filters, ok := parseLifecycleFilters(r, w)
		if !ok {
			return
		}

		report, err := svc.GenerateReport(r.Context(), from, to, filters)
		if err != nil {
			log.Error(ErrMsgGetReportFailed, "error", err)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusOK, report)
	}
}
