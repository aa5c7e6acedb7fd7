package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/lifecycle"
	"github.com/taskreel/lifecycle/internal/logger"
)

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// DecodeAndValidateRequest decodes a JSON request body, validates it and
// writes the error response itself on failure. When it returns an error
// the handler should just return.
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req interface{}, actionName string) error {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Error(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}

	log.Debug(fmt.Sprintf("%s request decoded", actionName))

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}

	return nil
}

// parseDateRange reads from/to query parameters. Missing values default
// to the trailing 30 days ending now.
func parseDateRange(r *http.Request, w http.ResponseWriter) (time.Time, time.Time, bool) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidDateParam, "from"))
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}

	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidDateParam, "to"))
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}

	return from, to, true
}

// parseDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// parseLifecycleFilters reads the stages/segments/engagement query
// parameters shared by the listing and report endpoints. It writes the
// error response itself, so callers just return when ok is false.
func parseLifecycleFilters(r *http.Request, w http.ResponseWriter) (lifecycle.Filters, bool) {
	var filters lifecycle.Filters

	if raw := r.URL.Query().Get("stages"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			stage := domain.Stage(strings.TrimSpace(s))
			if !domain.IsValidStage(stage) {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidStageError)
				return lifecycle.Filters{}, false
			}
			filters.Stages = append(filters.Stages, stage)
		}
	}
	if raw := r.URL.Query().Get("segments"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filters.Segments = append(filters.Segments, domain.Segment(strings.TrimSpace(s)))
		}
	}

	minEng, err := parseIntParam(r, "min_engagement", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
		return lifecycle.Filters{}, false
	}
	filters.MinEngagement = minEng

	maxEng, err := parseIntParam(r, "max_engagement", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
		return lifecycle.Filters{}, false
	}
	filters.MaxEngagement = maxEng

	return filters, true
}

// parseIntParam reads an optional integer query parameter.
func parseIntParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return value, nil
}
