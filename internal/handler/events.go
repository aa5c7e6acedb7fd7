package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/logger"
	"github.com/taskreel/lifecycle/internal/repository"
	"github.com/taskreel/lifecycle/internal/tracker"
)

// MaxBatchSize caps the number of events accepted in one batch request.
const MaxBatchSize = 500

const defaultHistoryLimit = 100

// TrackEventRequest represents a request to track one lifecycle event
type TrackEventRequest struct {
	UserID              string                 `json:"user_id" validate:"required,max=100,excludesall=\x00\n\r\t"`
	EventType           string                 `json:"event_type" validate:"required,max=64,eventtype"`
	Source              string                 `json:"source,omitempty" validate:"max=32"`
	Timestamp           time.Time              `json:"timestamp,omitempty"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
	Context             *domain.EventContext   `json:"context,omitempty"`
	SkipStageTransition bool                   `json:"skip_stage_transition,omitempty"`
}

// TrackBatchRequest represents a request to track several events at
// once. Items are validated one by one by the tracker so a bad item
// cannot reject its siblings; only the batch shape is checked here.
type TrackBatchRequest struct {
	Events []TrackEventRequest `json:"events"`
}

func (req TrackEventRequest) toServiceRequest() tracker.TrackRequest {
	return tracker.TrackRequest{
		UserID:              req.UserID,
		Type:                domain.EventType(req.EventType),
		Source:              domain.EventSource(req.Source),
		Timestamp:           req.Timestamp,
		Metadata:            req.Metadata,
		Context:             req.Context,
		SkipStageTransition: req.SkipStageTransition,
	}
}

// HandleTrackEvent handles POST requests to record a lifecycle event
// @Summary Track event
// @Description Record one lifecycle event for a user
// @Tags events
// @Accept json
// @Produce json
// @Param request body TrackEventRequest true "Event details"
// @Success 202 {object} DataResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events [post]
func HandleTrackEvent(svc tracker.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req TrackEventRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Track event"); err != nil {
			return
		}

		ev, err := svc.Track(r.Context(), req.toServiceRequest())
		if err != nil {
			log.Warn(ErrMsgTrackEventFailed, "error", err, "user_id", req.UserID, "event_type", req.EventType)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusAccepted, DataResponse{Message: "Event accepted", Data: ev})
	}
}

// HandleTrackBatch handles POST requests to record a batch of events
// @Summary Track event batch
// @Description Record several lifecycle events in one call. Items are independent: invalid ones are reported, valid ones are still recorded.
// @Tags events
// @Accept json
// @Produce json
// @Param request body TrackBatchRequest true "Events"
// @Success 202 {object} DataResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events/batch [post]
func HandleTrackBatch(svc tracker.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		var req TrackBatchRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Track batch"); err != nil {
			return
		}

		if len(req.Events) == 0 {
			respondError(w, http.StatusBadRequest, ErrMsgEmptyBatch)
			return
		}
		if len(req.Events) > MaxBatchSize {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgBatchTooLarge, MaxBatchSize))
			return
		}

		reqs := make([]tracker.TrackRequest, len(req.Events))
		for i, e := range req.Events {
			reqs[i] = e.toServiceRequest()
		}

		res := svc.TrackBatch(r.Context(), reqs)
		if len(res.Failed) > 0 {
			log.Warn(ErrMsgBatchItemsRejected,
				"batch_size", len(reqs), "rejected", len(res.Failed))
		}

		respondJSON(w, http.StatusAccepted, DataResponse{
			Message: fmt.Sprintf("%d events accepted, %d rejected", len(res.Recorded), len(res.Failed)),
			Data:    res,
		})
	}
}

// HandleEventHistory handles GET requests for a user's event history
// @Summary Event history
// @Description List a user's lifecycle events, newest first
// @Tags events
// @Produce json
// @Param id path string true "User ID"
// @Param type query string false "Event type filter"
// @Param from query string false "Range start (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "Range end"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id}/events [get]
func HandleEventHistory(svc tracker.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID := chi.URLParam(r, "id")
		if userID == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, "id"))
			return
		}

		q := repository.EventQuery{Limit: defaultHistoryLimit}

		if raw := r.URL.Query().Get("type"); raw != "" {
			if !domain.IsKnownEventType(domain.EventType(raw)) {
				respondError(w, http.StatusBadRequest, ErrMsgUnknownEventTypeErr)
				return
			}
			q.Types = []domain.EventType{domain.EventType(raw)}
		}

		if raw := r.URL.Query().Get("from"); raw != "" {
			parsed, err := parseDate(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidDateParam, "from"))
				return
			}
			q.DateFrom = &parsed
		}
		if raw := r.URL.Query().Get("to"); raw != "" {
			parsed, err := parseDate(raw)
			if err != nil {
				respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidDateParam, "to"))
				return
			}
			q.DateTo = &parsed
		}

		limit, err := parseIntParam(r, "limit", defaultHistoryLimit)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
			return
		}
		q.Limit = limit

		offset, err := parseIntParam(r, "offset", 0)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidOffset)
			return
		}
		q.Offset = offset

		events, err := svc.History(r.Context(), userID, q)
		if err != nil {
			log.Error(ErrMsgGetHistoryFailed, "error", err, "user_id", userID)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Data: events})
	}
}
