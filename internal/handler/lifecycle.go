package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskreel/lifecycle/internal/lifecycle"
	"github.com/taskreel/lifecycle/internal/logger"
)

// HandleGetUserLifecycle handles GET requests for one user's snapshot
// @Summary User lifecycle snapshot
// @Description Get the computed lifecycle snapshot for a user
// @Tags lifecycle
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.Snapshot
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id}/lifecycle [get]
func HandleGetUserLifecycle(svc lifecycle.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID := chi.URLParam(r, "id")
		if userID == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, "id"))
			return
		}

		snap, err := svc.GetUserLifecycleData(r.Context(), userID)
		if err != nil {
			log.Error(ErrMsgGetLifecycleFailed, "error", err, "user_id", userID)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}
		if snap == nil {
			respondError(w, http.StatusNotFound, ErrMsgUserNotFoundError)
			return
		}

		respondJSON(w, http.StatusOK, snap)
	}
}

// HandleListUserLifecycles handles GET requests for a filtered snapshot listing
// @Summary List lifecycle snapshots
// @Description List computed snapshots, filterable by stage, segment and engagement
// @Tags lifecycle
// @Produce json
// @Param stages query string false "Comma-separated stage filter"
// @Param segments query string false "Comma-separated segment filter"
// @Param min_engagement query int false "Minimum engagement score"
// @Param max_engagement query int false "Maximum engagement score"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} lifecycle.PaginatedSnapshots
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/lifecycle [get]
func HandleListUserLifecycles(svc lifecycle.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		filters, ok := parseLifecycleFilters(r, w)
		if !ok {
			return
		}

		limit, err := parseIntParam(r, "limit", 0)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidLimit)
			return
		}
		offset, err := parseIntParam(r, "offset", 0)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidOffset)
			return
		}

		page, err := svc.GetUsersLifecycleData(r.Context(), filters, lifecycle.Page{Limit: limit, Offset: offset})
		if err != nil {
			log.Error(ErrMsgListLifecycleFailed, "error", err)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusOK, page)
	}
}

// HandlePredictChurn handles GET requests for a user's churn prediction
// @Summary Churn prediction
// @Description Get the churn probability, risk level and contributing factors for a user
// @Tags lifecycle
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} domain.ChurnPrediction
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/{id}/churn [get]
func HandlePredictChurn(svc lifecycle.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID := chi.URLParam(r, "id")
		if userID == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, "id"))
			return
		}

		pred, err := svc.PredictChurn(r.Context(), userID)
		if err != nil {
			log.Error(ErrMsgPredictChurnFailed, "error", err, "user_id", userID)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}
		if pred == nil {
			respondError(w, http.StatusNotFound, ErrMsgUserNotFoundError)
			return
		}

		respondJSON(w, http.StatusOK, pred)
	}
}
