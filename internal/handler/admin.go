package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskreel/lifecycle/internal/domain"
	"github.com/taskreel/lifecycle/internal/lifecycle"
	"github.com/taskreel/lifecycle/internal/logger"
)

// ForceStageRequest represents an admin stage override request
type ForceStageRequest struct {
	ToStage string `json:"to_stage" validate:"required,max=32,stage"`
	Reason  string `json:"reason" validate:"required,max=500"`
	AdminID string `json:"admin_id" validate:"required,max=100"`
}

// HandleForceStage handles POST requests to force a stage transition
// @Summary Force stage transition
// @Description Admin override of a user's lifecycle stage, recorded with reason and admin id
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body ForceStageRequest true "Override details"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/users/{id}/stage [post]
func HandleForceStage(svc lifecycle.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		userID := chi.URLParam(r, "id")
		if userID == "" {
			respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, "id"))
			return
		}

		var req ForceStageRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Force stage"); err != nil {
			return
		}

		transition, err := svc.ForceStageTransition(r.Context(), userID, domain.Stage(req.ToStage), req.Reason, req.AdminID)
		if err != nil {
			log.Warn(ErrMsgForceStageFailed, "error", err, "user_id", userID, "to_stage", req.ToStage)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		log.Info("Stage transition forced",
			"user_id", userID,
			"to_stage", req.ToStage,
			"admin_id", req.AdminID)

		respondJSON(w, http.StatusOK, DataResponse{Message: "Stage transition applied", Data: transition})
	}
}

// HandleRunDailyCheck handles POST requests to trigger the daily check
// @Summary Run daily check
// @Description Run the daily lifecycle batch check immediately
// @Tags admin
// @Produce json
// @Success 200 {object} DataResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/daily-check [post]
func HandleRunDailyCheck(svc lifecycle.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		result, err := svc.RunDailyCheck(r.Context())
		if err != nil {
			log.Error(ErrMsgDailyCheckFailed, "error", err)
			status, message := mapServiceErrorToUserMessage(err)
			respondError(w, status, message)
			return
		}

		respondJSON(w, http.StatusOK, DataResponse{Message: "Daily check complete", Data: result})
	}
}
