package domain

import "time"

// UserMetrics are aggregate facts derived from the event history. They
// feed scoring, segmentation and condition evaluation.
type UserMetrics struct {
	TotalTasks         int     `json:"total_tasks"`
	TotalVideoTasks    int     `json:"total_video_tasks"`
	TasksLast7Days     int     `json:"tasks_last_7_days"`
	TasksLast30Days    int     `json:"tasks_last_30_days"`
	LoginsLast30Days   int     `json:"logins_last_30_days"`
	TotalReferrals     int     `json:"total_referrals"`
	TotalEarnings      float64 `json:"total_earnings"`
	CurrentStreak      int     `json:"current_streak"`
	LongestStreak      int     `json:"longest_streak"`
	DaysToFirstTask    int     `json:"days_to_first_task"`
	DaysToFirstEarning int     `json:"days_to_first_earning"`
}

// StagePrediction is a deterministic heuristic guess at the next stage.
type StagePrediction struct {
	Stage         Stage `json:"stage"`
	EstimatedDays int   `json:"estimated_days"`
}

// ChurnPrediction is a heuristic churn assessment, not a learned model.
type ChurnPrediction struct {
	UserID      string    `json:"user_id"`
	Probability float64   `json:"probability"`
	RiskScore   int       `json:"risk_score"`
	RiskLevel   string    `json:"risk_level"`
	Factors     []string  `json:"factors"`
	PredictedAt time.Time `json:"predicted_at"`
}

// Snapshot is the derived lifecycle view of a user. It is recomputed on
// read from the event history and user record; it is never stored.
type Snapshot struct {
	UserID             string           `json:"user_id"`
	CurrentStage       Stage            `json:"current_stage"`
	StageEnteredAt     time.Time        `json:"stage_entered_at"`
	DaysInStage        int              `json:"days_in_stage"`
	JourneyPhase       JourneyPhase     `json:"journey_phase"`
	Segment            Segment          `json:"segment"`
	EngagementScore    int              `json:"engagement_score"`
	RiskScore          int              `json:"risk_score"`
	Metrics            UserMetrics      `json:"metrics"`
	ChurnProbability   float64          `json:"churn_probability"`
	PredictedNextStage *StagePrediction `json:"predicted_next_stage,omitempty"`
	PredictedLTV       float64          `json:"predicted_ltv"`
	ComputedAt         time.Time        `json:"computed_at"`
}
