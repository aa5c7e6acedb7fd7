package analytics

import (
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
)

// All rates in this package are percentages in [0,100].

// TrendGranularity is the bucket width of a trend series.
type TrendGranularity string

const (
	TrendDaily   TrendGranularity = "day"
	TrendWeekly  TrendGranularity = "week"
	TrendMonthly TrendGranularity = "month"
)

// TrendPoint is one bucket of the event volume trend.
type TrendPoint struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

// Dashboard is the point-in-time operator overview for a date range.
// Incomplete is set when some per-user aggregation failed and the
// totals underreport; it is never silently false on partial data.
type Dashboard struct {
	From                  time.Time              `json:"from"`
	To                    time.Time              `json:"to"`
	TotalUsers            int                    `json:"total_users"`
	ActiveUsers           int                    `json:"active_users"`
	NewToday              int                    `json:"new_today"`
	ChurnRate             float64                `json:"churn_rate"`
	StageDistribution     map[domain.Stage]int   `json:"stage_distribution"`
	SegmentDistribution   map[domain.Segment]int `json:"segment_distribution"`
	AvgDaysToFirstTask    float64                `json:"avg_days_to_first_task"`
	AvgDaysToFirstEarning float64                `json:"avg_days_to_first_earning"`
	TrendGranularity      TrendGranularity       `json:"trend_granularity"`
	Trend                 []TrendPoint           `json:"trend"`
	Incomplete            bool                   `json:"incomplete,omitempty"`
}

// Heatmap buckets raw event volume along several time axes. Every
// bucket in range is present even when zero.
type Heatmap struct {
	From        time.Time      `json:"from"`
	To          time.Time      `json:"to"`
	TotalEvents int            `json:"total_events"`
	HourOfDay   [24]int        `json:"hour_of_day"`
	Weekday     [7]int         `json:"weekday"`
	ByDate      map[string]int `json:"by_date"`
	ByMonth     map[string]int `json:"by_month"`
}

// TransitionStat aggregates one observed from→to stage transition.
type TransitionStat struct {
	From              domain.Stage `json:"from_stage"`
	To                domain.Stage `json:"to_stage"`
	Count             int          `json:"count"`
	AvgDaysInPrevious float64      `json:"avg_days_in_previous"`
	ConversionRate    float64      `json:"conversion_rate"`
}

// DropOffPoint flags a transition whose conversion rate is below the
// drop-off threshold.
type DropOffPoint struct {
	From           domain.Stage `json:"from_stage"`
	To             domain.Stage `json:"to_stage"`
	ConversionRate float64      `json:"conversion_rate"`
	EstimatedCount int          `json:"estimated_drop_off"`
}

// PathStat is one deduplicated per-user stage sequence with how many
// users followed it.
type PathStat struct {
	Path       []domain.Stage `json:"path"`
	Users      int            `json:"users"`
	Percentage float64        `json:"percentage"`
}

// JourneyReport is the stage flow analysis for a date range.
type JourneyReport struct {
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	UsersAnalyzed int              `json:"users_analyzed"`
	Transitions   []TransitionStat `json:"transitions"`
	DropOffs      []DropOffPoint   `json:"drop_offs"`
	CommonPaths   []PathStat       `json:"common_paths"`
}

// CohortPeriod selects the registration partition width.
type CohortPeriod string

const (
	CohortWeekly  CohortPeriod = "weekly"
	CohortMonthly CohortPeriod = "monthly"
)

// RetentionOffsets are the day offsets every cohort is measured at.
var RetentionOffsets = []int{1, 3, 7, 14, 30, 60, 90}

// Cohort is one registration-period group. Retention holds only the
// offsets that have already elapsed for the cohort.
type Cohort struct {
	Label     string          `json:"label"`
	Start     time.Time       `json:"start"`
	Size      int             `json:"size"`
	Retention map[int]float64 `json:"retention"`
}

// CohortReport is the retention analysis across cohorts.
type CohortReport struct {
	From             time.Time       `json:"from"`
	To               time.Time       `json:"to"`
	Period           CohortPeriod    `json:"period"`
	Cohorts          []Cohort        `json:"cohorts"`
	AverageRetention map[int]float64 `json:"average_retention"`
}

// InsightCategory classifies what an insight is about.
type InsightCategory string

const (
	InsightRisk        InsightCategory = "RISK"
	InsightConversion  InsightCategory = "CONVERSION"
	InsightEngagement  InsightCategory = "ENGAGEMENT"
	InsightOpportunity InsightCategory = "OPPORTUNITY"
	InsightRetention   InsightCategory = "RETENTION"
)

// InsightImpact grades how urgent an insight is.
type InsightImpact string

const (
	ImpactHigh   InsightImpact = "HIGH"
	ImpactMedium InsightImpact = "MEDIUM"
	ImpactLow    InsightImpact = "LOW"
)

// Insight is one deterministic finding from the heuristic battery.
type Insight struct {
	Category       InsightCategory        `json:"category"`
	Impact         InsightImpact          `json:"impact"`
	Confidence     float64                `json:"confidence"`
	Title          string                 `json:"title"`
	Recommendation string                 `json:"recommendation"`
	Data           map[string]interface{} `json:"data,omitempty"`
}
