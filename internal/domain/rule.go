package domain

// ConditionType selects which evaluator interprets a condition.
type ConditionType string

const (
	ConditionUserProperty     ConditionType = "USER_PROPERTY"
	ConditionEventCount       ConditionType = "EVENT_COUNT"
	ConditionTimeBased        ConditionType = "TIME_BASED"
	ConditionCalculatedMetric ConditionType = "CALCULATED_METRIC"
)

// Operator compares a resolved field value against a condition value.
type Operator string

const (
	OpEquals             Operator = "EQUALS"
	OpNotEquals          Operator = "NOT_EQUALS"
	OpGreaterThan        Operator = "GREATER_THAN"
	OpGreaterThanOrEqual Operator = "GREATER_THAN_OR_EQUAL"
	OpLessThan           Operator = "LESS_THAN"
	OpLessThanOrEqual    Operator = "LESS_THAN_OR_EQUAL"
	OpExists             Operator = "EXISTS"
	OpNotExists          Operator = "NOT_EXISTS"
	OpIn                 Operator = "IN"
	OpNotIn              Operator = "NOT_IN"
)

// Calculated metric names resolvable by CALCULATED_METRIC conditions.
// This is a closed set; unknown names evaluate to condition=false.
const (
	MetricTotalVideoTasks = "totalVideoTasks"
	MetricTotalReferrals  = "totalReferrals"
	MetricTotalEarnings   = "totalEarnings"
	MetricEngagementScore = "engagementScore"
)

// Condition is one boolean check inside a transition rule. It is a pure
// function of the evaluation context; conditions that cannot be
// evaluated (unknown field, bad type) are false, never an error.
type Condition struct {
	Type           ConditionType `json:"type"`
	Field          string        `json:"field"`
	Operator       Operator      `json:"operator"`
	Value          interface{}   `json:"value,omitempty"`
	TimeWindowDays int           `json:"time_window_days,omitempty"`
}

// TransitionRule moves a user from one stage to another when all of its
// conditions hold. A nil FromStage matches any current stage. Rules are
// evaluated in ascending Priority order and the first full match wins;
// at most one transition is applied per evaluation pass.
type TransitionRule struct {
	Name       string      `json:"name"`
	FromStage  *Stage      `json:"from_stage,omitempty"`
	ToStage    Stage       `json:"to_stage"`
	Conditions []Condition `json:"conditions"`
	Priority   int         `json:"priority"`
}

// Matches reports whether the rule applies to the given current stage.
func (r TransitionRule) Matches(current Stage) bool {
	return r.FromStage == nil || *r.FromStage == current
}
