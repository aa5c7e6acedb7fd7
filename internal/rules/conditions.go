package rules

import (
	"time"

	"github.com/taskreel/lifecycle/internal/domain"
)

// evalCondition interprets one condition against the context. It never
// returns an error: anything unevaluable (unknown field, missing
// counter, bad types) is false, so one broken rule cannot block the
// engine. Callers log the miss at debug level.
func evalCondition(cond domain.Condition, ctx EvalContext) bool {
	switch cond.Type {
	case domain.ConditionUserProperty:
		return evalUserProperty(cond, ctx)
	case domain.ConditionEventCount:
		return evalEventCount(cond, ctx)
	case domain.ConditionTimeBased:
		return evalTimeBased(cond, ctx)
	case domain.ConditionCalculatedMetric:
		return evalCalculatedMetric(cond, ctx)
	default:
		return false
	}
}

func evalUserProperty(cond domain.Condition, ctx EvalContext) bool {
	value, known := ctx.propertyValue(cond.Field)
	if !known {
		return false
	}

	switch cond.Operator {
	case domain.OpExists:
		return value != nil
	case domain.OpNotExists:
		return value == nil
	}

	if value == nil {
		return false
	}
	return compare(cond.Operator, value, cond.Value)
}

func evalEventCount(cond domain.Condition, ctx EvalContext) bool {
	if ctx.Counts == nil {
		return false
	}
	count, ok := ctx.Counts.Count(domain.EventType(cond.Field), cond.TimeWindowDays)
	if !ok {
		return false
	}
	return compare(cond.Operator, count, cond.Value)
}

func evalTimeBased(cond domain.Condition, ctx EvalContext) bool {
	ref, ok := ctx.timestampValue(cond.Field)
	if !ok {
		return false
	}
	elapsed := int(ctx.Now.Sub(ref).Hours() / 24)
	if elapsed < 0 {
		elapsed = 0
	}
	return compare(cond.Operator, elapsed, cond.Value)
}

func evalCalculatedMetric(cond domain.Condition, ctx EvalContext) bool {
	value, ok := ctx.metricValue(cond.Field)
	if !ok {
		return false
	}
	return compare(cond.Operator, value, cond.Value)
}

// compare applies an operator to resolved and expected values. Numeric
// comparisons coerce both sides to float64; everything else falls back
// to string equality. Type mismatches are false, never a panic.
func compare(op domain.Operator, actual, expected interface{}) bool {
	switch op {
	case domain.OpEquals:
		if af, aok := toFloat(actual); aok {
			if ef, eok := toFloat(expected); eok {
				return af == ef
			}
			return false
		}
		return toString(actual) == toString(expected)
	case domain.OpNotEquals:
		return !compare(domain.OpEquals, actual, expected)
	case domain.OpGreaterThan, domain.OpGreaterThanOrEqual, domain.OpLessThan, domain.OpLessThanOrEqual:
		af, aok := toFloat(actual)
		ef, eok := toFloat(expected)
		if !aok || !eok {
			return false
		}
		switch op {
		case domain.OpGreaterThan:
			return af > ef
		case domain.OpGreaterThanOrEqual:
			return af >= ef
		case domain.OpLessThan:
			return af < ef
		default:
			return af <= ef
		}
	case domain.OpIn:
		return inList(actual, expected)
	case domain.OpNotIn:
		if _, ok := expected.([]interface{}); !ok {
			return false
		}
		return !inList(actual, expected)
	default:
		return false
	}
}

func inList(actual, expected interface{}) bool {
	list, ok := expected.([]interface{})
	if !ok {
		return false
	}
	for _, item := range list {
		if compare(domain.OpEquals, actual, item) {
			return true
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case domain.Stage:
		return string(s)
	case domain.EventType:
		return string(s)
	case time.Time:
		return s.UTC().Format(time.RFC3339)
	case bool:
		if s {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
