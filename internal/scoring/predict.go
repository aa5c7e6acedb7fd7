package scoring

import (
	"math"

	"github.com/taskreel/lifecycle/internal/domain"
)

// Risk level labels for churn predictions.
const (
	RiskLevelLow      = "LOW"
	RiskLevelMedium   = "MEDIUM"
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

// ChurnProbability blends risk and (inverted) engagement into a [0,1]
// probability. This is a placeholder heuristic by design, not a learned
// model; it must stay deterministic and explainable.
func ChurnProbability(riskScore, engagementScore int) float64 {
	p := (float64(riskScore)*0.6 + float64(100-engagementScore)*0.4) / 100.0
	return math.Round(p*100) / 100
}

// RiskLevelFor maps a churn probability onto a coarse label.
func RiskLevelFor(probability float64) string {
	switch {
	case probability >= 0.8:
		return RiskLevelCritical
	case probability >= 0.6:
		return RiskLevelHigh
	case probability >= 0.35:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// ChurnFactors names the facts that drove a churn assessment.
func ChurnFactors(in RiskInputs, engagementScore int) []string {
	var factors []string
	if in.DaysSinceLastLogin < 0 {
		factors = append(factors, "never logged in")
	} else if in.DaysSinceLastLogin >= 7 {
		factors = append(factors, "inactive for 7+ days")
	}
	if in.ExpectedTasks7Days > 0 && in.ActualTasks7Days < in.ExpectedTasks7Days {
		factors = append(factors, "missing daily task targets")
	}
	if in.Balance < 0 {
		factors = append(factors, "negative balance")
	}
	if engagementScore < 30 {
		factors = append(factors, "low engagement score")
	}
	return factors
}

// LifetimeValuePrediction extrapolates earnings a year forward, decayed
// by churn probability. Deterministic heuristic.
func LifetimeValuePrediction(totalEarnings float64, monthlyEarnings float64, churnProbability float64) float64 {
	projected := totalEarnings + monthlyEarnings*12*(1-churnProbability)
	return math.Round(projected*100) / 100
}

// PredictNextStage guesses the most likely next stage and a day
// estimate from the current stage and scores. Nil when the stage has no
// obvious successor.
func PredictNextStage(current domain.Stage, engagementScore, riskScore int) *domain.StagePrediction {
	if riskScore >= 70 {
		switch current {
		case domain.StageAtRisk:
			return &domain.StagePrediction{Stage: domain.StageInactive, EstimatedDays: 7}
		case domain.StageInactive:
			return &domain.StagePrediction{Stage: domain.StageChurned, EstimatedDays: 16}
		case domain.StageChurned:
			return nil
		default:
			return &domain.StagePrediction{Stage: domain.StageAtRisk, EstimatedDays: 3}
		}
	}

	switch current {
	case domain.StageRegistered:
		return &domain.StagePrediction{Stage: domain.StageProfileIncomplete, EstimatedDays: 1}
	case domain.StageProfileIncomplete:
		return &domain.StagePrediction{Stage: domain.StageProfileComplete, EstimatedDays: 2}
	case domain.StageProfileComplete:
		return &domain.StagePrediction{Stage: domain.StageFirstLogin, EstimatedDays: 1}
	case domain.StageFirstLogin:
		return &domain.StagePrediction{Stage: domain.StageExploring, EstimatedDays: 2}
	case domain.StageExploring:
		return &domain.StagePrediction{Stage: domain.StageFirstTask, EstimatedDays: 3}
	case domain.StageFirstTask:
		return &domain.StagePrediction{Stage: domain.StageFirstEarning, EstimatedDays: 4}
	case domain.StageFirstEarning:
		return &domain.StagePrediction{Stage: domain.StageOccasionalUser, EstimatedDays: 7}
	case domain.StageOccasionalUser:
		return &domain.StagePrediction{Stage: domain.StageRegularUser, EstimatedDays: 14}
	case domain.StageRegularUser:
		if engagementScore >= 60 {
			return &domain.StagePrediction{Stage: domain.StageHighlyEngaged, EstimatedDays: 14}
		}
		return &domain.StagePrediction{Stage: domain.StageAtRisk, EstimatedDays: 21}
	case domain.StageHighlyEngaged:
		return &domain.StagePrediction{Stage: domain.StagePowerUser, EstimatedDays: 30}
	case domain.StagePowerUser:
		return &domain.StagePrediction{Stage: domain.StageVIPUser, EstimatedDays: 60}
	case domain.StageReactivated:
		return &domain.StagePrediction{Stage: domain.StageRecovered, EstimatedDays: 14}
	default:
		return nil
	}
}
