package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskreel/lifecycle/internal/domain"
)

func TestPredictNextStage_OnboardingLadder(t *testing.T) {
	got := PredictNextStage(domain.StageRegistered, 50, 0)
	require.NotNil(t, got)
	assert.Equal(t, domain.StageProfileIncomplete, got.Stage)
	assert.Equal(t, 1, got.EstimatedDays)
}

func TestPredictNextStage_RegularUserSplitsOnEngagement(t *testing.T) {
	engaged := PredictNextStage(domain.StageRegularUser, 70, 0)
	require.NotNil(t, engaged)
	assert.Equal(t, domain.StageHighlyEngaged, engaged.Stage)

	drifting := PredictNextStage(domain.StageRegularUser, 40, 0)
	require.NotNil(t, drifting)
	assert.Equal(t, domain.StageAtRisk, drifting.Stage)
}

func TestPredictNextStage_HighRiskOverridesLadder(t *testing.T) {
	got := PredictNextStage(domain.StageRegularUser, 90, 80)
	require.NotNil(t, got)
	assert.Equal(t, domain.StageAtRisk, got.Stage)
	assert.Equal(t, 3, got.EstimatedDays)

	atRisk := PredictNextStage(domain.StageAtRisk, 10, 80)
	require.NotNil(t, atRisk)
	assert.Equal(t, domain.StageInactive, atRisk.Stage)
}

func TestPredictNextStage_TerminalStages(t *testing.T) {
	assert.Nil(t, PredictNextStage(domain.StageChurned, 0, 90))
	assert.Nil(t, PredictNextStage(domain.StageSuspended, 50, 0))
}
