package domain

// Stage is one discrete phase in a user's lifecycle progression.
type Stage string

const (
	StageRegistered        Stage = "REGISTERED"
	StageProfileIncomplete Stage = "PROFILE_INCOMPLETE"
	StageProfileComplete   Stage = "PROFILE_COMPLETE"
	StageFirstLogin        Stage = "FIRST_LOGIN"
	StageExploring         Stage = "EXPLORING"
	StageFirstTask         Stage = "FIRST_TASK"
	StageFirstEarning      Stage = "FIRST_EARNING"
	StageOccasionalUser    Stage = "OCCASIONAL_USER"
	StageRegularUser       Stage = "REGULAR_USER"
	StagePositionUpgraded  Stage = "POSITION_UPGRADED"
	StageFirstReferral     Stage = "FIRST_REFERRAL"
	StageActiveReferrer    Stage = "ACTIVE_REFERRER"
	StageHighlyEngaged     Stage = "HIGHLY_ENGAGED"
	StagePowerUser         Stage = "POWER_USER"
	StageVIPUser           Stage = "VIP_USER"
	StageAtRisk            Stage = "AT_RISK"
	StageInactive          Stage = "INACTIVE"
	StageDormant           Stage = "DORMANT"
	StageChurned           Stage = "CHURNED"
	StageReactivated       Stage = "REACTIVATED"
	StageRecovered         Stage = "RECOVERED"
	StageProblemUser       Stage = "PROBLEM_USER"
	StageSuspended         Stage = "SUSPENDED"
)

// DefaultStage is the stage of a user with no recorded transitions.
const DefaultStage = StageRegistered

// AllStages lists every stage in declaration order.
var AllStages = []Stage{
	StageRegistered, StageProfileIncomplete, StageProfileComplete,
	StageFirstLogin, StageExploring, StageFirstTask, StageFirstEarning,
	StageOccasionalUser, StageRegularUser, StagePositionUpgraded,
	StageFirstReferral, StageActiveReferrer, StageHighlyEngaged,
	StagePowerUser, StageVIPUser, StageAtRisk, StageInactive,
	StageDormant, StageChurned, StageReactivated, StageRecovered,
	StageProblemUser, StageSuspended,
}

// IsValidStage reports whether s is one of the declared stages.
func IsValidStage(s Stage) bool {
	for _, known := range AllStages {
		if s == known {
			return true
		}
	}
	return false
}

// JourneyPhase is a coarse grouping of stages along the user journey.
type JourneyPhase string

const (
	PhaseAcquisition  JourneyPhase = "ACQUISITION"
	PhaseActivation   JourneyPhase = "ACTIVATION"
	PhaseRetention    JourneyPhase = "RETENTION"
	PhaseRevenue      JourneyPhase = "REVENUE"
	PhaseReferral     JourneyPhase = "REFERRAL"
	PhaseReactivation JourneyPhase = "REACTIVATION"
	PhaseChurn        JourneyPhase = "CHURN"
)

var stagePhases = map[Stage]JourneyPhase{
	StageRegistered:        PhaseAcquisition,
	StageProfileIncomplete: PhaseAcquisition,
	StageProfileComplete:   PhaseAcquisition,
	StageFirstLogin:        PhaseActivation,
	StageExploring:         PhaseActivation,
	StageFirstTask:         PhaseActivation,
	StageFirstEarning:      PhaseActivation,
	StageOccasionalUser:    PhaseRetention,
	StageRegularUser:       PhaseRetention,
	StageHighlyEngaged:     PhaseRetention,
	StagePowerUser:         PhaseRetention,
	StagePositionUpgraded:  PhaseRevenue,
	StageVIPUser:           PhaseRevenue,
	StageFirstReferral:     PhaseReferral,
	StageActiveReferrer:    PhaseReferral,
	StageReactivated:       PhaseReactivation,
	StageRecovered:         PhaseReactivation,
	StageAtRisk:            PhaseChurn,
	StageInactive:          PhaseChurn,
	StageDormant:           PhaseChurn,
	StageChurned:           PhaseChurn,
	StageProblemUser:       PhaseChurn,
	StageSuspended:         PhaseChurn,
}

// PhaseForStage returns the journey phase a stage belongs to.
func PhaseForStage(s Stage) JourneyPhase {
	if phase, ok := stagePhases[s]; ok {
		return phase
	}
	return PhaseAcquisition
}
