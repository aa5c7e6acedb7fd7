package domain

import "time"

// EventSource identifies what kind of actor produced an event.
type EventSource string

const (
	SourceUserAction    EventSource = "USER_ACTION"
	SourceSystemTrigger EventSource = "SYSTEM_TRIGGER"
	SourceAdminAction   EventSource = "ADMIN_ACTION"
	SourceScheduledTask EventSource = "SCHEDULED_TASK"
	SourceExternalAPI   EventSource = "EXTERNAL_API"
)

// EventType classifies a lifecycle event.
type EventType string

// Registration events
const (
	EventUserRegistered        EventType = "USER_REGISTERED"
	EventEmailVerified         EventType = "EMAIL_VERIFIED"
	EventRegistrationCompleted EventType = "REGISTRATION_COMPLETED"
)

// Profile events
const (
	EventProfileUpdated   EventType = "PROFILE_UPDATED"
	EventProfileCompleted EventType = "PROFILE_COMPLETED"
	EventAvatarUploaded   EventType = "AVATAR_UPLOADED"
	EventBankDetailsAdded EventType = "BANK_DETAILS_ADDED"
)

// Auth events
const (
	EventFirstLogin             EventType = "FIRST_LOGIN"
	EventUserLogin              EventType = "USER_LOGIN"
	EventUserLogout             EventType = "USER_LOGOUT"
	EventPasswordChanged        EventType = "PASSWORD_CHANGED"
	EventPasswordResetRequested EventType = "PASSWORD_RESET_REQUESTED"
)

// Task events
const (
	EventTaskStarted        EventType = "TASK_STARTED"
	EventTaskCompleted      EventType = "TASK_COMPLETED"
	EventTaskFailed         EventType = "TASK_FAILED"
	EventVideoWatched       EventType = "VIDEO_WATCHED"
	EventVideoTaskCompleted EventType = "VIDEO_TASK_COMPLETED"
	EventDailyTargetMet     EventType = "DAILY_TARGET_MET"
	EventDailyTargetMissed  EventType = "DAILY_TARGET_MISSED"
)

// Financial events
const (
	EventEarningCredited     EventType = "EARNING_CREDITED"
	EventFirstEarning        EventType = "FIRST_EARNING"
	EventWithdrawalRequested EventType = "WITHDRAWAL_REQUESTED"
	EventWithdrawalCompleted EventType = "WITHDRAWAL_COMPLETED"
	EventWithdrawalRejected  EventType = "WITHDRAWAL_REJECTED"
	EventBalanceNegative     EventType = "BALANCE_NEGATIVE"
)

// Position events
const (
	EventPositionAssigned EventType = "POSITION_ASSIGNED"
	EventPositionUpgraded EventType = "POSITION_UPGRADED"
	EventPositionExpired  EventType = "POSITION_EXPIRED"
)

// Referral events
const (
	EventReferralLinkShared  EventType = "REFERRAL_LINK_SHARED"
	EventReferralSignup      EventType = "REFERRAL_SIGNUP"
	EventFirstReferral       EventType = "FIRST_REFERRAL"
	EventReferralBonusEarned EventType = "REFERRAL_BONUS_EARNED"
)

// Engagement events
const (
	EventSessionStarted         EventType = "SESSION_STARTED"
	EventSessionEnded           EventType = "SESSION_ENDED"
	EventStreakExtended         EventType = "STREAK_EXTENDED"
	EventStreakBroken           EventType = "STREAK_BROKEN"
	EventMilestoneReached       EventType = "MILESTONE_REACHED"
	EventHighEngagementDetected EventType = "HIGH_ENGAGEMENT_DETECTED"
)

// Risk events
const (
	EventInactivity7Days    EventType = "INACTIVITY_7_DAYS"
	EventInactivity14Days   EventType = "INACTIVITY_14_DAYS"
	EventInactivity30Days   EventType = "INACTIVITY_30_DAYS"
	EventSuspiciousActivity EventType = "SUSPICIOUS_ACTIVITY"
	EventComplaintFiled     EventType = "COMPLAINT_FILED"
)

// Recovery events
const (
	EventReactivationEmailSent EventType = "REACTIVATION_EMAIL_SENT"
	EventUserReactivated       EventType = "USER_REACTIVATED"
	EventWinbackOfferAccepted  EventType = "WINBACK_OFFER_ACCEPTED"
)

// Admin events
const (
	EventAdminAdjustment    EventType = "ADMIN_ADJUSTMENT"
	EventAccountSuspended   EventType = "ACCOUNT_SUSPENDED"
	EventAccountReinstated  EventType = "ACCOUNT_REINSTATED"
	EventStageTransition    EventType = "STAGE_TRANSITION"
	EventSegmentRecomputed  EventType = "SEGMENT_RECOMPUTED"
	EventLifecycleCheckDone EventType = "LIFECYCLE_CHECK_DONE"
)

// knownEventTypes is the closed set accepted by the tracker.
var knownEventTypes = map[EventType]struct{}{
	EventUserRegistered: {}, EventEmailVerified: {}, EventRegistrationCompleted: {},
	EventProfileUpdated: {}, EventProfileCompleted: {}, EventAvatarUploaded: {}, EventBankDetailsAdded: {},
	EventFirstLogin: {}, EventUserLogin: {}, EventUserLogout: {}, EventPasswordChanged: {}, EventPasswordResetRequested: {},
	EventTaskStarted: {}, EventTaskCompleted: {}, EventTaskFailed: {}, EventVideoWatched: {}, EventVideoTaskCompleted: {},
	EventDailyTargetMet: {}, EventDailyTargetMissed: {},
	EventEarningCredited: {}, EventFirstEarning: {}, EventWithdrawalRequested: {}, EventWithdrawalCompleted: {},
	EventWithdrawalRejected: {}, EventBalanceNegative: {},
	EventPositionAssigned: {}, EventPositionUpgraded: {}, EventPositionExpired: {},
	EventReferralLinkShared: {}, EventReferralSignup: {}, EventFirstReferral: {}, EventReferralBonusEarned: {},
	EventSessionStarted: {}, EventSessionEnded: {}, EventStreakExtended: {}, EventStreakBroken: {},
	EventMilestoneReached: {}, EventHighEngagementDetected: {},
	EventInactivity7Days: {}, EventInactivity14Days: {}, EventInactivity30Days: {},
	EventSuspiciousActivity: {}, EventComplaintFiled: {},
	EventReactivationEmailSent: {}, EventUserReactivated: {}, EventWinbackOfferAccepted: {},
	EventAdminAdjustment: {}, EventAccountSuspended: {}, EventAccountReinstated: {},
	EventStageTransition: {}, EventSegmentRecomputed: {}, EventLifecycleCheckDone: {},
}

// IsKnownEventType reports whether t is part of the closed event type set.
func IsKnownEventType(t EventType) bool {
	_, ok := knownEventTypes[t]
	return ok
}

// EventContext carries optional request-level context attached to an event.
type EventContext struct {
	SessionID string `json:"session_id,omitempty"`
	DeviceID  string `json:"device_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	AdminID   string `json:"admin_id,omitempty"`
}

// Event is an immutable fact about a user action or system observation.
// Events are append-only; the full history is the source of truth.
type Event struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"user_id"`
	Type      EventType              `json:"event_type"`
	Source    EventSource            `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Context   *EventContext          `json:"context,omitempty"`
}
