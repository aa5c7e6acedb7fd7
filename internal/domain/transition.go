package domain

import (
	"time"
)

// Metadata keys used by STAGE_TRANSITION events.
const (
	TransitionKeyFromStage    = "from_stage"
	TransitionKeyToStage      = "to_stage"
	TransitionKeyTriggerEvent = "trigger_event"
	TransitionKeyDaysInStage  = "days_in_previous_stage"
	TransitionKeyReason       = "reason"
	TransitionKeyAdminID      = "admin_id"
)

// StageTransition is a recorded change of lifecycle stage. It is stored
// as the metadata of a STAGE_TRANSITION event, never as a mutable field:
// a user's current stage is always the ToStage of their most recent
// transition event, or DefaultStage when none exists.
type StageTransition struct {
	FromStage           *Stage    `json:"from_stage,omitempty"`
	ToStage             Stage     `json:"to_stage"`
	TriggerEvent        EventType `json:"trigger_event,omitempty"`
	DaysInPreviousStage int       `json:"days_in_previous_stage"`
	Reason              string    `json:"reason,omitempty"`
	AdminID             string    `json:"admin_id,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
}

// ToMetadata encodes the transition into event metadata.
func (t StageTransition) ToMetadata() map[string]interface{} {
	m := map[string]interface{}{
		TransitionKeyToStage:     string(t.ToStage),
		TransitionKeyDaysInStage: t.DaysInPreviousStage,
	}
	if t.FromStage != nil {
		m[TransitionKeyFromStage] = string(*t.FromStage)
	}
	if t.TriggerEvent != "" {
		m[TransitionKeyTriggerEvent] = string(t.TriggerEvent)
	}
	if t.Reason != "" {
		m[TransitionKeyReason] = t.Reason
	}
	if t.AdminID != "" {
		m[TransitionKeyAdminID] = t.AdminID
	}
	return m
}

// TransitionFromEvent decodes a STAGE_TRANSITION event's metadata.
// Malformed metadata (missing or invalid to_stage) yields ok=false and
// must be treated by callers as "no valid transition" rather than an
// error: a corrupt record never crashes stage derivation.
func TransitionFromEvent(ev Event) (StageTransition, bool) {
	if ev.Type != EventStageTransition || ev.Metadata == nil {
		return StageTransition{}, false
	}

	raw, ok := ev.Metadata[TransitionKeyToStage].(string)
	if !ok {
		return StageTransition{}, false
	}
	to := Stage(raw)
	if !IsValidStage(to) {
		return StageTransition{}, false
	}

	t := StageTransition{
		ToStage:   to,
		Timestamp: ev.Timestamp,
	}

	if from, ok := ev.Metadata[TransitionKeyFromStage].(string); ok && IsValidStage(Stage(from)) {
		fs := Stage(from)
		t.FromStage = &fs
	}
	if trigger, ok := ev.Metadata[TransitionKeyTriggerEvent].(string); ok {
		t.TriggerEvent = EventType(trigger)
	}
	if reason, ok := ev.Metadata[TransitionKeyReason].(string); ok {
		t.Reason = reason
	}
	if adminID, ok := ev.Metadata[TransitionKeyAdminID].(string); ok {
		t.AdminID = adminID
	}
	// JSON round-trips land numbers as float64
	switch v := ev.Metadata[TransitionKeyDaysInStage].(type) {
	case float64:
		t.DaysInPreviousStage = int(v)
	case int:
		t.DaysInPreviousStage = v
	}

	return t, true
}
