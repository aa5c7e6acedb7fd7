package domain

import "time"

// User is the platform profile record. The lifecycle core reads it but
// never writes it; aggregate fields like TotalEarnings are maintained
// by the owning subsystems.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email"`
	EmailVerified      bool       `json:"email_verified"`
	RegisteredAt       time.Time  `json:"registered_at"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	ProfileCompletedAt *time.Time `json:"profile_completed_at,omitempty"`
	Position           string     `json:"position,omitempty"`
	Balance            float64    `json:"balance"`
	TotalEarnings      float64    `json:"total_earnings"`
	ReferralCount      int        `json:"referral_count"`
	DailyTaskTarget    int        `json:"daily_task_target"`
	Suspended          bool       `json:"suspended"`
}

// DaysSinceRegistration returns whole elapsed days as of now.
func (u User) DaysSinceRegistration(now time.Time) int {
	return wholeDays(u.RegisteredAt, now)
}

// DaysSinceLastLogin returns whole days since the last login, or -1
// when the user has never logged in.
func (u User) DaysSinceLastLogin(now time.Time) int {
	if u.LastLoginAt == nil {
		return -1
	}
	return wholeDays(*u.LastLoginAt, now)
}

func wholeDays(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}
