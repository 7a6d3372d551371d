package domain

import "time"

// PasswordResetToken is a persisted, single-use reset credential.
// Only the bcrypt hash of the token is stored; the raw value is handed to
// the user once and never retained. Survives process restarts, unlike an
// in-memory token map.
type PasswordResetToken struct {
	TokenID    string     `json:"tokenID"` // Primary Key (UUID)
	UserID     string     `json:"userID"`  // FK -> users.user_id
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// IsUsable reports whether the token can still redeem a reset.
func (t PasswordResetToken) IsUsable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
