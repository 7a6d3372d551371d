package domain

import "time"

// UserRole controls access to the administrative surface.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User represents a platform user in the domain.
type User struct {
	UserID          string   `json:"userID"` // Primary Key (UUID)
	Email           string   `json:"email"`
	Name            string   `json:"name"`
	Role            UserRole `json:"role"`
	GoogleSubjectID string   `json:"-"` // Set when the account is linked to Google sign-in
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Soft delete
}

// GoogleUserInfo is the verified identity triple supplied by the external
// identity provider after ID token validation.
type GoogleUserInfo struct {
	SubjectID string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}
