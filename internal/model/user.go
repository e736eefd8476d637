package model

import "time"

// Roles a user account can hold.
const (
	RoleChild       = "child"
	RoleCaregiver   = "caregiver"
	RoleFacilitator = "facilitator"
)

type User struct {
	ID              int64     `json:"id"`
	Alias           string    `json:"alias"`
	Role            string    `json:"role"`
	Age             int       `json:"age"`
	AvatarEmoji     string    `json:"avatar_emoji"`
	Points          int       `json:"points"`
	ParentEmail     string    `json:"parent_email,omitempty"`
	ParentalConsent bool      `json:"parental_consent"`
	ConsentVerified bool      `json:"consent_verified"`
	HasPIN          bool      `json:"has_pin"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasConsent reports whether a child account may perform data-collection
// actions. Non-child roles always have consent.
func (u *User) HasConsent() bool {
	if u.Role != RoleChild {
		return true
	}
	return u.ConsentVerified || u.ParentalConsent
}
