package entities

import "time"

// Role represents a user's access level
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a platform account. Identity issuance (sessions, passwords)
// lives outside this service; this record carries only what the draw platform
// needs for referral attribution and authorization.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Role         Role      `db:"role"`
	ReferralCode string    `db:"referral_code"`
	ReferredBy   *int64    `db:"referred_by"` // user ID of the referrer, nil if none
	CreatedAt    time.Time `db:"created_at"`
}

// IsAdmin returns true if the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasReferrer returns true if this user signed up through a referral
func (u *User) HasReferrer() bool {
	return u.ReferredBy != nil
}
