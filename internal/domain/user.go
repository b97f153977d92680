package domain

import (
	"strings"
	"time"
)

// User is the identity record behind every session.
type User struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Email                  string     `json:"email"`
	Photo                  string     `json:"photo"`
	Role                   Role       `json:"role"`
	PasswordHash           string     `json:"-"`
	PasswordChangedAt      *time.Time `json:"-"`
	PasswordResetTokenHash *string    `json:"-"`
	PasswordResetExpiresAt *time.Time `json:"-"`
	Active                 bool       `json:"-"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// NormalizeEmail case-folds and trims an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ChangedPasswordAfter reports whether the password was changed after a token issued at
// issuedAt. Comparison is at second granularity, matching JWT iat.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}

// SetPassword replaces the password hash and stamps the change time.
func (u *User) SetPassword(hash string, at time.Time) {
	changed := at.Truncate(time.Second)
	u.PasswordHash = hash
	u.PasswordChangedAt = &changed
}

// HasPendingReset reports whether a reset token is stored and not yet expired at now.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.PasswordResetTokenHash != nil &&
		u.PasswordResetExpiresAt != nil &&
		u.PasswordResetExpiresAt.After(now)
}

// ClearPasswordReset drops the stored reset token and expiry.
func (u *User) ClearPasswordReset() {
	u.PasswordResetTokenHash = nil
	u.PasswordResetExpiresAt = nil
}
