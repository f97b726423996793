package entity

import (
	"time"
)

// User is the aggregate root for the account domain. Password holds a
// bcrypt hash; it is never serialized. The login challenge and password
// reset fields live on the user row itself and are likewise never exposed.
type User struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"-"`
	Age            *int   `json:"age,omitempty"`
	Grade          string `json:"grade,omitempty"`
	School         string `json:"school,omitempty"`
	KnowledgeLevel string `json:"knowledgeLevel"`

	Level         int       `json:"level"`
	XP            int       `json:"xp"`
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	LastLoginAt   time.Time `json:"lastLoginAt"`

	// Login challenge: SHA-256 hash of the outstanding one-time code, if any.
	LoginCodeHash      string     `json:"-"`
	LoginCodeExpiresAt *time.Time `json:"-"`

	// Password reset: SHA-256 hash of the outstanding reset token, if any.
	ResetTokenHash      string     `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// XPPerLevel is the flat amount of experience needed to advance one level.
const XPPerLevel = 100

// LevelForXP computes the level that a given XP total corresponds to.
// Level is always derived from XP, never stored independently of it.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// HasLiveLoginChallenge reports whether an unexpired login code is outstanding.
func (u *User) HasLiveLoginChallenge(now time.Time) bool {
	return u.LoginCodeHash != "" && u.LoginCodeExpiresAt != nil && now.Before(*u.LoginCodeExpiresAt)
}
