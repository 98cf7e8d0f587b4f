package domain

import "time"

// RefreshToken is the ledger row behind a long-lived refresh credential.
//
// The signed token string itself is the lookup key (unique index); a row is
// retired by setting Blacklisted, never by editing the token. Physical
// deletion of dead rows is left to the scheduled cleanup so that a replayed
// token still hits a "blacklisted" row instead of vanishing.
type RefreshToken struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	MemberID int64 `json:"member_id" gorm:"index;not null"`

	Token string `json:"-" gorm:"size:512;uniqueIndex;not null"`

	ExpiresAt   time.Time `json:"expires_at" gorm:"index;not null"`
	Blacklisted bool      `json:"blacklisted" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"created_at"`
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
