package domain

import "time"

// Member is the minimal account surface the auth subsystem needs. Full member
// management lives elsewhere; the token lifecycle only reads identity and the
// password hash, and creates a bare row for first-time external logins.
type Member struct {
	ID int64 `json:"id" gorm:"primaryKey"`

	Name         string `json:"name" gorm:"size:50;not null"`
	Email        string `json:"email" gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"size:100"`

	// Provider is empty for password accounts, else the external identity
	// provider that vouched for this member (google, kakao, naver).
	Provider string `json:"provider,omitempty" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
}
