package model

import "time"

// User represents a registered account. OTPCode and OTPExpiresAt are a pair:
// both are set while an email challenge is outstanding and both are NULL
// otherwise. Repository writes always touch the two columns together.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"size:255;not null"`
	Mobile       string     `json:"mobile" gorm:"size:32"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	DateOfBirth  time.Time  `json:"dob"`
	Gender       string     `json:"gender" gorm:"size:16"`
	Address      string     `json:"address" gorm:"size:512"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	OTPCode      *string    `json:"-" gorm:"size:6"`
	OTPExpiresAt *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// HasOTP reports whether an email challenge is currently outstanding.
func (u *User) HasOTP() bool {
	return u.OTPCode != nil && u.OTPExpiresAt != nil
}
