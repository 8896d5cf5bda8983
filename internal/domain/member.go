package domain

import "time"

// Member tracks the email verification state of one Discord user.
// The OTP is overwritten whenever a new verification is requested
// for the same email; Verified is a one-way transition.
type Member struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DiscordID  string    `gorm:"size:32;index;not null" json:"discord_id"`
	Email      string    `gorm:"size:320;uniqueIndex;not null" json:"email"`
	OTP        string    `gorm:"size:8" json:"-"`
	OTPExpires time.Time `json:"otp_expires"`
	Verified   bool      `gorm:"not null;default:false" json:"verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AllowedEmail struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Email string `gorm:"size:320;uniqueIndex;not null" json:"email"`
}
