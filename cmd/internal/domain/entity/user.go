package entity

// User is an account holder. A user is "pending" until IsVerified flips
// to true through the email verification flow.
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement:false"`
	Username     string `gorm:"not null;uniqueIndex"`
	Email        string `gorm:"not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	IsVerified   bool   `gorm:"not null;default:false"`
	IsAdmin      bool   `gorm:"not null;default:false"`

	// Token columns hold the SHA-256 digest of the raw token, never the raw
	// value. Each pair is either fully set or fully NULL.
	VerifyTokenHash   *string `gorm:"index"`
	VerifyTokenExpiry *int64
	ResetTokenHash    *string `gorm:"index"`
	ResetTokenExpiry  *int64

	CreatedAt int64 `gorm:"not null"`
	UpdatedAt int64 `gorm:"not null;autoUpdateTime:false"`
}
