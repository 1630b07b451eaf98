package model

import "time"

// AuthToken kinds.
const (
	TokenKindReset  = "reset"
	TokenKindVerify = "verify"
)

// AuthToken is a single-use password-reset or email-verification token.
// Only the SHA-256 digest of the token is stored; the plaintext is handed to
// the caller once at creation time. ConsumedAt is set on first successful
// confirmation, after which the row can never validate again.
type AuthToken struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID  int64      `gorm:"index:idx_auth_token_account;not null" json:"account_id"`
	Kind       string     `gorm:"size:16;not null" json:"kind"`
	TokenHash  string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
