package entity

import "time"

// TokenTTL is how long verification and reset tokens stay valid.
const TokenTTL = time.Hour

type TokenPurpose string

const (
	TokenVerify TokenPurpose = "VERIFY"
	TokenReset  TokenPurpose = "RESET"
)

func (p TokenPurpose) Valid() bool {
	return p == TokenVerify || p == TokenReset
}

// HashColumn returns the users column holding the token digest.
func (p TokenPurpose) HashColumn() string {
	if p == TokenReset {
		return "reset_token_hash"
	}
	return "verify_token_hash"
}

// ExpiryColumn returns the users column holding the token expiry (epoch millis).
func (p TokenPurpose) ExpiryColumn() string {
	if p == TokenReset {
		return "reset_token_expiry"
	}
	return "verify_token_expiry"
}
