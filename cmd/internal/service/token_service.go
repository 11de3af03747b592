package service

import (
	"errors"
	"fmt"
	"time"

	"notekeeper/cmd/internal/domain/entity"
	"notekeeper/cmd/internal/security"
)

// ErrTokenInvalid covers both an unknown and an expired token. Callers
// cannot tell the two apart.
var ErrTokenInvalid = errors.New("invalid or expired token")

type TokenRepository interface {
	SetToken(id int64, purpose entity.TokenPurpose, digest string, expiry, now int64) (bool, error)
	FindByToken(purpose entity.TokenPurpose, digest string, now int64) (*entity.User, error)
	ConsumeToken(id int64, purpose entity.TokenPurpose, digest string, now int64, changes map[string]any) (bool, error)
}

// TokenService issues and redeems the one-time verify and reset tokens.
// Only SHA-256 digests reach the database.
type TokenService struct {
	Repo TokenRepository
	TTL  time.Duration
	Now  func() time.Time
}

func NewTokenService(repo TokenRepository) *TokenService {
	return &TokenService{
		Repo: repo,
		TTL:  entity.TokenTTL,
		Now:  time.Now,
	}
}

// Issue creates a fresh token for the user, replacing any unconsumed
// token of the same purpose. The raw value is returned for mailing.
func (t *TokenService) Issue(userID int64, purpose entity.TokenPurpose) (string, error) {
	if !purpose.Valid() {
		return "", fmt.Errorf("issue token: unknown purpose %q", purpose)
	}

	raw, err := security.NewOpaqueToken()
	if err != nil {
		return "", err
	}

	now := t.Now().UnixMilli()
	expiry := now + t.TTL.Milliseconds()
	ok, err := t.Repo.SetToken(userID, purpose, security.DigestToken(raw), expiry, now)
	if err != nil {
		return "", fmt.Errorf("store %s token: %w", purpose, err)
	}

	if !ok {
		return "", fmt.Errorf("store %s token: user %d not found", purpose, userID)
	}
	return raw, nil
}

// Peek resolves the owner of a live token without consuming it.
func (t *TokenService) Peek(purpose entity.TokenPurpose, raw string) (*entity.User, error) {
	if raw == "" || !purpose.Valid() {
		return nil, ErrTokenInvalid
	}

	user, err := t.Repo.FindByToken(purpose, security.DigestToken(raw), t.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("find %s token: %w", purpose, err)
	}

	if user == nil {
		return nil, ErrTokenInvalid
	}
	return user, nil
}

// Consume redeems the token and applies changes to its owner in the same
// update. A token can be consumed once.
func (t *TokenService) Consume(purpose entity.TokenPurpose, raw string, changes map[string]any) (*entity.User, error) {
	user, err := t.Peek(purpose, raw)
	if err != nil {
		return nil, err
	}

	if err := t.ConsumeOwned(user.ID, purpose, raw, changes); err != nil {
		return nil, err
	}
	return user, nil
}

// ConsumeOwned is Consume for a caller that already claims the owner. A
// token held by anyone else is reported as invalid.
func (t *TokenService) ConsumeOwned(ownerID int64, purpose entity.TokenPurpose, raw string, changes map[string]any) error {
	if raw == "" || !purpose.Valid() {
		return ErrTokenInvalid
	}

	ok, err := t.Repo.ConsumeToken(ownerID, purpose, security.DigestToken(raw), t.Now().UnixMilli(), changes)
	if err != nil {
		return fmt.Errorf("consume %s token: %w", purpose, err)
	}

	if !ok {
		return ErrTokenInvalid
	}
	return nil
}
