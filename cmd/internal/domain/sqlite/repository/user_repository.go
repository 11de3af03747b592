package repository

import (
	"errors"
	"fmt"

	"notekeeper/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultUserRepository struct {
	conn Conn
}

func NewUserRepository(conn Conn) *DefaultUserRepository {
	return &DefaultUserRepository{conn: conn}
}

func (u *DefaultUserRepository) FindByID(id int64) (*entity.User, error) {
	return u.first("id = ?", id)
}

func (u *DefaultUserRepository) FindByEmail(email string) (*entity.User, error) {
	return u.first("email = ?", email)
}

func (u *DefaultUserRepository) ExistsByEmailOrUsername(email, username string) (bool, error) {
	db, err := u.conn.DB()
	if err != nil {
		return false, err
	}

	var count int64
	err = db.Model(&entity.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new user. A clash on email or username yields ErrDuplicate.
func (u *DefaultUserRepository) Create(user *entity.User) error {
	db, err := u.conn.DB()
	if err != nil {
		return err
	}
	return translate(db.Create(user).Error)
}

// SetToken stores a token digest for the purpose, replacing any previous one.
func (u *DefaultUserRepository) SetToken(id int64, purpose entity.TokenPurpose, digest string, expiry, now int64) (bool, error) {
	db, err := u.conn.DB()
	if err != nil {
		return false, err
	}

	res := db.Model(&entity.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			purpose.HashColumn():   digest,
			purpose.ExpiryColumn(): expiry,
			"updated_at":           now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FindByToken returns the user holding an unexpired token with the digest.
func (u *DefaultUserRepository) FindByToken(purpose entity.TokenPurpose, digest string, now int64) (*entity.User, error) {
	where := fmt.Sprintf("%s = ? AND %s > ?", purpose.HashColumn(), purpose.ExpiryColumn())
	return u.first(where, digest, now)
}

// ConsumeToken clears the token and applies changes in one conditional
// update. It reports false when the token was already consumed, replaced
// or expired in the meantime.
func (u *DefaultUserRepository) ConsumeToken(id int64, purpose entity.TokenPurpose, digest string, now int64, changes map[string]any) (bool, error) {
	db, err := u.conn.DB()
	if err != nil {
		return false, err
	}

	updates := map[string]any{
		purpose.HashColumn():   nil,
		purpose.ExpiryColumn(): nil,
		"updated_at":           now,
	}
	for k, v := range changes {
		updates[k] = v
	}

	where := fmt.Sprintf("id = ? AND %s = ? AND %s > ?", purpose.HashColumn(), purpose.ExpiryColumn())
	res := db.Model(&entity.User{}).
		Where(where, id, digest, now).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ClearExpiredTokens nulls every token whose expiry is at or before now.
func (u *DefaultUserRepository) ClearExpiredTokens(now int64) (int64, error) {
	db, err := u.conn.DB()
	if err != nil {
		return 0, err
	}

	var cleared int64
	for _, purpose := range []entity.TokenPurpose{entity.TokenVerify, entity.TokenReset} {
		where := fmt.Sprintf("%s IS NOT NULL AND %s <= ?", purpose.HashColumn(), purpose.ExpiryColumn())
		res := db.Model(&entity.User{}).
			Where(where, now).
			Updates(map[string]any{
				purpose.HashColumn():   nil,
				purpose.ExpiryColumn(): nil,
			})
		if res.Error != nil {
			return cleared, res.Error
		}
		cleared += res.RowsAffected
	}
	return cleared, nil
}

func (u *DefaultUserRepository) first(query string, args ...any) (*entity.User, error) {
	db, err := u.conn.DB()
	if err != nil {
		return nil, err
	}

	var user entity.User
	err = db.Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return &user, nil
}
