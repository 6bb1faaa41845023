package store

import (
	"context"
	"time"

	"employee-management-system/internal/common"
	"employee-management-system/internal/model"

	"gorm.io/gorm"
)

// UserStore is the credential store.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts u. u.Password, when set, is hashed by the model hook.
func (s *UserStore) Create(ctx context.Context, u *model.User) error {
	return translate("create user", s.db.WithContext(ctx).Create(u).Error)
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate("find user", err)
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", model.NormalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, translate("find user", err)
	}
	return &u, nil
}

// FindByResetToken returns the user holding tokenHash whose reset window is
// still open at now.
func (s *UserStore) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).
		Where("password_reset_token_hash = ? AND password_reset_expires_at > ?", tokenHash, now).
		First(&u).Error
	if err != nil {
		return nil, translate("find user by reset token", err)
	}
	return &u, nil
}

// SetPasswordReset stores a reset token hash and expiry for user id.
func (s *UserStore) SetPasswordReset(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_reset_token_hash": tokenHash,
			"password_reset_expires_at": expiresAt,
		}).Error
	return translate("set password reset", err)
}

// ClearPasswordReset drops any reset token of user id.
func (s *UserStore) ClearPasswordReset(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_reset_token_hash": nil,
			"password_reset_expires_at": nil,
		}).Error
	return translate("clear password reset", err)
}

// ConsumePasswordReset sets passwordHash and clears the reset token, but only
// while user id still holds tokenHash unexpired at now. Of two concurrent
// calls with the same token one gets common.ErrNotFound.
func (s *UserStore) ConsumePasswordReset(ctx context.Context, id, tokenHash string, now time.Time, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND password_reset_token_hash = ? AND password_reset_expires_at > ?", id, tokenHash, now).
		Updates(map[string]interface{}{
			"password_hash":             passwordHash,
			"password_reset_token_hash": nil,
			"password_reset_expires_at": nil,
		})
	if res.Error != nil {
		return translate("consume password reset", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}
