package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"userhub/internal/model"
)

// UserRepository defines persistence operations for user records.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// SetOTP writes otp_code and otp_expires_at in a single update so the
	// two columns can never disagree.
	SetOTP(ctx context.Context, email, code string, expiresAt time.Time) error
	// ConsumeOTP clears the OTP pair only if the stored code still equals
	// the submitted one. It returns the number of rows affected; zero means
	// a concurrent request consumed the code first (or it never matched).
	ConsumeOTP(ctx context.Context, email, code string) (int64, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	// UpdateProfile overwrites name, mobile and address for the matching
	// email. An unknown email affects zero rows and is not an error.
	UpdateProfile(ctx context.Context, email, name, mobile, address string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"otp_code":       code,
			"otp_expires_at": expiresAt,
		}).Error
}

func (r *userRepository) ConsumeOTP(ctx context.Context, email, code string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND otp_code = ?", email, code).
		Updates(map[string]interface{}{
			"otp_code":       nil,
			"otp_expires_at": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) UpdateProfile(ctx context.Context, email, name, mobile, address string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Updates(map[string]interface{}{
			"name":    name,
			"mobile":  mobile,
			"address": address,
		}).Error
}
