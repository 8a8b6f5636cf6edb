package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userhub/internal/cache"
	apperrors "userhub/internal/errors"
	"userhub/internal/mail"
	"userhub/internal/model"
	"userhub/internal/otp"
	"userhub/internal/repository"
)

const (
	bcryptCost      = 10
	profileCacheTTL = 5 * time.Minute
)

// SignupInput carries the full profile collected at registration.
type SignupInput struct {
	Name        string
	Mobile      string
	Email       string
	DateOfBirth time.Time
	Gender      string
	Address     string
	Password    string
}

// SignupResult reports the two phases of a signup separately: the record
// write always succeeded when a result is returned, while OTPSent reflects
// whether the verification email actually went out.
type SignupResult struct {
	User    *model.User
	OTPSent bool
}

// UserService handles registration, OTP verification, password reset and
// profile operations.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*SignupResult, error)
	VerifyOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	UpdateProfile(ctx context.Context, email, name, mobile, address string) error
	GetProfile(ctx context.Context, email string) (*model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	sender mail.Sender
	cache  *cache.Client
	now    func() time.Time
}

// NewUserService builds a UserService with repository, mail sender and cache.
func NewUserService(repo repository.UserRepository, sender mail.Sender, cache *cache.Client) UserService {
	return &userService{repo: repo, sender: sender, cache: cache, now: time.Now}
}

func (s *userService) cacheKey(email string) string {
	return "user:" + email
}

// Signup creates the user record with an attached OTP, then attempts to send
// the code by email. The record exists and is queryable even when the email
// fails; the caller is expected to offer a resend path in that case.
func (s *userService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(otp.SignupWindow)

	user := &model.User{
		Name:         in.Name,
		Mobile:       in.Mobile,
		Email:        in.Email,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
		Address:      in.Address,
		PasswordHash: string(hashed),
		OTPCode:      &code,
		OTPExpiresAt: &expiresAt,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(user.Email))

	result := &SignupResult{User: user, OTPSent: true}
	if err := s.sendSignupOTP(in.Email, code); err != nil {
		// The record is already written; surface the miss instead of
		// failing the whole signup.
		log.Printf("signup otp email to %s failed: %v", in.Email, err)
		result.OTPSent = false
	}
	return result, nil
}

// VerifyOTP checks the submitted code against the outstanding challenge and
// clears it on success. The clear is conditional on the stored code, so two
// concurrent attempts cannot both succeed.
func (s *userService) VerifyOTP(ctx context.Context, email, code string) error {
	if err := s.verifyAndConsumeOTP(ctx, email, code); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(email))
	return nil
}

// ResendOTP reissues a signup verification code for an existing record.
func (s *userService) ResendOTP(ctx context.Context, email string) error {
	return s.reissueOTP(ctx, email, otp.SignupWindow, s.sendSignupOTP)
}

// ForgotPassword reissues a short-lived code used to authorize a password
// reset. Delivery failure is fatal here: the caller has nothing to act on
// without the email.
func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	return s.reissueOTP(ctx, email, otp.ResetWindow, s.sendResetOTP)
}

// ResetPassword verifies and consumes the outstanding code, then stores the
// new password hash. A failed verification leaves both the password and the
// OTP state untouched.
func (s *userService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.verifyAndConsumeOTP(ctx, email, code); err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, email, string(hashed)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(email))
	return nil
}

// UpdateProfile overwrites name, mobile and address for the matching email.
// An unknown email is a silent no-op.
func (s *userService) UpdateProfile(ctx context.Context, email, name, mobile, address string) error {
	if err := s.repo.UpdateProfile(ctx, email, name, mobile, address); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(email))
	return nil
}

// GetProfile returns the stored profile, read through the cache.
func (s *userService) GetProfile(ctx context.Context, email string) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(email)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(email), payload, profileCacheTTL)
	}
	return user, nil
}

// verifyAndConsumeOTP implements the check order of the verification
// contract: unknown email, then code mismatch (an absent code is always a
// mismatch), then expiry, then the atomic check-and-clear.
func (s *userService) verifyAndConsumeOTP(ctx context.Context, email, code string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if !user.HasOTP() || *user.OTPCode != code {
		return apperrors.ErrInvalidOTP
	}
	if user.OTPExpiresAt.Before(s.now()) {
		return apperrors.ErrOTPExpired
	}

	rows, err := s.repo.ConsumeOTP(ctx, email, code)
	if err != nil {
		return fmt.Errorf("consume otp: %w", err)
	}
	if rows == 0 {
		// Another request consumed the code between our read and the
		// conditional clear.
		return apperrors.ErrInvalidOTP
	}
	return nil
}

func (s *userService) reissueOTP(ctx context.Context, email string, window time.Duration, send func(to, code string) error) error {
	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	code, err := otp.GenerateCode()
	if err != nil {
		return err
	}
	if err := s.repo.SetOTP(ctx, email, code, s.now().Add(window)); err != nil {
		return fmt.Errorf("set otp: %w", err)
	}

	if err := send(email, code); err != nil {
		log.Printf("otp email to %s failed: %v", email, err)
		return apperrors.ErrDeliveryFailure
	}
	return nil
}

func (s *userService) sendSignupOTP(to, code string) error {
	body := fmt.Sprintf("Your OTP code for signup is %s. It is valid for %d minutes.", code, int(otp.SignupWindow.Minutes()))
	return s.sender.Send(to, "Your OTP Code", body)
}

func (s *userService) sendResetOTP(to, code string) error {
	body := fmt.Sprintf("Your OTP for password reset is %s. It is valid for %d minutes.", code, int(otp.ResetWindow.Minutes()))
	return s.sender.Send(to, "Your OTP for Password Reset", body)
}
