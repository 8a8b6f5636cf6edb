package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userhub/internal/cache"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/otp"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetOTP(ctx context.Context, email, code string, expiresAt time.Time) error {
	args := m.Called(ctx, email, code, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) ConsumeOTP(ctx context.Context, email, code string) (int64, error) {
	args := m.Called(ctx, email, code)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, email, name, mobile, address string) error {
	args := m.Called(ctx, email, name, mobile, address)
	return args.Error(0)
}

// MockSender is a mock implementation of mail.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func newTestUserService(repo *MockUserRepository, sender *MockSender, now time.Time) *userService {
	var noCache *cache.Client
	svc := NewUserService(repo, sender, noCache).(*userService)
	svc.now = func() time.Time { return now }
	return svc
}

func userWithOTP(email, code string, expiresAt time.Time) *model.User {
	return &model.User{
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefak",
		OTPCode:      &code,
		OTPExpiresAt: &expiresAt,
	}
}

func TestUserService_Signup(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		email         string
		setupMock     func(*MockUserRepository, *MockSender)
		expectedError error
		expectOTPSent bool
	}{
		{
			name:  "successful signup attaches otp and sends email",
			email: "new@example.com",
			setupMock: func(repo *MockUserRepository, sender *MockSender) {
				repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				sender.On("Send", "new@example.com", "Your OTP Code", mock.AnythingOfType("string")).Return(nil)
			},
			expectOTPSent: true,
		},
		{
			name:  "duplicate email performs no write",
			email: "taken@example.com",
			setupMock: func(repo *MockUserRepository, sender *MockSender) {
				repo.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{Email: "taken@example.com"}, nil)
			},
			expectedError: apperrors.ErrDuplicateEmail,
		},
		{
			name:  "delivery failure is non-fatal but reported",
			email: "unreachable@example.com",
			setupMock: func(repo *MockUserRepository, sender *MockSender) {
				repo.On("FindByEmail", mock.Anything, "unreachable@example.com").Return(nil, gorm.ErrRecordNotFound)
				repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
				sender.On("Send", "unreachable@example.com", "Your OTP Code", mock.AnythingOfType("string")).Return(assert.AnError)
			},
			expectOTPSent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			sender := new(MockSender)
			tt.setupMock(repo, sender)

			svc := newTestUserService(repo, sender, now)
			result, err := svc.Signup(context.Background(), SignupInput{
				Name:     "Test User",
				Mobile:   "1234567890",
				Email:    tt.email,
				Gender:   "other",
				Address:  "1 Test Lane",
				Password: "password123",
			})

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectOTPSent, result.OTPSent)
				assert.True(t, result.User.HasOTP())
				assert.Len(t, *result.User.OTPCode, 6)
				assert.Equal(t, now.Add(otp.SignupWindow), *result.User.OTPExpiresAt)
				assert.NotEqual(t, "password123", result.User.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(result.User.PasswordHash), []byte("password123")))
			}

			repo.AssertExpectations(t)
			sender.AssertExpectations(t)
		})
	}
}

func TestUserService_VerifyOTP(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	email := "user@example.com"

	tests := []struct {
		name          string
		code          string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "correct code before expiry succeeds",
			code: "123456",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, email).Return(userWithOTP(email, "123456", now.Add(time.Minute)), nil)
				repo.On("ConsumeOTP", mock.Anything, email, "123456").Return(int64(1), nil)
			},
		},
		{
			name: "unknown email",
			code: "123456",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, email).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrNotFound,
		},
		{
			name: "wrong code",
			code: "654321",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, email).Return(userWithOTP(email, "123456", now.Add(time.Minute)), nil)
			},
			expectedError: apperrors.ErrInvalidOTP,
		},
		{
			name: "no outstanding code counts as mismatch",
			code: "123456",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, email).Return(&model.User{Email: email}, nil)
			},
			expectedError: apperrors.ErrInvalidOTP,
		},
		{
			name: "matching but expired code",
			code: "123456",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, email).Return(userWithOTP(email, "123456", now.Add(-time.Second)), nil)
			},
			expectedError: apperrors.ErrOTPExpired,
		},
		{
			name: "concurrent consume loses the conditional clear",
			code: "123456",
			setupMock: func(repo *MockUserRepository) {
				repo.On("FindByEmail", mock.Anything, email).Return(userWithOTP(email, "123456", now.Add(time.Minute)), nil)
				repo.On("ConsumeOTP", mock.Anything, email, "123456").Return(int64(0), nil)
			},
			expectedError: apperrors.ErrInvalidOTP,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)

			svc := newTestUserService(repo, new(MockSender), now)
			err := svc.VerifyOTP(context.Background(), email, tt.code)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

// TestUserService_VerifyOTP_ExpiryBoundary issues a code with a 5-minute
// window at time T and checks both sides of the boundary: T+299s still
// verifies, T+301s is expired.
func TestUserService_VerifyOTP_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expiresAt := issuedAt.Add(otp.ResetWindow)
	email := "boundary@example.com"

	t.Run("T+299s succeeds", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, email).Return(userWithOTP(email, "424242", expiresAt), nil)
		repo.On("ConsumeOTP", mock.Anything, email, "424242").Return(int64(1), nil)

		svc := newTestUserService(repo, new(MockSender), issuedAt.Add(299*time.Second))
		assert.NoError(t, svc.VerifyOTP(context.Background(), email, "424242"))
		repo.AssertExpectations(t)
	})

	t.Run("T+301s is expired", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, email).Return(userWithOTP(email, "424242", expiresAt), nil)

		svc := newTestUserService(repo, new(MockSender), issuedAt.Add(301*time.Second))
		assert.Equal(t, apperrors.ErrOTPExpired, svc.VerifyOTP(context.Background(), email, "424242"))
		repo.AssertExpectations(t)
	})
}

func TestUserService_ForgotPassword(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	email := "user@example.com"

	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository, *MockSender)
		expectedError error
	}{
		{
			name: "reissues a five minute code and emails it",
			setupMock: func(repo *MockUserRepository, sender *MockSender) {
				repo.On("FindByEmail", mock.Anything, email).Return(&model.User{Email: email}, nil)
				repo.On("SetOTP", mock.Anything, email, mock.AnythingOfType("string"), now.Add(otp.ResetWindow)).Return(nil)
				sender.On("Send", email, "Your OTP for Password Reset", mock.AnythingOfType("string")).Return(nil)
			},
		},
		{
			name: "unknown email",
			setupMock: func(repo *MockUserRepository, sender *MockSender) {
				repo.On("FindByEmail", mock.Anything, email).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrNotFound,
		},
		{
			name: "delivery failure surfaces as a distinct error",
			setupMock: func(repo *MockUserRepository, sender *MockSender) {
				repo.On("FindByEmail", mock.Anything, email).Return(&model.User{Email: email}, nil)
				repo.On("SetOTP", mock.Anything, email, mock.AnythingOfType("string"), now.Add(otp.ResetWindow)).Return(nil)
				sender.On("Send", email, "Your OTP for Password Reset", mock.AnythingOfType("string")).Return(assert.AnError)
			},
			expectedError: apperrors.ErrDeliveryFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			sender := new(MockSender)
			tt.setupMock(repo, sender)

			svc := newTestUserService(repo, sender, now)
			err := svc.ForgotPassword(context.Background(), email)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			sender.AssertExpectations(t)
		})
	}
}

func TestUserService_ResetPassword(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	email := "user@example.com"

	t.Run("valid code stores the new password hash", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, email).Return(userWithOTP(email, "123456", now.Add(time.Minute)), nil)
		repo.On("ConsumeOTP", mock.Anything, email, "123456").Return(int64(1), nil)
		repo.On("UpdatePassword", mock.Anything, email, mock.MatchedBy(func(hash string) bool {
			return bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword")) == nil
		})).Return(nil)

		svc := newTestUserService(repo, new(MockSender), now)
		assert.NoError(t, svc.ResetPassword(context.Background(), email, "123456", "newpassword"))
		repo.AssertExpectations(t)
	})

	t.Run("failed verification leaves the password untouched", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByEmail", mock.Anything, email).Return(userWithOTP(email, "123456", now.Add(time.Minute)), nil)

		svc := newTestUserService(repo, new(MockSender), now)
		err := svc.ResetPassword(context.Background(), email, "999999", "newpassword")

		assert.Equal(t, apperrors.ErrInvalidOTP, err)
		repo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "ConsumeOTP", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	// An unknown email affects zero rows; the service still reports success.
	repo := new(MockUserRepository)
	repo.On("UpdateProfile", mock.Anything, "ghost@example.com", "Ghost", "000", "Nowhere").Return(nil)

	svc := newTestUserService(repo, new(MockSender), time.Now())
	assert.NoError(t, svc.UpdateProfile(context.Background(), "ghost@example.com", "Ghost", "000", "Nowhere"))
	repo.AssertExpectations(t)
}
