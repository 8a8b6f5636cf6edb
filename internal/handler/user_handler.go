package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"userhub/internal/auth"
	"userhub/internal/errors"
	"userhub/internal/service"
)

// UserHandler handles registration, OTP and profile endpoints.
type UserHandler struct {
	userService service.UserService
	jwtService  *auth.JWTService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, jwtService *auth.JWTService) *UserHandler {
	return &UserHandler{userService: userService, jwtService: jwtService}
}

// SignupRequest represents a registration request.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Mobile   string `json:"mobile" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	DOB      string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender   string `json:"gender" validate:"required"`
	Address  string `json:"address" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// VerifyOTPRequest represents an OTP verification request.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// EmailRequest carries a bare email, used by forgot-password and resend-otp.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest represents a password reset request.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// UpdateProfileRequest represents a profile update request.
type UpdateProfileRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Name    string `json:"name" validate:"required"`
	Mobile  string `json:"mobile" validate:"required"`
	Address string `json:"address" validate:"required"`
}

// MessageResponse is the plain success envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// SignupResponse reports the record write and the email delivery separately.
type SignupResponse struct {
	Message string `json:"message"`
	OTPSent bool   `json:"otp_sent"`
}

// Signup godoc
// @Summary Register a new user and send a verification OTP
// @Tags user
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Registration data"
// @Success 200 {object} SignupResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	dob, err := time.Parse("2006-01-02", req.DOB)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dob")
	}

	result, err := h.userService.Signup(c.Request().Context(), service.SignupInput{
		Name:        req.Name,
		Mobile:      req.Mobile,
		Email:       req.Email,
		DateOfBirth: dob,
		Gender:      req.Gender,
		Address:     req.Address,
		Password:    req.Password,
	})
	if err != nil {
		return mapError(err)
	}

	resp := SignupResponse{Message: "Signup successful, OTP sent to email.", OTPSent: true}
	if !result.OTPSent {
		resp.Message = "Signup successful, but the OTP email could not be sent. Request a new code."
		resp.OTPSent = false
	}
	return c.JSON(http.StatusOK, resp)
}

// VerifyOTP godoc
// @Summary Verify an outstanding OTP and activate the account
// @Tags user
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Email and code"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/verify-otp [post]
func (h *UserHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.VerifyOTP(c.Request().Context(), req.Email, req.OTP); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "OTP verified successfully, account activated!"})
}

// ResendOTP godoc
// @Summary Reissue the signup verification OTP
// @Tags user
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/resend-otp [post]
func (h *UserHandler) ResendOTP(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ResendOTP(c.Request().Context(), req.Email); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "OTP sent to email."})
}

// ForgotPassword godoc
// @Summary Send a password-reset OTP
// @Tags user
// @Accept json
// @Produce json
// @Param request body EmailRequest true "Email"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/forgot-password [post]
func (h *UserHandler) ForgotPassword(c echo.Context) error {
	var req EmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "OTP sent to email."})
}

// ResetPassword godoc
// @Summary Reset the password using an OTP
// @Tags user
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Email, code and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /user/reset-password [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		// Reset reports an unknown email as a plain 400, matching the
		// other failure modes of this endpoint.
		if err == errors.ErrNotFound {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Message: "Invalid email",
				Code:    "INVALID_EMAIL",
			})
		}
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successful"})
}

// UpdateProfile godoc
// @Summary Update profile fields
// @Tags user
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Replacement profile values"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.userService.UpdateProfile(c.Request().Context(), req.Email, req.Name, req.Mobile, req.Address); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Profile updated successfully"})
}

// Me godoc
// @Summary Return the authenticated user's profile
// @Tags user
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /user/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	raw := strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	claims, err := h.jwtService.ValidateToken(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	user, err := h.userService.GetProfile(c.Request().Context(), claims.Email)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// mapError converts a domain error into the echo error envelope.
func mapError(err error) *echo.HTTPError {
	he := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
}
