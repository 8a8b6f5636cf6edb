package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"userhub/internal/config"
	"userhub/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userHandler *handler.UserHandler,
	authHandler *handler.AuthHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	user := api.Group("/user")

	// Public routes
	user.POST("/signup", userHandler.Signup)
	user.POST("/verify-otp", userHandler.VerifyOTP)
	user.POST("/resend-otp", userHandler.ResendOTP)
	user.POST("/login", authHandler.Login)
	user.POST("/forgot-password", userHandler.ForgotPassword)
	user.POST("/reset-password", userHandler.ResetPassword)
	user.POST("/refresh", authHandler.Refresh)
	user.POST("/logout", authHandler.Logout)

	// Secured routes (require a valid access token)
	secured := user.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	secured.PUT("/profile", userHandler.UpdateProfile)
	secured.GET("/me", userHandler.Me)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
