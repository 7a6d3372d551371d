package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
	"github.com/cryptonest/cryptonest_backend/internal/platform/config"
	"github.com/cryptonest/cryptonest_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication related requests.
type AuthHandler struct {
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
	authService  portssvc.AuthSvcFacade
	cfg          *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(services *portssvc.ServiceContainer, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userService:  services.User,
		tokenService: services.TokenService,
		authService:  services.Auth,
		cfg:          cfg,
	}
}

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// registerAuthRoutes sets up the public authentication routes.
func registerAuthRoutes(rg *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewAuthHandler(services, cfg)

	// 5 requests per minute per IP on the credential-bearing endpoints
	rate, _ := limiter.NewRateFromFormatted("5-M")
	store := memory.NewStore()
	limitMiddleware := middleware.RateLimit(limiter.New(store, rate))

	auth := rg.Group("/api/v1/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", limitMiddleware, h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.POST("/password-reset/request", limitMiddleware, h.RequestPasswordReset)
		auth.POST("/password-reset/confirm", limitMiddleware, h.ConfirmPasswordReset)
	}
}

// issueTokenPair generates the access and refresh tokens for a user, stores
// the refresh token hash, and sets the refresh cookie. The cookie value
// carries the user ID alongside the opaque token so the refresh endpoint can
// locate the stored hash without a JWT.
func (h *AuthHandler) issueTokenPair(c *gin.Context, user *domain.User) (string, error) {
	ctx := c.Request.Context()

	accessToken, _, err := h.tokenService.GenerateAccessToken(ctx, user)
	if err != nil {
		return "", err
	}
	refreshToken, refreshExpiry, err := h.tokenService.GenerateRefreshToken(ctx, user)
	if err != nil {
		return "", err
	}
	if err := h.userService.StoreRefreshTokenHash(ctx, user.UserID, utils.HashRefreshToken(refreshToken), refreshExpiry); err != nil {
		return "", err
	}

	maxAge := int(time.Until(refreshExpiry).Seconds())
	c.SetCookie(h.cfg.RefreshTokenCookieName, user.UserID+"."+refreshToken, maxAge, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
	return accessToken, nil
}

// Register godoc
// @Summary Register new user
// @Description Creates a new user account with a zero-balance ledger account.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterUserRequest true "User Registration Info"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Failure 500 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	newUser, err := h.userService.RegisterUser(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Email already registered"})
			return
		}
		logger.Error("Failed to register user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(newUser))
}

// Login godoc
// @Summary User login
// @Description Authenticates a user and returns a JWT access token. The
// @Description refresh token is set as an HTTPOnly cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid email or password"})
			return
		}
		logger.Error("Failed to authenticate user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to authenticate"})
		return
	}

	accessToken, err := h.issueTokenPair(c, user)
	if err != nil {
		logger.Error("Failed to issue token pair", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{Token: accessToken, User: dto.ToUserResponse(user)})
}

// Refresh godoc
// @Summary Refresh access token
// @Description Exchanges the refresh token cookie for a new access token and
// @Description rotates the refresh token.
// @Tags auth
// @Produce json
// @Success 200 {object} dto.RefreshTokenResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, refreshToken, ok := h.readRefreshCookie(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Missing or malformed refresh token"})
		return
	}

	user, err := h.tokenService.ValidateAndParseRefreshToken(c.Request.Context(), userID, refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired refresh token"})
			return
		}
		logger.Error("Failed to validate refresh token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to refresh token"})
		return
	}

	// Rotation: every successful refresh replaces the stored token.
	accessToken, err := h.issueTokenPair(c, user)
	if err != nil {
		logger.Error("Failed to rotate token pair", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to refresh token"})
		return
	}

	c.JSON(http.StatusOK, dto.RefreshTokenResponse{Token: accessToken})
}

// Logout godoc
// @Summary User logout
// @Description Invalidates the stored refresh token and clears the cookie.
// @Tags auth
// @Produce json
// @Success 204 "No Content"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if userID, _, ok := h.readRefreshCookie(c); ok {
		if err := h.userService.ClearRefreshToken(c.Request.Context(), userID); err != nil {
			logger.Error("Failed to clear refresh token", slog.String("error", err.Error()), slog.String("user_id", userID))
		}
	}

	c.SetCookie(h.cfg.RefreshTokenCookieName, "", -1, h.cfg.RefreshTokenCookiePath, "", h.cfg.IsProduction, true)
	c.Status(http.StatusNoContent)
}

// RequestPasswordReset godoc
// @Summary Request a password reset
// @Description Issues a single-use reset token for the given email. Always
// @Description returns 202 so the endpoint does not reveal whether an
// @Description account exists.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.PasswordResetRequest true "Account email"
// @Success 202 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Router /auth/password-reset/request [post]
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	rawToken, err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		logger.Error("Failed to create reset token", slog.String("error", err.Error()))
		// Deliberately the same response as success.
		c.JSON(http.StatusAccepted, gin.H{"message": "If the account exists, a reset token has been issued"})
		return
	}

	resp := gin.H{"message": "If the account exists, a reset token has been issued"}
	// Token delivery normally happens out of band. Outside production the
	// raw token is echoed back to keep local testing simple.
	if rawToken != "" && !h.cfg.IsProduction {
		resp["token"] = rawToken
	}
	c.JSON(http.StatusAccepted, resp)
}

// ConfirmPasswordReset godoc
// @Summary Confirm a password reset
// @Description Redeems a reset token and sets the new password. The token is
// @Description single use.
// @Tags auth
// @Accept json
// @Produce json
// @Param confirm body dto.PasswordResetConfirmRequest true "Token and new password"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "Invalid, expired or already used token"
// @Failure 500 {object} ErrorResponse
// @Router /auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	if err := h.authService.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid, expired or already used reset token"})
			return
		}
		logger.Error("Failed to confirm password reset", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to reset password"})
		return
	}

	c.Status(http.StatusNoContent)
}

// readRefreshCookie extracts the user ID and opaque token halves from the
// refresh cookie.
func (h *AuthHandler) readRefreshCookie(c *gin.Context) (userID string, token string, ok bool) {
	raw, err := c.Cookie(h.cfg.RefreshTokenCookieName)
	if err != nil || raw == "" {
		return "", "", false
	}
	userID, token, found := strings.Cut(raw, ".")
	if !found || userID == "" || token == "" {
		return "", "", false
	}
	return userID, token, true
}
