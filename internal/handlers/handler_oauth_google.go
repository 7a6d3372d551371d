package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
	"github.com/cryptonest/cryptonest_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"
)

const oauthStateCookieName = "oauth_state"

// GoogleOAuthHandler handles the delegated identity provider flow.
type GoogleOAuthHandler struct {
	googleOAuthService portssvc.GoogleOAuthHandlerSvcFacade
	userService        portssvc.UserSvcFacade
	tokenService       portssvc.TokenSvcFacade
	cfg                *config.Config
}

// NewGoogleOAuthHandler creates a new instance of GoogleOAuthHandler.
func NewGoogleOAuthHandler(services *portssvc.ServiceContainer, cfg *config.Config) *GoogleOAuthHandler {
	return &GoogleOAuthHandler{
		googleOAuthService: services.GoogleOAuthHandler,
		userService:        services.User,
		tokenService:       services.TokenService,
		cfg:                cfg,
	}
}

// ExchangeCodeRequest is the JSON body for the /google/exchange-code endpoint.
type ExchangeCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

// registerGoogleOAuthRoutes registers the identity provider routes under the
// public auth group.
func registerGoogleOAuthRoutes(rg *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	h := NewGoogleOAuthHandler(services, cfg)
	googleRoutes := rg.Group("/api/v1/auth/google")
	{
		googleRoutes.GET("/login", h.LoginURLGoogle)
		googleRoutes.POST("/exchange-code", h.ExchangeCodeGoogle)
		googleRoutes.POST("/signin", h.SignInGoogle)
	}
}

// LoginURLGoogle godoc
// @Summary Get the identity provider login URL
// @Description Returns the URL to redirect the user to for delegated login.
// @Description The CSRF state is set as a cookie and must round-trip.
// @Tags oauth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/login [get]
func (h *GoogleOAuthHandler) LoginURLGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	state, err := h.googleOAuthService.GenerateStateString(ctx)
	if err != nil {
		logger.Error("Failed to generate OAuth state", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to start login flow"})
		return
	}

	c.SetCookie(oauthStateCookieName, state, 300, "/", "", h.cfg.IsProduction, true)
	c.JSON(http.StatusOK, gin.H{"url": h.googleOAuthService.GetGoogleLoginURL(ctx, state)})
}

// ExchangeCodeGoogle godoc
// @Summary Exchange an authorization code for an access token
// @Description Exchanges the authorization code for provider tokens,
// @Description validates the ID token, upserts the user and returns an
// @Description application JWT.
// @Tags oauth
// @Accept json
// @Produce json
// @Param code body ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid authorization code"
// @Failure 401 {object} ErrorResponse "ID token validation failed"
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/exchange-code [post]
func (h *GoogleOAuthHandler) ExchangeCodeGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	oauth2Token, err := h.googleOAuthService.ExchangeCodeForToken(ctx, req.Code)
	if err != nil {
		logger.Error("Failed to exchange authorization code", slog.String("error", err.Error()))
		if strings.Contains(strings.ToLower(err.Error()), "invalid_grant") || strings.Contains(strings.ToLower(err.Error()), "bad request") {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid or expired authorization code"})
			return
		}
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to communicate with the identity provider"})
		return
	}

	idTokenString, ok := oauth2Token.Extra("id_token").(string)
	if !ok || idTokenString == "" {
		logger.Error("ID token missing from provider token response")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve ID token from the identity provider"})
		return
	}

	h.signInWithIDToken(c, idTokenString)
}

// SignInGoogle godoc
// @Summary Sign in with a provider ID token
// @Description Validates an ID token obtained client side, upserts the user
// @Description and returns an application JWT.
// @Tags oauth
// @Accept json
// @Produce json
// @Param signin body dto.GoogleSignInRequest true "Provider ID token"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse "ID token validation failed"
// @Failure 500 {object} ErrorResponse
// @Router /auth/google/signin [post]
func (h *GoogleOAuthHandler) SignInGoogle(c *gin.Context) {
	var req dto.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	h.signInWithIDToken(c, req.IDToken)
}

// signInWithIDToken is the shared tail of both provider flows: validate the
// ID token, upsert the user keyed on the provider subject, issue tokens.
func (h *GoogleOAuthHandler) signInWithIDToken(c *gin.Context, idTokenString string) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	payload, err := h.googleOAuthService.ValidateGoogleIDToken(ctx, idTokenString)
	if err != nil {
		logger.Error("ID token validation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid ID token"})
		return
	}

	info, err := userInfoFromPayload(payload)
	if err != nil {
		logger.Error("Essential claims missing from ID token payload", slog.String("error", err.Error()))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Essential user information missing from ID token"})
		return
	}

	user, err := h.userService.UpsertGoogleUser(ctx, info)
	if err != nil {
		logger.Error("Failed to upsert provider user", slog.String("error", err.Error()), slog.String("subject_id", info.SubjectID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process user authentication"})
		return
	}

	accessToken, _, err := h.tokenService.GenerateAccessToken(ctx, user)
	if err != nil {
		logger.Error("Failed to generate access token", slog.String("error", err.Error()), slog.String("user_id", user.UserID))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate access token"})
		return
	}

	logger.Info("User signed in via identity provider", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, dto.LoginResponse{Token: accessToken, User: dto.ToUserResponse(user)})
}

// userInfoFromPayload extracts the verified identity triple from a validated
// ID token payload.
func userInfoFromPayload(payload *idtoken.Payload) (domain.GoogleUserInfo, error) {
	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if payload.Subject == "" || email == "" {
		return domain.GoogleUserInfo{}, errEssentialClaims
	}
	return domain.GoogleUserInfo{
		SubjectID: payload.Subject,
		Email:     email,
		Name:      name,
	}, nil
}

var errEssentialClaims = errors.New("email or subject claim missing")
