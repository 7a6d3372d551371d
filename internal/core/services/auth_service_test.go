package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/core/services"
	"github.com/cryptonest/cryptonest_backend/internal/platform/config"
	"github.com/cryptonest/cryptonest_backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                  "test-secret",
		JWTExpiryDuration:          15 * time.Minute,
		JWTIssuer:                  "cryptonest-test",
		RefreshTokenExpiryDuration: 24 * time.Hour,
		ResetTokenTTL:              time.Hour,
	}
}

type TokenServiceTestSuite struct {
	suite.Suite
	mockUserService *MockUserService
	service         portssvc.TokenSvcFacade
	ctx             context.Context
}

func (suite *TokenServiceTestSuite) SetupTest() {
	suite.mockUserService = new(MockUserService)
	suite.service = services.NewTokenService(testConfig(), suite.mockUserService)
	suite.ctx = context.Background()
}

func (suite *TokenServiceTestSuite) TestGenerateAccessTokenCarriesSubjectAndRole() {
	user := &domain.User{UserID: uuid.NewString(), Role: domain.RoleAdmin}

	token, expiry, err := suite.service.GenerateAccessToken(suite.ctx, user)

	suite.Require().NoError(err)
	suite.NotEmpty(token)
	suite.WithinDuration(time.Now().Add(15*time.Minute), expiry, time.Second)

	claims, err := utils.ParseAndValidateJWT(token, "test-secret")
	suite.Require().NoError(err)
	suite.Equal(user.UserID, claims.Subject)
	suite.Equal(string(domain.RoleAdmin), claims.Role)
	suite.Equal("cryptonest-test", claims.Issuer)
}

func (suite *TokenServiceTestSuite) TestGenerateRefreshTokenIsOpaqueAndFresh() {
	user := &domain.User{UserID: uuid.NewString()}

	first, expiry, err := suite.service.GenerateRefreshToken(suite.ctx, user)
	suite.Require().NoError(err)
	second, _, err := suite.service.GenerateRefreshToken(suite.ctx, user)
	suite.Require().NoError(err)

	suite.NotEmpty(first)
	suite.NotEqual(first, second)
	suite.WithinDuration(time.Now().Add(24*time.Hour), expiry, time.Second)
}

func (suite *TokenServiceTestSuite) TestValidateAndParseRefreshToken() {
	user := &domain.User{UserID: uuid.NewString()}
	raw := "some-opaque-refresh-token"

	suite.mockUserService.On("GetUserByID", suite.ctx, user.UserID).Return(user, nil)
	suite.mockUserService.On("GetRefreshToken", suite.ctx, user.UserID).Return(utils.HashRefreshToken(raw), time.Now().Add(time.Hour), nil)

	got, err := suite.service.ValidateAndParseRefreshToken(suite.ctx, user.UserID, raw)

	suite.Require().NoError(err)
	suite.Equal(user.UserID, got.UserID)
}

func (suite *TokenServiceTestSuite) TestValidateAndParseRefreshTokenExpired() {
	user := &domain.User{UserID: uuid.NewString()}
	raw := "some-opaque-refresh-token"

	suite.mockUserService.On("GetUserByID", suite.ctx, user.UserID).Return(user, nil)
	suite.mockUserService.On("GetRefreshToken", suite.ctx, user.UserID).Return(utils.HashRefreshToken(raw), time.Now().Add(-time.Minute), nil)

	got, err := suite.service.ValidateAndParseRefreshToken(suite.ctx, user.UserID, raw)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
	suite.Nil(got)
}

func (suite *TokenServiceTestSuite) TestValidateAndParseRefreshTokenMismatch() {
	user := &domain.User{UserID: uuid.NewString()}

	suite.mockUserService.On("GetUserByID", suite.ctx, user.UserID).Return(user, nil)
	suite.mockUserService.On("GetRefreshToken", suite.ctx, user.UserID).Return(utils.HashRefreshToken("the stored token"), time.Now().Add(time.Hour), nil)

	_, err := suite.service.ValidateAndParseRefreshToken(suite.ctx, user.UserID, "a different token")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
}

func (suite *TokenServiceTestSuite) TestValidateAndParseRefreshTokenUnknownUser() {
	userID := uuid.NewString()
	suite.mockUserService.On("GetUserByID", suite.ctx, userID).Return(nil, apperrors.ErrNotFound)

	_, err := suite.service.ValidateAndParseRefreshToken(suite.ctx, userID, "whatever")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
}

func TestTokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

type AuthServiceTestSuite struct {
	suite.Suite
	mockUserRepo    *MockUserRepository
	mockTokenRepo   *MockResetTokenRepository
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	service         portssvc.AuthSvcFacade
	ctx             context.Context
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockTokenRepo = new(MockResetTokenRepository)
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.service = services.NewAuthService(testConfig(), suite.mockUserRepo, suite.mockTokenRepo, suite.mockAccountRepo, suite.mockTxnRepo)
	suite.ctx = context.Background()
}

func (suite *AuthServiceTestSuite) TestRequestPasswordReset() {
	user := &domain.User{UserID: uuid.NewString(), Email: "alice@example.com"}
	var saved domain.PasswordResetToken

	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, user.Email).Return(user, nil)
	suite.mockTokenRepo.On("SaveToken", suite.ctx, mock.AnythingOfType("domain.PasswordResetToken")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.PasswordResetToken)
		}).Return(nil)

	raw, err := suite.service.RequestPasswordReset(suite.ctx, user.Email)

	suite.Require().NoError(err)
	suite.NotEmpty(raw)
	suite.Equal(user.UserID, saved.UserID)
	suite.WithinDuration(time.Now().Add(time.Hour), saved.ExpiresAt, time.Second)
	// The raw token embeds the token ID; only the secret half is hashed.
	suite.Contains(raw, saved.TokenID+".")
	secret := raw[len(saved.TokenID)+1:]
	suite.True(utils.CheckPasswordHash(secret, saved.TokenHash))
	suite.NotContains(saved.TokenHash, secret)
}

func (suite *AuthServiceTestSuite) TestRequestPasswordResetUnknownEmailLeaksNothing() {
	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	raw, err := suite.service.RequestPasswordReset(suite.ctx, "nobody@example.com")

	suite.Require().NoError(err)
	suite.Empty(raw)
	suite.mockTokenRepo.AssertNotCalled(suite.T(), "SaveToken", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestConfirmPasswordReset() {
	userID := uuid.NewString()
	tokenID := uuid.NewString()
	secret := "reset-secret-value"
	secretHash, err := utils.HashPassword(secret)
	suite.Require().NoError(err)
	token := &domain.PasswordResetToken{
		TokenID:   tokenID,
		UserID:    userID,
		TokenHash: secretHash,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	suite.mockTokenRepo.On("FindTokenByID", suite.ctx, tokenID).Return(token, nil)
	suite.mockTokenRepo.On("ConsumeToken", suite.ctx, tokenID, mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockUserRepo.On("UpdatePasswordHash", suite.ctx, userID,
		mock.MatchedBy(func(hash string) bool {
			return utils.CheckPasswordHash("brand new password", hash)
		}), mock.AnythingOfType("time.Time")).Return(nil)
	suite.mockUserRepo.On("UpdateRefreshToken", suite.ctx, userID, "", time.Time{}).Return(nil)
	suite.mockAccountRepo.On("Begin", suite.ctx).Return(nil, nil)
	suite.mockTxnRepo.On("SaveTransactionInTx", suite.ctx, nil,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.UserID == userID &&
				txn.Type == domain.TxnSecurity &&
				txn.Amount.IsZero() &&
				txn.CreatedBy == userID
		})).Return(nil)
	suite.mockAccountRepo.On("Commit", suite.ctx, nil).Return(nil)
	suite.mockAccountRepo.On("Rollback", suite.ctx, nil).Return(nil)

	err = suite.service.ConfirmPasswordReset(suite.ctx, tokenID+"."+secret, "brand new password")

	suite.Require().NoError(err)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockTokenRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestConfirmPasswordResetExpiredToken() {
	tokenID := uuid.NewString()
	secretHash, err := utils.HashPassword("reset-secret-value")
	suite.Require().NoError(err)
	token := &domain.PasswordResetToken{
		TokenID:   tokenID,
		UserID:    uuid.NewString(),
		TokenHash: secretHash,
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	suite.mockTokenRepo.On("FindTokenByID", suite.ctx, tokenID).Return(token, nil)

	err = suite.service.ConfirmPasswordReset(suite.ctx, tokenID+".reset-secret-value", "new password")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
	suite.mockTokenRepo.AssertNotCalled(suite.T(), "ConsumeToken", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestConfirmPasswordResetConsumedToken() {
	tokenID := uuid.NewString()
	consumed := time.Now().Add(-time.Minute)
	secretHash, err := utils.HashPassword("reset-secret-value")
	suite.Require().NoError(err)
	token := &domain.PasswordResetToken{
		TokenID:    tokenID,
		UserID:     uuid.NewString(),
		TokenHash:  secretHash,
		ExpiresAt:  time.Now().Add(time.Hour),
		ConsumedAt: &consumed,
	}

	suite.mockTokenRepo.On("FindTokenByID", suite.ctx, tokenID).Return(token, nil)

	err = suite.service.ConfirmPasswordReset(suite.ctx, tokenID+".reset-secret-value", "new password")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
	suite.mockUserRepo.AssertNotCalled(suite.T(), "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestConfirmPasswordResetWrongSecret() {
	tokenID := uuid.NewString()
	secretHash, err := utils.HashPassword("the real secret")
	suite.Require().NoError(err)
	token := &domain.PasswordResetToken{
		TokenID:   tokenID,
		UserID:    uuid.NewString(),
		TokenHash: secretHash,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	suite.mockTokenRepo.On("FindTokenByID", suite.ctx, tokenID).Return(token, nil)

	err = suite.service.ConfirmPasswordReset(suite.ctx, tokenID+".a guessed secret", "new password")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
}

func (suite *AuthServiceTestSuite) TestConfirmPasswordResetMalformedToken() {
	err := suite.service.ConfirmPasswordReset(suite.ctx, "no-separator-here", "new password")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
	suite.mockTokenRepo.AssertNotCalled(suite.T(), "FindTokenByID", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestPurgeExpiredResetTokens() {
	suite.mockTokenRepo.On("DeleteExpiredTokens", suite.ctx, mock.AnythingOfType("time.Time")).Return(int64(3), nil)

	purged, err := suite.service.PurgeExpiredResetTokens(suite.ctx)

	suite.Require().NoError(err)
	suite.Equal(int64(3), purged)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
