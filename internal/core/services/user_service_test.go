package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/core/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo   *MockUserRepository
	mockAccountSvc *MockAccountWriterSvc
	service        portssvc.UserSvcFacade
	ctx            context.Context
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockAccountSvc = new(MockAccountWriterSvc)
	suite.service = services.NewUserService(suite.mockUserRepo, suite.mockAccountSvc)
	suite.ctx = context.Background()
}

func (suite *UserServiceTestSuite) TestRegisterUserProvisionsAccount() {
	req := dto.RegisterUserRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "correct horse battery staple",
	}

	suite.mockUserRepo.On("SaveUser", suite.ctx,
		mock.MatchedBy(func(u domain.User) bool {
			return u.Email == req.Email && u.Name == req.Name && u.Role == domain.RoleUser
		}),
		mock.MatchedBy(func(hash string) bool {
			return utils.CheckPasswordHash(req.Password, hash)
		})).Return(nil)
	suite.mockAccountSvc.On("CreateAccountForUser", suite.ctx, mock.AnythingOfType("string")).Return(&domain.Account{AccountID: uuid.NewString()}, nil)

	user, err := suite.service.RegisterUser(suite.ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(req.Email, user.Email)
	suite.Equal(domain.RoleUser, user.Role)
	suite.NotEmpty(user.UserID)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestRegisterUserDuplicateEmail() {
	req := dto.RegisterUserRequest{Email: "alice@example.com", Name: "Alice", Password: "hunter2hunter2"}
	suite.mockUserRepo.On("SaveUser", suite.ctx, mock.AnythingOfType("domain.User"), mock.AnythingOfType("string")).Return(apperrors.ErrDuplicate)

	user, err := suite.service.RegisterUser(suite.ctx, req)

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrDuplicate))
	suite.Nil(user)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "CreateAccountForUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser() {
	password := "correct horse battery staple"
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)
	user := &domain.User{UserID: uuid.NewString(), Email: "alice@example.com", Role: domain.RoleUser}

	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, user.Email).Return(user, nil)
	suite.mockUserRepo.On("FindPasswordHash", suite.ctx, user.UserID).Return(hash, nil)

	got, err := suite.service.AuthenticateUser(suite.ctx, user.Email, password)

	suite.Require().NoError(err)
	suite.Equal(user.UserID, got.UserID)
}

func (suite *UserServiceTestSuite) TestAuthenticateUserWrongPassword() {
	hash, err := utils.HashPassword("the real password")
	suite.Require().NoError(err)
	user := &domain.User{UserID: uuid.NewString(), Email: "alice@example.com"}

	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, user.Email).Return(user, nil)
	suite.mockUserRepo.On("FindPasswordHash", suite.ctx, user.UserID).Return(hash, nil)

	got, err := suite.service.AuthenticateUser(suite.ctx, user.Email, "a guess")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
	suite.Nil(got)
}

func (suite *UserServiceTestSuite) TestAuthenticateUserUnknownEmail() {
	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	got, err := suite.service.AuthenticateUser(suite.ctx, "nobody@example.com", "whatever")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
	suite.Nil(got)
}

func (suite *UserServiceTestSuite) TestAuthenticateUserProviderOnlyAccount() {
	user := &domain.User{UserID: uuid.NewString(), Email: "alice@example.com", GoogleSubjectID: "goog-sub"}

	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, user.Email).Return(user, nil)
	suite.mockUserRepo.On("FindPasswordHash", suite.ctx, user.UserID).Return("", apperrors.ErrNotFound)

	_, err := suite.service.AuthenticateUser(suite.ctx, user.Email, "whatever")

	suite.Require().Error(err)
	suite.True(errors.Is(err, apperrors.ErrUnauthorized))
}

func (suite *UserServiceTestSuite) TestUpsertGoogleUserExistingSubject() {
	user := &domain.User{UserID: uuid.NewString(), Email: "alice@example.com", GoogleSubjectID: "goog-sub"}
	info := domain.GoogleUserInfo{SubjectID: "goog-sub", Email: user.Email, Name: "Alice"}

	suite.mockUserRepo.On("FindUserByGoogleSubjectID", suite.ctx, info.SubjectID).Return(user, nil)

	got, err := suite.service.UpsertGoogleUser(suite.ctx, info)

	suite.Require().NoError(err)
	suite.Equal(user, got)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpsertGoogleUserLinksByEmail() {
	user := &domain.User{UserID: uuid.NewString(), Email: "alice@example.com"}
	info := domain.GoogleUserInfo{SubjectID: "goog-sub", Email: user.Email, Name: "Alice"}

	suite.mockUserRepo.On("FindUserByGoogleSubjectID", suite.ctx, info.SubjectID).Return(nil, apperrors.ErrNotFound)
	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, info.Email).Return(user, nil)
	suite.mockUserRepo.On("LinkGoogleSubject", suite.ctx, user.UserID, info.SubjectID, mock.AnythingOfType("time.Time")).Return(nil)

	got, err := suite.service.UpsertGoogleUser(suite.ctx, info)

	suite.Require().NoError(err)
	suite.Equal("goog-sub", got.GoogleSubjectID)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "CreateAccountForUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpsertGoogleUserCreatesNewUser() {
	info := domain.GoogleUserInfo{SubjectID: "goog-sub", Email: "newbie@example.com", Name: "Newbie"}

	suite.mockUserRepo.On("FindUserByGoogleSubjectID", suite.ctx, info.SubjectID).Return(nil, apperrors.ErrNotFound)
	suite.mockUserRepo.On("FindUserByEmail", suite.ctx, info.Email).Return(nil, apperrors.ErrNotFound)
	suite.mockUserRepo.On("SaveUser", suite.ctx,
		mock.MatchedBy(func(u domain.User) bool {
			return u.Email == info.Email && u.GoogleSubjectID == info.SubjectID
		}), "").Return(nil)
	suite.mockAccountSvc.On("CreateAccountForUser", suite.ctx, mock.AnythingOfType("string")).Return(&domain.Account{AccountID: uuid.NewString()}, nil)

	got, err := suite.service.UpsertGoogleUser(suite.ctx, info)

	suite.Require().NoError(err)
	suite.Equal(info.Email, got.Email)
	suite.Equal(domain.RoleUser, got.Role)
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpdateUserName() {
	user := &domain.User{UserID: uuid.NewString(), Email: "alice@example.com", Name: "Alice"}
	newName := "Alice B"
	req := dto.UpdateUserRequest{Name: &newName}

	suite.mockUserRepo.On("FindUserByID", suite.ctx, user.UserID).Return(user, nil)
	suite.mockUserRepo.On("UpdateUser", suite.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Name == newName && u.LastUpdatedBy == user.UserID
	})).Return(nil)

	got, err := suite.service.UpdateUser(suite.ctx, user.UserID, req, user.UserID)

	suite.Require().NoError(err)
	suite.Equal(newName, got.Name)
	suite.mockUserRepo.AssertExpectations(suite.T())
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
