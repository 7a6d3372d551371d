package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cryptonest/cryptonest_backend/internal/apperrors"
	"github.com/cryptonest/cryptonest_backend/internal/core/domain"
	portsrepo "github.com/cryptonest/cryptonest_backend/internal/core/ports/repositories"
	portssvc "github.com/cryptonest/cryptonest_backend/internal/core/ports/services"
	"github.com/cryptonest/cryptonest_backend/internal/dto"
	"github.com/cryptonest/cryptonest_backend/internal/middleware"
	"github.com/cryptonest/cryptonest_backend/internal/utils"
	"github.com/google/uuid"
)

type userService struct {
	userRepo   portsrepo.UserRepositoryFacade
	accountSvc portssvc.AccountWriterSvc
}

// NewUserService creates a new user service. The account writer is used to
// provision the zero-balance ledger account at registration.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, accountSvc portssvc.AccountWriterSvc) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo, accountSvc: accountSvc}
}

// GetUserByID retrieves a user by their unique identifier.
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find user", slog.String("user_id", userID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to find user by email", slog.String("error", err.Error()))
		}
		return nil, err
	}
	return user, nil
}

// ListUsers retrieves a paginated list of users.
func (s *userService) ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	users, err := s.userRepo.ListUsers(ctx, limit, offset)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list users", slog.String("error", err.Error()))
		return nil, err
	}
	return users, nil
}

// RegisterUser creates a new user with a bcrypt password hash and a
// zero-balance ledger account.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterUserRequest) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		logger.Error("Failed to hash password", slog.String("error", err.Error()))
		return nil, err
	}

	now := time.Now()
	user := domain.User{
		UserID: uuid.NewString(),
		Email:  req.Email,
		Name:   req.Name,
		Role:   domain.RoleUser,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "system",
			LastUpdatedAt: now,
			LastUpdatedBy: "system",
		},
	}

	if err := s.userRepo.SaveUser(ctx, user, passwordHash); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("Failed to save user", slog.String("error", err.Error()))
		}
		return nil, err
	}

	if _, err := s.accountSvc.CreateAccountForUser(ctx, user.UserID); err != nil {
		logger.Error("Failed to provision ledger account for new user", slog.String("user_id", user.UserID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("User registered", slog.String("user_id", user.UserID))
	return &user, nil
}

// UpdateUser updates mutable profile fields.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, actorID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	user.LastUpdatedAt = time.Now()
	user.LastUpdatedBy = actorID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to update user", slog.String("user_id", userID), slog.String("error", err.Error()))
		return nil, err
	}
	return user, nil
}

// UpsertGoogleUser finds or creates the user matching a verified
// identity-provider triple, keyed on the provider subject ID. An existing
// account with the same email is linked rather than duplicated.
func (s *userService) UpsertGoogleUser(ctx context.Context, info domain.GoogleUserInfo) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByGoogleSubjectID(ctx, info.SubjectID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// No account for this subject yet; link by email when possible.
	user, err = s.userRepo.FindUserByEmail(ctx, info.Email)
	if err == nil {
		now := time.Now()
		if linkErr := s.userRepo.LinkGoogleSubject(ctx, user.UserID, info.SubjectID, now); linkErr != nil {
			logger.Error("Failed to link google subject", slog.String("user_id", user.UserID), slog.String("error", linkErr.Error()))
			return nil, linkErr
		}
		user.GoogleSubjectID = info.SubjectID
		logger.Info("Linked google subject to existing user", slog.String("user_id", user.UserID))
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now()
	newUser := domain.User{
		UserID:          uuid.NewString(),
		Email:           info.Email,
		Name:            info.Name,
		Role:            domain.RoleUser,
		GoogleSubjectID: info.SubjectID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     "system",
			LastUpdatedAt: now,
			LastUpdatedBy: "system",
		},
	}

	// Identity-provider accounts have no local password.
	if err := s.userRepo.SaveUser(ctx, newUser, ""); err != nil {
		logger.Error("Failed to save google user", slog.String("error", err.Error()))
		return nil, err
	}

	if _, err := s.accountSvc.CreateAccountForUser(ctx, newUser.UserID); err != nil {
		logger.Error("Failed to provision ledger account for google user", slog.String("user_id", newUser.UserID), slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Google user registered", slog.String("user_id", newUser.UserID))
	return &newUser, nil
}

// AuthenticateUser verifies email + password and returns the user.
func (s *userService) AuthenticateUser(ctx context.Context, email string, password string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	hash, err := s.userRepo.FindPasswordHash(ctx, user.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Identity-provider-only account; no password login.
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, hash) {
		logger.Warn("Password mismatch", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrUnauthorized
	}

	return user, nil
}

// StoreRefreshTokenHash persists the hash and expiry of a refresh token.
func (s *userService) StoreRefreshTokenHash(ctx context.Context, userID string, tokenHash string, expiry time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, tokenHash, expiry)
}

// GetRefreshToken retrieves the stored refresh token hash and expiry.
func (s *userService) GetRefreshToken(ctx context.Context, userID string) (string, time.Time, error) {
	return s.userRepo.FindRefreshToken(ctx, userID)
}

// ClearRefreshToken invalidates the stored refresh token (logout).
func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, "", time.Time{})
}
