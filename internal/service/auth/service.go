package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vitaltrack/vitaltrack-api/internal/email"
	"github.com/vitaltrack/vitaltrack-api/internal/model"
	"github.com/vitaltrack/vitaltrack-api/internal/repository"
	pkgauth "github.com/vitaltrack/vitaltrack-api/pkg/auth"
	apperrors "github.com/vitaltrack/vitaltrack-api/pkg/errors"
	"github.com/vitaltrack/vitaltrack-api/pkg/security"
	"github.com/vitaltrack/vitaltrack-api/pkg/validator"
)

type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	jwtSvc    pkgauth.JWTService
	emailSvc  email.Service
	validate  *validator.Validator
}

func NewService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository,
	jwtSvc pkgauth.JWTService, emailSvc email.Service, validate *validator.Validator) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtSvc:    jwtSvc,
		emailSvc:  emailSvc,
		validate:  validate,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.TokenResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	user := &model.User{
		Base: model.Base{
			ID: uuid.New(),
		},
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         model.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Welcome mail is best effort.
	if err := s.emailSvc.SendWelcome(user.Email, user.Name); err != nil {
		log.Warn().Err(err).Str("email", user.Email).Msg("failed to send welcome email")
	}

	return s.issueTokens(user)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid credentials", nil)
	}

	if !security.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.NewUnauthenticated("invalid credentials", nil)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("failed to update login timestamp")
	}

	return s.issueTokens(user)
}

// VerifyAccess checks a bearer token end to end: signature and expiry,
// revocation, and that the signer still resolves to an existing user. Every
// request re-verifies; nothing is cached.
func (s *Service) VerifyAccess(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid token", err)
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if revoked {
		return nil, apperrors.NewUnauthenticated("token revoked", nil)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("unknown principal", err)
	}

	return &model.Principal{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, req *model.RefreshRequest) (*model.TokenResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	claims, err := s.jwtSvc.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid refresh token", err)
	}

	revoked, err := s.tokenRepo.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	if revoked {
		return nil, apperrors.NewUnauthenticated("token revoked", nil)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.NewUnauthenticated("unknown principal", err)
	}

	return s.issueTokens(user)
}

// Logout revokes the presented access token for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token", err)
	}
	return s.tokenRepo.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.userRepo.Get(ctx, id)
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	refreshToken, err := s.jwtSvc.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
