package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"maturity-dashboard/internal/model"
	"maturity-dashboard/internal/repository"
	"maturity-dashboard/pkg/auth"
	"maturity-dashboard/pkg/rbac"
)

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	users     UserStore
	jwtSecret string
	tokenTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthService(users UserStore, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Register creates a user of tenantID with the given roles.
func (s *AuthService) Register(ctx context.Context, tenantID int64, email, password string, roles []string) (*model.User, error) {
	for _, r := range roles {
		if !rbac.KnownRole(r) {
			return nil, fmt.Errorf("unknown role %q", r)
		}
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, errors.New("email already exists")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks user credentials and returns JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to load user", zap.Error(err))
		}
		return "", ErrBadCredential
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return "", ErrBadCredential
	}

	id := auth.Identity{UserID: u.ID, TenantID: u.TenantID, Roles: u.Roles}
	return auth.GenerateJWT(id, s.jwtSecret, s.tokenTTL, s.now())
}
