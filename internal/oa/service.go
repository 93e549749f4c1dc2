// Package oa implements back-office operator accounts and sign-in.
package oa

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/xht-dev/wholesale-backend/pkg/auth"
	"github.com/xht-dev/wholesale-backend/pkg/config"
	"github.com/xht-dev/wholesale-backend/pkg/db"
	"github.com/xht-dev/wholesale-backend/pkg/db/models"
	"github.com/xht-dev/wholesale-backend/pkg/enums"
	pkgerrors "github.com/xht-dev/wholesale-backend/pkg/errors"
	"github.com/xht-dev/wholesale-backend/pkg/security"
)

const (
	operatorEnabled  = 0
	operatorDisabled = 1
)

// Session is what a successful operator login returns.
type Session struct {
	Token string         `json:"token"`
	User  *models.OAUser `json:"user"`
}

// CreatedOperator pairs a fresh account with its one-time password.
type CreatedOperator struct {
	User         *models.OAUser `json:"user"`
	TempPassword string         `json:"temp_password"`
}

// Service manages back-office operators.
type Service interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	// CreateOperator provisions an account with a generated temporary
	// password that is returned exactly once.
	CreateOperator(ctx context.Context, username, nickname string, role enums.OARole) (*CreatedOperator, error)
	ResetPassword(ctx context.Context, id uuid.UUID) (string, error)
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	List(ctx context.Context) ([]models.OAUser, error)
}

type service struct {
	repo    Repository
	jwtCfg  config.JWTConfig
	passCfg config.PasswordConfig
	now     func() time.Time
}

// NewService wires the back-office service.
func NewService(repo Repository, jwtCfg config.JWTConfig, passCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("oa repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{repo: repo, jwtCfg: jwtCfg, passCfg: passCfg, now: time.Now}, nil
}

func (s *service) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password required")
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")
		}
		return nil, err
	}
	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")
	}
	if user.Status != operatorEnabled {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account disabled")
	}

	now := s.now()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	role := user.Role
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID:   user.ID,
		Role:     enums.UserRoleAdmin,
		OARole:   &role,
		Audience: auth.AudienceOA,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}
	return &Session{Token: token, User: user}, nil
}

func (s *service) CreateOperator(ctx context.Context, username, nickname string, role enums.OARole) (*CreatedOperator, error) {
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username required")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}

	tempPassword, err := security.GenerateTempPassword(12)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
	}
	hash, err := security.HashPassword(tempPassword, s.passCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.OAUser{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Nickname:     nickname,
		Role:         role,
		Status:       operatorEnabled,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "idx_oa_users_username") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, err
	}
	return &CreatedOperator{User: user, TempPassword: tempPassword}, nil
}

func (s *service) ResetPassword(ctx context.Context, id uuid.UUID) (string, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "operator not found")
		}
		return "", err
	}

	tempPassword, err := security.GenerateTempPassword(12)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
	}
	hash, err := security.HashPassword(tempPassword, s.passCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		return "", err
	}
	return tempPassword, nil
}

func (s *service) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	status := operatorDisabled
	if enabled {
		status = operatorEnabled
	}
	err := s.repo.SetStatus(ctx, id, status)
	if err == gorm.ErrRecordNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "operator not found")
	}
	return err
}

func (s *service) List(ctx context.Context) ([]models.OAUser, error) {
	return s.repo.List(ctx)
}
