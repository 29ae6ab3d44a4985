package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/urgency-engine/pkg/auth"
	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type service struct {
	admin  config.AdminConfig
	jwtCfg config.JWTConfig
	logg   *logger.Logger
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Admin     config.AdminConfig
	JWTConfig config.JWTConfig
	Password  config.PasswordConfig
	Logger    *logger.Logger
}

// NewService constructs a login service for the configured operator account.
// A configured but unparsable password hash fails construction so a bad deploy
// is caught at boot instead of on the first login.
func NewService(params ServiceParams) (Service, error) {
	if strings.TrimSpace(params.JWTConfig.Secret) == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if hash := strings.TrimSpace(params.Admin.PasswordHash); hash != "" {
		weak, err := security.NeedsRehash(hash, params.Password)
		if err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		if weak && params.Logger != nil {
			params.Logger.Warn(context.Background(), "admin password hash uses weaker argon2 costs than configured; regenerate it with the migrate hash-password command")
		}
	}
	return &service{
		admin:  params.Admin,
		jwtCfg: params.JWTConfig,
		logg:   params.Logger,
		now:    time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		Email: email,
		Role:  enums.AdminRoleAdmin,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithAdminID(ctx, email), "auth.admin_login")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   now.Add(s.jwtCfg.Expiration()),
		Email:       email,
		Role:        enums.AdminRoleAdmin,
	}, nil
}

// authenticate checks the operator account. An unconfigured account rejects
// every attempt with the same message as a bad password.
func (s *service) authenticate(ctx context.Context, email, password string) (string, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	configured := strings.ToLower(strings.TrimSpace(s.admin.Email))
	if input == "" || configured == "" || strings.TrimSpace(s.admin.PasswordHash) == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(password, s.admin.PasswordHash)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	emailMatch := subtle.ConstantTimeCompare([]byte(input), []byte(configured)) == 1
	if !valid || !emailMatch {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "email_hint", security.Mask(input)), "auth.admin_login_rejected")
		}
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return configured, nil
}
