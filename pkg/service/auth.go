package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/example/rostishop/pkg/errs"
	"github.com/example/rostishop/pkg/models"
	"github.com/example/rostishop/pkg/token"
)

// badCredentials is the single message for both unknown-email and bad-password
// failures, so login responses cannot be used to enumerate accounts.
const badCredentials = "invalid email or password"

type AuthService struct {
	users  UserStore
	tokens *token.Maker
	logger *zap.Logger
}

func NewAuthService(users UserStore, tokens *token.Maker, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, "", errs.Validation("name and email are required")
	}
	if len(password) < 6 {
		return nil, "", errs.Validation("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", errs.Internal("failed to hash password", err)
	}

	user, err := s.users.Insert(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    nowUTC(),
	})
	if err != nil {
		return nil, "", err
	}

	signed, err := s.tokens.Create(user.Email, user.EffectiveRole())
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.String("email", user.Email))
	return user, signed, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errs.CodeOf(err) == errs.CodeNotFound {
			return nil, "", errs.Unauthorized(badCredentials)
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", errs.Unauthorized(badCredentials)
	}

	signed, err := s.tokens.Create(user.Email, user.EffectiveRole())
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}

// Authenticate verifies the bearer token and re-fetches the user record. The
// live record, not the token payload, is what authorization decisions use:
// a role change takes effect before the token expires.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errs.CodeOf(err) == errs.CodeNotFound {
			return nil, errs.Unauthorized("invalid or expired token")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) RequireAdmin(user *models.User) error {
	if user == nil || user.EffectiveRole() != models.RoleAdmin {
		return errs.Forbidden("admin access required")
	}
	return nil
}

// ChangeRole updates another user's role. Admins cannot change their own role:
// demoting the last admin by accident would lock the dashboard out.
func (s *AuthService) ChangeRole(ctx context.Context, actor *models.User, targetID string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, errs.Validation("unknown role")
	}
	if targetID == actor.ID.Hex() {
		return nil, errs.Validation("cannot change your own role")
	}

	updated, err := s.users.UpdateRole(ctx, targetID, role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("role changed",
		zap.String("actor", actor.Email),
		zap.String("target", updated.Email),
		zap.String("role", string(role)))
	return updated, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}
