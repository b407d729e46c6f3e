package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

// AuthService implements registration, login, logout and the per-request
// authorization guard.
type AuthService struct {
	users     ports.UserRepository
	blacklist ports.TokenBlacklist
	tokens    *TokenService
	adminKey  string
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	blacklist ports.TokenBlacklist,
	tokens *TokenService,
	adminKey string,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		blacklist: blacklist,
		tokens:    tokens,
		adminKey:  adminKey,
		log:       log,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if !domain.ValidRole(in.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, in.Role)
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	if in.Role == domain.RoleAdmin && !s.validAdminKey(in.AdminKey) {
		return nil, domain.ErrInvalidAdminKey
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("role", created.Role).Msg("user registered")
	return created, nil
}

// validAdminKey rejects every key when no admin secret is configured.
func (s *AuthService) validAdminKey(key string) bool {
	if s.adminKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.adminKey)) == 1
}

func (s *AuthService) Login(ctx context.Context, login, password string) (string, *domain.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.users.FindByEmail(ctx, login)
	} else {
		user, err = s.users.FindByUsername(ctx, login)
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user.Email, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout revokes token until its own expiry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return domain.ErrInvalidToken
	}

	entry := domain.BlacklistedToken{
		Token:         token,
		BlacklistedAt: s.now().UTC(),
		ExpiresAt:     claims.ExpiresAt.UTC(),
	}
	if err := s.blacklist.Add(ctx, entry); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	s.log.Info().Str("sub", claims.Subject).Time("expires_at", entry.ExpiresAt).Msg("token blacklisted")
	return nil
}

// Authorize runs the guard: blacklist check, decode, then subject lookup.
// An expired blacklist record is purged and does not reject the request.
func (s *AuthService) Authorize(ctx context.Context, token string) (*domain.Identity, error) {
	entry, err := s.blacklist.Find(ctx, token)
	switch {
	case err == nil:
		if !entry.Expired(s.now()) {
			return nil, domain.ErrTokenBlacklisted
		}
		if rmErr := s.blacklist.Remove(ctx, token); rmErr != nil {
			s.log.Warn().Err(rmErr).Msg("failed to purge expired blacklist entry")
		}
	case errors.Is(err, domain.ErrNotBlacklisted):
	default:
		return nil, fmt.Errorf("authorize: blacklist lookup: %w", err)
	}

	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	return &domain.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}, nil
}
