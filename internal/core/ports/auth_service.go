package ports

import (
	"context"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
	AdminKey string
}

// Authorizer resolves a presented session token to the caller's identity.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*domain.Identity, error)
}

type AuthService interface {
	Authorizer
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login accepts either an email or a username as the login identifier.
	Login(ctx context.Context, login, password string) (string, *domain.User, error)
	Logout(ctx context.Context, token string) error
}
