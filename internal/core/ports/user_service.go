package ports

import (
	"context"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// UpdateProfileInput holds optional profile changes; nil fields are left as is.
type UpdateProfileInput struct {
	Username *string
	Email    *string
	Password *string
}

type UserService interface {
	Profile(ctx context.Context, caller domain.Identity) (*domain.User, error)
	UpdateProfile(ctx context.Context, caller domain.Identity, input UpdateProfileInput) (*domain.User, error)
	ListUsers(ctx context.Context, caller domain.Identity) ([]*domain.User, error)
	GetUser(ctx context.Context, caller domain.Identity, id int64) (*domain.User, error)
	DeleteUser(ctx context.Context, caller domain.Identity, id int64) error
}
