package ports

import (
	"context"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// UserRepository defines persistence for user accounts. Lookups return
// domain.ErrUserNotFound when nothing matches and writes return
// domain.ErrEmailTaken on a unique email violation.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByUsername returns the oldest account with the given username.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
