package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

type UserService struct {
	users     ports.UserRepository
	reports   ports.ReportRepository
	artifacts ports.ArtifactStore
	log       zerolog.Logger
	now       func() time.Time
}

func NewUserService(
	users ports.UserRepository,
	reports ports.ReportRepository,
	artifacts ports.ArtifactStore,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		reports:   reports,
		artifacts: artifacts,
		log:       log,
		now:       time.Now,
	}
}

func (s *UserService) Profile(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	return s.users.FindByID(ctx, caller.UserID)
}

// UpdateProfile applies the non-nil fields of in. Changing the email moves
// the account to a new token subject, so tokens issued before the change stop
// resolving.
func (s *UserService) UpdateProfile(ctx context.Context, caller domain.Identity, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", domain.ErrInvalidInput)
		}
		user.Username = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrInvalidInput)
		}
		if email != user.Email {
			existing, err := s.users.FindByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return nil, domain.ErrEmailTaken
			}
			if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
				return nil, fmt.Errorf("update profile: %w", err)
			}
		}
		user.Email = email
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", domain.ErrInvalidInput)
		}
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("update profile: hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = s.now().UTC()
	return s.users.Update(ctx, user)
}

func (s *UserService) ListUsers(ctx context.Context, caller domain.Identity) ([]*domain.User, error) {
	if !caller.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

// GetUser is available to admins and to the account holder.
func (s *UserService) GetUser(ctx context.Context, caller domain.Identity, id int64) (*domain.User, error) {
	if !caller.CanAccess(id) {
		return nil, domain.ErrForbidden
	}
	return s.users.FindByID(ctx, id)
}

// DeleteUser removes the account together with its reports and artifacts.
func (s *UserService) DeleteUser(ctx context.Context, caller domain.Identity, id int64) error {
	if !caller.IsAdmin() {
		return domain.ErrForbidden
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	removed, err := s.reports.DeleteByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user reports: %w", err)
	}
	for _, r := range removed {
		if r.FilePath == nil {
			continue
		}
		if err := s.artifacts.Remove(ctx, *r.FilePath); err != nil {
			s.log.Warn().Err(err).Int64("report_id", r.ID).Msg("failed to remove report artifact")
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Int64("user_id", id).Int("reports_removed", len(removed)).Msg("user deleted")
	return nil
}
