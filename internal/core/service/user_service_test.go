package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

func strPtr(s string) *string { return &s }

func newUserFixture(t *testing.T) (*UserService, *reportFixture) {
	t.Helper()
	rf := newReportFixture(t)
	svc := NewUserService(rf.users, rf.reports, rf.artifacts, zerolog.Nop())
	return svc, rf
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, rf := newUserFixture(t)
	ctx := context.Background()

	updated, err := svc.UpdateProfile(ctx, rf.alice, ports.UpdateProfileInput{
		Username: strPtr("alice2"),
		Password: strPtr("new-pw"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Username != "alice2" || updated.Email != "alice@x.com" {
		t.Fatalf("unexpected profile %+v", updated)
	}
	if !VerifyPassword("new-pw", updated.PasswordHash) {
		t.Fatalf("expected password to be rehashed")
	}

	if _, err := svc.UpdateProfile(ctx, rf.alice, ports.UpdateProfileInput{Email: strPtr("bob@x.com")}); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, rf.alice, ports.UpdateProfileInput{Username: strPtr(" ")}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserService_AdminOnlyOperations(t *testing.T) {
	svc, rf := newUserFixture(t)
	ctx := context.Background()

	if _, err := svc.ListUsers(ctx, rf.alice); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for list, got %v", err)
	}
	users, err := svc.ListUsers(ctx, rf.admin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}

	if err := svc.DeleteUser(ctx, rf.alice, rf.bob.UserID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for delete, got %v", err)
	}
	if err := svc.DeleteUser(ctx, rf.admin, 999); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserService_GetUser(t *testing.T) {
	svc, rf := newUserFixture(t)
	ctx := context.Background()

	if _, err := svc.GetUser(ctx, rf.alice, rf.alice.UserID); err != nil {
		t.Fatalf("self lookup: %v", err)
	}
	if _, err := svc.GetUser(ctx, rf.alice, rf.bob.UserID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetUser(ctx, rf.admin, 999); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

// Non-owner access is forbidden; once the owner is deleted by an admin the
// report is gone and later lookups report not found.
func TestUserService_DeleteCascadesReports(t *testing.T) {
	svc, rf := newUserFixture(t)
	ctx := context.Background()

	report, err := rf.svc.Create(ctx, rf.alice, "Paris")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	path := "mem/weather_report_1_00000000.csv"
	rf.artifacts.files[path] = []byte("x")
	_ = rf.reports.Complete(ctx, report.ID, path)

	if _, err := rf.svc.Get(ctx, rf.bob, report.ID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := svc.DeleteUser(ctx, rf.admin, rf.alice.UserID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := rf.svc.Get(ctx, rf.bob, report.ID); err != domain.ErrReportNotFound {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
	if _, ok := rf.artifacts.files[path]; ok {
		t.Fatalf("expected artifact to be removed with its report")
	}
	if _, err := svc.Profile(ctx, rf.alice); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound for deleted user, got %v", err)
	}
}
