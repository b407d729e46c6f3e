package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
	"github.com/weatherdesk/report-api/internal/infrastructure/http/handlers"
)

type fakeAuth struct{}

func (fakeAuth) Register(context.Context, ports.RegisterInput) (*domain.User, error) {
	return &domain.User{ID: 1, Username: "alice", Email: "alice@x.com", Role: domain.RoleUser}, nil
}

func (fakeAuth) Login(context.Context, string, string) (string, *domain.User, error) {
	return "", nil, domain.ErrInvalidCredentials
}

func (fakeAuth) Logout(context.Context, string) error { return nil }

func (fakeAuth) Authorize(_ context.Context, token string) (*domain.Identity, error) {
	switch token {
	case "user-token":
		return &domain.Identity{UserID: 1, Email: "alice@x.com", Role: domain.RoleUser}, nil
	case "revoked-token":
		return nil, domain.ErrTokenBlacklisted
	}
	return nil, domain.ErrInvalidToken
}

type fakeUsers struct{ ports.UserService }

type fakeReports struct{ ports.ReportService }

func (fakeReports) Download(context.Context, int64) (*ports.ReportDownload, error) {
	return nil, domain.ErrReportNotFound
}

func (fakeReports) Get(context.Context, domain.Identity, int64) (*domain.Report, error) {
	return nil, domain.ErrForbidden
}

func TestRouter(t *testing.T) {
	e := NewRouter(RouterDeps{
		Auth:    fakeAuth{},
		Users:   fakeUsers{},
		Reports: fakeReports{},
		Readiness: []handlers.Dependency{
			{Name: "database", Ping: func(context.Context) error { return nil }},
		},
		Log: zerolog.Nop(),
	})

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		code   int
	}{
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK},
		{"readiness", http.MethodGet, "/health/ready", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"reports need auth", http.MethodGet, "/reports", "", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/reports/1", "garbage", "", http.StatusUnauthorized},
		{"revoked token", http.MethodGet, "/reports/1", "revoked-token", "", http.StatusUnauthorized},
		{"foreign report", http.MethodGet, "/reports/1", "user-token", "", http.StatusForbidden},
		{"download is public", http.MethodGet, "/reports/5/download", "", "", http.StatusNotFound},
		{"admin only listing", http.MethodGet, "/users/users", "user-token", "", http.StatusForbidden},
		{"admin only delete", http.MethodDelete, "/users/3", "user-token", "", http.StatusForbidden},
		{"register validation", http.MethodPost, "/auth/user_register", "", `{"username":"a"}`, http.StatusUnprocessableEntity},
		{"register", http.MethodPost, "/auth/user_register", "", `{"username":"a","email":"a@x.com","password":"pw"}`, http.StatusCreated},
		{"login rejected", http.MethodPost, "/auth/login", "", `{"username":"a","password":"b"}`, http.StatusUnauthorized},
		{"logout", http.MethodPost, "/auth/logout", "user-token", "", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		if tc.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != tc.code {
			t.Errorf("%s: expected %d, got %d (%s)", tc.name, tc.code, rec.Code, rec.Body.String())
		}
	}
}
