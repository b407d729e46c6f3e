package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/weatherdesk/report-api/internal/api/middleware"
	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

type stubReportService struct {
	createFn   func(ctx context.Context, caller domain.Identity, city string) (*domain.Report, error)
	listFn     func(ctx context.Context, caller domain.Identity, in ports.ListReportsInput) (*ports.ReportPage, error)
	getFn      func(ctx context.Context, caller domain.Identity, id int64) (*domain.Report, error)
	deleteFn   func(ctx context.Context, caller domain.Identity, id int64) error
	downloadFn func(ctx context.Context, id int64) (*ports.ReportDownload, error)
}

func (s *stubReportService) Create(ctx context.Context, caller domain.Identity, city string) (*domain.Report, error) {
	return s.createFn(ctx, caller, city)
}

func (s *stubReportService) List(ctx context.Context, caller domain.Identity, in ports.ListReportsInput) (*ports.ReportPage, error) {
	return s.listFn(ctx, caller, in)
}

func (s *stubReportService) Get(ctx context.Context, caller domain.Identity, id int64) (*domain.Report, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubReportService) Delete(ctx context.Context, caller domain.Identity, id int64) error {
	return s.deleteFn(ctx, caller, id)
}

func (s *stubReportService) Download(ctx context.Context, id int64) (*ports.ReportDownload, error) {
	return s.downloadFn(ctx, id)
}

var alice = domain.Identity{UserID: 1, Email: "alice@x.com", Role: domain.RoleUser}

func authedContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, identity domain.Identity) echo.Context {
	c := e.NewContext(req, rec)
	middleware.SetIdentity(c, &identity)
	return c
}

func TestReportHandler_Create(t *testing.T) {
	e := newEcho()
	created := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	handler := NewReportHandler(&stubReportService{
		createFn: func(_ context.Context, caller domain.Identity, city string) (*domain.Report, error) {
			if caller.UserID != 1 || city != "Paris" {
				t.Fatalf("unexpected call %+v %q", caller, city)
			}
			return &domain.Report{ID: 9, UserID: 1, City: city, Status: domain.ReportPending, CreatedAt: created}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/reports?city=Paris", nil)
	rec := httptest.NewRecorder()
	if err := handler.Create(authedContext(e, req, rec, alice)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["report_id"] != float64(9) || resp["status"] != "pending" || resp["file_path"] != nil {
		t.Fatalf("unexpected payload %+v", resp)
	}
}

func TestReportHandler_Create_QueueFull(t *testing.T) {
	e := newEcho()
	handler := NewReportHandler(&stubReportService{
		createFn: func(context.Context, domain.Identity, string) (*domain.Report, error) {
			return nil, domain.ErrQueueFull
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/reports?city=Paris", nil)
	if err := handler.Create(authedContext(e, req, httptest.NewRecorder(), alice)); !errors.Is(err, domain.ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestReportHandler_RequiresIdentity(t *testing.T) {
	e := newEcho()
	handler := NewReportHandler(&stubReportService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/reports", nil), httptest.NewRecorder())
	if code := httpCode(handler.List(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestReportHandler_List(t *testing.T) {
	e := newEcho()
	handler := NewReportHandler(&stubReportService{
		listFn: func(_ context.Context, _ domain.Identity, in ports.ListReportsInput) (*ports.ReportPage, error) {
			if in.Page != 2 || in.Limit != 0 {
				t.Fatalf("unexpected input %+v", in)
			}
			return &ports.ReportPage{Items: []*domain.Report{}, Page: 2, Limit: 4, Total: 5, TotalPages: 2}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/reports?page=2", nil)
	rec := httptest.NewRecorder()
	if err := handler.List(authedContext(e, req, rec, alice)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp reportPageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.CurrentPage != 2 || resp.Limit != 4 || resp.Total != 5 || resp.TotalPages != 2 || resp.Items == nil {
		t.Fatalf("unexpected page %+v", resp)
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Fatalf("items must render as an empty array: %s", rec.Body.String())
	}
}

func TestReportHandler_List_RejectsBadPaging(t *testing.T) {
	e := newEcho()
	handler := NewReportHandler(&stubReportService{})

	for _, q := range []string{"page=0", "limit=-1", "page=abc"} {
		req := httptest.NewRequest(http.MethodGet, "/reports?"+q, nil)
		if code := httpCode(handler.List(authedContext(e, req, httptest.NewRecorder(), alice))); code != http.StatusUnprocessableEntity {
			t.Errorf("%s: expected 422, got %d", q, code)
		}
	}
}

func TestReportHandler_GetAndDelete(t *testing.T) {
	e := newEcho()
	handler := NewReportHandler(&stubReportService{
		getFn: func(context.Context, domain.Identity, int64) (*domain.Report, error) {
			return nil, domain.ErrForbidden
		},
		deleteFn: func(_ context.Context, _ domain.Identity, id int64) error {
			if id != 4 {
				t.Fatalf("unexpected id %d", id)
			}
			return nil
		},
	})

	c := authedContext(e, httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder(), alice)
	c.SetParamNames("report_id")
	c.SetParamValues("4")
	if err := handler.Get(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	rec := httptest.NewRecorder()
	c = authedContext(e, httptest.NewRequest(http.MethodDelete, "/", nil), rec, alice)
	c.SetParamNames("report_id")
	c.SetParamValues("4")
	if err := handler.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c = authedContext(e, httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder(), alice)
	c.SetParamNames("report_id")
	c.SetParamValues("x")
	if code := httpCode(handler.Delete(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for non-numeric id, got %d", code)
	}
}

func TestReportHandler_Download(t *testing.T) {
	e := newEcho()
	handler := NewReportHandler(&stubReportService{
		downloadFn: func(_ context.Context, id int64) (*ports.ReportDownload, error) {
			if id == 404 {
				return nil, domain.ErrReportNotReady
			}
			return &ports.ReportDownload{
				Name:        "report_12.csv",
				ContentType: "text/csv",
				Body:        io.NopCloser(strings.NewReader("City,Date\r\nParis,2026-01-01 00:00:00\r\n")),
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("report_id")
	c.SetParamValues("12")
	if err := handler.Download(c); err != nil {
		t.Fatalf("download: %v", err)
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); got != `attachment; filename="report_12.csv"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/csv") {
		t.Fatalf("unexpected content type %q", rec.Header().Get(echo.HeaderContentType))
	}
	if !strings.HasPrefix(rec.Body.String(), "City,Date\r\n") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("report_id")
	c.SetParamValues("404")
	if err := handler.Download(c); !errors.Is(err, domain.ErrReportNotReady) {
		t.Fatalf("expected ErrReportNotReady, got %v", err)
	}
}
