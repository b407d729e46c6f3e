package ports

import (
	"context"
	"io"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// ListReportsInput carries the listing request. Zero Page or Limit select
// the defaults.
type ListReportsInput struct {
	Page  int
	Limit int
}

// ReportPage is one page of a report listing.
type ReportPage struct {
	Items      []*domain.Report
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// ReportDownload is an open artifact ready to stream. Callers must close Body.
type ReportDownload struct {
	Name        string
	ContentType string
	Body        io.ReadCloser
}

type ReportService interface {
	Create(ctx context.Context, caller domain.Identity, city string) (*domain.Report, error)
	List(ctx context.Context, caller domain.Identity, input ListReportsInput) (*ReportPage, error)
	Get(ctx context.Context, caller domain.Identity, id int64) (*domain.Report, error)
	Delete(ctx context.Context, caller domain.Identity, id int64) error
	// Download does not take an identity: the link is mailed to the owner
	// and is reachable by report id alone.
	Download(ctx context.Context, id int64) (*ReportDownload, error)
}
