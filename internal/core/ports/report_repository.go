package ports

import (
	"context"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// ReportFilter narrows a report listing. A zero UserID lists every report.
type ReportFilter struct {
	UserID int64
	Page   int
	Limit  int
}

// ReportRepository defines persistence for reports.
//
// Complete and Fail are compare-and-swap transitions guarded on the pending
// status: they return domain.ErrReportNotFound when no pending row with the
// given id exists, so a concurrent delete turns them into no-ops.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) (*domain.Report, error)
	FindByID(ctx context.Context, id int64) (*domain.Report, error)
	// List returns one page ordered newest first, plus the total match count.
	List(ctx context.Context, filter ReportFilter) ([]*domain.Report, int64, error)
	Complete(ctx context.Context, id int64, filePath string) error
	Fail(ctx context.Context, id int64) error
	// Delete removes the row and returns it as it was at removal time.
	Delete(ctx context.Context, id int64) (*domain.Report, error)
	// DeleteByUser removes every report owned by userID and returns them.
	DeleteByUser(ctx context.Context, userID int64) ([]*domain.Report, error)
}
