package ports

import (
	"context"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// ReportJob is the unit of work handed to the background pipeline.
type ReportJob struct {
	ReportID   int64
	City       string
	OwnerEmail string
	OwnerName  string
}

// ReportScheduler accepts jobs for background execution. Submit must not
// block; it returns domain.ErrQueueFull when no capacity is left.
type ReportScheduler interface {
	Submit(job ReportJob) error
}

// ReportRunner executes one job to completion and returns the terminal
// status it recorded, or "" when no transition was recorded (the report
// disappeared mid-run or the status write failed).
type ReportRunner interface {
	Run(ctx context.Context, job ReportJob) domain.ReportStatus
}
