package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

const (
	defaultReportPage  = 1
	defaultReportLimit = 4
	maxReportLimit     = 100
	csvContentType     = "text/csv"
)

type ReportService struct {
	reports   ports.ReportRepository
	users     ports.UserRepository
	scheduler ports.ReportScheduler
	artifacts ports.ArtifactStore
	log       zerolog.Logger
	now       func() time.Time
}

func NewReportService(
	reports ports.ReportRepository,
	users ports.UserRepository,
	scheduler ports.ReportScheduler,
	artifacts ports.ArtifactStore,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{
		reports:   reports,
		users:     users,
		scheduler: scheduler,
		artifacts: artifacts,
		log:       log,
		now:       time.Now,
	}
}

// Create persists a pending report and hands it to the scheduler. When the
// scheduler is saturated the pending row is withdrawn and ErrQueueFull is
// returned, so callers never see a report that will not be processed.
func (s *ReportService) Create(ctx context.Context, caller domain.Identity, city string) (*domain.Report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, fmt.Errorf("%w: city is required", domain.ErrInvalidInput)
	}
	if strings.IndexFunc(city, unicode.IsControl) >= 0 {
		return nil, fmt.Errorf("%w: city contains control characters", domain.ErrInvalidInput)
	}

	owner, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	report, err := s.reports.Create(ctx, &domain.Report{
		UserID:    owner.ID,
		City:      city,
		Status:    domain.ReportPending,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	job := ports.ReportJob{
		ReportID:   report.ID,
		City:       city,
		OwnerEmail: owner.Email,
		OwnerName:  owner.Username,
	}
	if err := s.scheduler.Submit(job); err != nil {
		if _, delErr := s.reports.Delete(ctx, report.ID); delErr != nil {
			s.log.Warn().Err(delErr).Int64("report_id", report.ID).Msg("failed to withdraw unscheduled report")
		}
		if errors.Is(err, domain.ErrQueueFull) {
			return nil, err
		}
		return nil, fmt.Errorf("schedule report: %w", err)
	}

	s.log.Info().Int64("report_id", report.ID).Int64("user_id", owner.ID).Str("city", city).Msg("report scheduled")
	return report, nil
}

func (s *ReportService) List(ctx context.Context, caller domain.Identity, in ports.ListReportsInput) (*ports.ReportPage, error) {
	page, limit, err := normalizePage(in.Page, in.Limit)
	if err != nil {
		return nil, err
	}

	filter := ports.ReportFilter{Page: page, Limit: limit}
	if !caller.IsAdmin() {
		filter.UserID = caller.UserID
	}

	items, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if items == nil {
		items = []*domain.Report{}
	}

	return &ports.ReportPage{
		Items:      items,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *ReportService) Get(ctx context.Context, caller domain.Identity, id int64) (*domain.Report, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(report.UserID) {
		return nil, domain.ErrForbidden
	}
	return report, nil
}

// Delete removes the report and its artifact, if one was written.
func (s *ReportService) Delete(ctx context.Context, caller domain.Identity, id int64) error {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return err
	}

	removed, err := s.reports.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.removeArtifact(ctx, removed)
	return nil
}

func (s *ReportService) Download(ctx context.Context, id int64) (*ports.ReportDownload, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status != domain.ReportCompleted || report.FilePath == nil {
		return nil, domain.ErrReportNotReady
	}

	body, err := s.artifacts.Open(ctx, *report.FilePath)
	if errors.Is(err, domain.ErrArtifactNotFound) {
		return nil, domain.ErrReportFileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("open report artifact: %w", err)
	}

	return &ports.ReportDownload{
		Name:        report.DownloadName(),
		ContentType: csvContentType,
		Body:        body,
	}, nil
}

func (s *ReportService) removeArtifact(ctx context.Context, report *domain.Report) {
	if report == nil || report.FilePath == nil {
		return
	}
	if err := s.artifacts.Remove(ctx, *report.FilePath); err != nil {
		s.log.Warn().Err(err).Int64("report_id", report.ID).Str("path", *report.FilePath).Msg("failed to remove report artifact")
	}
}

// normalizePage applies defaults to zero values and rejects negatives.
func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = defaultReportPage
	}
	if limit == 0 {
		limit = defaultReportLimit
	}
	if page < 1 || limit < 1 {
		return 0, 0, fmt.Errorf("%w: page and limit must be at least 1", domain.ErrInvalidInput)
	}
	if limit > maxReportLimit {
		limit = maxReportLimit
	}
	return page, limit, nil
}

func totalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
