package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/weatherdesk/report-api/internal/core/domain"
	"github.com/weatherdesk/report-api/internal/core/ports"
)

const (
	reportDateLayout  = "2006-01-02 15:04:05"
	missingVisibility = "N/A"

	// settleTimeout bounds the terminal status write and artifact cleanup,
	// which run even after the job context has expired.
	settleTimeout = 10 * time.Second
)

var reportHeader = []string{
	"Report ID",
	"City",
	"Date",
	"Temperature (°C)",
	"Conditions",
	"Humidity (%)",
	"Wind Speed (m/s)",
	"Pressure (hPa)",
	"Visibility (m)",
}

// PipelineDeps groups the collaborators of the report pipeline.
type PipelineDeps struct {
	Reports   ports.ReportRepository
	Weather   ports.WeatherProvider
	Artifacts ports.ArtifactStore
	Notifier  ports.Notifier
	// BaseURL is the public origin used to build download links.
	BaseURL string
}

// ReportPipeline turns a pending report into a completed or failed one:
// fetch conditions, write the CSV artifact, record the transition, notify.
type ReportPipeline struct {
	deps          PipelineDeps
	log           zerolog.Logger
	now           func() time.Time
	settleTimeout time.Duration
}

func NewReportPipeline(deps PipelineDeps, log zerolog.Logger) *ReportPipeline {
	deps.BaseURL = strings.TrimRight(deps.BaseURL, "/")
	return &ReportPipeline{deps: deps, log: log, now: time.Now, settleTimeout: settleTimeout}
}

// Run executes job to completion. It never panics and never returns an
// error: failures are logged and drive the report to failed.
func (p *ReportPipeline) Run(ctx context.Context, job ports.ReportJob) (status domain.ReportStatus) {
	log := p.log.With().Int64("report_id", job.ReportID).Str("city", job.City).Logger()
	settled := false

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("report pipeline panicked")
			if !settled {
				status = p.fail(ctx, log, job.ReportID)
			}
		}
	}()

	path, err := p.generate(ctx, job)
	if err != nil {
		log.Error().Err(err).Msg("report generation failed")
		settled = true
		return p.fail(ctx, log, job.ReportID)
	}

	err = p.complete(ctx, job.ReportID, path)
	switch {
	case errors.Is(err, domain.ErrReportNotFound):
		settled = true
		log.Info().Msg("report removed before completion, discarding artifact")
		p.discard(ctx, log, path)
		return ""
	case err != nil:
		settled = true
		log.Error().Err(err).Msg("failed to record completed report")
		p.discard(ctx, log, path)
		return p.fail(ctx, log, job.ReportID)
	}
	settled = true
	status = domain.ReportCompleted
	log.Info().Str("path", path).Msg("report completed")

	p.notify(ctx, log, job)
	return status
}

// generate fetches the conditions and writes the artifact. It returns the
// stored path on success.
func (p *ReportPipeline) generate(ctx context.Context, job ports.ReportJob) (string, error) {
	conditions, err := p.deps.Weather.Current(ctx, job.City)
	if err != nil {
		return "", err
	}

	row := reportRow(job.ReportID, job.City, p.now().UTC(), conditions)
	path, err := p.deps.Artifacts.Save(ctx, artifactName(job.ReportID), func(w io.Writer) error {
		return writeReportCSV(w, row)
	})
	if err != nil {
		return "", fmt.Errorf("write report artifact: %w", err)
	}
	return path, nil
}

// settleContext detaches from the job deadline so a timed-out job still
// records its outcome.
func (p *ReportPipeline) settleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), p.settleTimeout)
}

func (p *ReportPipeline) complete(ctx context.Context, id int64, path string) error {
	ctx, cancel := p.settleContext(ctx)
	defer cancel()
	return p.deps.Reports.Complete(ctx, id, path)
}

// fail records the failed transition. It returns "" when nothing was
// recorded.
func (p *ReportPipeline) fail(ctx context.Context, log zerolog.Logger, id int64) domain.ReportStatus {
	ctx, cancel := p.settleContext(ctx)
	defer cancel()

	err := p.deps.Reports.Fail(ctx, id)
	switch {
	case errors.Is(err, domain.ErrReportNotFound):
		log.Info().Msg("report removed before failure could be recorded")
		return ""
	case err != nil:
		log.Error().Err(err).Msg("failed to record failed report")
		return ""
	}
	return domain.ReportFailed
}

func (p *ReportPipeline) discard(ctx context.Context, log zerolog.Logger, path string) {
	ctx, cancel := p.settleContext(ctx)
	defer cancel()
	if err := p.deps.Artifacts.Remove(ctx, path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove report artifact")
	}
}

// notify sends the ready email. Delivery failures never affect the report.
func (p *ReportPipeline) notify(ctx context.Context, log zerolog.Logger, job ports.ReportJob) {
	n := ports.ReportReadyNotification{
		To:          job.OwnerEmail,
		Username:    job.OwnerName,
		ReportID:    job.ReportID,
		City:        job.City,
		DownloadURL: p.DownloadURL(job.ReportID),
	}
	if err := p.deps.Notifier.SendReportReady(ctx, n); err != nil {
		log.Warn().Err(err).Str("to", job.OwnerEmail).Msg("report notification failed")
		return
	}
	log.Info().Str("to", job.OwnerEmail).Msg("report notification sent")
}

// DownloadURL is the public link mailed to the report owner.
func (p *ReportPipeline) DownloadURL(id int64) string {
	return p.deps.BaseURL + "/reports/" + strconv.FormatInt(id, 10) + "/download"
}

// artifactName is weather_report_{id}_{8 hex}.csv.
func artifactName(id int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("weather_report_%d_%s.csv", id, suffix)
}

func reportRow(id int64, city string, at time.Time, c *domain.WeatherConditions) []string {
	visibility := missingVisibility
	if c.Visibility != nil {
		visibility = strconv.Itoa(*c.Visibility)
	}
	return []string{
		strconv.FormatInt(id, 10),
		city,
		at.Format(reportDateLayout),
		formatNumber(c.Temperature),
		c.Description,
		formatNumber(c.Humidity),
		formatNumber(c.WindSpeed),
		formatNumber(c.Pressure),
		visibility,
	}
}

func writeReportCSV(w io.Writer, row []string) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
