package ports

import (
	"context"
	"io"

	"github.com/weatherdesk/report-api/internal/core/domain"
)

// WeatherProvider fetches current conditions for a city. Every failure wraps
// domain.ErrWeatherProvider.
type WeatherProvider interface {
	Current(ctx context.Context, city string) (*domain.WeatherConditions, error)
}

// ReportReadyNotification is the payload of the "report ready" email.
type ReportReadyNotification struct {
	To          string
	Username    string
	ReportID    int64
	City        string
	DownloadURL string
}

// Notifier delivers report notifications to their owner.
type Notifier interface {
	SendReportReady(ctx context.Context, n ReportReadyNotification) error
}

// ArtifactStore persists report artifacts.
type ArtifactStore interface {
	// Save streams write into a new artifact named name and returns the path
	// to record on the report. A failed write leaves nothing behind.
	Save(ctx context.Context, name string, write func(w io.Writer) error) (string, error)
	// Open returns domain.ErrArtifactNotFound when the artifact is gone.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Remove deletes the artifact; removing a missing artifact is not an error.
	Remove(ctx context.Context, path string) error
}
