package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/weatherdesk/report-api/internal/api/metrics"
	"github.com/weatherdesk/report-api/internal/core/domain"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"
	defaultTimeout = 10 * time.Second
	// maxBodySize bounds how much of a provider response is read.
	maxBodySize = 1 << 20
)

// Config holds the OpenWeather client settings.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client fetches current conditions from the OpenWeather current-weather API.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp     *float64 `json:"temp"`
		Humidity float64  `json:"humidity"`
		Pressure float64  `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility *int `json:"visibility"`
}

// Current performs a single request in metric units. Every failure wraps
// domain.ErrWeatherProvider.
func (c *Client) Current(ctx context.Context, city string) (*domain.WeatherConditions, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		metrics.WeatherRequestsTotal.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrWeatherProvider, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.WeatherRequestsTotal.WithLabelValues("transport_error").Inc()
		return nil, fmt.Errorf("%w: request: %v", domain.ErrWeatherProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.WeatherRequestsTotal.WithLabelValues("bad_status").Inc()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("%w: status %d for city %q", domain.ErrWeatherProvider, resp.StatusCode, city)
	}

	var payload apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&payload); err != nil {
		metrics.WeatherRequestsTotal.WithLabelValues("bad_payload").Inc()
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrWeatherProvider, err)
	}
	if payload.Main == nil || payload.Main.Temp == nil || len(payload.Weather) == 0 {
		metrics.WeatherRequestsTotal.WithLabelValues("bad_payload").Inc()
		return nil, fmt.Errorf("%w: incomplete payload for city %q", domain.ErrWeatherProvider, city)
	}

	metrics.WeatherRequestsTotal.WithLabelValues("ok").Inc()
	return &domain.WeatherConditions{
		City:        city,
		Temperature: *payload.Main.Temp,
		Description: payload.Weather[0].Description,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Pressure:    payload.Main.Pressure,
		Visibility:  payload.Visibility,
	}, nil
}
