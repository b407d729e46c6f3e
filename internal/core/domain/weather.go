package domain

import "errors"

var (
	ErrWeatherProvider = errors.New("weather provider error")
	ErrNotification    = errors.New("notification error")
	// ErrArtifactNotFound is returned by artifact stores when the stored object
	// does not exist.
	ErrArtifactNotFound = errors.New("artifact not found")
)

// WeatherConditions holds the current conditions for a city in metric units.
// Visibility is nil when the provider omits it.
type WeatherConditions struct {
	City        string
	Temperature float64
	Description string
	Humidity    float64
	WindSpeed   float64
	Pressure    float64
	Visibility  *int
}
