package external

import (
	"context"
	"time"

	"beachscore/internal/tides"
)

// WeatherProvider returns the multi-day forecast for a coordinate.
type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lon float64) (*WeatherForecast, error)
}

// UVProvider returns hourly UV index readings for a coordinate.
type UVProvider interface {
	HourlyUV(ctx context.Context, lat, lon float64) ([]UVReading, error)
}

// TideProvider returns the predicted high and low water extremes for a
// station between start and end.
type TideProvider interface {
	Predictions(ctx context.Context, stationID string, start, end time.Time) ([]tides.Event, error)
}

// Provider names, used for breaker names and failure metrics.
const (
	ProviderOpenWeather = "openweather"
	ProviderOpenMeteo   = "open-meteo"
	ProviderNOAA        = "noaa-coops"
)
