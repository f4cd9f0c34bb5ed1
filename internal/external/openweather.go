package external

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"beachscore/internal/types"
)

// DefaultOpenWeatherURL is the 5-day / 3-hour forecast endpoint.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/forecast"

// WeatherPoint is one forecast step in imperial units.
type WeatherPoint struct {
	Time        time.Time
	Temp        float64
	FeelsLike   float64
	Humidity    float64
	CloudCover  float64
	WindSpeed   float64
	WindGust    types.Optional[float64]
	Code        string
	Description string
}

// WeatherForecast is an ordered forecast plus the sun times of the first day.
type WeatherForecast struct {
	Points  []WeatherPoint
	Sunrise time.Time
	Sunset  time.Time
	// UTCOffset is the location's offset from UTC.
	UTCOffset time.Duration
}

// OpenWeatherClient reads forecasts from OpenWeatherMap.
type OpenWeatherClient struct {
	base    *BaseClient
	baseURL string
	apiKey  types.SecretString
}

// NewOpenWeatherClient creates an OpenWeatherClient. An empty baseURL uses
// DefaultOpenWeatherURL.
func NewOpenWeatherClient(httpClient *http.Client, baseURL string, apiKey types.SecretString, opts ...BaseClientOption) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	opts = append([]BaseClientOption{WithFailureCode(types.ErrCodeUpstreamWeather)}, opts...)
	return &OpenWeatherClient{
		base:    NewBaseClient(httpClient, ProviderOpenWeather, DefaultRetryPolicy(), userAgent, opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type owmForecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Icon        string `json:"icon"`
			Description string `json:"description"`
		} `json:"weather"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Wind struct {
			Speed float64  `json:"speed"`
			Gust  *float64 `json:"gust"`
		} `json:"wind"`
	} `json:"list"`
	City struct {
		Sunrise  int64 `json:"sunrise"`
		Sunset   int64 `json:"sunset"`
		Timezone int64 `json:"timezone"`
	} `json:"city"`
}

// Forecast implements WeatherProvider.
func (c *OpenWeatherClient) Forecast(ctx context.Context, lat, lon float64) (*WeatherForecast, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("units", "imperial")
	q.Set("appid", c.apiKey.Unmask())

	var raw owmForecastResponse
	if err := c.base.GetJSON(ctx, c.baseURL, q, &raw); err != nil {
		return nil, err
	}
	if len(raw.List) == 0 {
		return nil, types.NewAppError(types.ErrCodeUpstreamInvalidReply, "weather forecast is empty", nil)
	}

	fc := &WeatherForecast{
		Points:    make([]WeatherPoint, 0, len(raw.List)),
		Sunrise:   time.Unix(raw.City.Sunrise, 0).UTC(),
		Sunset:    time.Unix(raw.City.Sunset, 0).UTC(),
		UTCOffset: time.Duration(raw.City.Timezone) * time.Second,
	}
	for _, item := range raw.List {
		p := WeatherPoint{
			Time:       time.Unix(item.Dt, 0).UTC(),
			Temp:       item.Main.Temp,
			FeelsLike:  item.Main.FeelsLike,
			Humidity:   item.Main.Humidity,
			CloudCover: item.Clouds.All,
			WindSpeed:  item.Wind.Speed,
		}
		if item.Wind.Gust != nil {
			p.WindGust = types.Some(*item.Wind.Gust)
		}
		if len(item.Weather) > 0 {
			p.Code = item.Weather[0].Icon
			p.Description = strings.TrimSpace(item.Weather[0].Description)
		}
		fc.Points = append(fc.Points, p)
	}
	return fc, nil
}
