package external

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"beachscore/internal/types"
)

// DefaultOpenMeteoURL is the Open-Meteo forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// UVReading is the UV index at the top of an hour.
type UVReading struct {
	Time  time.Time
	Index float64
}

// OpenMeteoUVClient reads hourly UV index forecasts from Open-Meteo.
type OpenMeteoUVClient struct {
	base    *BaseClient
	baseURL string
	days    int
}

// NewOpenMeteoUVClient creates an OpenMeteoUVClient covering the next six days.
func NewOpenMeteoUVClient(httpClient *http.Client, baseURL string, opts ...BaseClientOption) *OpenMeteoUVClient {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	opts = append([]BaseClientOption{WithFailureCode(types.ErrCodeUpstreamUV)}, opts...)
	return &OpenMeteoUVClient{
		base:    NewBaseClient(httpClient, ProviderOpenMeteo, DefaultRetryPolicy(), userAgent, opts...),
		baseURL: baseURL,
		days:    6,
	}
}

type openMeteoResponse struct {
	Hourly struct {
		Time    []string   `json:"time"`
		UVIndex []*float64 `json:"uv_index"`
	} `json:"hourly"`
}

// HourlyUV implements UVProvider. Hours with a null reading are skipped.
func (c *OpenMeteoUVClient) HourlyUV(ctx context.Context, lat, lon float64) ([]UVReading, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("hourly", "uv_index")
	q.Set("timezone", "GMT")
	q.Set("forecast_days", strconv.Itoa(c.days))

	var raw openMeteoResponse
	if err := c.base.GetJSON(ctx, c.baseURL, q, &raw); err != nil {
		return nil, err
	}
	if len(raw.Hourly.Time) != len(raw.Hourly.UVIndex) {
		return nil, types.NewAppError(types.ErrCodeUpstreamInvalidReply, "uv series length mismatch", nil)
	}

	out := make([]UVReading, 0, len(raw.Hourly.Time))
	for i, ts := range raw.Hourly.Time {
		if raw.Hourly.UVIndex[i] == nil {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02T15:04", ts, time.UTC)
		if err != nil {
			continue
		}
		out = append(out, UVReading{Time: t, Index: *raw.Hourly.UVIndex[i]})
	}
	return out, nil
}
