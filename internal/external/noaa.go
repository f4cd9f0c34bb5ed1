package external

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"beachscore/internal/tides"
	"beachscore/internal/types"
)

// DefaultNOAAURL is the CO-OPS data getter.
const DefaultNOAAURL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"

const userAgent = "BeachScore/1.0"

// NOAATideClient reads high/low tide predictions from NOAA CO-OPS.
type NOAATideClient struct {
	base    *BaseClient
	baseURL string
}

// NewNOAATideClient creates a NOAATideClient.
func NewNOAATideClient(httpClient *http.Client, baseURL string, opts ...BaseClientOption) *NOAATideClient {
	if baseURL == "" {
		baseURL = DefaultNOAAURL
	}
	opts = append([]BaseClientOption{WithFailureCode(types.ErrCodeUpstreamTides)}, opts...)
	return &NOAATideClient{
		base:    NewBaseClient(httpClient, ProviderNOAA, DefaultRetryPolicy(), userAgent, opts...),
		baseURL: baseURL,
	}
}

type coopsResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Predictions []struct {
		Time   string `json:"t"`
		Height string `json:"v"`
		Type   string `json:"type"`
	} `json:"predictions"`
}

// Predictions implements TideProvider. Times are requested in GMT.
// Entries with an unparseable time or height are dropped.
func (c *NOAATideClient) Predictions(ctx context.Context, stationID string, start, end time.Time) ([]tides.Event, error) {
	q := url.Values{}
	q.Set("begin_date", start.UTC().Format("20060102"))
	q.Set("end_date", end.UTC().Format("20060102"))
	q.Set("station", stationID)
	q.Set("product", "predictions")
	q.Set("datum", "MLLW")
	q.Set("time_zone", "gmt")
	q.Set("interval", "hilo")
	q.Set("units", "english")
	q.Set("format", "json")
	q.Set("application", "BeachScore")

	var raw coopsResponse
	if err := c.base.GetJSON(ctx, c.baseURL, q, &raw); err != nil {
		return nil, err
	}
	// CO-OPS reports bad stations with a 200 and an error object.
	if raw.Error != nil {
		return nil, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundTideStation,
			raw.Error.Message,
			nil,
			map[string]any{"station_id": stationID},
		)
	}

	events := make([]tides.Event, 0, len(raw.Predictions))
	for _, p := range raw.Predictions {
		t, err := time.ParseInLocation("2006-01-02 15:04", p.Time, time.UTC)
		if err != nil {
			continue
		}
		h, err := strconv.ParseFloat(p.Height, 64)
		if err != nil {
			continue
		}
		kind := types.TideLow
		if p.Type == "H" {
			kind = types.TideHigh
		}
		events = append(events, tides.Event{Time: t, Kind: kind, Height: h})
	}
	return events, nil
}
