package types

import (
	"time"
)

// TideType is the tide state at a snapshot instant.
type TideType string

const (
	TideHigh    TideType = "high"
	TideLow     TideType = "low"
	TideRising  TideType = "rising"
	TideFalling TideType = "falling"
	TideSlack   TideType = "slack"
)

// ValidTideTypes lists every recognized tide state.
var ValidTideTypes = []TideType{TideHigh, TideLow, TideRising, TideFalling, TideSlack}

// IsValid reports whether t is a recognized tide state.
func (t TideType) IsValid() bool {
	for _, v := range ValidTideTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ConditionSnapshot is one consolidated reading of weather, tide and UV
// values at a single forecast instant. Units are fixed by the aggregation
// layer: degrees Fahrenheit, mph, and 0-100 percentages.
type ConditionSnapshot struct {
	Timestamp          time.Time           `json:"timestamp" validate:"required"`
	Temp               float64             `json:"temp"`
	FeelsLike          float64             `json:"feels_like"`
	Humidity           float64             `json:"humidity"`
	CloudCover         float64             `json:"cloud_cover"`
	WeatherCode        string              `json:"weather_code"`
	WeatherDescription string              `json:"weather_description"`
	WindSpeed          float64             `json:"wind_speed"`
	WindGust           Optional[float64]   `json:"wind_gust"`
	UVIndex            float64             `json:"uv_index"`
	TideType           TideType            `json:"tide_type"`
	Sunrise            Optional[time.Time] `json:"sunrise"`
	Sunset             Optional[time.Time] `json:"sunset"`
}
