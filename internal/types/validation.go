package types

import (
	"fmt"
	"math"
	"time"
)

// Validation constraint constants.
const (
	MinLat = -90.0
	MaxLat = 90.0
	MinLon = -180.0
	MaxLon = 180.0

	MaxWindTolerance  = 100.0
	MaxSnapshots      = 200
	MaxWindowDuration = 24 * time.Hour
)

// ValidateCoordinates checks that lat/lon are inside the WGS84 domain.
func ValidateCoordinates(lat, lon float64) error {
	if lat < MinLat || lat > MaxLat || math.IsNaN(lat) {
		return fmt.Errorf("latitude %.4f outside [%.0f, %.0f]", lat, MinLat, MaxLat)
	}
	if lon < MinLon || lon > MaxLon || math.IsNaN(lon) {
		return fmt.Errorf("longitude %.4f outside [%.0f, %.0f]", lon, MinLon, MaxLon)
	}
	return nil
}

// ValidatePreferences checks the optional preference fields that struct tags
// cannot reach. The scoring engine itself never rejects input; this is the
// caller-side check run at the API boundary.
func ValidatePreferences(p UserPreferences) error {
	if tr, ok := p.TempRange.Get(); ok {
		if math.IsNaN(tr.Min) || math.IsNaN(tr.Max) {
			return fmt.Errorf("%s: temp_range bounds must be numbers", ErrCodeValidationInvalidPreferences)
		}
		if tr.Max < tr.Min {
			return fmt.Errorf("%s: temp_range.max must be >= temp_range.min", ErrCodeValidationInvalidPreferences)
		}
	}
	if wt, ok := p.WindTolerance.Get(); ok {
		if wt <= 0 || wt > MaxWindTolerance || math.IsNaN(wt) {
			return fmt.Errorf("%s: wind_tolerance must be in (0, %.0f]", ErrCodeValidationInvalidPreferences, MaxWindTolerance)
		}
	}
	return nil
}
