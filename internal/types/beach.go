package types

// Beach is one of the fixed coastal locations the service scores.
type Beach struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Region        string  `json:"region" yaml:"region"`
	Lat           float64 `json:"lat" yaml:"lat"`
	Lon           float64 `json:"lon" yaml:"lon"`
	TideStationID string  `json:"tide_station_id" yaml:"tide_station_id"`
	Timezone      string  `json:"timezone" yaml:"timezone"`
}
