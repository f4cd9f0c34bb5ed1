package scoring

// WeatherCategory is the sky condition parsed from a provider icon code.
type WeatherCategory int

const (
	WeatherUnknown WeatherCategory = iota
	WeatherClear
	WeatherFewClouds
	WeatherScatteredClouds
	WeatherBrokenClouds
	WeatherShowers
	WeatherRain
	WeatherStorm
	WeatherSnow
	WeatherMist
)

var weatherFamilies = map[string]WeatherCategory{
	"01": WeatherClear,
	"02": WeatherFewClouds,
	"03": WeatherScatteredClouds,
	"04": WeatherBrokenClouds,
	"09": WeatherShowers,
	"10": WeatherRain,
	"11": WeatherStorm,
	"13": WeatherSnow,
	"50": WeatherMist,
}

var weatherBaseScores = map[WeatherCategory]float64{
	WeatherClear:           100,
	WeatherFewClouds:       90,
	WeatherScatteredClouds: 80,
	WeatherBrokenClouds:    70,
	WeatherShowers:         30,
	WeatherRain:            20,
	WeatherStorm:           10,
	WeatherSnow:            40,
	WeatherMist:            60,
}

const unknownWeatherScore = 50

// ClassifyWeather maps an icon code such as "01d" or "10n" to its category
// using the two-character family prefix. Anything shorter or unlisted is
// WeatherUnknown.
func ClassifyWeather(code string) WeatherCategory {
	if len(code) < 2 {
		return WeatherUnknown
	}
	if c, ok := weatherFamilies[code[:2]]; ok {
		return c
	}
	return WeatherUnknown
}

// BaseScore is the table score for the category before the cloud penalty.
func (c WeatherCategory) BaseScore() float64 {
	if s, ok := weatherBaseScores[c]; ok {
		return s
	}
	return unknownWeatherScore
}

// IsClear covers clear and few-clouds skies.
func (c WeatherCategory) IsClear() bool {
	return c == WeatherClear || c == WeatherFewClouds
}

// IsCloudy covers scattered and broken cloud.
func (c WeatherCategory) IsCloudy() bool {
	return c == WeatherScatteredClouds || c == WeatherBrokenClouds
}

// IsRain covers showers and steady rain.
func (c WeatherCategory) IsRain() bool {
	return c == WeatherShowers || c == WeatherRain
}

// IsStorm reports thunderstorms.
func (c WeatherCategory) IsStorm() bool {
	return c == WeatherStorm
}

func (c WeatherCategory) String() string {
	switch c {
	case WeatherClear:
		return "clear"
	case WeatherFewClouds:
		return "few_clouds"
	case WeatherScatteredClouds:
		return "scattered_clouds"
	case WeatherBrokenClouds:
		return "broken_clouds"
	case WeatherShowers:
		return "showers"
	case WeatherRain:
		return "rain"
	case WeatherStorm:
		return "storm"
	case WeatherSnow:
		return "snow"
	case WeatherMist:
		return "mist"
	default:
		return "unknown"
	}
}
