package meteo

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// DefaultCoordinate is used whenever geocoding cannot produce a trustworthy
// result (Moscow).
var DefaultCoordinate = Coordinate{Lat: 55.7558, Lon: 37.6176}

// Valid reports whether the coordinate lies within the valid degree ranges.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// FallbackReason records why the geocoder substituted the default coordinate.
type FallbackReason int

const (
	// FallbackNone means the geocoder returned a real result.
	FallbackNone FallbackReason = iota
	// FallbackTransport means the request to the geocoder failed.
	FallbackTransport
	// FallbackEmptyResult means the geocoder found no match for the city.
	FallbackEmptyResult
	// FallbackOutOfRange means the geocoder returned coordinates outside the
	// valid degree ranges.
	FallbackOutOfRange
)

func (r FallbackReason) String() string {
	switch r {
	case FallbackNone:
		return "none"
	case FallbackTransport:
		return "transport"
	case FallbackEmptyResult:
		return "empty_result"
	case FallbackOutOfRange:
		return "out_of_range"
	}
	return "unknown"
}

// CurrentConditions holds the current weather for a coordinate.
// Humidity and CloudCover come from the hourly series and may be absent.
type CurrentConditions struct {
	Temperature   float64
	WindSpeed     int
	WindDirection float64
	WeatherCode   int
	Humidity      *int
	CloudCover    *int
}
