package meteo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const httpTimeout = 10 * time.Second

const userAgent = "alice-weather-skill/1.0"

// newHTTPClient returns an http.Client with a 10-second timeout.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// doGet performs a GET request and decodes the JSON response into dst.
func doGet(ctx context.Context, client *http.Client, rawURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", rawURL, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}

	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ---- Nominatim ----

// GeocodingClient resolves a city name to a coordinate via Nominatim.
type GeocodingClient struct {
	baseURL string
	client  *http.Client
}

const nominatimDefaultURL = "https://nominatim.openstreetmap.org/search"

// NewGeocodingClient constructs a GeocodingClient using the production URL.
func NewGeocodingClient() *GeocodingClient {
	return &GeocodingClient{baseURL: nominatimDefaultURL, client: newHTTPClient()}
}

// NewGeocodingClientWithURL constructs a GeocodingClient pointing at a custom base URL (for tests).
func NewGeocodingClientWithURL(baseURL string) *GeocodingClient {
	return &GeocodingClient{baseURL: baseURL, client: newHTTPClient()}
}

// Nominatim returns coordinates as decimal strings.
type nominatimEntry struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve geocodes the given city, requesting a single best match.
// It never fails: any transport error, empty result set or out-of-range
// coordinate yields DefaultCoordinate together with the reason the
// fallback was taken.
func (c *GeocodingClient) Resolve(ctx context.Context, city string) (Coordinate, FallbackReason) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("format", "json")
	q.Set("limit", "1")

	var raw []nominatimEntry
	if err := doGet(ctx, c.client, c.baseURL+"?"+q.Encode(), &raw); err != nil {
		slog.Warn("geocoding request failed, using default location", "city", city, "err", err)
		return DefaultCoordinate, FallbackTransport
	}

	if len(raw) == 0 {
		slog.Warn("geocoding returned no results, using default location", "city", city)
		return DefaultCoordinate, FallbackEmptyResult
	}

	lat, latErr := strconv.ParseFloat(raw[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(raw[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		slog.Warn("geocoding returned unparsable coordinates, using default location", "city", city)
		return DefaultCoordinate, FallbackOutOfRange
	}

	coord := Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		slog.Warn("geocoding returned out-of-range coordinates, using default location",
			"city", city, "lat", lat, "lon", lon)
		return DefaultCoordinate, FallbackOutOfRange
	}

	return coord, FallbackNone
}

// ---- Open-Meteo forecast ----

// WeatherClient fetches current weather from Open-Meteo.
type WeatherClient struct {
	baseURL string
	client  *http.Client
}

const openMeteoDefaultURL = "https://api.open-meteo.com/v1/forecast"

// NewWeatherClient constructs a WeatherClient using the production URL.
func NewWeatherClient() *WeatherClient {
	return &WeatherClient{baseURL: openMeteoDefaultURL, client: newHTTPClient()}
}

// NewWeatherClientWithURL constructs a WeatherClient pointing at a custom base URL (for tests).
func NewWeatherClientWithURL(baseURL string) *WeatherClient {
	return &WeatherClient{baseURL: baseURL, client: newHTTPClient()}
}

type openMeteoResponse struct {
	CurrentWeather *struct {
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
		WeatherCode   int     `json:"weathercode"`
	} `json:"current_weather"`
	Hourly struct {
		RelativeHumidity []int `json:"relativehumidity_2m"`
		CloudCover       []int `json:"cloudcover"`
		WeatherCode      []int `json:"weathercode"`
	} `json:"hourly"`
}

// Fetch retrieves current conditions for the given coordinate.
// A response without a current_weather section counts as a failure; hourly
// series are optional and only their first (current hour) entry is used.
func (c *WeatherClient) Fetch(ctx context.Context, coord Coordinate) (*CurrentConditions, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(coord.Lat))
	q.Set("longitude", formatCoord(coord.Lon))
	q.Set("current_weather", "true")
	q.Set("hourly", "relativehumidity_2m,cloudcover,weathercode")
	q.Set("timezone", "auto")

	var raw openMeteoResponse
	if err := doGet(ctx, c.client, c.baseURL+"?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("open-meteo fetch for %v: %w", coord, err)
	}

	if raw.CurrentWeather == nil {
		return nil, fmt.Errorf("open-meteo response for %v has no current_weather section", coord)
	}

	cond := &CurrentConditions{
		Temperature:   raw.CurrentWeather.Temperature,
		WindSpeed:     int(raw.CurrentWeather.WindSpeed),
		WindDirection: raw.CurrentWeather.WindDirection,
		WeatherCode:   raw.CurrentWeather.WeatherCode,
	}
	if len(raw.Hourly.RelativeHumidity) > 0 {
		cond.Humidity = &raw.Hourly.RelativeHumidity[0]
	}
	if len(raw.Hourly.CloudCover) > 0 {
		cond.CloudCover = &raw.Hourly.CloudCover[0]
	}

	return cond, nil
}

// ---- Open-Meteo air quality ----

// AirQualityClient fetches the current PM2.5 reading from the Open-Meteo
// air-quality API.
type AirQualityClient struct {
	baseURL string
	client  *http.Client
}

const airQualityDefaultURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

// NewAirQualityClient constructs an AirQualityClient using the production URL.
func NewAirQualityClient() *AirQualityClient {
	return &AirQualityClient{baseURL: airQualityDefaultURL, client: newHTTPClient()}
}

// NewAirQualityClientWithURL constructs an AirQualityClient pointing at a custom base URL (for tests).
func NewAirQualityClientWithURL(baseURL string) *AirQualityClient {
	return &AirQualityClient{baseURL: baseURL, client: newHTTPClient()}
}

type airQualityResponse struct {
	Hourly struct {
		PM25 []float64 `json:"pm2_5"`
	} `json:"hourly"`
}

// Fetch retrieves the current PM2.5 concentration for the given coordinate.
// It never fails: any transport error, missing field or empty series yields
// nil, which the caller renders as "data unavailable".
func (c *AirQualityClient) Fetch(ctx context.Context, coord Coordinate) *float64 {
	q := url.Values{}
	q.Set("latitude", formatCoord(coord.Lat))
	q.Set("longitude", formatCoord(coord.Lon))
	q.Set("hourly", "pm2_5")

	var raw airQualityResponse
	if err := doGet(ctx, c.client, c.baseURL+"?"+q.Encode(), &raw); err != nil {
		slog.Warn("air-quality fetch failed", "coord", coord, "err", err)
		return nil
	}

	if len(raw.Hourly.PM25) == 0 {
		return nil
	}

	return &raw.Hourly.PM25[0]
}
