package skill_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alisadev/weather-skill/internal/meteo"
	"github.com/alisadev/weather-skill/internal/session"
	"github.com/alisadev/weather-skill/internal/skill"
)

// ---- mock collaborators ----

type mockGeocoder struct {
	calls     int
	resolveFn func(ctx context.Context, city string) (meteo.Coordinate, meteo.FallbackReason)
}

func (m *mockGeocoder) Resolve(ctx context.Context, city string) (meteo.Coordinate, meteo.FallbackReason) {
	m.calls++
	if m.resolveFn != nil {
		return m.resolveFn(ctx, city)
	}
	return meteo.DefaultCoordinate, meteo.FallbackNone
}

type mockWeather struct {
	calls   int
	fetchFn func(ctx context.Context, coord meteo.Coordinate) (*meteo.CurrentConditions, error)
}

func (m *mockWeather) Fetch(ctx context.Context, coord meteo.Coordinate) (*meteo.CurrentConditions, error) {
	m.calls++
	return m.fetchFn(ctx, coord)
}

type mockAir struct {
	calls   int
	fetchFn func(ctx context.Context, coord meteo.Coordinate) *float64
}

func (m *mockAir) Fetch(ctx context.Context, coord meteo.Coordinate) *float64 {
	m.calls++
	if m.fetchFn != nil {
		return m.fetchFn(ctx, coord)
	}
	return nil
}

// identityDecliner returns the city unchanged, standing in for the
// morphological backend.
type identityDecliner struct{}

func (identityDecliner) Prepositional(city string) string { return city }

type failingStore struct{}

func (failingStore) CityRequested(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}
func (failingStore) MarkCityRequested(context.Context, string) error {
	return errors.New("store down")
}

// ---- helpers ----

func intPtr(v int) *int { return &v }

func float64Ptr(v float64) *float64 { return &v }

func goodConditions() *meteo.CurrentConditions {
	return &meteo.CurrentConditions{
		Temperature:   3.2,
		WindSpeed:     5,
		WindDirection: 270,
		WeatherCode:   0,
		Humidity:      intPtr(40),
		CloudCover:    intPtr(10),
	}
}

func requestWithCity(sessionID, city string) *skill.Request {
	req := &skill.Request{}
	req.Session.SessionID = sessionID
	if city != "" {
		var e skill.Entity
		e.Type = skill.EntityTypeGeo
		e.Value.City = city
		req.Request.NLU.Entities = []skill.Entity{e}
	}
	return req
}

func newOrchestrator(geo *mockGeocoder, weather *mockWeather, air *mockAir, store session.Store) *skill.Orchestrator {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return skill.NewOrchestrator(geo, weather, air, identityDecliner{}, store, log)
}

// ---- dialog-state gate ----

func TestHandleTurn_NoCity_AsksOnceThenGivesUp(t *testing.T) {
	geo := &mockGeocoder{}
	weather := &mockWeather{fetchFn: func(context.Context, meteo.Coordinate) (*meteo.CurrentConditions, error) {
		return goodConditions(), nil
	}}
	air := &mockAir{}
	store := session.NewMemoryStore(session.DefaultTTL)

	o := newOrchestrator(geo, weather, air, store)
	ctx := context.Background()

	resp := o.HandleTurn(ctx, requestWithCity("s1", ""))
	assert.Equal(t, "Пожалуйста, укажите город, чтобы я могла сообщить погоду.", resp.Response.Text)
	assert.False(t, resp.Response.EndSession)

	resp = o.HandleTurn(ctx, requestWithCity("s1", ""))
	assert.Equal(t, "Город не указан. Попробуйте ещё раз.", resp.Response.Text)
	assert.False(t, resp.Response.EndSession)

	assert.Equal(t, 0, geo.calls, "no external service is contacted without a city")
	assert.Equal(t, 0, weather.calls)
	assert.Equal(t, 0, air.calls)
}

func TestHandleTurn_NoCity_SessionsAreIndependent(t *testing.T) {
	store := session.NewMemoryStore(session.DefaultTTL)
	o := newOrchestrator(&mockGeocoder{}, &mockWeather{}, &mockAir{}, store)
	ctx := context.Background()

	resp := o.HandleTurn(ctx, requestWithCity("s1", ""))
	assert.Contains(t, resp.Response.Text, "укажите город")

	// A different session starts from the first-miss prompt again.
	resp = o.HandleTurn(ctx, requestWithCity("s2", ""))
	assert.Contains(t, resp.Response.Text, "укажите город")
}

func TestHandleTurn_StoreFailure_StillAnswers(t *testing.T) {
	o := newOrchestrator(&mockGeocoder{}, &mockWeather{}, &mockAir{}, failingStore{})

	resp := o.HandleTurn(context.Background(), requestWithCity("s1", ""))
	assert.Equal(t, "Пожалуйста, укажите город, чтобы я могла сообщить погоду.", resp.Response.Text)
}

// ---- entity extraction ----

func TestHandleTurn_IgnoresNonGeoEntities(t *testing.T) {
	req := &skill.Request{}
	req.Session.SessionID = "s1"
	var number skill.Entity
	number.Type = "YANDEX.NUMBER"
	req.Request.NLU.Entities = []skill.Entity{number}

	store := session.NewMemoryStore(session.DefaultTTL)
	o := newOrchestrator(&mockGeocoder{}, &mockWeather{}, &mockAir{}, store)

	resp := o.HandleTurn(context.Background(), req)
	assert.Contains(t, resp.Response.Text, "укажите город")
}

func TestHandleTurn_UsesFirstGeoEntity(t *testing.T) {
	req := &skill.Request{}
	req.Session.SessionID = "s1"
	var first, second skill.Entity
	first.Type = skill.EntityTypeGeo
	first.Value.City = "тверь"
	second.Type = skill.EntityTypeGeo
	second.Value.City = "казань"
	req.Request.NLU.Entities = []skill.Entity{first, second}

	geo := &mockGeocoder{}
	var resolvedCity string
	geo.resolveFn = func(_ context.Context, city string) (meteo.Coordinate, meteo.FallbackReason) {
		resolvedCity = city
		return meteo.DefaultCoordinate, meteo.FallbackNone
	}
	weather := &mockWeather{fetchFn: func(context.Context, meteo.Coordinate) (*meteo.CurrentConditions, error) {
		return goodConditions(), nil
	}}

	o := newOrchestrator(geo, weather, &mockAir{}, session.NewMemoryStore(session.DefaultTTL))
	o.HandleTurn(context.Background(), req)

	assert.Equal(t, "Тверь", resolvedCity, "first geo entity wins, capitalized")
}

// ---- fetch sequence and failure policy ----

func TestHandleTurn_WeatherFailure_AbortsBeforeAirQuality(t *testing.T) {
	geo := &mockGeocoder{}
	weather := &mockWeather{fetchFn: func(context.Context, meteo.Coordinate) (*meteo.CurrentConditions, error) {
		return nil, errors.New("connection refused")
	}}
	air := &mockAir{}

	o := newOrchestrator(geo, weather, air, session.NewMemoryStore(session.DefaultTTL))
	resp := o.HandleTurn(context.Background(), requestWithCity("s1", "Москва"))

	assert.Equal(t, "Не удалось получить данные о погоде. Попробуйте позже.", resp.Response.Text)
	assert.False(t, resp.Response.EndSession)
	assert.Equal(t, 1, weather.calls)
	assert.Equal(t, 0, air.calls, "air quality must not be contacted after a weather failure")
}

func TestHandleTurn_AirQualityFailure_DegradesOnly(t *testing.T) {
	weather := &mockWeather{fetchFn: func(context.Context, meteo.Coordinate) (*meteo.CurrentConditions, error) {
		return goodConditions(), nil
	}}
	air := &mockAir{} // returns nil: reading absent

	o := newOrchestrator(&mockGeocoder{}, weather, air, session.NewMemoryStore(session.DefaultTTL))
	resp := o.HandleTurn(context.Background(), requestWithCity("s1", "Москва"))

	text := resp.Response.Text
	assert.Contains(t, text, "Ясно")
	assert.Contains(t, text, "плюс 3°C")
	assert.Contains(t, text, "Ветер западный, 5 м/с")
	assert.Contains(t, text, "Влажность: 40%")
	assert.Contains(t, text, "Данные о качестве воздуха недоступны.")
}

func TestHandleTurn_GeocodingFallback_TurnStillCompletes(t *testing.T) {
	geo := &mockGeocoder{resolveFn: func(context.Context, string) (meteo.Coordinate, meteo.FallbackReason) {
		return meteo.DefaultCoordinate, meteo.FallbackEmptyResult
	}}
	var fetchedCoord meteo.Coordinate
	weather := &mockWeather{fetchFn: func(_ context.Context, coord meteo.Coordinate) (*meteo.CurrentConditions, error) {
		fetchedCoord = coord
		return goodConditions(), nil
	}}

	o := newOrchestrator(geo, weather, &mockAir{}, session.NewMemoryStore(session.DefaultTTL))
	resp := o.HandleTurn(context.Background(), requestWithCity("s1", "Нигдеград"))

	assert.Equal(t, meteo.DefaultCoordinate, fetchedCoord, "weather is fetched for the default location")
	assert.Contains(t, resp.Response.Text, "Ясно")
}

func TestHandleTurn_SuccessfulTurn_IncludesAirQuality(t *testing.T) {
	weather := &mockWeather{fetchFn: func(context.Context, meteo.Coordinate) (*meteo.CurrentConditions, error) {
		return goodConditions(), nil
	}}
	air := &mockAir{fetchFn: func(context.Context, meteo.Coordinate) *float64 {
		return float64Ptr(8)
	}}

	o := newOrchestrator(&mockGeocoder{}, weather, air, session.NewMemoryStore(session.DefaultTTL))
	resp := o.HandleTurn(context.Background(), requestWithCity("s1", "москва"))

	text := resp.Response.Text
	require.NotEmpty(t, text)
	assert.Contains(t, text, "В Москва", "identity decliner passes the capitalized city through")
	assert.Contains(t, text, "хорошее")
	assert.Contains(t, text, "равен 8 мкг/м³")
	assert.Equal(t, "1.0", resp.Version)
	assert.False(t, resp.Response.EndSession)
}
