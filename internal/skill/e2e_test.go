package skill_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alisadev/weather-skill/internal/meteo"
	"github.com/alisadev/weather-skill/internal/morph"
	"github.com/alisadev/weather-skill/internal/session"
	"github.com/alisadev/weather-skill/internal/skill"
)

// TestHandleTurn_EndToEnd drives the full pipeline against fake external
// services: real HTTP clients, the rule decliner, and the in-memory session
// store.
func TestHandleTurn_EndToEnd(t *testing.T) {
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Москва", r.URL.Query().Get("q"), "geocoder receives the capitalized city")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{{"lat": "55.7558", "lon": "37.6176"}})
	}))
	defer geoSrv.Close()

	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"current_weather": map[string]any{
				"temperature":   3.2,
				"windspeed":     4.7,
				"winddirection": 180.0,
				"weathercode":   0,
			},
			"hourly": map[string]any{
				"relativehumidity_2m": []int{40},
				"cloudcover":          []int{10},
				"weathercode":         []int{0},
			},
		})
	}))
	defer weatherSrv.Close()

	airSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hourly": map[string]any{"pm2_5": []float64{8}},
		})
	}))
	defer airSrv.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := skill.NewOrchestrator(
		meteo.NewGeocodingClientWithURL(geoSrv.URL),
		meteo.NewWeatherClientWithURL(weatherSrv.URL),
		meteo.NewAirQualityClientWithURL(airSrv.URL),
		morph.NewRuleDecliner(),
		session.NewMemoryStore(session.DefaultTTL),
		log,
	)

	resp := o.HandleTurn(context.Background(), requestWithCity("s1", "москва"))

	text := resp.Response.Text
	assert.Contains(t, text, "В Москве", "prepositional form of the city")
	assert.Contains(t, text, "Ясно")
	assert.Contains(t, text, "плюс 3°C")
	assert.Contains(t, text, "Ветер южный, 4 м/с")
	assert.Contains(t, text, "Влажность: 40%, облачность: 10%")
	assert.Contains(t, text, "хорошее")
	assert.Contains(t, text, "равен 8 мкг/м³")
	assert.Equal(t, "1.0", resp.Version)
	assert.False(t, resp.Response.EndSession)
}
