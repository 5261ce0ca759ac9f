// Package skill implements the dialog pipeline of the weather skill: entity
// extraction, session-state gating, the geocoding → weather → air-quality
// fetch sequence, and response composition. Every turn produces a well-formed
// reply; external failures only change the reply text.
package skill

import (
	"context"
	"log/slog"

	"github.com/alisadev/weather-skill/internal/meteo"
	"github.com/alisadev/weather-skill/internal/morph"
	"github.com/alisadev/weather-skill/internal/session"
)

// Geocoder is the interface satisfied by meteo.GeocodingClient.
type Geocoder interface {
	Resolve(ctx context.Context, city string) (meteo.Coordinate, meteo.FallbackReason)
}

// WeatherFetcher is the interface satisfied by meteo.WeatherClient.
type WeatherFetcher interface {
	Fetch(ctx context.Context, coord meteo.Coordinate) (*meteo.CurrentConditions, error)
}

// AirQualityFetcher is the interface satisfied by meteo.AirQualityClient.
type AirQualityFetcher interface {
	Fetch(ctx context.Context, coord meteo.Coordinate) *float64
}

// Orchestrator drives one dialog turn end to end.
type Orchestrator struct {
	geo      Geocoder
	weather  WeatherFetcher
	air      AirQualityFetcher
	decliner morph.Decliner
	sessions session.Store
	log      *slog.Logger
}

// NewOrchestrator constructs an Orchestrator with all collaborators injected.
func NewOrchestrator(
	geo Geocoder,
	weather WeatherFetcher,
	air AirQualityFetcher,
	decliner morph.Decliner,
	sessions session.Store,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		geo:      geo,
		weather:  weather,
		air:      air,
		decliner: decliner,
		sessions: sessions,
		log:      log,
	}
}

// HandleTurn processes one Alice request and always returns a response.
//
// Without a recognized city the turn is resolved from dialog state alone:
// the first miss asks the user for a city, a repeated miss reports the city
// as not understood, and no external service is contacted in either case.
// A weather failure aborts the turn before air quality is fetched; an
// air-quality failure only degrades the final clause.
func (o *Orchestrator) HandleTurn(ctx context.Context, req *Request) Response {
	sessionID := req.Session.SessionID
	city := extractCity(req)

	if city == "" {
		return o.handleMissingCity(ctx, sessionID)
	}

	city = capitalizeFirst(city)
	cityPrepositional := o.decliner.Prepositional(city)

	coord, reason := o.geo.Resolve(ctx, city)
	if reason != meteo.FallbackNone {
		o.log.Warn("geocoding fell back to default location",
			"session_id", sessionID, "city", city, "reason", reason.String())
	}

	cond, err := o.weather.Fetch(ctx, coord)
	if err != nil {
		o.log.Error("weather fetch failed", "session_id", sessionID, "city", city, "err", err)
		return NewResponse(textWeatherUnavailable)
	}

	pm25 := o.air.Fetch(ctx, coord)

	return NewResponse(composeText(cityPrepositional, cond, pm25))
}

// handleMissingCity implements the two-step escalation: ask once, then report
// the city as not understood. Store failures degrade to "not asked yet" so
// the turn still gets an answer.
func (o *Orchestrator) handleMissingCity(ctx context.Context, sessionID string) Response {
	asked, err := o.sessions.CityRequested(ctx, sessionID)
	if err != nil {
		o.log.Error("reading session state failed", "session_id", sessionID, "err", err)
		asked = false
	}

	if asked {
		return NewResponse(textCityNotUnderstood)
	}

	if err := o.sessions.MarkCityRequested(ctx, sessionID); err != nil {
		o.log.Error("marking session state failed", "session_id", sessionID, "err", err)
	}

	return NewResponse(textAskCity)
}

// extractCity returns the city of the first geo entity, or "" when no usable
// entity is present.
func extractCity(req *Request) string {
	for _, e := range req.Request.NLU.Entities {
		if e.Type == EntityTypeGeo {
			return e.Value.City
		}
	}
	return ""
}
