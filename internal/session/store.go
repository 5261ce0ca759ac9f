// Package session tracks per-dialog state: whether the skill has already
// asked the user to name a city. State is keyed by the opaque Alice session
// identifier and expires after a configurable TTL so long-running processes
// do not accumulate dead sessions.
package session

import "context"

// Store is the dialog-state interface consumed by the orchestrator.
type Store interface {
	// CityRequested reports whether the session has already been asked for a city.
	CityRequested(ctx context.Context, sessionID string) (bool, error)
	// MarkCityRequested records that the session has been asked for a city.
	MarkCityRequested(ctx context.Context, sessionID string) error
}
