package ports

import (
	"context"

	"github.com/aretw0/turtle/pkg/domain"
)

// SessionStore defines the interface for persisting turtle sessions.
// A record holds everything needed to restore an engine and continue its
// command sequence.
type SessionStore interface {
	// Save persists the record under rec.ID, replacing any previous version.
	Save(ctx context.Context, rec *domain.Record) error

	// Load retrieves the record for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Record, error)

	// Delete removes the record for a given session ID. Deleting a missing
	// session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
