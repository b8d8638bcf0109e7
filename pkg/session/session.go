// Package session tracks panels opened through the HTTP API.
//
// A [Session] owns one open [panel.View] together with the layout it
// produced. Sessions expire after a TTL; expiring or deleting a session
// closes its view, which mirrors a user closing the panel in the host.
//
// # Usage
//
//	store := session.NewMemoryStore(registry.Release)
//	go store.RunCleanup(ctx, time.Minute)
//
//	sess := session.New(view, l, session.DefaultTTL)
//	_ = store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, ...) // SESSION_NOT_FOUND or SESSION_EXPIRED
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cardmap/pkg/layout"
	"github.com/matzehuels/cardmap/pkg/panel"
)

// DefaultTTL is the default session duration.
const DefaultTTL = 30 * time.Minute

// Session is one open panel.
type Session struct {
	ID        string        `json:"id"`
	Layout    layout.Layout `json:"layout"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`

	// View is the open panel view. It is closed when the session ends.
	View panel.View `json:"-"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.isExpiredAt(time.Now())
}

func (s *Session) isExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. Missing sessions return a
	// SESSION_NOT_FOUND error and expired ones SESSION_EXPIRED.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing any session with the same ID.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session and closes its view.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and closes their views.
	Cleanup(ctx context.Context) error
}

// NewID creates a random session ID.
func NewID() string {
	return uuid.NewString()
}

// New creates a session for an open view.
func New(v panel.View, l layout.Layout, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now()
	return &Session{
		ID:        NewID(),
		Layout:    l,
		View:      v,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}
