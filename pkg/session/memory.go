package session

import (
	"context"
	"errors"
	"sync"
	"time"

	cmerrors "github.com/matzehuels/cardmap/pkg/errors"
	"github.com/matzehuels/cardmap/pkg/panel"
)

// ReleaseFunc closes the view of an ended session.
type ReleaseFunc func(ctx context.Context, v panel.View) error

// MemoryStore keeps sessions in process memory. Open views cannot be
// serialized, so sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	release  ReleaseFunc
	now      func() time.Time
}

// NewMemoryStore creates an empty store. release is called for the view of
// every session that is deleted or expires; nil calls the view's OnClose.
func NewMemoryStore(release ReleaseFunc) *MemoryStore {
	if release == nil {
		release = func(ctx context.Context, v panel.View) error { return v.OnClose(ctx) }
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		release:  release,
		now:      time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, cmerrors.New(cmerrors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	if sess.isExpiredAt(s.now()) {
		_ = s.Delete(ctx, id)
		return nil, cmerrors.New(cmerrors.ErrCodeSessionExpired, "session %q expired", id)
	}
	return sess, nil
}

func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return cmerrors.New(cmerrors.ErrCodeInvalidInput, "session must have an id")
	}

	s.mu.Lock()
	prev := s.sessions[sess.ID]
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	if prev != nil && prev.View != nil && prev.View != sess.View {
		return s.release(ctx, prev.View)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok || sess.View == nil {
		return nil
	}
	return s.release(ctx, sess.View)
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	now := s.now()

	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if sess.isExpiredAt(now) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, sess := range expired {
		if sess.View != nil {
			if err := s.release(ctx, sess.View); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *MemoryStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Cleanup(ctx)
		}
	}
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close deletes every session.
func (s *MemoryStore) Close(ctx context.Context) error {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	var errs []error
	for _, sess := range all {
		if sess.View != nil {
			if err := s.release(ctx, sess.View); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

var _ Store = (*MemoryStore)(nil)
