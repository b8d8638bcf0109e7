package panel

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	cmerrors "github.com/matzehuels/cardmap/pkg/errors"
)

// Registry maps view types to factories and tracks the views it opened.
// It is created at startup by the host and closed on shutdown.
// A Registry is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	open      []View
	logger    *log.Logger
}

// NewRegistry creates an empty registry. A nil logger uses log.Default().
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		factories: make(map[string]Factory),
		logger:    logger,
	}
}

// NewDefaultRegistry creates a registry with the navigation view registered.
func NewDefaultRegistry(logger *log.Logger) *Registry {
	r := NewRegistry(logger)
	// Cannot fail on a fresh registry.
	_ = r.Register(NavigationViewType, NewNavigationView)
	return r
}

// Register adds a factory for viewType.
func (r *Registry) Register(viewType string, f Factory) error {
	if viewType == "" {
		return cmerrors.New(cmerrors.ErrCodeInvalidViewType, "view type cannot be empty")
	}
	if f == nil {
		return cmerrors.New(cmerrors.ErrCodeInvalidInput, "factory for %q is nil", viewType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[viewType]; ok {
		return cmerrors.New(cmerrors.ErrCodeAlreadyRegistered, "view type %q already registered", viewType)
	}
	r.factories[viewType] = f
	r.logger.Debug("registered view", "type", viewType)
	return nil
}

// Unregister removes viewType and closes every open view of that type.
func (r *Registry) Unregister(ctx context.Context, viewType string) error {
	r.mu.Lock()
	delete(r.factories, viewType)
	var detached []View
	r.open = slices.DeleteFunc(r.open, func(v View) bool {
		if v.Type() == viewType {
			detached = append(detached, v)
			return true
		}
		return false
	})
	r.mu.Unlock()

	return closeAll(ctx, detached)
}

// Types returns the registered view types in sorted order.
func (r *Registry) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Open builds a view of viewType for h and calls its OnOpen.
// If OnOpen fails the view is not tracked and the error is returned.
func (r *Registry) Open(ctx context.Context, viewType string, h Host) (View, error) {
	r.mu.Lock()
	f, ok := r.factories[viewType]
	r.mu.Unlock()
	if !ok {
		return nil, cmerrors.New(cmerrors.ErrCodeViewNotFound, "no view registered for type %q", viewType)
	}

	v := f(h)
	if err := v.OnOpen(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.open = append(r.open, v)
	r.mu.Unlock()
	return v, nil
}

// Release closes v and stops tracking it. Views not opened by this
// registry are closed all the same.
func (r *Registry) Release(ctx context.Context, v View) error {
	r.mu.Lock()
	r.open = slices.DeleteFunc(r.open, func(o View) bool { return o == v })
	r.mu.Unlock()
	return v.OnClose(ctx)
}

// OpenCount returns the number of views currently open.
func (r *Registry) OpenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

// Close closes every open view. The registry stays usable afterwards.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	views := r.open
	r.open = nil
	r.mu.Unlock()
	return closeAll(ctx, views)
}

func closeAll(ctx context.Context, views []View) error {
	var errs []error
	for _, v := range views {
		if err := v.OnClose(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
