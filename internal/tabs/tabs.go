// Package tabs maps browser tabs to their coordinators.
//
// A tab is identified by a cookie holding a random UUID. The cookie has no
// expiry, so it lives as long as the browser session, the same as the
// session scope it keys.
package tabs

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/partyvote/internal/coordinator"
)

const CookieName = "partyvote_tab"

// Factory builds the coordinator for a tab ID. The registry starts it.
type Factory func(tabID string) *coordinator.Coordinator

// Tab is one browser tab. Its coordinator is only used under the tab's lock.
type Tab struct {
	ID string

	mu      sync.Mutex
	coord   *coordinator.Coordinator
	started bool

	lastSeen time.Time // guarded by Registry.mu
}

// Do runs fn with exclusive use of the tab's coordinator
func (t *Tab) Do(fn func(c *coordinator.Coordinator) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(t.coord)
}

// Registry holds the live tabs
type Registry struct {
	factory Factory
	now     func() time.Time

	mu   sync.Mutex
	tabs map[string]*Tab
}

// New creates a new Registry
func New(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		now:     time.Now,
		tabs:    make(map[string]*Tab),
	}
}

// start restores the tab's session once. It runs under the tab's own lock,
// so a slow voting service only stalls this tab.
func (t *Tab) start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return nil
	}
	if _, err := t.coord.Start(ctx); err != nil {
		return err
	}
	t.started = true
	return nil
}

// Get returns the tab for id, creating and starting it on first use.
// Starting restores whatever the tab's session scope holds.
func (r *Registry) Get(ctx context.Context, id string) (*Tab, error) {
	r.mu.Lock()
	tab, ok := r.tabs[id]
	if ok {
		tab.lastSeen = r.now()
	} else {
		tab = &Tab{ID: id, coord: r.factory(id), lastSeen: r.now()}
		r.tabs[id] = tab
	}
	r.mu.Unlock()

	if err := tab.start(ctx); err != nil {
		r.drop(tab)
		return nil, err
	}
	return tab, nil
}

// FromRequest returns the request's tab, issuing a new tab cookie when the
// request has none or an invalid one.
func (r *Registry) FromRequest(w http.ResponseWriter, req *http.Request) (*Tab, error) {
	id := ""
	if cookie, err := req.Cookie(CookieName); err == nil {
		if parsed, err := uuid.Parse(cookie.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = uuid.NewString()
		SetTabCookie(w, id)
	}
	return r.Get(req.Context(), id)
}

// drop removes tab unless it was already replaced. Its stored session is kept.
func (r *Registry) drop(tab *Tab) {
	r.mu.Lock()
	if r.tabs[tab.ID] == tab {
		delete(r.tabs, tab.ID)
	}
	r.mu.Unlock()
}

// Evict forgets tabs not seen for maxAge and returns how many were dropped
func (r *Registry) Evict(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, tab := range r.tabs {
		if tab.lastSeen.Before(cutoff) {
			delete(r.tabs, id)
			n++
		}
	}
	return n
}

// Len returns the number of live tabs
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tabs)
}

type ctxKey struct{}

// Middleware attaches the request's tab to the request context
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tab, err := r.FromRequest(w, req)
		if err != nil {
			http.Error(w, "Could not load session", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), ctxKey{}, tab)))
	})
}

// FromContext returns the tab attached by Middleware
func FromContext(ctx context.Context) (*Tab, bool) {
	tab, ok := ctx.Value(ctxKey{}).(*Tab)
	return tab, ok
}

// SetTabCookie sets the tab cookie on the response
func SetTabCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
