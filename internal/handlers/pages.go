package handlers

import (
	"net/http"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/partyvote/internal/coordinator"
	"github.com/abrezinsky/partyvote/internal/services"
	"github.com/abrezinsky/partyvote/internal/tabs"
	"github.com/abrezinsky/partyvote/internal/view"
)

// PageData is what index.html renders
type PageData struct {
	view.Screen
	PublicURL string
	Editions  []string
}

// handleIndex renders the tab's screen and consumes its alerts
func (h *Handlers) handleIndex(w http.ResponseWriter, r *http.Request) {
	scr, err := h.screen(r)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.templates.Index.Execute(w, PageData{
		Screen:    scr,
		PublicURL: h.PublicURL,
		Editions:  []string{services.EditionJava, services.EditionBedrock},
	})
}

// handleScreen returns the tab's screen as JSON and consumes its alerts
func (h *Handlers) handleScreen(w http.ResponseWriter, r *http.Request) {
	scr, err := h.screen(r)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, scr)
}

// handleTally returns the cached tally shared by every tab
func (h *Handlers) handleTally(w http.ResponseWriter, r *http.Request) {
	respondOK(w, h.Catalog.Tally())
}

// handleQRCode serves a QR code pointing other devices at this UI
func (h *Handlers) handleQRCode(w http.ResponseWriter, r *http.Request) {
	if h.PublicURL == "" {
		respondError(w, NotFound("No public URL configured"))
		return
	}
	png, err := qrcode.Encode(h.PublicURL, qrcode.Medium, 256)
	if err != nil {
		respondError(w, InternalError(err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(png)
}

func (h *Handlers) screen(r *http.Request) (view.Screen, error) {
	var scr view.Screen
	err := h.withTab(r, func(c *coordinator.Coordinator) error {
		var err error
		scr, err = c.Screen(r.Context())
		scr.Alerts = c.TakeAlerts()
		return err
	})
	return scr, err
}

func (h *Handlers) withTab(r *http.Request, fn func(c *coordinator.Coordinator) error) error {
	tab, ok := tabs.FromContext(r.Context())
	if !ok {
		return InternalError(errNoTab)
	}
	return tab.Do(fn)
}

// act runs an action on the request's tab. Browsers are redirected home so
// a reload never repeats the action; JSON callers get the new screen.
func (h *Handlers) act(w http.ResponseWriter, r *http.Request, fn func(c *coordinator.Coordinator) error) {
	if err := h.withTab(r, fn); err != nil {
		respondError(w, err)
		return
	}
	if wantsJSON(r) {
		h.handleScreen(w, r)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
