package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/partyvote/internal/coordinator"
	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/services"
	"github.com/abrezinsky/partyvote/internal/view"
)

// handleLogin starts a voter session from the login form
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("voting_id")
	h.act(w, r, func(c *coordinator.Coordinator) error {
		return c.LoginWithVotingID(r.Context(), id)
	})
}

// handleLogout clears the whole tab session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *coordinator.Coordinator) error {
		return c.Logout(r.Context())
	})
}

// handleOpenPanel toggles a panel
func (h *Handlers) handleOpenPanel(w http.ResponseWriter, r *http.Request) {
	p, err := view.ParsePanel(chi.URLParam(r, "panel"))
	if err != nil {
		respondError(w, BadRequest("Invalid panel"))
		return
	}
	h.act(w, r, func(c *coordinator.Coordinator) error {
		c.OpenPanel(r.Context(), p)
		return nil
	})
}

// handleSearch filters the party list
func (h *Handlers) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.FormValue("q")
	h.act(w, r, func(c *coordinator.Coordinator) error {
		c.Search(term)
		return nil
	})
}

// handleTheme toggles light and dark
func (h *Handlers) handleTheme(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *coordinator.Coordinator) error {
		_, err := c.ToggleTheme(r.Context())
		return err
	})
}

// handleSetDetails stores the player details form
func (h *Handlers) handleSetDetails(w http.ResponseWriter, r *http.Request) {
	details := models.PlayerDetails{
		GameEdition: r.FormValue("game_edition"),
		PlayerName:  r.FormValue("player_name"),
		RealName:    r.FormValue("real_name"),
		Contact:     r.FormValue("contact"),
	}
	h.act(w, r, func(c *coordinator.Coordinator) error {
		return c.SetDetails(r.Context(), details)
	})
}

// handleClearDetails lets the player change their details
func (h *Handlers) handleClearDetails(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *coordinator.Coordinator) error {
		return c.ClearDetails(r.Context())
	})
}

// handleVote casts the tab's vote and pushes the new tally to every tab
func (h *Handlers) handleVote(w http.ResponseWriter, r *http.Request) {
	req := services.VoteRequest{
		Party:    strings.TrimSpace(r.FormValue("party")),
		RealName: r.FormValue("real_name"),
		Contact:  r.FormValue("contact"),
	}
	voted := false
	h.act(w, r, func(c *coordinator.Coordinator) error {
		before := c.State().Status
		if err := c.Vote(r.Context(), req); err != nil {
			return err
		}
		voted = c.State().Status != before
		return nil
	})
	if voted {
		h.pushTally()
	}
}

func (h *Handlers) pushTally() {
	if h.Hub == nil {
		return
	}
	// The hub blocks until its loop takes the message
	go h.Hub.BroadcastTally()
}
