package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/abrezinsky/partyvote/internal/coordinator"
	"github.com/abrezinsky/partyvote/internal/services"
)

// handleCandidateLogin logs a party in
func (h *Handlers) handleCandidateLogin(w http.ResponseWriter, r *http.Request) {
	party := r.FormValue("party_name")
	password := r.FormValue("password")
	h.act(w, r, func(c *coordinator.Coordinator) error {
		return c.CandidateLogin(r.Context(), party, password)
	})
}

// handleCandidateLogout ends only the candidate session
func (h *Handlers) handleCandidateLogout(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, func(c *coordinator.Coordinator) error {
		return c.CandidateLogout(r.Context())
	})
}

// handleRegister registers a party from the multipart form, logo optional
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respondError(w, BadRequest("Invalid registration form"))
		return
	}

	reg := services.Registration{
		CandidateName: r.FormValue("candidate_name"),
		PartyName:     r.FormValue("party_name"),
		Password:      r.FormValue("password"),
		PartySymbol:   r.FormValue("party_symbol"),
	}
	if file, _, err := r.FormFile("party_logo"); err == nil {
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			respondError(w, BadRequest("Invalid logo upload"))
			return
		}
		reg.Logo = data
	}

	registered := false
	h.act(w, r, func(c *coordinator.Coordinator) error {
		var err error
		registered, err = c.Register(r.Context(), reg)
		return err
	})
	if registered {
		h.pushTally()
	}
}
