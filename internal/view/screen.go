package view

import (
	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/tally"
)

// Gate is the top-level screen
type Gate int

const (
	// GateLogin is the voting ID prompt shown to anonymous users
	GateLogin Gate = iota
	// GateApp is the main application
	GateApp
)

func (g Gate) String() string {
	if g == GateApp {
		return "app"
	}
	return "login"
}

// Alert is a message for the user, shown until dismissed
type Alert struct {
	Message   string `json:"message"`
	Celebrate bool   `json:"celebrate,omitempty"`
}

// VoterView is the vote panel's content
type VoterView struct {
	VotingID        string               `json:"votingId"`
	Player          models.PlayerDetails `json:"player"`
	Voted           bool                 `json:"voted"`
	NeedsDetails    bool                 `json:"needsDetails"` // player must enter edition and name first
	DisabledMessage string               `json:"disabledMessage,omitempty"`
}

// CanVote reports whether vote buttons should be enabled
func (v *VoterView) CanVote() bool {
	return v != nil && !v.Voted && !v.NeedsDetails && v.DisabledMessage == ""
}

// PartyCard is a party in the vote list
type PartyCard struct {
	models.Party
	ButtonLabel string `json:"buttonLabel"`
	Disabled    bool   `json:"disabled"`
}

// CandidateView is the candidate dashboard's content
type CandidateView struct {
	models.CandidateSession
	Votes int `json:"votes"`
}

// RegistrationView is the registration panel's content
type RegistrationView struct {
	Enabled         bool   `json:"enabled"`
	DisabledMessage string `json:"disabledMessage,omitempty"`
	MaxLogoKB       int    `json:"maxLogoKB"`
}

// Features are the optional behaviours a front-end may show
type Features struct {
	Search      bool `json:"search"`
	ThemeToggle bool `json:"themeToggle"`
	Animations  bool `json:"animations"`
}

// Screen is everything a front-end needs to draw one tab
type Screen struct {
	Gate      Gate        `json:"-"`
	GateID    string      `json:"gate"`
	Theme     string      `json:"theme"`
	Active    Panel       `json:"-"`
	ActiveID  string      `json:"active"`
	TwoColumn bool        `json:"twoColumn"`
	Panels    []PanelView `json:"panels"`

	Voter          *VoterView       `json:"voter,omitempty"`
	Parties        []PartyCard      `json:"parties"`
	SearchTerm     string           `json:"searchTerm,omitempty"`
	PartiesMessage string           `json:"partiesMessage,omitempty"`
	Tally          tally.Result     `json:"tally"`
	Candidate      *CandidateView   `json:"candidate,omitempty"`
	Registration   RegistrationView `json:"registration"`
	Features       Features         `json:"features"`
	Alerts         []Alert          `json:"alerts,omitempty"`
}

// Visible reports whether p should be listed at all
func (s *Screen) Visible(p Panel) bool {
	for _, pv := range s.Panels {
		if pv.Panel == p {
			return true
		}
	}
	return false
}
