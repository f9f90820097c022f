// Package view models which panels are open and what a front-end should draw.
package view

import "fmt"

// Panel is a top-level section of the application
type Panel int

const (
	PanelNone Panel = iota
	PanelLogin
	PanelVote
	PanelTally
	PanelCandidateLogin
	PanelCandidateDashboard
	PanelRegister
)

// Panels lists every real panel in display order
var Panels = []Panel{
	PanelLogin,
	PanelVote,
	PanelTally,
	PanelCandidateLogin,
	PanelCandidateDashboard,
	PanelRegister,
}

var panelNames = map[Panel]string{
	PanelNone:               "none",
	PanelLogin:              "login",
	PanelVote:               "vote",
	PanelTally:              "tally",
	PanelCandidateLogin:     "candidate-login",
	PanelCandidateDashboard: "candidate-dashboard",
	PanelRegister:           "register",
}

func (p Panel) String() string {
	if name, ok := panelNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Panel(%d)", int(p))
}

// Title is the heading shown for the panel
func (p Panel) Title() string {
	switch p {
	case PanelLogin:
		return "Voting ID Login"
	case PanelVote:
		return "Vote"
	case PanelTally:
		return "Live Vote Count"
	case PanelCandidateLogin:
		return "Party Login"
	case PanelCandidateDashboard:
		return "Candidate Dashboard"
	case PanelRegister:
		return "Register Candidate"
	default:
		return ""
	}
}

// ParsePanel returns the panel named s
func ParsePanel(s string) (Panel, error) {
	for _, p := range Panels {
		if panelNames[p] == s {
			return p, nil
		}
	}
	return PanelNone, fmt.Errorf("unknown panel %q", s)
}

// Refresh is a set of data a panel needs reloaded when it opens
type Refresh uint8

const (
	RefreshVotes Refresh = 1 << iota
	RefreshParties
	RefreshCandidate

	RefreshNone Refresh = 0
)

// Has reports whether r includes f
func (r Refresh) Has(f Refresh) bool {
	return r&f != 0
}

// RefreshFor returns the single refresh p triggers on activation
func RefreshFor(p Panel) Refresh {
	switch p {
	case PanelVote, PanelTally:
		return RefreshVotes | RefreshParties
	case PanelCandidateDashboard:
		return RefreshVotes | RefreshCandidate
	default:
		return RefreshNone
	}
}

// PanelState is how a panel is drawn
type PanelState int

const (
	// Collapsed is the neutral layout: header only, no sidebar
	Collapsed PanelState = iota
	// Expanded is the one active panel
	Expanded
	// Sidebar is a collapsed panel beside the active one
	Sidebar
)

func (s PanelState) String() string {
	switch s {
	case Expanded:
		return "expanded"
	case Sidebar:
		return "sidebar"
	default:
		return "collapsed"
	}
}

// Layout tracks the single expanded panel
type Layout struct {
	active Panel
}

// Activate expands p and collapses every other panel into the sidebar.
// Activating the already active panel returns to the neutral layout.
// The returned Refresh is what the caller must reload; it is RefreshNone
// when the layout went neutral or p is not a panel.
func (l *Layout) Activate(p Panel) Refresh {
	if _, ok := panelNames[p]; !ok || p == PanelNone {
		return RefreshNone
	}
	if l.active == p {
		l.active = PanelNone
		return RefreshNone
	}
	l.active = p
	return RefreshFor(p)
}

// Reset returns to the neutral layout
func (l *Layout) Reset() {
	l.active = PanelNone
}

// Active returns the expanded panel, or PanelNone
func (l *Layout) Active() Panel {
	return l.active
}

// TwoColumn reports whether a panel is expanded beside the sidebar
func (l *Layout) TwoColumn() bool {
	return l.active != PanelNone
}

// State returns how p is drawn
func (l *Layout) State(p Panel) PanelState {
	switch {
	case l.active == PanelNone:
		return Collapsed
	case l.active == p:
		return Expanded
	default:
		return Sidebar
	}
}

// PanelView is one panel's presentation state
type PanelView struct {
	Panel   Panel      `json:"-"`
	Name    string     `json:"name"`
	Title   string     `json:"title"`
	State   PanelState `json:"-"`
	StateID string     `json:"state"`
}

// Snapshot returns the state of each of panels in order
func (l *Layout) Snapshot(panels []Panel) []PanelView {
	out := make([]PanelView, 0, len(panels))
	for _, p := range panels {
		st := l.State(p)
		out = append(out, PanelView{
			Panel:   p,
			Name:    p.String(),
			Title:   p.Title(),
			State:   st,
			StateID: st.String(),
		})
	}
	return out
}
