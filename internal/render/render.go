// Package render draws a view.Screen as coloured terminal text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/view"
)

// ANSI escape codes
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	red     = "\033[31m"
	green   = "\033[32m"
	yellow  = "\033[33m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	cyan    = "\033[36m"
)

// Palette is the set of colours for one theme
type Palette struct {
	Reset   string
	Bold    string
	Dim     string
	Heading string
	Accent  string
	Good    string
	Warn    string
	Bad     string
}

// NewPalette returns the palette for theme. With color false every code is empty.
func NewPalette(theme string, color bool) Palette {
	if !color {
		return Palette{}
	}
	if theme == "light" {
		return Palette{
			Reset:   reset,
			Bold:    bold,
			Dim:     dim,
			Heading: blue,
			Accent:  magenta,
			Good:    green,
			Warn:    red,
			Bad:     red,
		}
	}
	return Palette{
		Reset:   reset,
		Bold:    bold,
		Dim:     dim,
		Heading: cyan,
		Accent:  yellow,
		Good:    green,
		Warn:    yellow,
		Bad:     red,
	}
}

// Renderer writes screens to a terminal
type Renderer struct {
	w     io.Writer
	color bool
	p     Palette
}

// New creates a Renderer writing to w
func New(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color, p: NewPalette("dark", color)}
}

// Screen draws the whole screen, using its theme
func (r *Renderer) Screen(scr view.Screen) {
	r.p = NewPalette(scr.Theme, r.color)

	if scr.Gate == view.GateLogin {
		r.heading(view.PanelLogin.Title())
		r.printf("  Enter your Voting ID with %slogin <id>%s.\n", r.p.Accent, r.p.Reset)
		r.printf("\n")
		return
	}

	r.sidebar(scr)
	switch scr.Active {
	case view.PanelVote:
		r.votePanel(scr)
	case view.PanelTally:
		r.tallyPanel(scr)
	case view.PanelCandidateLogin:
		r.heading(view.PanelCandidateLogin.Title())
		r.printf("  Log in with %sparty login <party name>%s.\n", r.p.Accent, r.p.Reset)
	case view.PanelCandidateDashboard:
		r.dashboard(scr.Candidate)
	case view.PanelRegister:
		r.registerPanel(scr.Registration)
	}
	r.printf("\n")
}

// Alerts draws pending alerts. Celebrations get a banner.
func (r *Renderer) Alerts(alerts []view.Alert) {
	for _, a := range alerts {
		if a.Celebrate {
			r.celebrate(a.Message)
			continue
		}
		r.printf("%s%s» %s%s\n", r.p.Bold, r.p.Accent, a.Message, r.p.Reset)
	}
}

func (r *Renderer) sidebar(scr view.Screen) {
	names := make([]string, 0, len(scr.Panels))
	for _, pv := range scr.Panels {
		switch pv.State {
		case view.Expanded:
			names = append(names, fmt.Sprintf("%s%s[%s]%s", r.p.Bold, r.p.Heading, pv.Name, r.p.Reset))
		default:
			names = append(names, fmt.Sprintf("%s%s%s", r.p.Dim, pv.Name, r.p.Reset))
		}
	}
	r.printf("%s\n", strings.Join(names, "  "))
}

func (r *Renderer) heading(title string) {
	r.printf("\n%s%s%s%s\n", r.p.Bold, r.p.Heading, title, r.p.Reset)
	r.printf("%s%s%s\n", r.p.Heading, strings.Repeat("─", len([]rune(title))), r.p.Reset)
}

func (r *Renderer) votePanel(scr view.Screen) {
	r.heading(view.PanelVote.Title())

	v := scr.Voter
	if v == nil {
		r.printf("  Please log in with your Voting ID first.\n")
		return
	}

	r.printf("  Voting ID: %s%s%s\n", r.p.Bold, v.VotingID, r.p.Reset)
	if v.Player.HasPlayer() {
		edition := v.Player.GameEdition
		if edition == "" {
			edition = "?"
		}
		r.printf("  Player: %s (%s)\n", v.Player.PlayerName, edition)
	}
	switch {
	case v.Voted:
		r.printf("  %sThis Voting ID has already been used. You cannot cast another vote.%s\n", r.p.Bad, r.p.Reset)
		r.printf("  %sYou can still view live vote counts and candidate information.%s\n", r.p.Dim, r.p.Reset)
		return
	case v.DisabledMessage != "":
		r.printf("  %s%s%s\n", r.p.Warn, v.DisabledMessage, r.p.Reset)
	case v.NeedsDetails:
		r.printf("  %sEnter your details first: details <java|bedrock> <player name>%s\n", r.p.Warn, r.p.Reset)
		return
	}

	if scr.SearchTerm != "" {
		r.printf("  Search: %q\n", scr.SearchTerm)
	}
	if scr.PartiesMessage != "" {
		r.printf("  %s\n", scr.PartiesMessage)
		return
	}
	for i, card := range scr.Parties {
		r.partyCard(i+1, card)
	}
}

func (r *Renderer) partyCard(n int, card view.PartyCard) {
	symbol := card.PartySymbol
	if card.HasLogo() {
		symbol = "[logo]"
	}
	button := fmt.Sprintf("%s%s%s", r.p.Good, card.ButtonLabel, r.p.Reset)
	if card.Disabled {
		button = fmt.Sprintf("%s%s%s", r.p.Dim, card.ButtonLabel, r.p.Reset)
	}
	r.printf("  %2d. %s%s%s %s\n", n, r.p.Bold, card.PartyName, r.p.Reset, symbol)
	r.printf("      Leader: %s   %s\n", card.CandidateName, button)
}

func (r *Renderer) tallyPanel(scr view.Screen) {
	r.heading(view.PanelTally.Title())
	res := scr.Tally
	r.printf("  Total votes: %s%s%s\n", r.p.Bold, humanize.Comma(int64(res.Total)), r.p.Reset)
	if res.Total == 0 {
		r.printf("  No votes cast yet.\n")
	}
	for _, e := range res.Entries {
		mark := e.Symbol
		if e.Logo != "" {
			mark = "[logo]"
		}
		r.printf("  %s#%d%s %-24s %-6s %8s  %6s%%\n",
			r.p.Accent, e.Rank, r.p.Reset, e.Party, mark,
			humanize.Comma(int64(e.Count)), e.PercentLabel(res.Total))
	}
}

func (r *Renderer) dashboard(c *view.CandidateView) {
	r.heading(view.PanelCandidateDashboard.Title())
	if c == nil {
		return
	}
	r.printf("  Welcome, %s%s%s!\n", r.p.Bold, c.CandidateName, r.p.Reset)
	r.printf("  Party: %s\n", c.PartyName)
	r.printf("  Symbol: %s\n", c.PartySymbol)
	if c.PartyLogo != "" && c.PartyLogo != models.PlaceholderLogo {
		r.printf("  Logo: uploaded\n")
	}
	r.printf("  Your party currently has %s%s%s votes.\n", r.p.Good, humanize.Comma(int64(c.Votes)), r.p.Reset)
}

func (r *Renderer) registerPanel(reg view.RegistrationView) {
	r.heading(view.PanelRegister.Title())
	if !reg.Enabled {
		r.printf("  %s%s%s\n", r.p.Warn, reg.DisabledMessage, r.p.Reset)
		return
	}
	r.printf("  Use %sregister%s and answer the prompts. Logo files must be under %s.\n",
		r.p.Accent, r.p.Reset, humanize.IBytes(uint64(reg.MaxLogoKB)*1024))
}

func (r *Renderer) celebrate(msg string) {
	width := len([]rune(msg)) + 4
	border := strings.Repeat("═", width)
	r.printf("\n  %s╔%s╗%s\n", r.p.Accent, border, r.p.Reset)
	r.printf("  %s║%s  %s%s%s  %s║%s\n", r.p.Accent, r.p.Reset, r.p.Good, msg, r.p.Reset, r.p.Accent, r.p.Reset)
	r.printf("  %s╚%s╝%s\n\n", r.p.Accent, border, r.p.Reset)
}

func (r *Renderer) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format, args...)
}
