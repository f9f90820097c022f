// Package coordinator turns user actions in one tab into session changes,
// voting service calls and a fresh view.Screen.
package coordinator

import (
	"context"
	"strings"

	"github.com/abrezinsky/partyvote/internal/errors"
	"github.com/abrezinsky/partyvote/internal/logger"
	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/services"
	"github.com/abrezinsky/partyvote/internal/session"
	"github.com/abrezinsky/partyvote/internal/view"
)

// MsgNoParties is shown when the party list is empty
const MsgNoParties = "No parties found matching your search, or no parties registered yet."

// Deps are what a Coordinator needs
type Deps struct {
	Log        logger.Logger
	Store      *session.Store
	Prefs      *session.Preferences
	Catalog    services.CatalogServicer
	Voters     services.VoterServicer
	Candidates services.CandidateServicer
	Features   view.Features
}

// Coordinator owns the state of a single tab.
// It is not safe for concurrent use; callers serialise actions per tab.
//
// User-facing failures become alerts. Methods return an error only when
// the tab's storage failed.
type Coordinator struct {
	log        logger.Logger
	store      *session.Store
	prefs      *session.Preferences
	catalog    services.CatalogServicer
	voters     services.VoterServicer
	candidates services.CandidateServicer
	features   view.Features

	state      session.State
	layout     view.Layout
	searchTerm string
	alerts     []view.Alert
}

// New creates a Coordinator. Call Start before anything else.
func New(d Deps) *Coordinator {
	return &Coordinator{
		log:        d.Log,
		store:      d.Store,
		prefs:      d.Prefs,
		catalog:    d.Catalog,
		voters:     d.Voters,
		candidates: d.Candidates,
		features:   d.Features,
	}
}

// Start restores the tab's session and opens the panel it implies
func (c *Coordinator) Start(ctx context.Context) (session.Outcome, error) {
	st, outcome, err := c.store.Load(ctx)
	if err != nil {
		return outcome, err
	}
	c.state = st
	c.layout.Reset()

	switch outcome {
	case session.InitialVoter:
		c.activate(ctx, view.PanelVote)
	case session.InitialCandidate:
		c.activate(ctx, view.PanelCandidateDashboard)
	}

	c.log.Debug("Tab started", "outcome", outcome, "status", c.state.Status)
	return outcome, nil
}

// State returns a copy of the tab's session state
func (c *Coordinator) State() session.State {
	return c.state
}

// LoginWithVotingID checks id with the voting service and starts a voter session
func (c *Coordinator) LoginWithVotingID(ctx context.Context, id string) error {
	res, err := c.voters.CheckVotingID(ctx, id)
	if err != nil {
		c.fail(err, "Invalid Voting ID.")
		return nil
	}

	if err := c.state.AcceptVotingID(res.VotingID, res.Details, res.Used); err != nil {
		return errors.Internal(err)
	}
	if err := c.store.Save(ctx, c.state); err != nil {
		return err
	}

	c.alert(res.Message, false)
	c.layout.Reset()
	c.activate(ctx, view.PanelVote)
	return nil
}

// OpenPanel activates p, or returns to the neutral layout when p is already open.
// The candidate panels follow the candidate session: asking for one opens
// whichever matches.
func (c *Coordinator) OpenPanel(ctx context.Context, p view.Panel) {
	if !c.state.Authenticated() && p != view.PanelLogin {
		c.fail(services.ErrNotLoggedIn, "")
		return
	}
	c.activate(ctx, p)
}

// Reload repeats the active panel's refresh without changing the layout
func (c *Coordinator) Reload(ctx context.Context) {
	c.refresh(ctx, view.RefreshFor(c.layout.Active()))
}

// SetDetails validates and stores manually entered player details
func (c *Coordinator) SetDetails(ctx context.Context, details models.PlayerDetails) error {
	if !c.state.HasVoter() {
		c.fail(services.ErrNotLoggedIn, "")
		return nil
	}
	d, err := c.voters.ValidateDetails(details)
	if err != nil {
		c.fail(err, "")
		return nil
	}
	c.state.SetPlayer(d)
	return c.store.Save(ctx, c.state)
}

// ClearDetails forgets the entered player details so they can be changed
func (c *Coordinator) ClearDetails(ctx context.Context) error {
	if !c.state.HasVoter() {
		return nil
	}
	c.state.ClearPlayer()
	return c.store.Save(ctx, c.state)
}

// Vote casts the tab's vote
func (c *Coordinator) Vote(ctx context.Context, req services.VoteRequest) error {
	res, err := c.voters.SubmitVote(ctx, &c.state, req)
	if err != nil {
		c.fail(err, "Vote failed. Please try again.")
		return nil
	}
	if err := c.store.Save(ctx, c.state); err != nil {
		return err
	}

	c.alert(res.Message, c.features.Animations)
	c.refresh(ctx, view.RefreshVotes|view.RefreshParties)
	return nil
}

// CandidateLogin logs a party in and opens its dashboard
func (c *Coordinator) CandidateLogin(ctx context.Context, partyName, password string) error {
	cand, err := c.candidates.Login(ctx, partyName, password)
	if err != nil {
		c.fail(err, services.ErrInvalidCredentials.Message)
		c.state.Candidate = nil
		return c.store.Save(ctx, c.state)
	}

	c.state.Candidate = cand
	if err := c.store.Save(ctx, c.state); err != nil {
		return err
	}
	c.alert(services.MsgCandidateLogin, false)
	c.layout.Reset()
	c.activate(ctx, view.PanelCandidateDashboard)
	return nil
}

// CandidateLogout ends the candidate session only
func (c *Coordinator) CandidateLogout(ctx context.Context) error {
	c.state.Candidate = nil
	if err := c.store.Save(ctx, c.state); err != nil {
		return err
	}
	c.alert(services.MsgLoggedOut, false)

	switch {
	case !c.state.Authenticated():
		c.layout.Reset()
	case c.layout.Active() == view.PanelCandidateDashboard:
		c.layout.Reset()
		c.layout.Activate(view.PanelCandidateLogin)
	}
	return nil
}

// Register registers a party, logs it in with the same credentials and
// refreshes votes and parties. It reports whether the service accepted the
// registration, even when the follow-up login fails.
func (c *Coordinator) Register(ctx context.Context, reg services.Registration) (bool, error) {
	if err := c.candidates.Register(ctx, reg); err != nil {
		c.fail(err, "Failed to register candidate.")
		return false, nil
	}
	c.alert(services.MsgCandidateRegistered, false)

	if err := c.CandidateLogin(ctx, strings.TrimSpace(reg.PartyName), reg.Password); err != nil {
		return true, err
	}
	c.refresh(ctx, view.RefreshVotes|view.RefreshParties)
	return true, nil
}

// Logout clears every session key and returns to the login screen
func (c *Coordinator) Logout(ctx context.Context) error {
	c.state.Logout()
	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.layout.Reset()
	c.searchTerm = ""
	c.alert(services.MsgLoggedOut, false)
	return nil
}

// ToggleTheme switches between light and dark
func (c *Coordinator) ToggleTheme(ctx context.Context) (session.Theme, error) {
	if !c.features.ThemeToggle {
		return c.prefs.Theme(ctx)
	}
	return c.prefs.ToggleTheme(ctx)
}

// Search filters the party list by term
func (c *Coordinator) Search(term string) {
	if !c.features.Search {
		return
	}
	c.searchTerm = strings.TrimSpace(term)
}

// TakeAlerts returns and forgets the pending alerts
func (c *Coordinator) TakeAlerts() []view.Alert {
	out := c.alerts
	c.alerts = nil
	return out
}

// Screen describes everything to draw for the tab
func (c *Coordinator) Screen(ctx context.Context) (view.Screen, error) {
	theme, err := c.prefs.Theme(ctx)
	if err != nil {
		return view.Screen{}, err
	}

	gate := view.GateLogin
	panels := []view.Panel{view.PanelLogin}
	if c.state.Authenticated() {
		gate = view.GateApp
		candidatePanel := view.PanelCandidateLogin
		if c.state.HasCandidate() {
			candidatePanel = view.PanelCandidateDashboard
		}
		panels = []view.Panel{view.PanelVote, view.PanelTally, candidatePanel, view.PanelRegister}
	}

	reg := c.candidates.Policy()
	scr := view.Screen{
		Gate:       gate,
		GateID:     gate.String(),
		Theme:      string(theme),
		Active:     c.layout.Active(),
		ActiveID:   c.layout.Active().String(),
		TwoColumn:  c.layout.TwoColumn(),
		Panels:     c.layout.Snapshot(panels),
		SearchTerm: c.searchTerm,
		Tally:      c.catalog.Tally(),
		Registration: view.RegistrationView{
			Enabled:   reg.Enabled,
			MaxLogoKB: int(reg.MaxLogoBytes / 1024),
		},
		Features: c.features,
	}
	if !reg.Enabled {
		scr.Registration.DisabledMessage = reg.DisabledMessage
	}

	if c.state.HasVoter() {
		scr.Voter = c.voterView()
	}
	if c.state.HasCandidate() {
		scr.Candidate = &view.CandidateView{
			CandidateSession: *c.state.Candidate,
			Votes:            c.candidates.VoteCount(c.state.Candidate),
		}
	}

	parties := c.catalog.Parties()
	if c.features.Search {
		parties = c.catalog.Search(c.searchTerm)
	}
	label, disabled := c.voters.ButtonLabel(c.state)
	scr.Parties = make([]view.PartyCard, 0, len(parties))
	for _, p := range parties {
		scr.Parties = append(scr.Parties, view.PartyCard{Party: p, ButtonLabel: label, Disabled: disabled})
	}
	if len(scr.Parties) == 0 {
		scr.PartiesMessage = MsgNoParties
	}
	return scr, nil
}

func (c *Coordinator) voterView() *view.VoterView {
	policy := c.voters.Policy()
	v := &view.VoterView{
		VotingID: c.state.VotingID,
		Voted:    c.state.Status == session.StatusVoted,
	}
	if c.state.Player != nil {
		v.Player = *c.state.Player
	}
	v.NeedsDetails = policy.RequirePlayerDetails && !v.Player.HasPlayer()
	if !policy.VotingEnabled {
		v.DisabledMessage = policy.VotingDisabledMessage
	}
	return v
}

// activate applies the layout change for p and performs its one refresh
func (c *Coordinator) activate(ctx context.Context, p view.Panel) {
	p = c.candidatePanel(p)
	c.refresh(ctx, c.layout.Activate(p))
}

func (c *Coordinator) candidatePanel(p view.Panel) view.Panel {
	switch {
	case p == view.PanelCandidateLogin && c.state.HasCandidate():
		return view.PanelCandidateDashboard
	case p == view.PanelCandidateDashboard && !c.state.HasCandidate():
		return view.PanelCandidateLogin
	default:
		return p
	}
}

func (c *Coordinator) refresh(ctx context.Context, r view.Refresh) {
	if r.Has(view.RefreshVotes) {
		if _, err := c.catalog.RefreshVotes(ctx); err != nil {
			c.fail(err, "")
		}
	}
	if r.Has(view.RefreshParties) || r.Has(view.RefreshCandidate) {
		if _, err := c.catalog.RefreshParties(ctx); err != nil {
			c.fail(err, "")
			return
		}
	}
	if r.Has(view.RefreshCandidate) {
		c.syncCandidate(ctx)
	}
}

// syncCandidate replaces the stored candidate record with the party list's
// current one. A party missing from the list keeps the stored record.
func (c *Coordinator) syncCandidate(ctx context.Context) {
	if !c.state.HasCandidate() {
		return
	}
	fresh, ok := c.candidates.Lookup(c.state.Candidate.PartyName)
	if !ok || *fresh == *c.state.Candidate {
		return
	}
	c.state.Candidate = fresh
	if err := c.store.Save(ctx, c.state); err != nil {
		c.log.Warn("Failed to store refreshed candidate", "error", err)
	}
}

func (c *Coordinator) alert(msg string, celebrate bool) {
	c.alerts = append(c.alerts, view.Alert{Message: msg, Celebrate: celebrate})
}

func (c *Coordinator) fail(err error, fallback string) {
	msg := errors.UserMessage(err, fallback)
	if msg == "" {
		msg = err.Error()
	}
	c.log.Debug("Action failed", "error", err, "kind", errors.KindOf(err))
	c.alert(msg, false)
}
