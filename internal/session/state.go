package session

import (
	"strings"

	"github.com/abrezinsky/partyvote/internal/models"
)

// State is everything a tab knows about who is using it
type State struct {
	VotingID  string
	Player    *models.PlayerDetails // non-nil whenever VotingID is set
	Candidate *models.CandidateSession
	Status    VoteStatus
}

// HasVoter reports whether a voting ID is logged in
func (s *State) HasVoter() bool {
	return s.VotingID != ""
}

// HasCandidate reports whether a candidate is logged in
func (s *State) HasCandidate() bool {
	return s.Candidate != nil
}

// Authenticated reports whether the main application should be shown
func (s *State) Authenticated() bool {
	return s.HasVoter() || s.HasCandidate()
}

// AcceptVotingID starts a voter session for id.
// An existing voter session is ended first; a logged-in candidate is kept.
func (s *State) AcceptVotingID(id string, details models.PlayerDetails, used bool) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidTransition
	}
	if s.HasVoter() {
		s.clearVoter()
	}

	ev := EventIDAccepted
	if used {
		ev = EventIDAcceptedUsed
	}
	next, err := Transition(s.Status, ev)
	if err != nil {
		return err
	}

	d := details
	s.VotingID = id
	s.Player = &d
	s.Status = next
	return nil
}

// MarkVoted records a successful vote
func (s *State) MarkVoted() error {
	next, err := Transition(s.Status, EventVoteAccepted)
	if err != nil {
		return err
	}
	s.Status = next
	return nil
}

// SetPlayer replaces the voter's details. It requires a voter session.
func (s *State) SetPlayer(details models.PlayerDetails) {
	if !s.HasVoter() {
		return
	}
	d := details
	s.Player = &d
}

// ClearPlayer forgets the in-game details while keeping the session valid
func (s *State) ClearPlayer() {
	if !s.HasVoter() {
		return
	}
	s.Player = &models.PlayerDetails{}
}

// Logout forgets everything
func (s *State) Logout() {
	s.clearVoter()
	s.Candidate = nil
}

func (s *State) clearVoter() {
	s.VotingID = ""
	s.Player = nil
	s.Status, _ = Transition(s.Status, EventLogout)
}
