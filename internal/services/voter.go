package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/abrezinsky/partyvote/internal/errors"
	"github.com/abrezinsky/partyvote/internal/logger"
	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/session"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
)

// Login messages
const (
	MsgLoginSuccess = "Login successful! Welcome."
	MsgLoginUsed    = "Login successful, but this Voting ID has already been used. You cannot vote again."
)

// Game editions accepted in player details
const (
	EditionJava    = "java"
	EditionBedrock = "bedrock"
)

// VoterPolicy holds the feature switches that govern voting
type VoterPolicy struct {
	VotingEnabled         bool
	VotingDisabledMessage string
	RequirePlayerDetails  bool
}

// LoginResult is an accepted voting ID
type LoginResult struct {
	VotingID string
	Details  models.PlayerDetails
	Used     bool
	Message  string
}

// VoteRequest is a vote for Party with optional voter details.
// Empty RealName or Contact fall back to the session's player details.
type VoteRequest struct {
	Party    string
	RealName string
	Contact  string
}

// VoteResult is an accepted vote
type VoteResult struct {
	VotingID string
	Party    string
	Message  string
}

// VoterService handles voting-ID login and vote submission
type VoterService struct {
	log     logger.Logger
	client  votingapi.Client
	catalog *Catalog
	policy  VoterPolicy
}

// NewVoterService creates a new VoterService
func NewVoterService(log logger.Logger, client votingapi.Client, catalog *Catalog, policy VoterPolicy) *VoterService {
	return &VoterService{
		log:     log,
		client:  client,
		catalog: catalog,
		policy:  policy,
	}
}

// Policy returns the voting feature switches
func (s *VoterService) Policy() VoterPolicy {
	return s.policy
}

// CheckVotingID asks the voting service whether votingID may log in.
// The returned result is not applied to any session; the caller does that.
func (s *VoterService) CheckVotingID(ctx context.Context, votingID string) (*LoginResult, error) {
	votingID = strings.TrimSpace(votingID)
	if votingID == "" {
		return nil, ErrEmptyVotingID
	}

	resp, err := s.client.CheckVotingID(ctx, votingID)
	if err != nil {
		s.log.Warn("Voting ID rejected", "error", err, "kind", errors.KindOf(err))
		return nil, err
	}
	if !resp.Valid {
		msg := resp.Message
		if msg == "" {
			msg = votingapi.FallbackCheckMessage
		}
		s.log.Warn("Voting ID not valid", "message", msg)
		return nil, errors.Application(http.StatusOK, msg)
	}

	result := &LoginResult{
		VotingID: votingID,
		Details: models.PlayerDetails{
			GameEdition: resp.GameEdition,
			PlayerName:  resp.PlayerName.String(),
		},
		Used:    resp.Used,
		Message: MsgLoginSuccess,
	}
	if resp.Used {
		result.Message = MsgLoginUsed
	}

	s.log.Info("Voting ID accepted", "used", resp.Used)
	return result, nil
}

// ValidateDetails checks manually entered player details and normalizes the edition
func (s *VoterService) ValidateDetails(details models.PlayerDetails) (models.PlayerDetails, error) {
	switch strings.ToLower(strings.TrimSpace(details.GameEdition)) {
	case EditionJava:
		details.GameEdition = EditionJava
	case EditionBedrock:
		details.GameEdition = EditionBedrock
	default:
		return models.PlayerDetails{}, ErrInvalidEdition
	}

	details.PlayerName = strings.TrimSpace(details.PlayerName)
	if details.PlayerName == "" {
		return models.PlayerDetails{}, ErrMissingPlayerName
	}
	details.RealName = strings.TrimSpace(details.RealName)
	details.Contact = strings.TrimSpace(details.Contact)
	return details, nil
}

// CanVote returns why st may not vote, or nil.
// It never touches the network.
func (s *VoterService) CanVote(st session.State) error {
	if !s.policy.VotingEnabled {
		return &DisabledError{Feature: "voting", Message: s.policy.VotingDisabledMessage}
	}
	if !st.HasVoter() {
		return ErrNotLoggedIn
	}
	if st.Player == nil {
		return ErrMissingDetails
	}
	if s.policy.RequirePlayerDetails && !st.Player.HasPlayer() {
		return ErrMissingDetails
	}
	if st.Status == session.StatusVoted {
		return ErrAlreadyVoted
	}
	return nil
}

// SubmitVote casts a vote for req.Party and marks st as voted on success.
// On failure st is left unchanged. Nothing is retried.
func (s *VoterService) SubmitVote(ctx context.Context, st *session.State, req VoteRequest) (*VoteResult, error) {
	if err := s.CanVote(*st); err != nil {
		return nil, err
	}
	party := strings.TrimSpace(req.Party)
	if party == "" {
		return nil, ErrNoPartySelected
	}

	payload := votingapi.SubmitVoteRequest{
		VotingID: st.VotingID,
		Party:    party,
		RealName: firstNonEmpty(req.RealName, st.Player.RealName),
		Contact:  firstNonEmpty(req.Contact, st.Player.Contact),
	}
	if st.Player.HasPlayer() {
		payload.GameEdition = st.Player.GameEdition
		payload.PlayerName = st.Player.PlayerName
	}

	if _, err := s.client.SubmitVote(ctx, payload); err != nil {
		s.log.Error("Vote failed", "party", party, "error", err, "kind", errors.KindOf(err))
		return nil, err
	}

	if err := st.MarkVoted(); err != nil {
		return nil, errors.Internal(fmt.Errorf("vote accepted but session not updated: %w", err))
	}

	s.log.Info("Vote submitted", "party", party)
	return &VoteResult{
		VotingID: st.VotingID,
		Party:    party,
		Message:  fmt.Sprintf("You have successfully voted for %s with Voting ID: %s!", party, st.VotingID),
	}, nil
}

// ButtonLabel returns the label and disabled state of a party's vote button for st
func (s *VoterService) ButtonLabel(st session.State) (string, bool) {
	switch {
	case st.Status == session.StatusVoted:
		return "Already Voted", true
	case !s.policy.VotingEnabled:
		return "Voting Disabled", true
	default:
		return "Vote for this Party", false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
