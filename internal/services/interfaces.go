package services

import (
	"context"

	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/session"
	"github.com/abrezinsky/partyvote/internal/tally"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
)

// CatalogServicer defines the interface for the shared party and vote cache
type CatalogServicer interface {
	RefreshParties(ctx context.Context) ([]votingapi.Candidate, error)
	RefreshVotes(ctx context.Context) ([]votingapi.Vote, error)
	RefreshAll(ctx context.Context) error
	Parties() []models.Party
	Search(term string) []models.Party
	HasParty(name string) bool
	Tally() tally.Result
	PartyVoteCount(name string) int
}

// VoterServicer defines the interface for voter operations
type VoterServicer interface {
	Policy() VoterPolicy
	CheckVotingID(ctx context.Context, votingID string) (*LoginResult, error)
	ValidateDetails(details models.PlayerDetails) (models.PlayerDetails, error)
	CanVote(st session.State) error
	SubmitVote(ctx context.Context, st *session.State, req VoteRequest) (*VoteResult, error)
	ButtonLabel(st session.State) (string, bool)
}

// CandidateServicer defines the interface for candidate operations
type CandidateServicer interface {
	Policy() RegistrationPolicy
	Register(ctx context.Context, reg Registration) error
	Login(ctx context.Context, partyName, password string) (*models.CandidateSession, error)
	Lookup(partyName string) (*models.CandidateSession, bool)
	VoteCount(c *models.CandidateSession) int
}

// Ensure implementations satisfy interfaces
var (
	_ CatalogServicer   = (*Catalog)(nil)
	_ VoterServicer     = (*VoterService)(nil)
	_ CandidateServicer = (*CandidateService)(nil)
)
