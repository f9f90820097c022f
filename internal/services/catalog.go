package services

import (
	"context"
	"strings"
	"sync"

	"github.com/abrezinsky/partyvote/internal/logger"
	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/tally"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
)

// Catalog caches the latest candidates and votes fetched from the voting service.
// Refreshes from different tabs are not ordered against each other; the last
// one to finish wins.
type Catalog struct {
	log    logger.Logger
	client votingapi.Client

	mu         sync.RWMutex
	candidates []votingapi.Candidate
	votes      []votingapi.Vote
}

// NewCatalog creates a new Catalog
func NewCatalog(log logger.Logger, client votingapi.Client) *Catalog {
	return &Catalog{
		log:        log,
		client:     client,
		candidates: []votingapi.Candidate{},
		votes:      []votingapi.Vote{},
	}
}

// RefreshParties reloads candidates. On failure the cache keeps its last value.
func (c *Catalog) RefreshParties(ctx context.Context) ([]votingapi.Candidate, error) {
	candidates, err := c.client.FetchCandidates(ctx)
	if err != nil {
		c.log.Error("Failed to refresh parties", "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.candidates = candidates
	c.mu.Unlock()

	c.log.Debug("Parties refreshed", "count", len(candidates))
	return copyCandidates(candidates), nil
}

// RefreshVotes reloads votes. On failure the cache keeps its last value.
func (c *Catalog) RefreshVotes(ctx context.Context) ([]votingapi.Vote, error) {
	votes, err := c.client.FetchVotes(ctx)
	if err != nil {
		c.log.Error("Failed to refresh votes", "error", err)
		return nil, err
	}

	c.mu.Lock()
	c.votes = votes
	c.mu.Unlock()

	c.log.Debug("Votes refreshed", "count", len(votes))
	return copyVotes(votes), nil
}

// RefreshAll reloads votes then candidates, stopping at the first failure
func (c *Catalog) RefreshAll(ctx context.Context) error {
	if _, err := c.RefreshVotes(ctx); err != nil {
		return err
	}
	_, err := c.RefreshParties(ctx)
	return err
}

// Candidates returns a copy of the cached candidates
func (c *Catalog) Candidates() []votingapi.Candidate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyCandidates(c.candidates)
}

// Votes returns a copy of the cached votes
func (c *Catalog) Votes() []votingapi.Vote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyVotes(c.votes)
}

// Parties returns the cached candidates as display records, without passwords
func (c *Catalog) Parties() []models.Party {
	c.mu.RLock()
	defer c.mu.RUnlock()
	parties := make([]models.Party, 0, len(c.candidates))
	for _, cand := range c.candidates {
		parties = append(parties, toParty(cand))
	}
	return parties
}

// Search returns parties whose name, candidate or symbol contains term,
// ignoring case. An empty term returns every party.
func (c *Catalog) Search(term string) []models.Party {
	parties := c.Parties()
	term = strings.ToLower(term)
	if term == "" {
		return parties
	}

	matches := make([]models.Party, 0, len(parties))
	for _, p := range parties {
		if strings.Contains(strings.ToLower(p.PartyName), term) ||
			strings.Contains(strings.ToLower(p.CandidateName), term) ||
			strings.Contains(strings.ToLower(p.PartySymbol), term) {
			matches = append(matches, p)
		}
	}
	return matches
}

// HasParty reports whether a cached party has name, ignoring case
func (c *Catalog) HasParty(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cand := range c.candidates {
		if strings.EqualFold(cand.PartyName, name) {
			return true
		}
	}
	return false
}

// Tally ranks the cached candidates by the cached votes
func (c *Catalog) Tally() tally.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return tally.Compute(c.votes, c.candidates)
}

// PartyVoteCount returns the cached vote count for name
func (c *Catalog) PartyVoteCount(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return tally.PartyVoteCount(c.votes, name)
}

func toParty(c votingapi.Candidate) models.Party {
	return models.Party{
		PartyName:     c.PartyName,
		CandidateName: c.CandidateName,
		PartySymbol:   c.PartySymbol,
		PartyLogo:     c.PartyLogo,
	}
}

func copyCandidates(in []votingapi.Candidate) []votingapi.Candidate {
	out := make([]votingapi.Candidate, len(in))
	copy(out, in)
	return out
}

func copyVotes(in []votingapi.Vote) []votingapi.Vote {
	out := make([]votingapi.Vote, len(in))
	copy(out, in)
	return out
}
