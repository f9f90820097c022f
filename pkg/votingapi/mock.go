package votingapi

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"

	"github.com/abrezinsky/partyvote/internal/errors"
)

// MockVoter is a voting ID known to the mock service
type MockVoter struct {
	PlayerName  string
	GameEdition string
	Used        bool
}

// MockClient is an in-memory voting service for testing.
// It enforces the same rules the real service does: one vote per ID and
// case-insensitive unique party names.
type MockClient struct {
	mu          sync.Mutex
	candidates  []Candidate
	votes       []Vote
	voters      map[string]*MockVoter
	baseURL     string
	fetchErr    error
	votesErr    error
	checkErr    error
	submitErr   error
	registerErr error
	calls       map[string]int
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithCandidates sets the candidates to return
func WithCandidates(candidates []Candidate) MockOption {
	return func(m *MockClient) {
		m.candidates = candidates
	}
}

// WithVotes sets the votes to return
func WithVotes(votes []Vote) MockOption {
	return func(m *MockClient) {
		m.votes = votes
	}
}

// WithVoter registers a voting ID
func WithVoter(votingID string, voter MockVoter) MockOption {
	return func(m *MockClient) {
		v := voter
		m.voters[votingID] = &v
	}
}

// WithFetchError sets an error to return from FetchCandidates
func WithFetchError(err error) MockOption {
	return func(m *MockClient) {
		m.fetchErr = err
	}
}

// WithVotesError sets an error to return from FetchVotes
func WithVotesError(err error) MockOption {
	return func(m *MockClient) {
		m.votesErr = err
	}
}

// WithCheckError sets an error to return from CheckVotingID
func WithCheckError(err error) MockOption {
	return func(m *MockClient) {
		m.checkErr = err
	}
}

// WithSubmitError sets an error to return from SubmitVote
func WithSubmitError(err error) MockOption {
	return func(m *MockClient) {
		m.submitErr = err
	}
}

// WithRegisterError sets an error to return from RegisterCandidate
func WithRegisterError(err error) MockOption {
	return func(m *MockClient) {
		m.registerErr = err
	}
}

// WithBaseURL sets the base URL
func WithBaseURL(url string) MockOption {
	return func(m *MockClient) {
		m.baseURL = url
	}
}

// NewMockClient creates a new mock voting service client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL:    "http://mock-voting.local/api",
		candidates: DefaultMockCandidates(),
		votes:      []Vote{},
		voters:     DefaultMockVoters(),
		calls:      make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// BaseURL returns the configured base URL
func (m *MockClient) BaseURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.baseURL
}

// SetBaseURL updates the base URL
func (m *MockClient) SetBaseURL(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseURL = url
}

// FetchCandidates returns a copy of the registered candidates or the configured error
func (m *MockClient) FetchCandidates(ctx context.Context) ([]Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[PathCandidates]++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]Candidate, len(m.candidates))
	copy(out, m.candidates)
	return out, nil
}

// FetchVotes returns a copy of the recorded votes or the configured error
func (m *MockClient) FetchVotes(ctx context.Context) ([]Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[PathVotes]++
	if m.votesErr != nil {
		return nil, m.votesErr
	}
	out := make([]Vote, len(m.votes))
	copy(out, m.votes)
	return out, nil
}

// CheckVotingID validates against the registered voters
func (m *MockClient) CheckVotingID(ctx context.Context, votingID string) (*CheckVotingIDResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[PathCheckVotingID]++
	if m.checkErr != nil {
		return nil, m.checkErr
	}

	voter, ok := m.voters[votingID]
	if !ok {
		resp := &CheckVotingIDResponse{Success: false, Message: "Invalid Voting ID."}
		return resp, errors.Application(http.StatusOK, resp.Message)
	}
	return &CheckVotingIDResponse{
		Success:     true,
		Valid:       true,
		Used:        voter.Used,
		PlayerName:  FlexString(voter.PlayerName),
		GameEdition: voter.GameEdition,
	}, nil
}

// SubmitVote records a vote unless the ID is unknown or already used
func (m *MockClient) SubmitVote(ctx context.Context, req SubmitVoteRequest) (*StatusResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[PathSubmitVote]++
	if m.submitErr != nil {
		return nil, m.submitErr
	}

	voter, ok := m.voters[req.VotingID]
	if !ok {
		return m.fail("Invalid Voting ID.")
	}
	if voter.Used {
		return m.fail("This Voting ID has already been used.")
	}
	if !m.hasParty(req.Party) {
		return m.fail("Unknown party.")
	}

	voter.Used = true
	m.votes = append(m.votes, Vote{
		Party:       req.Party,
		VotingID:    FlexString(req.VotingID),
		RealName:    req.RealName,
		Contact:     req.Contact,
		GameEdition: req.GameEdition,
		PlayerName:  req.PlayerName,
	})
	return &StatusResponse{Success: true, Message: "Vote recorded."}, nil
}

// RegisterCandidate appends a candidate unless the party name is taken
func (m *MockClient) RegisterCandidate(ctx context.Context, req RegisterCandidateRequest) (*StatusResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[PathRegisterCandidate]++
	if m.registerErr != nil {
		return nil, m.registerErr
	}

	for _, c := range m.candidates {
		if strings.EqualFold(c.PartyName, req.PartyName) {
			return m.fail("A party with this name already exists.")
		}
	}

	m.candidates = append(m.candidates, Candidate{
		CandidateName: req.CandidateName,
		PartyName:     req.PartyName,
		PartySymbol:   req.PartySymbol,
		PartyLogo:     req.PartyLogo,
		Password:      req.Password,
	})
	return &StatusResponse{Success: true, Message: "Candidate registered."}, nil
}

func (m *MockClient) fail(msg string) (*StatusResponse, error) {
	return &StatusResponse{Success: false, Message: msg}, errors.Application(http.StatusOK, msg)
}

func (m *MockClient) hasParty(name string) bool {
	for _, c := range m.candidates {
		if c.PartyName == name {
			return true
		}
	}
	return false
}

// Calls returns how many times path was requested (for testing)
func (m *MockClient) Calls(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[path]
}

// TotalCalls returns the number of requests across all endpoints (for testing)
func (m *MockClient) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

// GetVotes returns the recorded votes (for testing)
func (m *MockClient) GetVotes() []Vote {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Vote, len(m.votes))
	copy(out, m.votes)
	return out
}

// EncodeLegacyPassword encodes a password the way stored mock candidates are encoded
func EncodeLegacyPassword(password string) string {
	return base64.StdEncoding.EncodeToString([]byte(password))
}

// DefaultMockCandidates returns a set of sample parties for testing.
// Passwords are the party name in lower case followed by "123".
func DefaultMockCandidates() []Candidate {
	return []Candidate{
		{
			CandidateName: "Aria Stone",
			PartyName:     "Sovereign",
			PartySymbol:   "🦁",
			Password:      EncodeLegacyPassword("sovereign123"),
		},
		{
			CandidateName: "Ben Okafor",
			PartyName:     "Builders Union",
			PartySymbol:   "⛏",
			Password:      EncodeLegacyPassword("builders union123"),
		},
		{
			CandidateName: "Chen Wu",
			PartyName:     "Redstone Alliance",
			PartySymbol:   "🔴",
			Password:      EncodeLegacyPassword("redstone alliance123"),
		},
	}
}

// DefaultMockVoters returns sample voting IDs: V-1001..V-1003 unused, V-2001 used
func DefaultMockVoters() map[string]*MockVoter {
	return map[string]*MockVoter{
		"V-1001": {PlayerName: "Steve", GameEdition: "Java"},
		"V-1002": {PlayerName: "Alex", GameEdition: "Bedrock"},
		"V-1003": {PlayerName: "Notch", GameEdition: "Java"},
		"V-2001": {PlayerName: "Herobrine", GameEdition: "Java", Used: true},
	}
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
