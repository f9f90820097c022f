// Package votingapi provides a client for the remote party voting service.
package votingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/abrezinsky/partyvote/internal/errors"
	"github.com/abrezinsky/partyvote/internal/logger"
)

// Endpoint paths relative to the base URL
const (
	PathCandidates        = "/candidates"
	PathVotes             = "/votes"
	PathCheckVotingID     = "/check-voting-id"
	PathSubmitVote        = "/submit-vote"
	PathRegisterCandidate = "/register-candidate"
)

// NetworkErrorMessage is shown whenever a request never completed
const NetworkErrorMessage = "Network error: Could not connect to the server. Please check your connection or try again later."

// Fallback messages for success=false bodies without a message
const (
	FallbackCheckMessage    = "Invalid Voting ID."
	FallbackVoteMessage     = "Vote failed. Please try again."
	FallbackRegisterMessage = "Failed to register candidate."
)

// FlexString is a string type that can be unmarshaled from either a string or a number.
// Stored votes carry voting IDs that some deployments emit as numbers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: cannot unmarshal %s", string(data))
}

// String returns the string value
func (f FlexString) String() string {
	return string(f)
}

// Candidate is a registered party as returned by GET /candidates
type Candidate struct {
	CandidateName string `json:"candidateName"`
	PartyName     string `json:"partyName"`
	PartySymbol   string `json:"partyChinn"`
	PartyLogo     string `json:"partyLogo"`
	Password      string `json:"password"`
}

// Vote is a cast vote as returned by GET /votes
type Vote struct {
	Party       string     `json:"party"`
	VotingID    FlexString `json:"votingId"`
	RealName    string     `json:"realName,omitempty"`
	Contact     string     `json:"discordInsta,omitempty"`
	GameEdition string     `json:"edition,omitempty"`
	PlayerName  string     `json:"minecraftName,omitempty"`
}

// CheckVotingIDRequest is the body of POST /check-voting-id
type CheckVotingIDRequest struct {
	VotingID string `json:"votingId"`
}

// CheckVotingIDResponse is the response of POST /check-voting-id
type CheckVotingIDResponse struct {
	Success     bool       `json:"success"`
	Valid       bool       `json:"valid"`
	Used        bool       `json:"used"`
	Message     string     `json:"message"`
	PlayerName  FlexString `json:"playerName,omitempty"`
	GameEdition string     `json:"gameEdition,omitempty"`
}

// SubmitVoteRequest is the body of POST /submit-vote
type SubmitVoteRequest struct {
	VotingID    string `json:"votingId"`
	Party       string `json:"party"`
	RealName    string `json:"realName"`
	Contact     string `json:"discordInsta"`
	GameEdition string `json:"edition,omitempty"`
	PlayerName  string `json:"minecraftName,omitempty"`
}

// RegisterCandidateRequest is the body of POST /register-candidate.
// Password must already be encoded.
type RegisterCandidateRequest struct {
	CandidateName string `json:"candidateName"`
	PartyName     string `json:"partyName"`
	Password      string `json:"password"`
	PartySymbol   string `json:"partyChinn"`
	PartyLogo     string `json:"partyLogo"`
}

// StatusResponse is the generic {success, message} response
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Client defines the interface for voting service operations
type Client interface {
	// FetchCandidates retrieves every registered party
	FetchCandidates(ctx context.Context) ([]Candidate, error)
	// FetchVotes retrieves every cast vote
	FetchVotes(ctx context.Context) ([]Vote, error)
	// CheckVotingID asks the service whether a voting ID may log in
	CheckVotingID(ctx context.Context, votingID string) (*CheckVotingIDResponse, error)
	// SubmitVote casts a vote
	SubmitVote(ctx context.Context, req SubmitVoteRequest) (*StatusResponse, error)
	// RegisterCandidate registers a new party
	RegisterCandidate(ctx context.Context, req RegisterCandidateRequest) (*StatusResponse, error)
	// BaseURL returns the configured base URL
	BaseURL() string
	// SetBaseURL updates the base URL
	SetBaseURL(url string)
}

// HTTPClient is a real HTTP client for the voting service
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewHTTPClient creates a new voting service client.
// A zero timeout means requests run until the server answers.
func NewHTTPClient(baseURL string, timeout time.Duration, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// BaseURL returns the configured base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// SetBaseURL updates the base URL
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

func (c *HTTPClient) endpoint(path string) string {
	return strings.TrimRight(c.baseURL, "/") + path
}

// doGet fetches path and decodes the JSON body into response.
// Non-2xx responses become "Error loading data: <status text>".
func (c *HTTPClient) doGet(ctx context.Context, path string, response interface{}) error {
	apiURL := c.endpoint(path)
	c.log.Debug("Voting API request", "method", http.MethodGet, "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return errors.Internal(fmt.Errorf("failed to create request: %w", err))
	}

	status, body, err := c.do(req, path)
	if err != nil {
		return err
	}

	if status < 200 || status > 299 {
		c.log.Error("API error fetching", "endpoint", path, "status", status, "body", string(body))
		return errors.Application(status, fmt.Sprintf("Error loading data: %s", http.StatusText(status)))
	}

	if err := json.Unmarshal(body, response); err != nil {
		c.log.Error("Failed to parse response", "endpoint", path, "error", err)
		return errors.Wrap(err, errors.ErrApplication, "Error loading data: unexpected response from server")
	}
	return nil
}

// doPost sends payload as JSON and decodes the JSON body into response.
// Non-2xx responses carry the server's message, or "Error: <body>".
func (c *HTTPClient) doPost(ctx context.Context, path string, payload, response interface{}) error {
	apiURL := c.endpoint(path)

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Internal(fmt.Errorf("failed to encode request: %w", err))
	}

	c.log.Debug("Voting API request", "method", http.MethodPost, "url", apiURL, "bytes", len(data))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(data))
	if err != nil {
		return errors.Internal(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	status, body, err := c.do(req, path)
	if err != nil {
		return err
	}

	if status < 200 || status > 299 {
		c.log.Error("API error posting", "endpoint", path, "status", status, "body", string(body))
		return errors.Application(status, postErrorMessage(status, body))
	}

	if err := json.Unmarshal(body, response); err != nil {
		c.log.Error("Failed to parse response", "endpoint", path, "error", err)
		return errors.Wrap(err, errors.ErrApplication, "Error: unexpected response from server")
	}
	return nil
}

// do executes req and returns status and body. Transport failures map to ErrNetwork.
func (c *HTTPClient) do(req *http.Request, path string) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("Network error", "endpoint", path, "error", err)
		return 0, nil, errors.Network(NetworkErrorMessage, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error("Network error reading body", "endpoint", path, "error", err)
		return 0, nil, errors.Network(NetworkErrorMessage, err)
	}

	c.log.Debug("Voting API response", "endpoint", path, "status", resp.StatusCode, "bytes", len(body))
	return resp.StatusCode, body, nil
}

// postErrorMessage prefers a JSON message field, then the raw body, then the status text
func postErrorMessage(status int, body []byte) string {
	var parsed StatusResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(status)
	}
	return "Error: " + text
}

// FetchCandidates retrieves every registered party
func (c *HTTPClient) FetchCandidates(ctx context.Context) ([]Candidate, error) {
	var candidates []Candidate
	if err := c.doGet(ctx, PathCandidates, &candidates); err != nil {
		return nil, err
	}
	if candidates == nil {
		candidates = []Candidate{}
	}
	return candidates, nil
}

// FetchVotes retrieves every cast vote
func (c *HTTPClient) FetchVotes(ctx context.Context) ([]Vote, error) {
	var votes []Vote
	if err := c.doGet(ctx, PathVotes, &votes); err != nil {
		return nil, err
	}
	if votes == nil {
		votes = []Vote{}
	}
	return votes, nil
}

// CheckVotingID asks the service whether votingID may log in.
// A success=false body is returned as an ErrApplication error; valid=false
// with success=true is returned as a normal response for the caller to judge.
func (c *HTTPClient) CheckVotingID(ctx context.Context, votingID string) (*CheckVotingIDResponse, error) {
	var response CheckVotingIDResponse
	if err := c.doPost(ctx, PathCheckVotingID, CheckVotingIDRequest{VotingID: votingID}, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return &response, errors.Application(http.StatusOK, messageOr(response.Message, FallbackCheckMessage))
	}
	return &response, nil
}

// SubmitVote casts a vote; success=false becomes an ErrApplication error
func (c *HTTPClient) SubmitVote(ctx context.Context, req SubmitVoteRequest) (*StatusResponse, error) {
	var response StatusResponse
	if err := c.doPost(ctx, PathSubmitVote, req, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return &response, errors.Application(http.StatusOK, messageOr(response.Message, FallbackVoteMessage))
	}
	return &response, nil
}

// RegisterCandidate registers a new party; success=false becomes an ErrApplication error
func (c *HTTPClient) RegisterCandidate(ctx context.Context, req RegisterCandidateRequest) (*StatusResponse, error) {
	var response StatusResponse
	if err := c.doPost(ctx, PathRegisterCandidate, req, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return &response, errors.Application(http.StatusOK, messageOr(response.Message, FallbackRegisterMessage))
	}
	return &response, nil
}

func messageOr(msg, fallback string) string {
	if msg == "" {
		return fallback
	}
	return msg
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
