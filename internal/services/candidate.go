package services

import (
	"context"
	"strings"

	"github.com/abrezinsky/partyvote/internal/credential"
	"github.com/abrezinsky/partyvote/internal/errors"
	"github.com/abrezinsky/partyvote/internal/logger"
	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
)

// Candidate messages
const (
	MsgCandidateLogin      = "Login successful! Welcome to your dashboard."
	MsgCandidateRegistered = "Candidate registered successfully!"
	MsgLoggedOut           = "Logged out successfully."
)

// RegistrationPolicy holds the feature switches that govern registration
type RegistrationPolicy struct {
	Enabled         bool
	DisabledMessage string
	MaxLogoBytes    int64
}

// Registration is a filled-in registration form.
// Logo holds the raw image file, or nothing for the placeholder.
type Registration struct {
	CandidateName string
	PartyName     string
	Password      string
	PartySymbol   string
	Logo          []byte
}

// CandidateService handles candidate registration and login
type CandidateService struct {
	log     logger.Logger
	client  votingapi.Client
	catalog *Catalog
	encoder credential.Encoder
	policy  RegistrationPolicy
}

// NewCandidateService creates a new CandidateService
func NewCandidateService(log logger.Logger, client votingapi.Client, catalog *Catalog, encoder credential.Encoder, policy RegistrationPolicy) *CandidateService {
	return &CandidateService{
		log:     log,
		client:  client,
		catalog: catalog,
		encoder: encoder,
		policy:  policy,
	}
}

// Policy returns the registration feature switches
func (s *CandidateService) Policy() RegistrationPolicy {
	return s.policy
}

// Register registers a new party.
// The duplicate check runs against the cached party list; the voting service
// checks again.
func (s *CandidateService) Register(ctx context.Context, reg Registration) error {
	if !s.policy.Enabled {
		return &DisabledError{Feature: "registration", Message: s.policy.DisabledMessage}
	}

	reg.CandidateName = strings.TrimSpace(reg.CandidateName)
	reg.PartyName = strings.TrimSpace(reg.PartyName)
	reg.PartySymbol = strings.TrimSpace(reg.PartySymbol)
	if reg.CandidateName == "" || reg.PartyName == "" || reg.Password == "" {
		return ErrMissingRegistration
	}
	if s.catalog.HasParty(reg.PartyName) {
		return ErrDuplicateParty
	}

	logo, err := EncodeLogo(reg.Logo, s.policy.MaxLogoBytes)
	if err != nil {
		return err
	}
	password, err := s.encoder.Encode(reg.Password)
	if err != nil {
		return errors.Internal(err)
	}

	_, err = s.client.RegisterCandidate(ctx, votingapi.RegisterCandidateRequest{
		CandidateName: reg.CandidateName,
		PartyName:     reg.PartyName,
		Password:      password,
		PartySymbol:   reg.PartySymbol,
		PartyLogo:     logo,
	})
	if err != nil {
		s.log.Error("Candidate registration failed", "party", reg.PartyName, "error", err, "kind", errors.KindOf(err))
		return err
	}

	s.log.Info("Candidate registered", "party", reg.PartyName, "scheme", s.encoder.Scheme())
	return nil
}

// Login refreshes the party list and checks partyName and password against it.
// The party name must match exactly.
func (s *CandidateService) Login(ctx context.Context, partyName, password string) (*models.CandidateSession, error) {
	candidates, err := s.catalog.RefreshParties(ctx)
	if err != nil {
		return nil, err
	}

	for _, c := range candidates {
		if c.PartyName != partyName {
			continue
		}
		if !credential.Verify(c.Password, password) {
			continue
		}
		s.log.Info("Candidate logged in", "party", c.PartyName)
		return toCandidateSession(c), nil
	}

	s.log.Warn("Candidate login failed", "party", partyName)
	return nil, ErrInvalidCredentials
}

// Lookup finds partyName in the cached party list and returns its current record
func (s *CandidateService) Lookup(partyName string) (*models.CandidateSession, bool) {
	for _, c := range s.catalog.Candidates() {
		if c.PartyName == partyName {
			return toCandidateSession(c), true
		}
	}
	return nil, false
}

func toCandidateSession(c votingapi.Candidate) *models.CandidateSession {
	return &models.CandidateSession{
		CandidateName: c.CandidateName,
		PartyName:     c.PartyName,
		PartySymbol:   c.PartySymbol,
		PartyLogo:     c.PartyLogo,
	}
}

// VoteCount returns the cached vote count for the candidate's party
func (s *CandidateService) VoteCount(c *models.CandidateSession) int {
	if c == nil {
		return 0
	}
	return s.catalog.PartyVoteCount(c.PartyName)
}
