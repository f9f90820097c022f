// Package session persists a tab's voting identity and reconciles it on load.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abrezinsky/partyvote/internal/logger"
	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/storage"
)

// Session storage keys. All values are JSON.
const (
	KeyVotingID       = "currentVotingId"
	KeyPlayerDetails  = "currentVotingPlayerDetails"
	KeyCandidate      = "loggedInCandidate"
	KeyVotingDisabled = "isVotingDisabledForUsedId"
)

// Outcome says which view a reconciled session starts in
type Outcome int

const (
	InitialAnonymous Outcome = iota
	InitialVoter
	InitialCandidate
	// InitialDiscarded means the stored state was inconsistent and has been cleared
	InitialDiscarded
)

func (o Outcome) String() string {
	switch o {
	case InitialVoter:
		return "voter"
	case InitialCandidate:
		return "candidate"
	case InitialDiscarded:
		return "discarded"
	default:
		return "anonymous"
	}
}

// Store loads and saves State in a storage scope
type Store struct {
	scope storage.Scope
	log   logger.Logger
}

// NewStore creates a new session store
func NewStore(scope storage.Scope, log logger.Logger) *Store {
	return &Store{scope: scope, log: log}
}

type rawItem struct {
	value string
	ok    bool
}

// Load reads the stored keys and rebuilds State from them.
// State is rebuilt entirely or not at all: any inconsistency clears every
// session key and yields an anonymous State with InitialDiscarded.
// Only storage failures are returned as errors.
func (s *Store) Load(ctx context.Context) (State, Outcome, error) {
	items := make(map[string]rawItem, 4)
	for _, key := range []string{KeyVotingID, KeyPlayerDetails, KeyCandidate, KeyVotingDisabled} {
		value, ok, err := s.scope.GetItem(ctx, key)
		if err != nil {
			return State{}, InitialAnonymous, fmt.Errorf("reading %s: %w", key, err)
		}
		items[key] = rawItem{value: value, ok: ok}
	}

	state, outcome, reason := reconcile(items)
	if outcome != InitialDiscarded {
		return state, outcome, nil
	}

	s.log.Warn("Discarding inconsistent session", "reason", reason)
	if err := s.scope.Clear(ctx); err != nil {
		return State{}, InitialDiscarded, fmt.Errorf("clearing session: %w", err)
	}
	return State{}, InitialDiscarded, nil
}

// reconcile decides the outcome for a set of stored items.
// reason is set when the outcome is InitialDiscarded.
func reconcile(items map[string]rawItem) (state State, outcome Outcome, reason string) {
	id, details, cand, flag := items[KeyVotingID], items[KeyPlayerDetails], items[KeyCandidate], items[KeyVotingDisabled]

	if !id.ok && !details.ok && !cand.ok && !flag.ok {
		return State{}, InitialAnonymous, ""
	}

	var candidate *models.CandidateSession
	if cand.ok {
		c, err := decodeCandidate(cand.value)
		if err != nil {
			return State{}, InitialDiscarded, err.Error()
		}
		candidate = c
	}

	if !id.ok {
		if details.ok || flag.ok {
			return State{}, InitialDiscarded, "voter data without a voting ID"
		}
		return State{Candidate: candidate}, InitialCandidate, ""
	}

	var votingID string
	if err := json.Unmarshal([]byte(id.value), &votingID); err != nil || strings.TrimSpace(votingID) == "" {
		return State{}, InitialDiscarded, "voting ID is not a non-empty JSON string"
	}

	if !details.ok {
		return State{}, InitialDiscarded, "voting ID without player details"
	}
	var player *models.PlayerDetails
	if err := json.Unmarshal([]byte(details.value), &player); err != nil || player == nil {
		return State{}, InitialDiscarded, "player details are not a JSON object"
	}

	status := StatusCanVote
	if flag.ok {
		var used bool
		if err := json.Unmarshal([]byte(flag.value), &used); err != nil {
			return State{}, InitialDiscarded, "used flag is not a boolean"
		}
		if used {
			status = StatusVoted
		}
	}

	return State{
		VotingID:  votingID,
		Player:    player,
		Candidate: candidate,
		Status:    status,
	}, InitialVoter, ""
}

func decodeCandidate(value string) (*models.CandidateSession, error) {
	var c *models.CandidateSession
	if err := json.Unmarshal([]byte(value), &c); err != nil || c == nil {
		return nil, fmt.Errorf("candidate record is not a JSON object")
	}
	if strings.TrimSpace(c.PartyName) == "" {
		return nil, fmt.Errorf("candidate record has no party name")
	}
	return c, nil
}

// Save writes state so that a later Load returns it.
// Player details are written before the voting ID and the voting ID is
// removed first, so an interrupted Save is always caught by Load.
func (s *Store) Save(ctx context.Context, state State) error {
	if state.HasVoter() {
		player := state.Player
		if player == nil {
			player = &models.PlayerDetails{}
		}
		if err := s.setJSON(ctx, KeyPlayerDetails, player); err != nil {
			return err
		}
		if err := s.setJSON(ctx, KeyVotingID, state.VotingID); err != nil {
			return err
		}
		if state.Status == StatusVoted {
			if err := s.setJSON(ctx, KeyVotingDisabled, true); err != nil {
				return err
			}
		} else if err := s.remove(ctx, KeyVotingDisabled); err != nil {
			return err
		}
	} else {
		for _, key := range []string{KeyVotingID, KeyPlayerDetails, KeyVotingDisabled} {
			if err := s.remove(ctx, key); err != nil {
				return err
			}
		}
	}

	if state.Candidate != nil {
		return s.setJSON(ctx, KeyCandidate, state.Candidate)
	}
	return s.remove(ctx, KeyCandidate)
}

// Clear removes every session key
func (s *Store) Clear(ctx context.Context) error {
	if err := s.scope.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

func (s *Store) setJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.scope.SetItem(ctx, key, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, key string) error {
	if err := s.scope.RemoveItem(ctx, key); err != nil {
		return fmt.Errorf("removing %s: %w", key, err)
	}
	return nil
}
