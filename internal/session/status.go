package session

import (
	"errors"
	"fmt"
)

// VoteStatus is where a voting identity stands
type VoteStatus int

const (
	StatusAnonymous VoteStatus = iota
	StatusCanVote
	StatusVoted
)

func (s VoteStatus) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusCanVote:
		return "can-vote"
	case StatusVoted:
		return "voted"
	default:
		return fmt.Sprintf("VoteStatus(%d)", int(s))
	}
}

// Event is a server response (or logout) that moves the status
type Event int

const (
	// EventIDAccepted is a successful ID check for an unused ID
	EventIDAccepted Event = iota
	// EventIDAcceptedUsed is a successful ID check for an ID that already voted
	EventIDAcceptedUsed
	// EventVoteAccepted is a successful vote submission
	EventVoteAccepted
	// EventLogout is a full logout
	EventLogout
)

func (e Event) String() string {
	switch e {
	case EventIDAccepted:
		return "id-accepted"
	case EventIDAcceptedUsed:
		return "id-accepted-used"
	case EventVoteAccepted:
		return "vote-accepted"
	case EventLogout:
		return "logout"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned for an event the current status does not accept
var ErrInvalidTransition = errors.New("invalid vote status transition")

// Transition returns the status that follows from after ev.
// Nothing moves a status backwards except EventLogout.
func Transition(from VoteStatus, ev Event) (VoteStatus, error) {
	switch ev {
	case EventLogout:
		return StatusAnonymous, nil
	case EventIDAccepted:
		if from == StatusAnonymous {
			return StatusCanVote, nil
		}
	case EventIDAcceptedUsed:
		if from == StatusAnonymous {
			return StatusVoted, nil
		}
	case EventVoteAccepted:
		if from == StatusCanVote {
			return StatusVoted, nil
		}
	}
	return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, from)
}
