package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/abrezinsky/partyvote/internal/errors"
	"github.com/abrezinsky/partyvote/internal/logger"
	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/internal/services"
	"github.com/abrezinsky/partyvote/internal/session"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
)

var openPolicy = services.VoterPolicy{VotingEnabled: true}

func setupVoterService(t *testing.T, policy services.VoterPolicy, opts ...votingapi.MockOption) (*services.VoterService, *votingapi.MockClient) {
	t.Helper()
	client := votingapi.NewMockClient(opts...)
	catalog := services.NewCatalog(logger.Discard(), client)
	return services.NewVoterService(logger.Discard(), client, catalog, policy), client
}

func loggedIn(t *testing.T, svc *services.VoterService, id string) *session.State {
	t.Helper()
	res, err := svc.CheckVotingID(context.Background(), id)
	if err != nil {
		t.Fatalf("CheckVotingID(%s) failed: %v", id, err)
	}
	st := &session.State{}
	if err := st.AcceptVotingID(res.VotingID, res.Details, res.Used); err != nil {
		t.Fatalf("AcceptVotingID failed: %v", err)
	}
	return st
}

func TestCheckVotingID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantMsg string
		used    bool
		wantErr string
	}{
		{"unused", "V-1001", services.MsgLoginSuccess, false, ""},
		{"trimmed", "  V-1002 ", services.MsgLoginSuccess, false, ""},
		{"used", "V-2001", services.MsgLoginUsed, true, ""},
		{"unknown", "V-9999", "", false, "Invalid Voting ID."},
		{"empty", "   ", "", false, "Please enter your Voting ID."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupVoterService(t, openPolicy)
			res, err := svc.CheckVotingID(context.Background(), tt.id)

			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("expected error")
				}
				if got := errors.UserMessage(err, ""); got != tt.wantErr {
					t.Errorf("expected %q, got %q", tt.wantErr, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Message != tt.wantMsg || res.Used != tt.used {
				t.Errorf("unexpected result %+v", res)
			}
			if res.Details.PlayerName == "" {
				t.Error("expected player details from the service")
			}
		})
	}
}

func TestCheckVotingID_EmptyMakesNoRequest(t *testing.T) {
	svc, client := setupVoterService(t, openPolicy)

	if _, err := svc.CheckVotingID(context.Background(), ""); !stderrors.Is(err, services.ErrEmptyVotingID) {
		t.Errorf("expected ErrEmptyVotingID, got %v", err)
	}
	if client.TotalCalls() != 0 {
		t.Errorf("expected no requests, got %d", client.TotalCalls())
	}
}

func TestCheckVotingID_ValidFalse(t *testing.T) {
	client := &validFalseClient{MockClient: votingapi.NewMockClient()}
	svc := services.NewVoterService(logger.Discard(), client, services.NewCatalog(logger.Discard(), client), openPolicy)

	_, err := svc.CheckVotingID(context.Background(), "V-1001")
	if errors.KindOf(err) != errors.ErrApplication {
		t.Fatalf("expected application error, got %v", err)
	}
	if errors.UserMessage(err, "") != "Invalid Voting ID." {
		t.Errorf("expected fallback message, got %q", errors.UserMessage(err, ""))
	}
}

type validFalseClient struct {
	*votingapi.MockClient
}

func (c *validFalseClient) CheckVotingID(ctx context.Context, id string) (*votingapi.CheckVotingIDResponse, error) {
	return &votingapi.CheckVotingIDResponse{Success: true, Valid: false}, nil
}

func TestCheckVotingID_NetworkError(t *testing.T) {
	svc, _ := setupVoterService(t, openPolicy,
		votingapi.WithCheckError(errors.Network(votingapi.NetworkErrorMessage, stderrors.New("refused"))))

	_, err := svc.CheckVotingID(context.Background(), "V-1001")
	if errors.UserMessage(err, "") != votingapi.NetworkErrorMessage {
		t.Errorf("expected network message, got %v", err)
	}
}

func TestValidateDetails(t *testing.T) {
	svc, _ := setupVoterService(t, openPolicy)

	tests := []struct {
		name    string
		in      models.PlayerDetails
		want    models.PlayerDetails
		wantErr error
	}{
		{"java", models.PlayerDetails{GameEdition: "Java", PlayerName: " Steve "}, models.PlayerDetails{GameEdition: "java", PlayerName: "Steve"}, nil},
		{"bedrock with extras", models.PlayerDetails{GameEdition: "BEDROCK", PlayerName: "Alex", RealName: " Alex B ", Contact: "@alex"}, models.PlayerDetails{GameEdition: "bedrock", PlayerName: "Alex", RealName: "Alex B", Contact: "@alex"}, nil},
		{"no edition", models.PlayerDetails{PlayerName: "Steve"}, models.PlayerDetails{}, services.ErrInvalidEdition},
		{"unknown edition", models.PlayerDetails{GameEdition: "pocket", PlayerName: "Steve"}, models.PlayerDetails{}, services.ErrInvalidEdition},
		{"no name", models.PlayerDetails{GameEdition: "java", PlayerName: "  "}, models.PlayerDetails{}, services.ErrMissingPlayerName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ValidateDetails(tt.in)
			if !stderrors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestCanVote(t *testing.T) {
	voter := func(status session.VoteStatus, player *models.PlayerDetails) session.State {
		return session.State{VotingID: "V-1", Player: player, Status: status}
	}
	steve := &models.PlayerDetails{GameEdition: "java", PlayerName: "Steve"}
	empty := &models.PlayerDetails{}

	tests := []struct {
		name   string
		policy services.VoterPolicy
		st     session.State
		want   string
	}{
		{"anonymous", openPolicy, session.State{}, services.ErrNotLoggedIn.Message},
		{"ready", openPolicy, voter(session.StatusCanVote, steve), ""},
		{"ready without player when optional", openPolicy, voter(session.StatusCanVote, empty), ""},
		{"details required", services.VoterPolicy{VotingEnabled: true, RequirePlayerDetails: true}, voter(session.StatusCanVote, empty), services.ErrMissingDetails.Message},
		{"no details at all", openPolicy, voter(session.StatusCanVote, nil), services.ErrMissingDetails.Message},
		{"voted", openPolicy, voter(session.StatusVoted, steve), services.ErrAlreadyVoted.Message},
		{"disabled", services.VoterPolicy{VotingDisabledMessage: "closed"}, voter(session.StatusCanVote, steve), "closed"},
		{"disabled beats voted", services.VoterPolicy{VotingDisabledMessage: "closed"}, voter(session.StatusVoted, steve), "closed"},
		{"disabled beats anonymous", services.VoterPolicy{VotingDisabledMessage: "closed"}, session.State{}, "closed"},
		{"disabled beats missing details", services.VoterPolicy{VotingDisabledMessage: "closed"}, voter(session.StatusCanVote, nil), "closed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := setupVoterService(t, tt.policy)
			got := errors.UserMessage(svc.CanVote(tt.st), "?")
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSubmitVote_Success(t *testing.T) {
	svc, client := setupVoterService(t, openPolicy)
	st := loggedIn(t, svc, "V-1001")

	res, err := svc.SubmitVote(context.Background(), st, services.VoteRequest{Party: "Sovereign", RealName: "Steve S", Contact: "@steve"})
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	if res.Message != "You have successfully voted for Sovereign with Voting ID: V-1001!" {
		t.Errorf("unexpected message %q", res.Message)
	}
	if st.Status != session.StatusVoted {
		t.Errorf("expected voted status, got %s", st.Status)
	}

	votes := client.GetVotes()
	if len(votes) != 1 {
		t.Fatalf("expected 1 recorded vote, got %d", len(votes))
	}
	v := votes[0]
	if v.Party != "Sovereign" || v.RealName != "Steve S" || v.Contact != "@steve" || v.PlayerName != "Steve" {
		t.Errorf("unexpected vote %+v", v)
	}
}

func TestSubmitVote_UsesStoredDetails(t *testing.T) {
	svc, client := setupVoterService(t, openPolicy)
	st := loggedIn(t, svc, "V-1002")
	st.SetPlayer(models.PlayerDetails{GameEdition: "bedrock", PlayerName: "Alex", RealName: "Alex B", Contact: "@alex"})

	if _, err := svc.SubmitVote(context.Background(), st, services.VoteRequest{Party: "Builders Union"}); err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	v := client.GetVotes()[0]
	if v.RealName != "Alex B" || v.Contact != "@alex" || v.GameEdition != "bedrock" {
		t.Errorf("expected stored details on the vote, got %+v", v)
	}
}

func TestSubmitVote_PreconditionsMakeNoRequest(t *testing.T) {
	svc, client := setupVoterService(t, openPolicy)

	st := &session.State{}
	if _, err := svc.SubmitVote(context.Background(), st, services.VoteRequest{Party: "Sovereign"}); !stderrors.Is(err, services.ErrNotLoggedIn) {
		t.Errorf("expected ErrNotLoggedIn, got %v", err)
	}

	used := loggedIn(t, svc, "V-2001")
	if _, err := svc.SubmitVote(context.Background(), used, services.VoteRequest{Party: "Sovereign"}); !stderrors.Is(err, services.ErrAlreadyVoted) {
		t.Errorf("expected ErrAlreadyVoted, got %v", err)
	}

	ready := loggedIn(t, svc, "V-1001")
	if _, err := svc.SubmitVote(context.Background(), ready, services.VoteRequest{Party: " "}); !stderrors.Is(err, services.ErrNoPartySelected) {
		t.Errorf("expected ErrNoPartySelected, got %v", err)
	}

	if client.Calls(votingapi.PathSubmitVote) != 0 {
		t.Errorf("expected no vote requests, got %d", client.Calls(votingapi.PathSubmitVote))
	}
}

func TestSubmitVote_RejectedLeavesStateUnchanged(t *testing.T) {
	svc, client := setupVoterService(t, openPolicy)
	st := loggedIn(t, svc, "V-1001")
	before := *st

	_, err := svc.SubmitVote(context.Background(), st, services.VoteRequest{Party: "No Such Party"})
	if err == nil {
		t.Fatal("expected rejection")
	}
	if errors.UserMessage(err, "") != "Unknown party." {
		t.Errorf("expected server message verbatim, got %q", errors.UserMessage(err, ""))
	}
	if st.Status != before.Status || st.VotingID != before.VotingID {
		t.Error("expected state unchanged after rejection")
	}
	if client.Calls(votingapi.PathSubmitVote) != 1 {
		t.Errorf("expected exactly one attempt, got %d", client.Calls(votingapi.PathSubmitVote))
	}
}

func TestSubmitVote_Disabled(t *testing.T) {
	svc, client := setupVoterService(t, services.VoterPolicy{VotingDisabledMessage: "Voting opens at 1 pm."})
	st := loggedIn(t, svc, "V-1001")

	_, err := svc.SubmitVote(context.Background(), st, services.VoteRequest{Party: "Sovereign"})
	var disabled *services.DisabledError
	if !stderrors.As(err, &disabled) || disabled.Message != "Voting opens at 1 pm." {
		t.Errorf("expected DisabledError, got %v", err)
	}
	if client.Calls(votingapi.PathSubmitVote) != 0 {
		t.Error("expected no request while voting is disabled")
	}
}

func TestButtonLabel(t *testing.T) {
	svc, _ := setupVoterService(t, openPolicy)
	closed, _ := setupVoterService(t, services.VoterPolicy{})

	if label, disabled := svc.ButtonLabel(session.State{Status: session.StatusCanVote}); label != "Vote for this Party" || disabled {
		t.Errorf("unexpected %q %v", label, disabled)
	}
	if label, disabled := svc.ButtonLabel(session.State{Status: session.StatusVoted}); label != "Already Voted" || !disabled {
		t.Errorf("unexpected %q %v", label, disabled)
	}
	if label, disabled := closed.ButtonLabel(session.State{Status: session.StatusCanVote}); label != "Voting Disabled" || !disabled {
		t.Errorf("unexpected %q %v", label, disabled)
	}
}
