package votingapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abrezinsky/partyvote/internal/errors"
	"github.com/abrezinsky/partyvote/internal/logger"
)

func newTestClient(url string) *HTTPClient {
	return NewHTTPClient(url, 0, logger.Discard())
}

func TestHTTPClient_FetchCandidates_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/api/candidates" {
			t.Errorf("expected path /api/candidates, got %s", r.URL.Path)
		}
		w.Write([]byte(`[{"candidateName":"Aria","partyName":"Sovereign","partyChinn":"🦁","partyLogo":"","password":"cw=="}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/api")
	candidates, err := client.FetchCandidates(context.Background())
	if err != nil {
		t.Fatalf("FetchCandidates failed: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].PartySymbol != "🦁" {
		t.Errorf("expected symbol from partyChinn, got %q", candidates[0].PartySymbol)
	}
}

func TestHTTPClient_FetchCandidates_NullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	candidates, err := newTestClient(server.URL).FetchCandidates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates == nil || len(candidates) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", candidates)
	}
}

func TestHTTPClient_FetchVotes_NumericVotingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"party":"A","votingId":1234},{"party":"B","votingId":"V-9"}]`))
	}))
	defer server.Close()

	votes, err := newTestClient(server.URL).FetchVotes(context.Background())
	if err != nil {
		t.Fatalf("FetchVotes failed: %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("expected 2 votes, got %d", len(votes))
	}
	if votes[0].VotingID != "1234" {
		t.Errorf("expected numeric voting id to decode as \"1234\", got %q", votes[0].VotingID)
	}
	if votes[1].VotingID.String() != "V-9" {
		t.Errorf("expected V-9, got %q", votes[1].VotingID)
	}
}

func TestHTTPClient_GetServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("worker overloaded"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchVotes(context.Background())
	if err == nil {
		t.Fatal("expected error for server error response")
	}
	if errors.KindOf(err) != errors.ErrApplication {
		t.Errorf("expected ErrApplication, got %v", errors.KindOf(err))
	}
	if msg := errors.UserMessage(err, ""); msg != "Error loading data: Service Unavailable" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).FetchCandidates(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if errors.KindOf(err) != errors.ErrApplication {
		t.Errorf("expected ErrApplication, got %v", errors.KindOf(err))
	}
}

func TestHTTPClient_ConnectionError(t *testing.T) {
	client := newTestClient("http://localhost:99999")
	_, err := client.FetchCandidates(context.Background())
	if err == nil {
		t.Fatal("expected error for connection failure")
	}
	if errors.KindOf(err) != errors.ErrNetwork {
		t.Errorf("expected ErrNetwork, got %v", errors.KindOf(err))
	}
	if errors.UserMessage(err, "") != NetworkErrorMessage {
		t.Errorf("unexpected message %q", errors.UserMessage(err, ""))
	}
}

func TestHTTPClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 20*time.Millisecond, logger.Discard())
	_, err := client.FetchVotes(context.Background())
	if errors.KindOf(err) != errors.ErrNetwork {
		t.Errorf("expected timeout to surface as ErrNetwork, got %v", err)
	}
}

func TestHTTPClient_CheckVotingID(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantMsg   string
		wantValid bool
		wantUsed  bool
	}{
		{
			name:      "valid unused",
			body:      `{"success":true,"valid":true,"used":false,"playerName":"Steve","gameEdition":"Java"}`,
			wantValid: true,
		},
		{
			name:      "valid used",
			body:      `{"success":true,"valid":true,"used":true,"playerName":42}`,
			wantValid: true,
			wantUsed:  true,
		},
		{
			name:    "success false with message",
			body:    `{"success":false,"message":"Voting ID not found."}`,
			wantErr: true,
			wantMsg: "Voting ID not found.",
		},
		{
			name:    "success false without message",
			body:    `{"success":false}`,
			wantErr: true,
			wantMsg: FallbackCheckMessage,
		},
		{
			name: "success true but invalid",
			body: `{"success":true,"valid":false,"message":"Expired."}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != PathCheckVotingID {
					t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("expected JSON content type, got %q", ct)
				}
				var req CheckVotingIDRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Errorf("failed to decode request: %v", err)
				}
				if req.VotingID != "V-1" {
					t.Errorf("expected votingId V-1, got %q", req.VotingID)
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			resp, err := newTestClient(server.URL).CheckVotingID(context.Background(), "V-1")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if got := errors.UserMessage(err, ""); got != tt.wantMsg {
					t.Errorf("expected message %q, got %q", tt.wantMsg, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Valid != tt.wantValid || resp.Used != tt.wantUsed {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}

func TestHTTPClient_SubmitVote_SendsPayload(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SubmitVote(context.Background(), SubmitVoteRequest{
		VotingID: "V-1",
		Party:    "Sovereign",
		RealName: "Sam",
		Contact:  "sam#1",
	})
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	want := map[string]string{"votingId": "V-1", "party": "Sovereign", "realName": "Sam", "discordInsta": "sam#1"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("expected %s=%q, got %v", k, v, got[k])
		}
	}
	if _, ok := got["edition"]; ok {
		t.Error("expected empty edition to be omitted")
	}
}

func TestHTTPClient_SubmitVote_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"This Voting ID has already been used."}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SubmitVote(context.Background(), SubmitVoteRequest{VotingID: "V", Party: "A"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := errors.UserMessage(err, ""); got != "This Voting ID has already been used." {
		t.Errorf("expected server message verbatim, got %q", got)
	}
}

func TestHTTPClient_PostErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"json message", http.StatusBadRequest, `{"success":false,"message":"Party exists"}`, "Party exists"},
		{"plain text", http.StatusBadRequest, "party name taken", "Error: party name taken"},
		{"empty body", http.StatusInternalServerError, "", "Error: Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).RegisterCandidate(context.Background(), RegisterCandidateRequest{PartyName: "X"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.UserMessage(err, ""); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestHTTPClient_RegisterCandidate_FallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req RegisterCandidateRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !strings.EqualFold(req.PartyName, "x") {
			t.Errorf("unexpected party %q", req.PartyName)
		}
		w.Write([]byte(`{"success":false}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RegisterCandidate(context.Background(), RegisterCandidateRequest{PartyName: "X"})
	if got := errors.UserMessage(err, ""); got != FallbackRegisterMessage {
		t.Errorf("expected fallback message, got %q", got)
	}
}

func TestHTTPClient_BaseURL(t *testing.T) {
	client := newTestClient("http://example.com/api/")
	if client.BaseURL() != "http://example.com/api/" {
		t.Errorf("unexpected base URL %q", client.BaseURL())
	}
	if got := client.endpoint(PathVotes); got != "http://example.com/api/votes" {
		t.Errorf("expected trailing slash to be trimmed, got %q", got)
	}

	client.SetBaseURL("http://other")
	if client.BaseURL() != "http://other" {
		t.Errorf("expected updated base URL, got %q", client.BaseURL())
	}
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  FlexString
		ok    bool
	}{
		{`"abc"`, "abc", true},
		{`12`, "12", true},
		{`1.5`, "1.5", true},
		{`null`, "", true},
		{`{}`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var f FlexString
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error")
			}
			if tt.ok && f != tt.want {
				t.Errorf("expected %q, got %q", tt.want, f)
			}
		})
	}
}
