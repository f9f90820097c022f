package testutil

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/partyvote/internal/errors"
	"github.com/abrezinsky/partyvote/internal/storage"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *storage.Repository {
	t.Helper()

	repo, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// FakeAPI is a voting service served over HTTP for end-to-end tests.
// Its rules come from the wrapped MockClient.
type FakeAPI struct {
	Server *httptest.Server
	Mock   *votingapi.MockClient
}

// URL returns the base URL to configure clients with
func (f *FakeAPI) URL() string {
	return f.Server.URL + "/api"
}

// NewFakeAPI starts a fake voting service. It is closed when the test ends.
func NewFakeAPI(t *testing.T, opts ...votingapi.MockOption) *FakeAPI {
	t.Helper()

	mock := votingapi.NewMockClient(opts...)
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get(votingapi.PathCandidates, func(w http.ResponseWriter, req *http.Request) {
			cands, err := mock.FetchCandidates(req.Context())
			writeResult(w, cands, err)
		})
		r.Get(votingapi.PathVotes, func(w http.ResponseWriter, req *http.Request) {
			votes, err := mock.FetchVotes(req.Context())
			writeResult(w, votes, err)
		})
		r.Post(votingapi.PathCheckVotingID, func(w http.ResponseWriter, req *http.Request) {
			var body votingapi.CheckVotingIDRequest
			if !decode(w, req, &body) {
				return
			}
			resp, err := mock.CheckVotingID(req.Context(), body.VotingID)
			if resp == nil {
				writeError(w, err)
				return
			}
			writeJSON(w, resp)
		})
		r.Post(votingapi.PathSubmitVote, func(w http.ResponseWriter, req *http.Request) {
			var body votingapi.SubmitVoteRequest
			if !decode(w, req, &body) {
				return
			}
			resp, err := mock.SubmitVote(req.Context(), body)
			if resp == nil {
				writeError(w, err)
				return
			}
			writeJSON(w, resp)
		})
		r.Post(votingapi.PathRegisterCandidate, func(w http.ResponseWriter, req *http.Request) {
			var body votingapi.RegisterCandidateRequest
			if !decode(w, req, &body) {
				return
			}
			resp, err := mock.RegisterCandidate(req.Context(), body)
			if resp == nil {
				writeError(w, err)
				return
			}
			writeJSON(w, resp)
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &FakeAPI{Server: srv, Mock: mock}
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeResult serves a GET body; injected errors become their HTTP status
func writeResult(w http.ResponseWriter, v interface{}, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, v)
}

// writeJSON sends v with status 200, including success=false bodies
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError maps an injected mock error to a status code.
// Network errors from the mock are served as 502.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch {
		case appErr.Kind == errors.ErrNetwork:
			status = http.StatusBadGateway
		case appErr.Status >= 400:
			status = appErr.Status
		}
	}
	http.Error(w, http.StatusText(status), status)
}
