package tally

import (
	"testing"

	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
)

func votesFor(parties ...string) []votingapi.Vote {
	votes := make([]votingapi.Vote, len(parties))
	for i, p := range parties {
		votes[i] = votingapi.Vote{Party: p}
	}
	return votes
}

func TestCompute_RanksByCount(t *testing.T) {
	candidates := []votingapi.Candidate{{PartyName: "A"}, {PartyName: "B"}}
	result := Compute(votesFor("A", "B", "A"), candidates)

	if result.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Total)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}

	want := []struct {
		party   string
		count   int
		percent string
	}{
		{"A", 2, "66.67"},
		{"B", 1, "33.33"},
	}
	for i, w := range want {
		e := result.Entries[i]
		if e.Rank != i+1 || e.Party != w.party || e.Count != w.count {
			t.Errorf("entry %d: got %+v", i, e)
		}
		if got := e.PercentLabel(result.Total); got != w.percent {
			t.Errorf("entry %d: expected %s%%, got %s%%", i, w.percent, got)
		}
	}
}

func TestCompute_ZeroVoteParties(t *testing.T) {
	candidates := []votingapi.Candidate{{PartyName: "A"}, {PartyName: "B"}, {PartyName: "C"}}
	result := Compute(votesFor("C"), candidates)

	order := []string{"C", "A", "B"}
	for i, party := range order {
		if result.Entries[i].Party != party {
			t.Errorf("position %d: expected %s, got %s", i, party, result.Entries[i].Party)
		}
	}
	if result.Entries[1].Count != 0 || result.Entries[1].Percentage != 0 {
		t.Errorf("expected zero entry, got %+v", result.Entries[1])
	}
}

func TestCompute_UnknownPartyVotes(t *testing.T) {
	candidates := []votingapi.Candidate{{PartyName: "A"}}
	result := Compute(votesFor("A", "Ghost", "ghost"), candidates)

	if result.Total != 3 {
		t.Errorf("expected unknown votes to count toward total, got %d", result.Total)
	}
	if len(result.Entries) != 1 || result.Entries[0].Count != 1 {
		t.Errorf("expected only A ranked with 1 vote, got %+v", result.Entries)
	}
	if result.Entries[0].PercentLabel(result.Total) != "33.33" {
		t.Errorf("unexpected percent %s", result.Entries[0].PercentLabel(result.Total))
	}
}

func TestCompute_Empty(t *testing.T) {
	result := Compute(nil, nil)
	if result.Total != 0 || len(result.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}

	result = Compute(nil, []votingapi.Candidate{{PartyName: "A"}})
	if result.Entries[0].PercentLabel(result.Total) != "0" {
		t.Errorf("expected 0 label with no votes, got %s", result.Entries[0].PercentLabel(0))
	}
}

func TestCompute_DuplicateCandidateNames(t *testing.T) {
	candidates := []votingapi.Candidate{{PartyName: "A"}, {PartyName: "A"}}
	result := Compute(votesFor("A"), candidates)
	if len(result.Entries) != 1 || result.Entries[0].Count != 1 {
		t.Errorf("expected a single A entry, got %+v", result.Entries)
	}
}

func TestCompute_LogoOrSymbol(t *testing.T) {
	candidates := []votingapi.Candidate{
		{PartyName: "Logo", PartySymbol: "L", PartyLogo: "data:image/png;base64,AAAA"},
		{PartyName: "Placeholder", PartySymbol: "🦁", PartyLogo: models.PlaceholderLogo},
		{PartyName: "None", PartySymbol: "⛏"},
	}
	result := Compute(nil, candidates)

	if result.Entries[0].Logo == "" || result.Entries[0].Symbol != "" {
		t.Errorf("expected custom logo shown, got %+v", result.Entries[0])
	}
	if result.Entries[1].Logo != "" || result.Entries[1].Symbol != "🦁" {
		t.Errorf("expected symbol for placeholder logo, got %+v", result.Entries[1])
	}
	if result.Entries[2].Symbol != "⛏" {
		t.Errorf("expected symbol without logo, got %+v", result.Entries[2])
	}
}

func TestPartyVoteCount(t *testing.T) {
	votes := votesFor("A", "B", "A", "a")
	tests := []struct {
		party string
		want  int
	}{
		{"A", 2},
		{"B", 1},
		{"a", 1},
		{"C", 0},
	}
	for _, tt := range tests {
		if got := PartyVoteCount(votes, tt.party); got != tt.want {
			t.Errorf("PartyVoteCount(%q) = %d, want %d", tt.party, got, tt.want)
		}
	}
}
