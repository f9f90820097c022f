// Package tally counts votes per party for the live results.
package tally

import (
	"math"
	"sort"
	"strconv"

	"github.com/abrezinsky/partyvote/internal/models"
	"github.com/abrezinsky/partyvote/pkg/votingapi"
)

// Entry is one ranked party
type Entry struct {
	Rank       int     `json:"rank"`
	Party      string  `json:"party"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Symbol     string  `json:"symbol,omitempty"`
	Logo       string  `json:"logo,omitempty"` // empty when the party has no logo of its own
}

// PercentLabel formats the share with two decimals, or "0" when nothing was cast
func (e Entry) PercentLabel(total int) string {
	if total == 0 {
		return "0"
	}
	return strconv.FormatFloat(e.Percentage, 'f', 2, 64)
}

// Result is the ranked tally
type Result struct {
	Total   int     `json:"total"`
	Entries []Entry `json:"entries"`
}

// Compute ranks every registered party by votes received.
// Every party starts at zero; votes for unregistered parties are not ranked
// but still count toward Total. Ties keep registration order.
func Compute(votes []votingapi.Vote, candidates []votingapi.Candidate) Result {
	index := make(map[string]int, len(candidates))
	entries := make([]Entry, 0, len(candidates))
	for _, c := range candidates {
		if _, seen := index[c.PartyName]; seen {
			continue
		}
		index[c.PartyName] = len(entries)

		e := Entry{Party: c.PartyName}
		p := models.Party{PartyLogo: c.PartyLogo}
		if p.HasLogo() {
			e.Logo = c.PartyLogo
		} else {
			e.Symbol = c.PartySymbol
		}
		entries = append(entries, e)
	}

	for _, v := range votes {
		if i, ok := index[v.Party]; ok {
			entries[i].Count++
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	total := len(votes)
	for i := range entries {
		entries[i].Rank = i + 1
		if total > 0 {
			entries[i].Percentage = round2(float64(entries[i].Count) / float64(total) * 100)
		}
	}

	return Result{Total: total, Entries: entries}
}

// PartyVoteCount returns how many votes name received
func PartyVoteCount(votes []votingapi.Vote, name string) int {
	n := 0
	for _, v := range votes {
		if v.Party == name {
			n++
		}
	}
	return n
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
