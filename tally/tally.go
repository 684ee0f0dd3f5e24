// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import (
	"fmt"
	"sort"

	"github.com/danielhkuo/quickly-elect/models"
)

// Counter computes a result for one voting method.
// Counters are pure: no I/O, no clock, no shared state.
type Counter func(election models.Election, ballots []models.Ballot) models.TallyResult

var counters = map[string]Counter{
	models.MethodPlurality: Plurality,
	models.MethodApproval:  Approval,
	models.MethodTwoRound:  TwoRound,
	models.MethodIRV:       InstantRunoff,
	models.MethodSTV:       STV,
	models.MethodWeighted:  Weighted,
}

// Lookup returns the counter for a method key
func Lookup(method string) (Counter, error) {
	c, ok := counters[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedMethod, method)
	}
	return c, nil
}

// Compute tallies ballots with the election's voting method.
// The same input always produces the same result.
func Compute(election models.Election, ballots []models.Ballot) (models.TallyResult, error) {
	counter, err := Lookup(election.Method)
	if err != nil {
		return models.TallyResult{}, err
	}
	result := counter(election, ballots)
	result.Method = election.Method
	return result, nil
}

// zeroCounts returns a count map with an entry for every option
func zeroCounts(options []string) map[string]float64 {
	counts := make(map[string]float64, len(options))
	for _, o := range options {
		counts[o] = 0
	}
	return counts
}

// sum adds up every count
func sum(counts map[string]float64) float64 {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	return total
}

// breakdown orders options by count descending.
// Ties keep declaration order, so the ordering is reproducible.
func breakdown(options []string, counts map[string]float64) []models.BreakdownEntry {
	entries := make([]models.BreakdownEntry, 0, len(options))
	for _, o := range options {
		if c, ok := counts[o]; ok {
			entries = append(entries, models.BreakdownEntry{Label: o, Count: c})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// leaders returns every option sharing the top count, in breakdown order.
// Nothing leads when no votes were counted.
func leaders(entries []models.BreakdownEntry) []string {
	if len(entries) == 0 || entries[0].Count <= 0 {
		return nil
	}
	top := entries[0].Count
	var out []string
	for _, e := range entries {
		if e.Count != top {
			break
		}
		out = append(out, e.Label)
	}
	return out
}

// finish fills winner, breakdown and total from the counts
func finish(options []string, counts map[string]float64, abstain int) models.TallyResult {
	entries := breakdown(options, counts)
	winner := leaders(entries)

	result := models.TallyResult{
		Counts:     counts,
		TotalVotes: sum(counts),
		Abstain:    abstain,
		Winner:     winner,
		Breakdown:  entries,
	}
	if len(winner) > 1 {
		result.Details = &models.Details{Tie: true}
	}
	return result
}

// optionSet indexes the election's options for membership checks
func optionSet(options []string) map[string]bool {
	set := make(map[string]bool, len(options))
	for _, o := range options {
		set[o] = true
	}
	return set
}
