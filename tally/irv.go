// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "github.com/danielhkuo/quickly-elect/models"

// InstantRunoff counts ranked ballots in rounds.
//
// Each round a ballot counts for its highest-ranked option still active;
// ballots with no active option left sit the round out. An option with more
// than half of the round's votes wins. Otherwise every option tied for the
// fewest votes is eliminated at once. When all remaining options are tied
// the count stops and all of them are reported as tied winners.
func InstantRunoff(election models.Election, ballots []models.Ballot) models.TallyResult {
	if len(election.Options) == 0 {
		return finish(nil, map[string]float64{}, len(ballots))
	}
	active := optionSet(election.Options)
	abstain := 0

	ranked := make([][]string, 0, len(ballots))
	for _, b := range ballots {
		if b.Choice.Empty() {
			abstain++
			continue
		}
		ranked = append(ranked, b.Choice.Options)
	}

	details := &models.Details{}
	for {
		counts := make(map[string]float64, len(active))
		for _, o := range election.Options {
			if active[o] {
				counts[o] = 0
			}
		}
		for _, ranking := range ranked {
			for _, o := range ranking {
				if active[o] {
					counts[o]++
					break
				}
			}
		}

		round := roundOf(election.Options, counts)
		details.Rounds = append(details.Rounds, round)

		// strict majority of this round's votes
		if top := round.Breakdown[0]; top.Count > round.Total/2 {
			return runoffResult(election.Options, counts, abstain, []string{top.Label}, details)
		}

		if round.Total == 0 {
			return runoffResult(election.Options, counts, abstain, nil, details)
		}

		if len(counts) == 1 {
			return runoffResult(election.Options, counts, abstain, []string{round.Breakdown[0].Label}, details)
		}

		lowest := round.Breakdown[len(round.Breakdown)-1].Count
		var eliminated []string
		for _, o := range election.Options {
			if c, ok := counts[o]; ok && c == lowest {
				eliminated = append(eliminated, o)
			}
		}

		if len(eliminated) == len(counts) {
			details.Tie = true
			return runoffResult(election.Options, counts, abstain, eliminated, details)
		}

		for _, o := range eliminated {
			delete(active, o)
		}
		details.Eliminated = append(details.Eliminated, eliminated)
	}
}

// STV is the single-winner approximation: instant-runoff plus an informational
// two-seat Droop quota, floor(ballots/2)+1. The quota never changes the winner.
func STV(election models.Election, ballots []models.Ballot) models.TallyResult {
	result := InstantRunoff(election, ballots)
	if result.Details == nil {
		result.Details = &models.Details{}
	}
	result.Details.Quota = len(ballots)/2 + 1
	return result
}

// runoffResult reports the final round, keeping an entry for eliminated options
func runoffResult(options []string, final map[string]float64, abstain int, winner []string, details *models.Details) models.TallyResult {
	counts := zeroCounts(options)
	for o, c := range final {
		counts[o] = c
	}
	return models.TallyResult{
		Counts:     counts,
		TotalVotes: sum(final),
		Abstain:    abstain,
		Winner:     winner,
		Breakdown:  breakdown(options, counts),
		Details:    details,
	}
}
