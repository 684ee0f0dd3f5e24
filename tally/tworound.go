// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "github.com/danielhkuo/quickly-elect/models"

// TwoRound runs a majority run-off.
//
// Round 1 counts first choices. An option whose count exceeds total*threshold
// wins outright. Otherwise the top two advance and round 2 counts only the
// ballots whose recorded choice is one of them; other ballots drop out of the
// round 2 denominator.
func TwoRound(election models.Election, ballots []models.Ballot) models.TallyResult {
	counts, abstain := firstChoices(election.Options, ballots)
	first := roundOf(election.Options, counts)

	threshold := election.EffectiveThreshold()
	if first.Total == 0 || len(first.Breakdown) < 2 || first.Breakdown[0].Count > first.Total*threshold {
		result := finish(election.Options, counts, abstain)
		details := result.Details
		if details == nil {
			details = &models.Details{}
		}
		details.Round = 1
		details.Rounds = []models.RoundCount{first}
		result.Details = details
		return result
	}

	finalists := []string{first.Breakdown[0].Label, first.Breakdown[1].Label}
	isFinalist := optionSet(finalists)

	runoff := zeroCounts(election.Options)
	for _, b := range ballots {
		for _, o := range b.Choice.Options {
			if isFinalist[o] {
				runoff[o]++
				break
			}
		}
	}

	result := finish(election.Options, runoff, abstain)
	details := result.Details
	if details == nil {
		details = &models.Details{}
	}
	details.Round = 2
	details.Finalists = finalists
	details.Rounds = []models.RoundCount{first, roundOf(election.Options, runoff)}
	result.Details = details
	return result
}

// roundOf snapshots one round's counts
func roundOf(options []string, counts map[string]float64) models.RoundCount {
	snapshot := make(map[string]float64, len(counts))
	for k, v := range counts {
		snapshot[k] = v
	}
	return models.RoundCount{
		Counts:    snapshot,
		Total:     sum(snapshot),
		Breakdown: breakdown(options, snapshot),
	}
}
