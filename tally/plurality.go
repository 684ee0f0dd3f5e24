// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "github.com/danielhkuo/quickly-elect/models"

// Plurality counts each ballot's single choice (first past the post).
// Empty ballots and ballots naming an unknown option are abstentions.
func Plurality(election models.Election, ballots []models.Ballot) models.TallyResult {
	counts, abstain := firstChoices(election.Options, ballots)
	return finish(election.Options, counts, abstain)
}

// Approval gives +1 to every option a ballot approves.
// A ballot approving no known option is an abstention.
func Approval(election models.Election, ballots []models.Ballot) models.TallyResult {
	counts := zeroCounts(election.Options)
	abstain := 0

	for _, b := range ballots {
		approved := 0
		seen := make(map[string]bool, len(b.Choice.Options))
		for _, o := range b.Choice.Options {
			if _, ok := counts[o]; !ok || seen[o] {
				continue
			}
			seen[o] = true
			counts[o]++
			approved++
		}
		if approved == 0 {
			abstain++
		}
	}

	result := finish(election.Options, counts, abstain)
	// Counted ballots, not approvals
	result.TotalVotes = float64(len(ballots) - abstain)
	return result
}

// Weighted sums each ballot's weight onto its single choice.
// A missing weight counts as 1.
func Weighted(election models.Election, ballots []models.Ballot) models.TallyResult {
	counts := zeroCounts(election.Options)
	abstain := 0

	for _, b := range ballots {
		choice := b.Choice.First()
		if _, ok := counts[choice]; !ok {
			abstain++
			continue
		}
		weight := b.Choice.Weight
		if weight <= 0 {
			weight = 1
		}
		counts[choice] += weight
	}

	return finish(election.Options, counts, abstain)
}

// firstChoices counts the first option of every ballot
func firstChoices(options []string, ballots []models.Ballot) (map[string]float64, int) {
	counts := zeroCounts(options)
	abstain := 0
	for _, b := range ballots {
		choice := b.Choice.First()
		if _, ok := counts[choice]; !ok {
			abstain++
			continue
		}
		counts[choice]++
	}
	return counts, abstain
}
