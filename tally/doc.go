// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally implements the six voting methods.

Every method has the same shape:

	result, err := tally.Compute(election, ballots)

Compute looks up the counter for election.Method and fails with
models.ErrUnsupportedMethod for an unknown key; there is no fallback method.

# Methods

  - fptp: one vote per ballot for its single choice
  - approval: +1 for every approved option
  - two-round: outright win above total*threshold, else a run-off between the top two
  - irv: instant-runoff with simultaneous elimination of the lowest options
  - stv: irv plus an informational Droop quota (single winner only)
  - weighted: weight-sum per option, weights fixed when the ballot was cast

# Ordering

Breakdown is sorted by count descending with ties kept in the election's
declaration order. Winner lists every option tied at the top in that order;
it is empty when no votes were counted.

Counters never touch the clock or storage, so a result can be recomputed at
any time and compared byte for byte.
*/
package tally
