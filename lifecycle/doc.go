// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle runs elections from creation to a single finalization.

An election is either open or finalized. Manager arms one deadline timer per
open election; the timer or an admin ForceClose triggers Finalize, which
tallies every ballot, stores the result and then hands it to a Publisher.

# Exactly-once close

Three layers keep a timer and an admin close from both finalizing:

  - concurrent Finalize calls for one id share a single run (singleflight)
  - casts take the election's read lock and finalize takes its write lock,
    so no ballot lands between the tally and the close
  - Store.MarkClosed only succeeds while the row is still open

A finalize on a closed election returns the stored result and does nothing else.

The shared run is detached from the caller that started it. An admin whose
request goes away stops waiting, but the close and publish still complete.
A deadline finalize that fails is retried on a short timer rather than
leaving an expired election open.

# Restarts

Nothing in memory is authoritative. Recover lists open elections from the
store, re-arms their timers and finalizes the overdue ones before returning:

	if err := manager.Recover(ctx); err != nil {
		slog.Error("recovery incomplete", "error", err)
	}
	defer manager.Stop()
*/
package lifecycle
