// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package publish announces final election results.

Publishers:

  - LogPublisher writes the result and its text summary to slog
  - WebhookPublisher POSTs a JSON WebhookPayload, retrying through pester
  - Multi fans out to several publishers and joins their errors

Render builds the text summary shared by all of them. Propositions list every
option with the majority, minority and abstain counts; candidate elections
show the winner, the total and the last runoff round. Both end with one
20-cell bar per option:

	A    █████████████░░░░░░░ 2 ( 67%)
	B    ███████░░░░░░░░░░░░░ 1 ( 33%)
*/
package publish
