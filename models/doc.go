// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateElectionRequest: name, kind, method, options, threshold, role_weights, duration/ends_at
  - CastBallotRequest: options ([]string), roles ([]string)

# Response Types

Types for JSON responses:

  - CreateElectionResponse: election_id, admin_key, ends_at
  - CastBallotResponse: ballot_id, message
  - CloseElectionResponse: closed_at, result
  - ResultsResponse: election, result, ballot_count, live, summary
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Election: definition and lifecycle state (Closed, Result)
  - Ballot: one voter's choice, keyed by an anonymized fingerprint
  - Choice: method-dependent payload (single option, approval set, ranking, weighted option)
  - TallyResult: counts, winner(s), breakdown, method details

Election.Validate enforces the definition invariants and Election.NormalizeChoice
turns a raw option list into a Choice for the election's method, rejecting
malformed shapes before unknown options.

# Errors

	ErrNotFound          // unknown election id
	ErrAlreadyClosed     // cast or close on a closed election
	ErrUnsupportedMethod // unknown method key
	*ValidationError     // malformed definition or ballot

# Constants

Kinds:

	KindCandidate   = "candidate"
	KindProposition = "proposition"

Methods:

	MethodPlurality = "fptp"
	MethodApproval  = "approval"
	MethodTwoRound  = "two-round"
	MethodIRV       = "irv"
	MethodSTV       = "stv"
	MethodWeighted  = "weighted"
*/
package models
