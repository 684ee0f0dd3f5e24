// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Election kinds
const (
	KindCandidate   = "candidate"
	KindProposition = "proposition"
)

// Voting method keys
const (
	MethodPlurality = "fptp"
	MethodApproval  = "approval"
	MethodTwoRound  = "two-round"
	MethodIRV       = "irv"
	MethodSTV       = "stv"
	MethodWeighted  = "weighted"
)

// Election status, derived from Closed
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// DefaultThreshold is used by two-round elections that don't set one
const DefaultThreshold = 0.5

// DefaultPropositionOptions are used when a proposition is created without options
var DefaultPropositionOptions = []string{"Yes", "No", "Abstain"}

// Methods lists every supported method key in display order
var Methods = []string{
	MethodPlurality,
	MethodApproval,
	MethodTwoRound,
	MethodIRV,
	MethodSTV,
	MethodWeighted,
}

// Request types

type CreateElectionRequest struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Kind        string       `json:"kind"`
	Method      string       `json:"method"`
	Options     []string     `json:"options"`
	Threshold   float64      `json:"threshold"`
	RoleWeights []RoleWeight `json:"role_weights"`
	Duration    string       `json:"duration"` // "1d2h30m" or a Go duration
	EndsAt      *time.Time   `json:"ends_at"`
}

type CastBallotRequest struct {
	Options []string `json:"options"`
	Roles   []string `json:"roles"`
}

// Response types

type CreateElectionResponse struct {
	ElectionID string    `json:"election_id"`
	AdminKey   string    `json:"admin_key"`
	EndsAt     time.Time `json:"ends_at"`
}

type CastBallotResponse struct {
	BallotID string `json:"ballot_id"`
	Message  string `json:"message"`
}

type CloseElectionResponse struct {
	ClosedAt time.Time   `json:"closed_at"`
	Result   TallyResult `json:"result"`
}

type ResultsResponse struct {
	Election    Election    `json:"election"`
	Result      TallyResult `json:"result"`
	BallotCount int         `json:"ballot_count"`
	Live        bool        `json:"live"`
	Summary     string      `json:"summary"`
}

// Domain types

type RoleWeight struct {
	RoleID string  `json:"role_id"`
	Weight float64 `json:"weight"`
}

type Election struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Kind        string       `json:"kind"`
	Method      string       `json:"method"`
	Options     []string     `json:"options"`
	Threshold   float64      `json:"threshold"`
	RoleWeights []RoleWeight `json:"role_weights,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	EndsAt      time.Time    `json:"ends_at"`
	Closed      bool         `json:"closed"`
	ClosedAt    *time.Time   `json:"closed_at,omitempty"`
	Result      *TallyResult `json:"result,omitempty"`
}

// Status reports "open" or "closed"
func (e Election) Status() string {
	if e.Closed {
		return StatusClosed
	}
	return StatusOpen
}

// HasOption reports whether option is one of the election's options
func (e Election) HasOption(option string) bool {
	for _, o := range e.Options {
		if o == option {
			return true
		}
	}
	return false
}

// EffectiveThreshold returns Threshold, or DefaultThreshold when unset
func (e Election) EffectiveThreshold() float64 {
	if e.Threshold <= 0 {
		return DefaultThreshold
	}
	return e.Threshold
}

// Choice is the method-dependent payload of a ballot.
//
// Single-choice methods (fptp, two-round, weighted) carry exactly one option,
// approval carries a set, and ranked methods (irv, stv) an ordered preference list.
// Weight is only meaningful for the weighted method.
type Choice struct {
	Options []string `json:"options"`
	Weight  float64  `json:"weight,omitempty"`
}

// Empty reports whether the choice names no option at all
func (c Choice) Empty() bool {
	return len(c.Options) == 0
}

// First returns the first named option, or "" for an empty choice
func (c Choice) First() string {
	if len(c.Options) == 0 {
		return ""
	}
	return c.Options[0]
}

type Ballot struct {
	ID               string    `json:"id"`
	ElectionID       string    `json:"election_id"`
	VoterFingerprint string    `json:"-"` // Never expose in JSON
	Choice           Choice    `json:"choice"`
	Revision         int       `json:"revision"` // 1 when first cast, +1 per replacement
	CreatedAt        time.Time `json:"created_at"`
}

// Tally result types

type BreakdownEntry struct {
	Label string  `json:"label"`
	Count float64 `json:"count"`
}

type RoundCount struct {
	Counts    map[string]float64 `json:"counts"`
	Total     float64            `json:"total"`
	Breakdown []BreakdownEntry   `json:"breakdown"`
}

// Details holds method-specific information about how a result was reached
type Details struct {
	Round      int          `json:"round,omitempty"`
	Finalists  []string     `json:"finalists,omitempty"`
	Rounds     []RoundCount `json:"rounds,omitempty"`
	Eliminated [][]string   `json:"eliminated,omitempty"`
	Quota      int          `json:"quota,omitempty"`
	Tie        bool         `json:"tie,omitempty"`
}

type TallyResult struct {
	Method     string             `json:"method"`
	Counts     map[string]float64 `json:"counts"`
	TotalVotes float64            `json:"total_votes"`
	Abstain    int                `json:"abstain"`
	Winner     []string           `json:"winner,omitempty"`
	Breakdown  []BreakdownEntry   `json:"breakdown"`
	Details    *Details           `json:"details,omitempty"`
	ComputedAt time.Time          `json:"computed_at"`
}

// FirstWinner returns the declaration-order first winner, or "" when there is none
func (r TallyResult) FirstWinner() string {
	if len(r.Winner) == 0 {
		return ""
	}
	return r.Winner[0]
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
