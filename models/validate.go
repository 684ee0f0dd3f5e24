// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"strings"
)

// IsSupportedMethod reports whether method is one of the six known keys
func IsSupportedMethod(method string) bool {
	for _, m := range Methods {
		if m == method {
			return true
		}
	}
	return false
}

// Validate checks the invariants of an election definition
func (e Election) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return Invalid("name", "is required")
	}
	if e.Kind != KindCandidate && e.Kind != KindProposition {
		return Invalid("kind", "must be %q or %q", KindCandidate, KindProposition)
	}
	if !IsSupportedMethod(e.Method) {
		return fmt.Errorf("%w: %q", ErrUnsupportedMethod, e.Method)
	}
	if len(e.Options) < 2 {
		return Invalid("options", "at least 2 options are required")
	}

	seen := make(map[string]bool, len(e.Options))
	for _, o := range e.Options {
		if strings.TrimSpace(o) == "" {
			return Invalid("options", "options cannot be blank")
		}
		if seen[o] {
			return Invalid("options", "duplicate option %q", o)
		}
		seen[o] = true
	}

	if e.Threshold <= 0 || e.Threshold > 1 {
		return Invalid("threshold", "must be in (0, 1], got %v", e.Threshold)
	}

	for _, rw := range e.RoleWeights {
		if rw.RoleID == "" {
			return Invalid("role_weights", "role id is required")
		}
		if rw.Weight <= 0 {
			return Invalid("role_weights", "weight for role %q must be positive", rw.RoleID)
		}
	}

	if !e.EndsAt.After(e.CreatedAt) {
		return Invalid("ends_at", "must be after created_at")
	}

	// closed and result travel together
	if e.Closed != (e.Result != nil) {
		return Invalid("result", "closed elections must carry a result and open ones must not")
	}

	return nil
}

// WeightFor sums the configured weights of the roles a voter holds.
// Voters holding none of the configured roles weigh 1.
func (e Election) WeightFor(roles []string) float64 {
	held := make(map[string]bool, len(roles))
	for _, r := range roles {
		held[r] = true
	}

	total := 0.0
	for _, rw := range e.RoleWeights {
		if held[rw.RoleID] {
			total += rw.Weight
		}
	}
	if total == 0 {
		return 1
	}
	return total
}

// NormalizeChoice validates a raw list of options against the election's method
// and returns the choice to store. The shape is checked before membership.
func (e Election) NormalizeChoice(raw []string, roles []string) (Choice, error) {
	options := make([]string, 0, len(raw))
	for _, o := range raw {
		o = strings.TrimSpace(o)
		if o != "" {
			options = append(options, o)
		}
	}

	var choice Choice
	switch e.Method {
	case MethodPlurality, MethodTwoRound, MethodWeighted:
		if len(options) != 1 {
			return Choice{}, Invalid("options", "%s expects exactly one choice, got %d", e.Method, len(options))
		}
		choice.Options = options

	case MethodApproval:
		if len(options) == 0 {
			return Choice{}, Invalid("options", "approval expects at least one choice")
		}
		seen := make(map[string]bool, len(options))
		for _, o := range options {
			if !seen[o] {
				seen[o] = true
				choice.Options = append(choice.Options, o)
			}
		}

	case MethodIRV, MethodSTV:
		if len(options) == 0 {
			return Choice{}, Invalid("options", "ranked voting expects at least one choice")
		}
		seen := make(map[string]bool, len(options))
		for _, o := range options {
			if seen[o] {
				return Choice{}, Invalid("options", "%q is ranked more than once", o)
			}
			seen[o] = true
		}
		choice.Options = options

	default:
		return Choice{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, e.Method)
	}

	for _, o := range choice.Options {
		if !e.HasOption(o) {
			return Choice{}, Invalid("options", "invalid option: %s", o)
		}
	}

	if e.Method == MethodWeighted {
		choice.Weight = e.WeightFor(roles)
	}

	return choice, nil
}
