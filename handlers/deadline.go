// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/quickly-elect/models"
)

var dayDuration = regexp.MustCompile(`^(?:(\d+)d)?\s*(?:(\d+)h)?\s*(?:(\d+)m)?\s*(?:(\d+)s)?$`)

// ParseDeadline turns a duration ("1d2h30m", "90m", "1.5h") or an RFC 3339
// end time into an absolute deadline. An empty string returns the zero time,
// leaving the default duration to the lifecycle manager.
func ParseDeadline(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	d, err := ParseDuration(raw)
	if err != nil {
		return time.Time{}, err
	}
	return now.Add(d), nil
}

// ParseDuration accepts day-based durations such as "1d2h30m" as well as
// anything time.ParseDuration understands. The result must be positive.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)

	var d time.Duration
	if m := dayDuration.FindStringSubmatch(raw); m != nil && raw != "" {
		units := []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
		for i, unit := range units {
			if m[i+1] == "" {
				continue
			}
			n, err := strconv.Atoi(m[i+1])
			if err != nil {
				return 0, models.Invalid("duration", "invalid number %q", m[i+1])
			}
			d += time.Duration(n) * unit
		}
	} else {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return 0, models.Invalid("duration", "expected something like 1d2h30m or an RFC 3339 time, got %q", raw)
		}
		d = parsed
	}

	if d <= 0 {
		return 0, models.Invalid("duration", "must be positive")
	}
	return d, nil
}
