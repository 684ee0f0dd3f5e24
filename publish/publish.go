// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package publish

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/quickly-elect/models"
)

// Publisher matches lifecycle.Publisher
type Publisher interface {
	Publish(ctx context.Context, e models.Election, result models.TallyResult) error
}

// Multi publishes to every publisher in order. One failure does not stop the others.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e models.Election, result models.TallyResult) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher writes results to a structured logger
type LogPublisher struct {
	Logger *slog.Logger
}

func (p LogPublisher) Publish(_ context.Context, e models.Election, result models.TallyResult) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("election result",
		"election_id", e.ID,
		"name", e.Name,
		"method", e.Method,
		"winner", result.Winner,
		"total_votes", humanize.Ftoa(result.TotalVotes),
		"abstain", result.Abstain,
		"opened", humanize.RelTime(e.CreatedAt, result.ComputedAt, "before close", "after close"),
		"summary", Render(e, result),
	)
	return nil
}
