// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielhkuo/quickly-elect/models"
)

// Store persists elections and ballots with database/sql.
// Queries use $n placeholders in order of appearance, which both lib/pq and sqlite accept.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const electionColumns = `id, name, description, kind, method, options, threshold,
	role_weights, created_at, ends_at, closed, closed_at, result`

// SaveElection inserts a new election. Definitions are immutable once saved.
func (s *Store) SaveElection(ctx context.Context, e models.Election) error {
	options, err := json.Marshal(e.Options)
	if err != nil {
		return fmt.Errorf("failed to encode options: %w", err)
	}
	roleWeights := e.RoleWeights
	if roleWeights == nil {
		roleWeights = []models.RoleWeight{}
	}
	weights, err := json.Marshal(roleWeights)
	if err != nil {
		return fmt.Errorf("failed to encode role weights: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO election (id, name, description, kind, method, options, threshold,
			role_weights, created_at, ends_at, closed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 0)
	`, e.ID, e.Name, e.Description, e.Kind, e.Method, string(options), e.Threshold,
		string(weights), e.CreatedAt.UnixMilli(), e.EndsAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert election: %w", err)
	}
	return nil
}

// GetElection returns models.ErrNotFound for an unknown id
func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM election WHERE id = $1`, id)
	e, err := scanElection(row)
	if err == sql.ErrNoRows {
		return models.Election{}, models.ErrNotFound
	}
	if err != nil {
		return models.Election{}, fmt.Errorf("failed to query election: %w", err)
	}
	return e, nil
}

// ListOpenElections returns every election not yet closed, earliest deadline first
func (s *Store) ListOpenElections(ctx context.Context) ([]models.Election, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+electionColumns+`
		FROM election
		WHERE closed = 0
		ORDER BY ends_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query open elections: %w", err)
	}
	defer rows.Close()

	var out []models.Election
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan election: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkClosed attaches the result and flips closed in one conditional update.
// Only the first caller succeeds; later callers get models.ErrAlreadyClosed.
func (s *Store) MarkClosed(ctx context.Context, id string, result models.TallyResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE election
		SET closed = 1, closed_at = $1, result = $2
		WHERE id = $3 AND closed = 0
	`, result.ComputedAt.UnixMilli(), string(payload), id)
	if err != nil {
		return fmt.Errorf("failed to close election: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 1 {
		return nil
	}

	if _, err := s.GetElection(ctx, id); err != nil {
		return err
	}
	return models.ErrAlreadyClosed
}

// SaveBallot upserts on (election_id, voter_fingerprint): a second ballot from
// the same fingerprint replaces the first. It returns the stored revision, so
// anything above 1 means an earlier ballot was replaced. Nothing is written once
// the election is closed.
func (s *Store) SaveBallot(ctx context.Context, b models.Ballot) (int, error) {
	choice, err := json.Marshal(b.Choice)
	if err != nil {
		return 0, fmt.Errorf("failed to encode choice: %w", err)
	}

	var revision int
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO ballot (id, election_id, voter_fingerprint, choice, created_at)
		SELECT CAST($1 AS TEXT), CAST($2 AS TEXT), CAST($3 AS TEXT), CAST($4 AS TEXT), CAST($5 AS BIGINT)
		WHERE EXISTS (SELECT 1 FROM election WHERE id = $2 AND closed = 0)
		ON CONFLICT (election_id, voter_fingerprint) DO UPDATE
		SET id = excluded.id, choice = excluded.choice, created_at = excluded.created_at,
			revision = ballot.revision + 1
		RETURNING revision
	`, b.ID, b.ElectionID, b.VoterFingerprint, string(choice), b.CreatedAt.UnixMilli()).Scan(&revision)
	if err == sql.ErrNoRows {
		// the open-election guard filtered the insert
		if _, err := s.GetElection(ctx, b.ElectionID); err != nil {
			return 0, err
		}
		return 0, models.ErrAlreadyClosed
	}
	if err != nil {
		return 0, fmt.Errorf("failed to upsert ballot: %w", err)
	}
	return revision, nil
}

// ListBallots returns every live ballot of an election in cast order
func (s *Store) ListBallots(ctx context.Context, electionID string) ([]models.Ballot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, election_id, voter_fingerprint, choice, revision, created_at
		FROM ballot
		WHERE election_id = $1
		ORDER BY created_at, id
	`, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ballots: %w", err)
	}
	defer rows.Close()

	var out []models.Ballot
	for rows.Next() {
		b, err := scanBallot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ballot: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// FindBallot returns models.ErrBallotNotFound when the fingerprint has not voted
func (s *Store) FindBallot(ctx context.Context, electionID, fingerprint string) (models.Ballot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, election_id, voter_fingerprint, choice, revision, created_at
		FROM ballot
		WHERE election_id = $1 AND voter_fingerprint = $2
	`, electionID, fingerprint)

	b, err := scanBallot(row)
	if err == sql.ErrNoRows {
		return models.Ballot{}, models.ErrBallotNotFound
	}
	if err != nil {
		return models.Ballot{}, fmt.Errorf("failed to query ballot: %w", err)
	}
	return b, nil
}

// CountBallots counts live ballots (visible even while open)
func (s *Store) CountBallots(ctx context.Context, electionID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ballot WHERE election_id = $1
	`, electionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count ballots: %w", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanElection(row scanner) (models.Election, error) {
	var (
		e                 models.Election
		options, weights  string
		createdAt, endsAt int64
		closed            int
		closedAt          sql.NullInt64
		result            sql.NullString
	)
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Kind, &e.Method, &options, &e.Threshold,
		&weights, &createdAt, &endsAt, &closed, &closedAt, &result)
	if err != nil {
		return models.Election{}, err
	}

	if err := json.Unmarshal([]byte(options), &e.Options); err != nil {
		return models.Election{}, fmt.Errorf("failed to decode options: %w", err)
	}
	if err := json.Unmarshal([]byte(weights), &e.RoleWeights); err != nil {
		return models.Election{}, fmt.Errorf("failed to decode role weights: %w", err)
	}
	if len(e.RoleWeights) == 0 {
		e.RoleWeights = nil
	}

	e.CreatedAt = time.UnixMilli(createdAt)
	e.EndsAt = time.UnixMilli(endsAt)
	e.Closed = closed != 0

	if closedAt.Valid {
		t := time.UnixMilli(closedAt.Int64)
		e.ClosedAt = &t
	}
	if result.Valid {
		var r models.TallyResult
		if err := json.Unmarshal([]byte(result.String), &r); err != nil {
			return models.Election{}, fmt.Errorf("failed to decode result: %w", err)
		}
		e.Result = &r
	}

	return e, nil
}

func scanBallot(row scanner) (models.Ballot, error) {
	var (
		b         models.Ballot
		choice    string
		createdAt int64
	)
	if err := row.Scan(&b.ID, &b.ElectionID, &b.VoterFingerprint, &choice, &b.Revision, &createdAt); err != nil {
		return models.Ballot{}, err
	}
	if err := json.Unmarshal([]byte(choice), &b.Choice); err != nil {
		return models.Ballot{}, fmt.Errorf("failed to decode choice: %w", err)
	}
	b.CreatedAt = time.UnixMilli(createdAt)
	return b, nil
}
