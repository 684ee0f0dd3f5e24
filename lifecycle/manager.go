// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/metrics"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/tally"
)

// Store is the persistence the manager needs. db.Store implements it.
type Store interface {
	SaveElection(ctx context.Context, e models.Election) error
	GetElection(ctx context.Context, id string) (models.Election, error)
	ListOpenElections(ctx context.Context) ([]models.Election, error)
	MarkClosed(ctx context.Context, id string, result models.TallyResult) error
	SaveBallot(ctx context.Context, b models.Ballot) (int, error)
	ListBallots(ctx context.Context, electionID string) ([]models.Ballot, error)
	FindBallot(ctx context.Context, electionID, fingerprint string) (models.Ballot, error)
	CountBallots(ctx context.Context, electionID string) (int, error)
}

// Publisher announces a final result. It is called once per election, after
// the result is durable.
type Publisher interface {
	Publish(ctx context.Context, e models.Election, result models.TallyResult) error
}

// Finalize triggers, used for logs and metrics
const (
	TriggerDeadline = "deadline"
	TriggerAdmin    = "admin"
	TriggerRecovery = "recovery"
	TriggerCreate   = "create"
)

const (
	// finalizeTimeout bounds one finalization. It runs detached from the
	// caller, so a departing HTTP client cannot abort a close or its publish.
	finalizeTimeout = 30 * time.Second

	// finalizeRetryDelay re-arms a deadline whose finalization failed
	finalizeRetryDelay = 5 * time.Second
)

type Options struct {
	Store      Store
	Publisher  Publisher
	Anonymizer *auth.Anonymizer
	Metrics    *metrics.ElectionMetrics
	Logger     *slog.Logger
	Now        func() time.Time

	DefaultDuration  time.Duration
	DefaultThreshold float64
}

// Manager owns the open -> finalized transition of every election and the
// deadline timers that drive it. Durable storage is the source of truth;
// the in-memory state is rebuilt by Recover.
type Manager struct {
	store     Store
	publisher Publisher
	anon      *auth.Anonymizer
	metrics   *metrics.ElectionMetrics
	log       *slog.Logger
	now       func() time.Time

	defaultDuration  time.Duration
	defaultThreshold float64
	retryDelay       time.Duration

	flight singleflight.Group

	mu      sync.Mutex
	locks   map[string]*electionLock
	timers  map[string]*timerHandle
	stopped bool
	firing  sync.WaitGroup
}

type timerHandle struct {
	t *time.Timer
}

// electionLock is shared by casts and held exclusively by finalize.
// refs counts holders and waiters; the entry is dropped when it reaches zero.
type electionLock struct {
	sync.RWMutex
	refs int
}

type CastRequest struct {
	ElectionID string
	VoterID    string
	Options    []string
	Roles      []string
}

func New(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("lifecycle: store is required")
	}
	if opts.Anonymizer == nil {
		return nil, fmt.Errorf("lifecycle: %w", auth.ErrSecretUnconfigured)
	}

	m := &Manager{
		store:            opts.Store,
		publisher:        opts.Publisher,
		anon:             opts.Anonymizer,
		metrics:          opts.Metrics,
		log:              opts.Logger,
		now:              opts.Now,
		defaultDuration:  opts.DefaultDuration,
		defaultThreshold: opts.DefaultThreshold,
		retryDelay:       finalizeRetryDelay,
		locks:            make(map[string]*electionLock),
		timers:           make(map[string]*timerHandle),
	}
	if m.metrics == nil {
		m.metrics = metrics.Election
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.defaultDuration <= 0 {
		m.defaultDuration = time.Hour
	}
	if m.defaultThreshold <= 0 {
		m.defaultThreshold = models.DefaultThreshold
	}
	return m, nil
}

// Create validates and stores a new election, then arms its deadline timer.
// An election whose deadline has already passed is finalized before Create returns.
func (m *Manager) Create(ctx context.Context, e models.Election) (models.Election, error) {
	now := m.now().Truncate(time.Millisecond)

	e.ID = uuid.NewString()
	e.Closed = false
	e.ClosedAt = nil
	e.Result = nil
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.EndsAt.IsZero() {
		e.EndsAt = e.CreatedAt.Add(m.defaultDuration)
	}
	if e.Threshold == 0 {
		e.Threshold = m.defaultThreshold
	}
	if e.Kind == models.KindProposition && len(e.Options) == 0 {
		e.Options = append([]string(nil), models.DefaultPropositionOptions...)
	}
	e.CreatedAt = e.CreatedAt.Truncate(time.Millisecond)
	e.EndsAt = e.EndsAt.Truncate(time.Millisecond)

	if err := e.Validate(); err != nil {
		return models.Election{}, err
	}

	if err := m.store.SaveElection(ctx, e); err != nil {
		return models.Election{}, err
	}
	m.metrics.ElectionCreated(e.Method)

	m.log.Info("election created",
		"election_id", e.ID,
		"method", e.Method,
		"options", len(e.Options),
		"ends_at", e.EndsAt,
	)

	if !e.EndsAt.After(now) {
		result, _, err := m.finalize(ctx, e.ID, TriggerCreate)
		if err != nil {
			return models.Election{}, err
		}
		closedAt := result.ComputedAt
		e.Closed = true
		e.ClosedAt = &closedAt
		e.Result = &result
		return e, nil
	}

	m.Schedule(e)
	return e, nil
}

// Get returns an election by id
func (m *Manager) Get(ctx context.Context, id string) (models.Election, error) {
	return m.store.GetElection(ctx, id)
}

// CountBallots returns the number of live ballots of an existing election
func (m *Manager) CountBallots(ctx context.Context, id string) (int, error) {
	if _, err := m.store.GetElection(ctx, id); err != nil {
		return 0, err
	}
	return m.store.CountBallots(ctx, id)
}

// Cast admits or replaces a voter's ballot.
// Checks run in order: election exists, is open, the choice has the right shape, every option is known.
func (m *Manager) Cast(ctx context.Context, req CastRequest) (models.Ballot, error) {
	if strings.TrimSpace(req.VoterID) == "" {
		return models.Ballot{}, models.Invalid("voter_id", "is required")
	}

	// shared with other casts, exclusive with finalize
	lock := m.acquire(req.ElectionID)
	lock.RLock()
	defer m.release(req.ElectionID, lock, lock.RUnlock)

	e, err := m.store.GetElection(ctx, req.ElectionID)
	if err != nil {
		return models.Ballot{}, err
	}
	if e.Closed {
		return models.Ballot{}, models.ErrAlreadyClosed
	}

	choice, err := e.NormalizeChoice(req.Options, req.Roles)
	if err != nil {
		return models.Ballot{}, err
	}

	ballotID, err := auth.GenerateID(16)
	if err != nil {
		return models.Ballot{}, err
	}

	ballot := models.Ballot{
		ID:               ballotID,
		ElectionID:       e.ID,
		VoterFingerprint: m.anon.Fingerprint(e.ID, req.VoterID),
		Choice:           choice,
		CreatedAt:        m.now().Truncate(time.Millisecond),
	}
	revision, err := m.store.SaveBallot(ctx, ballot)
	if err != nil {
		return models.Ballot{}, err
	}
	ballot.Revision = revision
	m.metrics.BallotCast(e.Method)

	m.log.Debug("ballot cast", "election_id", e.ID, "ballot_id", ballot.ID, "revision", revision)

	return ballot, nil
}

// MyBallot returns the voter's current ballot, or models.ErrBallotNotFound
func (m *Manager) MyBallot(ctx context.Context, electionID, voterID string) (models.Ballot, error) {
	if strings.TrimSpace(voterID) == "" {
		return models.Ballot{}, models.Invalid("voter_id", "is required")
	}
	if _, err := m.store.GetElection(ctx, electionID); err != nil {
		return models.Ballot{}, err
	}
	return m.store.FindBallot(ctx, electionID, m.anon.Fingerprint(electionID, voterID))
}

// Preview tallies the current ballots of an open election without closing it.
// A closed election returns its stored result.
func (m *Manager) Preview(ctx context.Context, id string) (models.TallyResult, error) {
	e, err := m.store.GetElection(ctx, id)
	if err != nil {
		return models.TallyResult{}, err
	}
	if e.Closed {
		return *e.Result, nil
	}

	ballots, err := m.store.ListBallots(ctx, id)
	if err != nil {
		return models.TallyResult{}, err
	}
	result, err := tally.Compute(e, ballots)
	if err != nil {
		return models.TallyResult{}, err
	}
	result.ComputedAt = m.now().Truncate(time.Millisecond)
	return result, nil
}

// ForceClose finalizes an open election ahead of its deadline.
// It returns models.ErrAlreadyClosed when the election was already finalized.
func (m *Manager) ForceClose(ctx context.Context, id string) (models.TallyResult, error) {
	e, err := m.store.GetElection(ctx, id)
	if err != nil {
		return models.TallyResult{}, err
	}
	if e.Closed {
		return models.TallyResult{}, models.ErrAlreadyClosed
	}

	result, closed, err := m.finalize(ctx, id, TriggerAdmin)
	if err != nil {
		return models.TallyResult{}, err
	}
	if !closed {
		return models.TallyResult{}, models.ErrAlreadyClosed
	}
	return result, nil
}

// Finalize closes an election and publishes its result. It is idempotent:
// an already finalized election returns its stored result and false, with
// no recomputation and no publish.
func (m *Manager) Finalize(ctx context.Context, id string) (models.TallyResult, bool, error) {
	return m.finalize(ctx, id, TriggerDeadline)
}

type finalizeOutcome struct {
	result models.TallyResult
	closed bool
}

// finalize collapses concurrent callers onto one closeOnce. The shared call
// runs on a context detached from whichever caller started it; a caller whose
// own context ends stops waiting but does not abort the close.
func (m *Manager) finalize(ctx context.Context, id, trigger string) (models.TallyResult, bool, error) {
	ch := m.flight.DoChan(id, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
		defer cancel()
		result, closed, err := m.closeOnce(fctx, id, trigger)
		return finalizeOutcome{result: result, closed: closed}, err
	})

	select {
	case <-ctx.Done():
		return models.TallyResult{}, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.TallyResult{}, false, res.Err
		}
		out := res.Val.(finalizeOutcome)
		return out.result, out.closed, nil
	}
}

// closeOnce tallies and closes under the election's exclusive lock, then publishes.
// MarkClosed is a compare-and-set, so a second process racing on the same
// database still closes the election only once.
func (m *Manager) closeOnce(ctx context.Context, id, trigger string) (models.TallyResult, bool, error) {
	e, result, closed, err := m.tallyAndClose(ctx, id)
	if err != nil || !closed {
		return result, false, err
	}

	m.cancelTimer(id)
	m.metrics.ElectionFinalized(e.Method, trigger)

	m.log.Info("election finalized",
		"election_id", id,
		"method", e.Method,
		"trigger", trigger,
		"total_votes", result.TotalVotes,
		"abstain", result.Abstain,
		"winner", strings.Join(result.Winner, ","),
	)

	if m.publisher != nil {
		if err := m.publisher.Publish(ctx, e, result); err != nil {
			m.metrics.PublishFailed(e.Method)
			m.log.Error("failed to publish result", "election_id", id, "error", err)
		}
	}

	return result, true, nil
}

func (m *Manager) tallyAndClose(ctx context.Context, id string) (models.Election, models.TallyResult, bool, error) {
	lock := m.acquire(id)
	lock.Lock()
	defer m.release(id, lock, lock.Unlock)

	e, err := m.store.GetElection(ctx, id)
	if err != nil {
		return models.Election{}, models.TallyResult{}, false, err
	}
	if e.Closed {
		return e, *e.Result, false, nil
	}

	ballots, err := m.store.ListBallots(ctx, id)
	if err != nil {
		return models.Election{}, models.TallyResult{}, false, err
	}

	result, err := tally.Compute(e, ballots)
	if err != nil {
		return models.Election{}, models.TallyResult{}, false, err
	}
	result.ComputedAt = m.now().Truncate(time.Millisecond)

	err = m.store.MarkClosed(ctx, id, result)
	if errors.Is(err, models.ErrAlreadyClosed) {
		stored, err := m.store.GetElection(ctx, id)
		if err != nil {
			return models.Election{}, models.TallyResult{}, false, err
		}
		return stored, *stored.Result, false, nil
	}
	if err != nil {
		return models.Election{}, models.TallyResult{}, false, err
	}

	closedAt := result.ComputedAt
	e.Closed = true
	e.ClosedAt = &closedAt
	e.Result = &result
	return e, result, true, nil
}

// Recover re-arms timers for every open election in storage. Elections whose
// deadline has passed are finalized before Recover returns.
func (m *Manager) Recover(ctx context.Context) error {
	open, err := m.store.ListOpenElections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open elections: %w", err)
	}

	now := m.now()
	var errs []error
	overdue := 0
	for _, e := range open {
		if e.EndsAt.After(now) {
			m.Schedule(e)
			continue
		}
		overdue++
		if _, _, err := m.finalize(ctx, e.ID, TriggerRecovery); err != nil {
			errs = append(errs, fmt.Errorf("finalize %s: %w", e.ID, err))
		}
	}

	m.log.Info("schedules recovered", "open", len(open), "overdue", overdue)
	return errors.Join(errs...)
}

// Schedule arms the deadline timer for an election, replacing any existing one
func (m *Manager) Schedule(e models.Election) {
	delay := e.EndsAt.Sub(m.now())
	if delay < 0 {
		delay = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.armLocked(e.ID, delay)
}

// armLocked requires m.mu
func (m *Manager) armLocked(id string, delay time.Duration) {
	if m.stopped {
		return
	}
	if old, ok := m.timers[id]; ok {
		old.t.Stop()
	}

	// fire takes m.mu before reading h, so h.t is set by then
	h := &timerHandle{}
	h.t = time.AfterFunc(delay, func() { m.fire(id, h) })
	m.timers[id] = h
	m.metrics.SetOpenTimers(len(m.timers))
}

// Scheduled reports whether a deadline timer is armed for the election
func (m *Manager) Scheduled(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[id]
	return ok
}

func (m *Manager) fire(id string, h *timerHandle) {
	m.mu.Lock()
	if m.stopped || m.timers[id] != h {
		// replaced or cancelled after the timer fired
		m.mu.Unlock()
		return
	}
	delete(m.timers, id)
	m.metrics.SetOpenTimers(len(m.timers))
	m.firing.Add(1)
	m.mu.Unlock()
	defer m.firing.Done()

	_, _, err := m.finalize(context.Background(), id, TriggerDeadline)
	if err == nil {
		return
	}
	if errors.Is(err, models.ErrNotFound) {
		m.log.Error("deadline fired for unknown election", "election_id", id)
		return
	}

	// The deadline has passed, so the election must not be left without a timer
	m.log.Error("deadline finalize failed, retrying",
		"election_id", id,
		"retry_in", m.retryDelay,
		"error", err,
	)
	m.mu.Lock()
	if _, ok := m.timers[id]; !ok {
		m.armLocked(id, m.retryDelay)
	}
	m.mu.Unlock()
}

func (m *Manager) cancelTimer(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.timers[id]; ok {
		h.t.Stop()
		delete(m.timers, id)
		m.metrics.SetOpenTimers(len(m.timers))
	}
}

// Stop cancels every timer and waits for finalizations already in progress
func (m *Manager) Stop() {
	m.mu.Lock()
	m.stopped = true
	for id, h := range m.timers {
		h.t.Stop()
		delete(m.timers, id)
	}
	m.metrics.SetOpenTimers(0)
	m.mu.Unlock()

	m.firing.Wait()
}

// acquire returns the election's lock, creating it on first use.
// Every acquire must be paired with release.
func (m *Manager) acquire(id string) *electionLock {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &electionLock{}
		m.locks[id] = l
	}
	l.refs++
	return l
}

// release runs unlock, then forgets the lock once nobody holds or waits on it
func (m *Manager) release(id string, l *electionLock, unlock func()) {
	unlock()
	m.mu.Lock()
	defer m.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, id)
	}
}
