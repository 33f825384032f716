package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/gsmatch/internal/ir"
)

// Option configures a matching run.
type Option func(*settings)

// Sequencer hands out proposal sequence numbers. *Clock is the production
// implementation.
type Sequencer interface {
	Next() int64
}

type settings struct {
	schedule Schedule
	clock     Sequencer
	observers []func(ir.Proposal)
	maxSteps  int // 0 means |P| x |R|
	logger   *slog.Logger
}

// WithSchedule sets the order in which free proposers are served.
// Default: ScheduleQueue.
func WithSchedule(s Schedule) Option {
	return func(o *settings) {
		o.schedule = s
	}
}

// WithClock stamps proposals from the given clock instead of a fresh one.
func WithClock(c Sequencer) Option {
	return func(o *settings) {
		o.clock = c
	}
}

// WithObserver registers a callback invoked once per proposal, in seq order.
// Observers accumulate and are called in registration order.
func WithObserver(fn func(ir.Proposal)) Option {
	return func(o *settings) {
		o.observers = append(o.observers, fn)
	}
}

// WithMaxSteps overrides the proposal quota.
//
// Default: |P| x |R|, the Gale-Shapley bound.
// Values <= 0 select the default. A lower quota turns a long run into
// LOGIC_EXHAUSTION.
func WithMaxSteps(maxSteps int) Option {
	return func(o *settings) {
		o.maxSteps = maxSteps
	}
}

// WithLogger sets the logger for run diagnostics. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *settings) {
		o.logger = l
	}
}

// Matcher is a reusable, stateless matcher preconfigured with options.
// It is safe for concurrent use; every call builds its own state.
type Matcher struct {
	opts []Option
}

// New creates a Matcher. The options slice is copied.
func New(opts ...Option) *Matcher {
	return &Matcher{opts: append([]Option(nil), opts...)}
}

// Match computes the stable matching of inst. Per-call options are applied
// after the Matcher's own.
func (m *Matcher) Match(ctx context.Context, inst ir.Instance, opts ...Option) (*ir.Matching, error) {
	all := make([]Option, 0, len(m.opts)+len(opts))
	all = append(all, m.opts...)
	all = append(all, opts...)
	return Match(ctx, inst, all...)
}

// Match computes the proposer-optimal stable matching of inst.
//
// The instance is validated first; any violation returns INVALID_INPUT
// before a single proposal is made. The caller's slices and maps are never
// read after validation or written at all.
//
// The returned pairs are in proposer declaration order.
func Match(ctx context.Context, inst ir.Instance, opts ...Option) (*ir.Matching, error) {
	cfg := settings{schedule: ScheduleQueue}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = NewClock()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if _, err := ParseSchedule(string(cfg.schedule)); err != nil {
		return nil, err
	}

	if errs := ir.Validate(inst); len(errs) > 0 {
		return nil, NewInvalidInputError(errs)
	}

	r := newRun(inst.Clone(), cfg)
	cfg.logger.Debug("match starting",
		"proposers", r.n,
		"schedule", cfg.schedule,
		"max_steps", r.quota.MaxSteps(),
	)

	var err error
	if cfg.schedule == ScheduleRounds {
		err = r.runRounds(ctx)
	} else {
		err = r.runSequential(ctx, newFreeList(cfg.schedule, r.inst.Proposers))
	}
	if err != nil {
		cfg.logger.Debug("match failed", "error", err, "proposals", r.quota.Current())
		return nil, err
	}

	m := r.result()
	cfg.logger.Debug("match finished", "pairs", len(m.Pairs), "proposals", m.Proposals)
	return m, nil
}

// run is the private state of a single Match call.
type run struct {
	inst     ir.Instance
	n        int
	schedule Schedule

	cursor    map[string]int            // proposer -> reviewers proposed to
	partnerOf map[string]string         // proposer -> engaged reviewer
	fianceOf  map[string]string         // reviewer -> engaged proposer
	rank      map[string]map[string]int // reviewer -> proposer -> index in reviewer's list

	clock     Sequencer
	quota     *QuotaEnforcer
	observers []func(ir.Proposal)
}

func newRun(inst ir.Instance, cfg settings) *run {
	n := len(inst.Proposers)
	maxSteps := cfg.maxSteps
	if maxSteps <= 0 {
		maxSteps = n * len(inst.Reviewers)
	}

	rank := make(map[string]map[string]int, len(inst.Reviewers))
	for _, rev := range inst.Reviewers {
		rank[rev] = make(map[string]int, n)
		for i, p := range inst.Preferences[rev] {
			rank[rev][p] = i
		}
	}

	return &run{
		inst:      inst,
		n:         n,
		schedule:  cfg.schedule,
		cursor:    make(map[string]int, n),
		partnerOf: make(map[string]string, n),
		fianceOf:  make(map[string]string, n),
		rank:      rank,
		clock:     cfg.clock,
		quota:     NewQuotaEnforcer(maxSteps),
		observers: cfg.observers,
	}
}

// runSequential serves one free proposer at a time until none is left.
func (r *run) runSequential(ctx context.Context, free freeList) error {
	for free.len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, _ := free.pop()
		freed, err := r.propose(p)
		if err != nil {
			return err
		}
		if freed != "" {
			free.push(freed)
		}
	}
	return nil
}

// runRounds lets every free proposer propose once per round. Reviewers
// decide on suitors in proposal order, which is equivalent to gathering the
// round's proposals and letting each reviewer keep the best one.
func (r *run) runRounds(ctx context.Context) error {
	free := r.inst.Proposers
	for len(free) > 0 {
		var next []string
		for _, p := range free {
			if err := ctx.Err(); err != nil {
				return err
			}
			freed, err := r.propose(p)
			if err != nil {
				return err
			}
			if freed != "" {
				next = append(next, freed)
			}
		}
		free = next
	}
	return nil
}

// propose makes p's next proposal and returns the proposer left free by it:
// p itself when rejected, the displaced partner when displaced, or "" when
// the reviewer was free.
func (r *run) propose(p string) (string, error) {
	if err := r.quota.Check(); err != nil {
		return "", err
	}

	c := r.cursor[p]
	prefs := r.inst.Preferences[p]
	if c >= len(prefs) {
		return "", NewExhaustionError(p, c)
	}
	rev := prefs[c]
	r.cursor[p] = c + 1

	prop := ir.Proposal{Seq: r.clock.Next(), Proposer: p, Reviewer: rev}
	var freed string

	current, engaged := r.fianceOf[rev]
	switch {
	case !engaged:
		r.engage(p, rev)
		prop.Outcome = ir.OutcomeAccepted
	case r.prefers(rev, p, current):
		delete(r.partnerOf, current)
		r.engage(p, rev)
		prop.Outcome = ir.OutcomeDisplaced
		prop.Displaced = current
		freed = current
	default:
		prop.Outcome = ir.OutcomeRejected
		freed = p
	}

	for _, observe := range r.observers {
		observe(prop)
	}
	return freed, nil
}

// prefers reports whether reviewer rev ranks a strictly ahead of b in its
// list.
func (r *run) prefers(rev, a, b string) bool {
	return r.rank[rev][a] < r.rank[rev][b]
}

func (r *run) engage(p, rev string) {
	r.partnerOf[p] = rev
	r.fianceOf[rev] = p
}

func (r *run) result() *ir.Matching {
	pairs := make([]ir.Pair, 0, r.n)
	for _, p := range r.inst.Proposers {
		pairs = append(pairs, ir.Pair{Proposer: p, Reviewer: r.partnerOf[p]})
	}
	return &ir.Matching{
		Pairs:     pairs,
		Proposals: r.quota.Current(),
		Schedule:  string(r.schedule),
	}
}
