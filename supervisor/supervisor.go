package supervisor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/teammesh/core"
)

// Reason explains how a Decision was reached.
type Reason string

const (
	// ReasonRouted means the answer named a member.
	ReasonRouted Reason = "routed"
	// ReasonTerminal means the answer named the terminal marker.
	ReasonTerminal Reason = "terminal"
	// ReasonUnparseable means the answer contained no vocabulary token and
	// the run was forced to end.
	ReasonUnparseable Reason = "unparseable"
	// ReasonUnavailable means the decision engine kept failing and the run
	// was forced to end.
	ReasonUnavailable Reason = "unavailable"
)

// Decision is the outcome of one supervisor turn.
type Decision struct {
	// Next is a member name or core.Terminal.
	Next string
	// Raw is the unprocessed decision engine answer.
	Raw string
	// Reason classifies the decision.
	Reason Reason
	// Attempts counts decision engine calls, retries included.
	Attempts int
	// Err holds the last decision engine error for ReasonUnavailable.
	Err error
}

// Forced reports whether the terminal marker was imposed rather than chosen.
func (d Decision) Forced() bool {
	return d.Reason == ReasonUnparseable || d.Reason == ReasonUnavailable
}

// RetryPolicy bounds how often a failing decision engine is retried.
type RetryPolicy struct {
	// MaxAttempts is the total number of calls; values below 1 mean 1.
	MaxAttempts int
	// InitialDelay is the wait after the first failure.
	InitialDelay time.Duration
	// Multiplier grows the delay after each further failure (default 2).
	Multiplier float64
	// MaxDelay caps the delay; 0 means uncapped.
	MaxDelay time.Duration
}

// DefaultRetryPolicy retries twice with exponential backoff.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
	Multiplier:   2,
	MaxDelay:     5 * time.Second,
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.InitialDelay <= 0 || attempt < 1 {
		return 0
	}

	multiplier := p.Multiplier
	if multiplier == 0 {
		multiplier = 2
	}

	delay := time.Duration(float64(p.InitialDelay) * math.Pow(multiplier, float64(attempt-1)))
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Options configures a Supervisor.
type Options struct {
	Retry RetryPolicy
}

// Supervisor decides which member of an orchestrator acts next.
type Supervisor struct {
	name   string
	engine DecisionEngine
	vocab  Vocabulary
	retry  RetryPolicy
}

// New creates a supervisor that routes over vocab using engine.
func New(name string, engine DecisionEngine, vocab Vocabulary, optFns ...func(o *Options)) *Supervisor {
	opts := Options{Retry: DefaultRetryPolicy}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Supervisor{
		name:   name,
		engine: engine,
		vocab:  vocab,
		retry:  opts.Retry,
	}
}

// Name returns the supervisor name.
func (s *Supervisor) Name() string { return s.name }

// Vocabulary returns the tokens the supervisor routes over.
func (s *Supervisor) Vocabulary() Vocabulary { return s.vocab }

// Decide consults the decision engine with the full conversation log and
// sets state.Next. It never appends to the log. The only error returned is
// the context error when the run is cancelled; every other failure resolves
// to a forced core.Terminal decision.
func (s *Supervisor) Decide(runCtx *core.RunContext, state *core.State) (Decision, error) {
	var (
		raw     string
		lastErr error
		attempt int
	)

	history := state.Log.Messages()
	maxAttempts := s.retry.attempts()

	for attempt = 1; attempt <= maxAttempts; attempt++ {
		if err := runCtx.Err(); err != nil {
			return Decision{Attempts: attempt - 1}, err
		}

		raw, lastErr = s.call(runCtx.Context, history)
		if lastErr == nil {
			break
		}

		if err := runCtx.Err(); err != nil {
			return Decision{Attempts: attempt}, err
		}

		runCtx.LogWarn("supervisor.decide.failed",
			"supervisor", s.name,
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", lastErr.Error(),
		)

		if attempt < maxAttempts {
			if err := sleep(runCtx.Context, s.retry.Delay(attempt)); err != nil {
				return Decision{Attempts: attempt}, err
			}
		}
	}

	var d Decision
	if lastErr != nil {
		d = Decision{
			Next:     core.Terminal,
			Reason:   ReasonUnavailable,
			Attempts: maxAttempts,
			Err:      fmt.Errorf("%w: %v", core.ErrDecisionUnavailable, lastErr),
		}
	} else {
		d = s.parse(raw)
		d.Attempts = attempt
	}

	state.Next = d.Next
	s.log(runCtx, d)

	return d, nil
}

// parse maps a raw answer onto the vocabulary.
func (s *Supervisor) parse(raw string) Decision {
	token, ok := s.vocab.Match(raw)
	switch {
	case !ok:
		return Decision{Next: core.Terminal, Raw: raw, Reason: ReasonUnparseable}
	case token == core.Terminal:
		return Decision{Next: core.Terminal, Raw: raw, Reason: ReasonTerminal}
	default:
		return Decision{Next: token, Raw: raw, Reason: ReasonRouted}
	}
}

// call invokes the decision engine, turning a panic into an error.
func (s *Supervisor) call(ctx context.Context, history []core.Message) (raw string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decision engine panic: %v", r)
		}
	}()

	if s.engine == nil {
		return "", fmt.Errorf("no decision engine configured")
	}

	return s.engine.Decide(ctx, history)
}

type decisionLogger interface {
	LogDecision(supervisor, next, raw, reason string, attempts int)
}

func (s *Supervisor) log(runCtx *core.RunContext, d Decision) {
	if dl, ok := runCtx.Logger().(decisionLogger); ok {
		dl.LogDecision(s.name, d.Next, d.Raw, string(d.Reason), d.Attempts)
		return
	}

	args := []any{
		"supervisor", s.name,
		"next", d.Next,
		"reason", string(d.Reason),
		"attempts", d.Attempts,
		"raw", d.Raw,
	}
	if d.Forced() {
		runCtx.LogWarn("supervisor.decision", args...)
		return
	}
	runCtx.LogInfo("supervisor.decision", args...)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
