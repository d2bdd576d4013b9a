package observe

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/teammesh/supervisor"
)

// EventType tags a recorded event.
type EventType string

const (
	EventRunStarted   EventType = "run_started"
	EventDecided      EventType = "decided"
	EventStepStarted  EventType = "step_started"
	EventStepFinished EventType = "step_finished"
	EventRunFinished  EventType = "run_finished"
)

// Event is one entry of a recorded trace.
type Event struct {
	Type EventType
	Time time.Time
	Run  RunInfo

	// Decision fields
	Next   string
	Raw    string
	Reason string

	// Step fields
	Actor  string
	Step   int
	Output string
	Err    string

	// Run summary fields
	Termination string
	Steps       int
}

// Recorder is an Observer keeping every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

var _ Observer = (*Recorder)(nil)

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.now == nil {
		r.now = time.Now
	}
	e.Time = r.now()
	r.events = append(r.events, e)
}

// RunStarted implements Observer.
func (r *Recorder) RunStarted(ctx context.Context, run RunInfo) context.Context {
	r.add(Event{Type: EventRunStarted, Run: run})
	return ctx
}

// Decided implements Observer.
func (r *Recorder) Decided(_ context.Context, run RunInfo, d supervisor.Decision) {
	r.add(Event{Type: EventDecided, Run: run, Next: d.Next, Raw: d.Raw, Reason: string(d.Reason)})
}

// StepStarted implements Observer.
func (r *Recorder) StepStarted(ctx context.Context, step StepInfo) context.Context {
	r.add(Event{Type: EventStepStarted, Run: step.Run, Actor: step.Actor, Step: step.Step})
	return ctx
}

// StepFinished implements Observer.
func (r *Recorder) StepFinished(_ context.Context, step StepInfo, res StepResult) {
	e := Event{
		Type:   EventStepFinished,
		Run:    step.Run,
		Actor:  step.Actor,
		Step:   step.Step,
		Output: res.Output.Text(),
	}
	if res.Err != nil {
		e.Err = res.Err.Error()
	}
	r.add(e)
}

// RunFinished implements Observer.
func (r *Recorder) RunFinished(_ context.Context, run RunInfo, sum RunSummary) {
	e := Event{Type: EventRunFinished, Run: run, Termination: sum.Termination, Steps: sum.Steps}
	if sum.Err != nil {
		e.Err = sum.Err.Error()
	}
	r.add(e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events of the given type.
func (r *Recorder) Filter(t EventType) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Decisions returns the routing targets in decision order.
func (r *Recorder) Decisions() []string {
	var out []string
	for _, e := range r.Filter(EventDecided) {
		out = append(out, e.Next)
	}
	return out
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
