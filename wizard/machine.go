// Package wizard models the multi-step website forms as explicit finite
// state machines: ordered steps, a guarded forward transition per step, an
// unconditional backward transition and a single terminal submission.
package wizard

import (
	"context"
	"errors"
	"fmt"
)

// Step identifies a wizard state. Values are the zero-based step index.
type Step int

type Event string

const (
	EventNext Event = "next"
	EventBack Event = "back"
)

var (
	ErrFirstStep      = errors.New("wizard: already at first step")
	ErrLastStep       = errors.New("wizard: already at last step")
	ErrNotFinalStep   = errors.New("wizard: submit is only allowed from the final step")
	ErrSubmitted      = errors.New("wizard: already submitted")
	ErrNoSubmitter    = errors.New("wizard: no submitter")
	ErrUnknownEvent   = errors.New("wizard: unknown event")
	ErrStepsUndefined = errors.New("wizard: no steps defined")
)

// ValidationError reports the field that blocks leaving a step.
type ValidationError struct {
	Step    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StepDef declares one state. A nil Validate marks the step as optional.
type StepDef[T any] struct {
	Step     Step
	Name     string
	Validate func(*T) error
}

// Submitter receives the completed form exactly once per Submit call.
type Submitter[T any] func(ctx context.Context, data T) error

type transitionKey struct {
	from  Step
	event Event
}

// Machine is a linear wizard over form data of type T. It is not safe for
// concurrent use; each visitor or request owns its own machine.
type Machine[T any] struct {
	steps       []StepDef[T]
	index       map[Step]int
	transitions map[transitionKey]Step
	current     Step
	data        T
	submitted   bool
}

// NewMachine builds a machine positioned on the first step. Steps must be
// listed in order; the transition table is derived from that order.
func NewMachine[T any](steps []StepDef[T], data T) (*Machine[T], error) {
	if len(steps) == 0 {
		return nil, ErrStepsUndefined
	}

	m := &Machine[T]{
		steps:       steps,
		index:       make(map[Step]int, len(steps)),
		transitions: make(map[transitionKey]Step, 2*len(steps)),
		current:     steps[0].Step,
		data:        data,
	}
	for i, s := range steps {
		if _, dup := m.index[s.Step]; dup {
			return nil, fmt.Errorf("wizard: duplicate step %d", s.Step)
		}
		m.index[s.Step] = i
		if i+1 < len(steps) {
			m.transitions[transitionKey{s.Step, EventNext}] = steps[i+1].Step
		}
		if i > 0 {
			m.transitions[transitionKey{s.Step, EventBack}] = steps[i-1].Step
		}
	}
	return m, nil
}

func (m *Machine[T]) Current() Step { return m.current }

func (m *Machine[T]) CurrentName() string { return m.steps[m.index[m.current]].Name }

func (m *Machine[T]) IsFinal() bool { return m.index[m.current] == len(m.steps)-1 }

func (m *Machine[T]) Submitted() bool { return m.submitted }

// Data returns a copy of the collected form data.
func (m *Machine[T]) Data() T { return m.data }

// Update mutates the form data in place. It fails once submitted.
func (m *Machine[T]) Update(fn func(*T)) error {
	if m.submitted {
		return ErrSubmitted
	}
	fn(&m.data)
	return nil
}

// CanAdvance runs the current step's validator without moving.
func (m *Machine[T]) CanAdvance() error {
	v := m.steps[m.index[m.current]].Validate
	if v == nil {
		return nil
	}
	return v(&m.data)
}

// Fire applies event to the machine. Next is guarded by the current step's
// validator; Back always succeeds unless on the first step.
func (m *Machine[T]) Fire(event Event) error {
	if m.submitted {
		return ErrSubmitted
	}
	if event != EventNext && event != EventBack {
		return ErrUnknownEvent
	}

	to, ok := m.transitions[transitionKey{m.current, event}]
	if !ok {
		if event == EventNext {
			return ErrLastStep
		}
		return ErrFirstStep
	}
	if event == EventNext {
		if err := m.CanAdvance(); err != nil {
			return err
		}
	}
	m.current = to
	return nil
}

func (m *Machine[T]) Next() error { return m.Fire(EventNext) }

func (m *Machine[T]) Back() error { return m.Fire(EventBack) }

// Submit validates the final step and hands the data to submit. A failed
// submission leaves the machine on the final step so it can be retried;
// a successful one locks it.
func (m *Machine[T]) Submit(ctx context.Context, submit Submitter[T]) error {
	if m.submitted {
		return ErrSubmitted
	}
	if !m.IsFinal() {
		return ErrNotFinalStep
	}
	if submit == nil {
		return ErrNoSubmitter
	}
	if err := m.CanAdvance(); err != nil {
		return err
	}
	if err := submit(ctx, m.data); err != nil {
		return err
	}
	m.submitted = true
	return nil
}

// Complete walks a freshly built machine through every step and submits.
// It is how the server accepts a form the browser already filled in: each
// step's guard must pass in order.
func (m *Machine[T]) Complete(ctx context.Context, submit Submitter[T]) error {
	for !m.IsFinal() {
		if err := m.Next(); err != nil {
			return err
		}
	}
	return m.Submit(ctx, submit)
}
