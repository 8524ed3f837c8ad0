package service

import (
	"context"
	"sync"
	"time"
)

// StepOutcome tells a Scheduler whether to keep running a task.
type StepOutcome int

const (
	// StepContinue schedules the step again after the interval.
	StepContinue StepOutcome = iota
	// StepComplete ends the task successfully.
	StepComplete
	// StepFail ends the task after a failure.
	StepFail
)

func (o StepOutcome) String() string {
	switch o {
	case StepContinue:
		return "continue"
	case StepComplete:
		return "complete"
	case StepFail:
		return "fail"
	default:
		return "unknown"
	}
}

// StepFunc is one iteration of a repeating task.
type StepFunc func(ctx context.Context) StepOutcome

// Task is a handle to a repeating step.
type Task interface {
	// Stop prevents further steps from starting. It is safe to call more
	// than once and from inside a running step. A step already in flight
	// runs to completion.
	Stop()
}

// Scheduler runs a step repeatedly until it reports a terminal outcome or
// its task is stopped.
type Scheduler interface {
	Every(ctx context.Context, interval time.Duration, step StepFunc) Task
}

// TickerScheduler runs each task on its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

// NewTickerScheduler creates a TickerScheduler.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

type tickerTask struct {
	stop chan struct{}
	once sync.Once
}

func (t *tickerTask) Stop() {
	t.once.Do(func() { close(t.stop) })
}

// Every starts step after the first interval elapses. The task also ends
// when ctx is done, but a step that has started always receives a context
// that stopping the task cannot cancel.
func (s *TickerScheduler) Every(ctx context.Context, interval time.Duration, step StepFunc) Task {
	task := &tickerTask{stop: make(chan struct{})}
	stepCtx := context.WithoutCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-task.stop:
				return
			case <-ticker.C:
			}
			// Stop may have raced with the tick.
			select {
			case <-task.stop:
				return
			default:
			}
			if step(stepCtx) != StepContinue {
				task.Stop()
				return
			}
		}
	}()
	return task
}

// ManualScheduler runs steps only when Tick is called. It holds at most one
// live task, the most recently scheduled one.
type ManualScheduler struct {
	mu      sync.Mutex
	current *manualTask
	started int
}

// NewManualScheduler creates a ManualScheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

type manualTask struct {
	s       *ManualScheduler
	ctx     context.Context
	step    StepFunc
	stopped bool
}

func (t *manualTask) Stop() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.stopped = true
}

// Every registers step as the live task. The interval is ignored.
func (s *ManualScheduler) Every(ctx context.Context, _ time.Duration, step StepFunc) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.stopped = true
	}
	s.current = &manualTask{s: s, ctx: context.WithoutCancel(ctx), step: step}
	s.started++
	return s.current
}

// Tick runs the live task's step once. It reports false when there is no
// live task.
func (s *ManualScheduler) Tick() (StepOutcome, bool) {
	s.mu.Lock()
	t := s.current
	if t == nil || t.stopped {
		s.mu.Unlock()
		return StepContinue, false
	}
	s.mu.Unlock()

	out := t.step(t.ctx)
	if out != StepContinue {
		t.Stop()
	}
	return out, true
}

// Active reports whether a live task is scheduled.
func (s *ManualScheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && !s.current.stopped
}

// Started returns the number of tasks scheduled so far.
func (s *ManualScheduler) Started() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
