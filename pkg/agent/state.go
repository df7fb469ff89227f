package agent

import (
	"fmt"
	"sync"
)

// RunStatus is the lifecycle phase of one run.
type RunStatus string

const (
	StatusNotStarted RunStatus = "not_started"
	StatusRunning    RunStatus = "running"
	StatusFinished   RunStatus = "finished"
	StatusFailed     RunStatus = "failed"
)

// StateMachine tracks a run through its lifecycle. Transitions are
// validated; an illegal transition is a programming error surfaced as an
// error return.
type StateMachine struct {
	mu     sync.Mutex
	status RunStatus
	err    error
}

// NewStateMachine creates a state machine in the not-started phase.
func NewStateMachine() *StateMachine {
	return &StateMachine{status: StatusNotStarted}
}

// Status returns the current phase.
func (s *StateMachine) Status() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the failure recorded by Fail, if any.
func (s *StateMachine) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Start transitions not_started -> running.
func (s *StateMachine) Start() error {
	return s.transition(StatusNotStarted, StatusRunning, nil)
}

// Finish transitions running -> finished.
func (s *StateMachine) Finish() error {
	return s.transition(StatusRunning, StatusFinished, nil)
}

// Fail transitions running -> failed, recording the cause.
func (s *StateMachine) Fail(err error) error {
	return s.transition(StatusRunning, StatusFailed, err)
}

func (s *StateMachine) transition(from, to RunStatus, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != from {
		return fmt.Errorf("invalid state transition %s -> %s (current: %s)", from, to, s.status)
	}
	s.status = to
	s.err = err
	return nil
}

// Clone returns an independent copy for a forked branch.
func (s *StateMachine) Clone() *StateMachine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &StateMachine{status: s.status, err: s.err}
}
