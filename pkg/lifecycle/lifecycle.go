/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package lifecycle tracks the run state of the long lived event components.
package lifecycle

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/trustbloc/logutil-go/pkg/log"

	"github.com/trustbloc/vp-verifier/internal/logfields"
)

var logger = log.New("lifecycle")

// ErrNotStarted is returned when a component is used before Start or after Stop.
var ErrNotStarted = errors.New("component is not running")

// State of a component.
type State uint32

const (
	StateNotStarted State = iota
	StateStarting
	StateStarted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateStarting:
		return "starting"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", uint32(s))
	}
}

// Opt configures a Lifecycle.
type Opt func(l *Lifecycle)

// WithStart runs fn once on the first Start.
func WithStart(fn func()) Opt {
	return func(l *Lifecycle) {
		l.onStart = fn
	}
}

// WithStop runs fn once when a started component is stopped.
func WithStop(fn func()) Opt {
	return func(l *Lifecycle) {
		l.onStop = fn
	}
}

// Lifecycle moves a named component through not-started, starting, started and stopped. Each
// transition happens at most once.
type Lifecycle struct {
	name    string
	state   atomic.Uint32
	onStart func()
	onStop  func()
}

// New returns a component lifecycle in the not-started state.
func New(name string, opts ...Opt) *Lifecycle {
	l := &Lifecycle{name: name}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Start runs the start hook and reports whether this call started the component.
func (l *Lifecycle) Start() bool {
	if !l.state.CompareAndSwap(uint32(StateNotStarted), uint32(StateStarting)) {
		logger.Debug("component already started", logfields.WithComponent(l.name),
			logfields.WithState(l.State().String()))

		return false
	}

	if l.onStart != nil {
		l.onStart()
	}

	l.state.Store(uint32(StateStarted))

	logger.Debug("component started", logfields.WithComponent(l.name))

	return true
}

// Stop runs the stop hook and reports whether this call stopped the component. A component that
// never started stays not-started.
func (l *Lifecycle) Stop() bool {
	if !l.state.CompareAndSwap(uint32(StateStarted), uint32(StateStopped)) {
		logger.Debug("component not running", logfields.WithComponent(l.name),
			logfields.WithState(l.State().String()))

		return false
	}

	if l.onStop != nil {
		l.onStop()
	}

	logger.Debug("component stopped", logfields.WithComponent(l.name))

	return true
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return State(l.state.Load())
}

// Running returns ErrNotStarted, naming the component, unless it is started.
func (l *Lifecycle) Running() error {
	if s := l.State(); s != StateStarted {
		return fmt.Errorf("%s is %s: %w", l.name, s, ErrNotStarted)
	}

	return nil
}
