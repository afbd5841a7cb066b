// go-m24sr
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-m24sr.
//
// go-m24sr is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-m24sr is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-m24sr; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package events runs a Driver on a single goroutine and resumes
// asynchronous operations when the GPO line signals readiness
package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	m24sr "github.com/ZaparooProject/go-m24sr"
)

// ErrActorStopped is returned for jobs submitted after Stop or still
// queued when Stop is called
var ErrActorStopped = errors.New("actor stopped")

// EdgeSource reports readiness edges of the GPO line
type EdgeSource interface {
	WaitForEdge(timeout time.Duration) bool
}

// Config holds actor configuration
type Config struct {
	// OnEventError is called on the actor goroutine when resuming fails
	OnEventError func(err error)
	// EdgeTimeout bounds one wait for an edge so Stop is noticed
	EdgeTimeout time.Duration
	// QueueSize is the job queue capacity
	QueueSize int
}

// DefaultConfig returns default actor configuration
func DefaultConfig() *Config {
	return &Config{
		EdgeTimeout: 100 * time.Millisecond,
		QueueSize:   8,
	}
}

// Metrics tracks actor activity
type Metrics struct {
	Jobs        int64 // jobs run
	JobErrors   int64 // jobs that returned an error
	Edges       int64 // readiness edges handled
	EventErrors int64 // ManageEvent failures
}

type job struct {
	fn     func(*m24sr.Driver) error
	result chan error
}

// Actor owns a Driver. Every job and every resume runs on the actor
// goroutine, so listener callbacks do too.
type Actor struct {
	driver      *m24sr.Driver
	edges       EdgeSource
	config      *Config
	jobs        chan job
	ready       chan struct{}
	stop        chan struct{}
	wg          sync.WaitGroup
	stopOnce    sync.Once
	started     atomic.Bool
	jobCount    int64
	jobErrors   int64
	edgeCount   int64
	eventErrors int64
}

// NewActor creates an actor for driver. edges may be nil when the driver
// only runs in sync mode.
func NewActor(driver *m24sr.Driver, edges EdgeSource, config *Config) *Actor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Actor{
		driver: driver,
		edges:  edges,
		config: config,
		jobs:   make(chan job, config.QueueSize),
		ready:  make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
}

// Start launches the actor goroutines. They run until Stop or ctx is done.
func (a *Actor) Start(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return errors.New("actor already started")
	}

	a.wg.Add(1)
	go a.loop(ctx)

	if a.edges != nil {
		a.wg.Add(1)
		go a.watchEdges(ctx)
	}
	return nil
}

// Do runs fn on the actor goroutine and waits for its result. Completion
// of asynchronous operations is reported through the driver's listener.
func (a *Actor) Do(ctx context.Context, fn func(*m24sr.Driver) error) error {
	j := job{fn: fn, result: make(chan error, 1)}

	select {
	case <-a.stop:
		return ErrActorStopped
	default:
	}

	select {
	case <-a.stop:
		return ErrActorStopped
	case <-ctx.Done():
		return ctx.Err()
	case a.jobs <- j:
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-a.stop:
		// the loop may have run the job before it saw stop
		select {
		case err := <-j.result:
			return err
		default:
			return ErrActorStopped
		}
	}
}

// Notify schedules a resume as if the GPO line had fallen. Use it when the
// readiness signal comes from somewhere other than an EdgeSource.
func (a *Actor) Notify() {
	select {
	case a.ready <- struct{}{}:
	default:
	}
}

// Stop ends the actor goroutines and waits for them
func (a *Actor) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.stop) })

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// GetMetrics returns current operational metrics
func (a *Actor) GetMetrics() Metrics {
	return Metrics{
		Jobs:        atomic.LoadInt64(&a.jobCount),
		JobErrors:   atomic.LoadInt64(&a.jobErrors),
		Edges:       atomic.LoadInt64(&a.edgeCount),
		EventErrors: atomic.LoadInt64(&a.eventErrors),
	}
}

func (a *Actor) loop(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		case j := <-a.jobs:
			err := j.fn(a.driver)
			atomic.AddInt64(&a.jobCount, 1)
			if err != nil {
				atomic.AddInt64(&a.jobErrors, 1)
			}
			j.result <- err
		case <-a.ready:
			atomic.AddInt64(&a.edgeCount, 1)
			if err := a.driver.ManageEvent(); err != nil {
				atomic.AddInt64(&a.eventErrors, 1)
				if a.config.OnEventError != nil {
					a.config.OnEventError(err)
				}
			}
		}
	}
}

func (a *Actor) watchEdges(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		default:
		}

		if a.edges.WaitForEdge(a.config.EdgeTimeout) {
			a.Notify()
		}
	}
}
