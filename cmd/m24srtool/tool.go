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

package main

import (
	"context"
	"fmt"
	"time"

	m24sr "github.com/ZaparooProject/go-m24sr"
	"github.com/ZaparooProject/go-m24sr/events"
	"github.com/ZaparooProject/go-m24sr/pins"
)

const releaseTimeout = time.Second

// tool runs driver requests on an actor and waits for their notification,
// so the same code works whether replies are polled or signalled on GPO
type tool struct {
	actor   *events.Actor
	results chan m24sr.Event
}

func newTool(d *m24sr.Driver, gpo *pins.GPO) *tool {
	t := &tool{results: make(chan m24sr.Event, 16)}
	d.SetListener(m24sr.EventListener(func(_ *m24sr.Driver, ev m24sr.Event) {
		t.results <- ev
	}))

	config := events.DefaultConfig()
	config.OnEventError = func(err error) {
		_, _ = fmt.Printf("resume failed: %v\n", err)
	}
	if gpo == nil {
		t.actor = events.NewActor(d, nil, config)
	} else {
		t.actor = events.NewActor(d, gpo, config)
	}
	return t
}

func (t *tool) start(ctx context.Context) error {
	if err := t.actor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start event loop: %w", err)
	}
	return nil
}

func (t *tool) stop() error {
	return t.actor.Stop(context.Background())
}

// call runs fn on the actor without waiting for a notification
func (t *tool) call(ctx context.Context, fn func(*m24sr.Driver) error) error {
	return t.actor.Do(ctx, fn)
}

// step issues one request and waits for the event that ends it
func (t *tool) step(ctx context.Context, fn func(*m24sr.Driver) error) (m24sr.Event, error) {
	if err := t.actor.Do(ctx, fn); err != nil {
		// a rejected request may already have been reported
		select {
		case <-t.results:
		default:
		}
		return m24sr.Event{}, err
	}

	select {
	case ev := <-t.results:
		if ev.Err != nil {
			return ev, fmt.Errorf("%s: %w", ev.Kind, ev.Err)
		}
		return ev, nil
	case <-ctx.Done():
		return m24sr.Event{}, fmt.Errorf("waiting for reply: %w", ctx.Err())
	}
}

// drain drops notifications nobody waits for
func (t *tool) drain() {
	for {
		select {
		case <-t.results:
		default:
			return
		}
	}
}

// run is step for callers that only need the outcome
func (t *tool) run(ctx context.Context, fn func(*m24sr.Driver) error) error {
	_, err := t.step(ctx, fn)
	return err
}

// readID returns the IC reference carried by the final event, so it works
// in async mode where ReadID itself returns zero
func (t *tool) readID(ctx context.Context) (byte, error) {
	ev, err := t.step(ctx, func(d *m24sr.Driver) error {
		_, err := d.ReadID()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("read ID failed: %w", err)
	}
	return ev.ID, nil
}

// session opens an I2C session, runs fn and releases the session again
func (t *tool) session(ctx context.Context, async bool, fn func() error) error {
	if err := t.run(ctx, (*m24sr.Driver).OpenSession); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if err := t.run(releaseCtx, (*m24sr.Driver).Deselect); err != nil {
			_, _ = fmt.Printf("failed to release session: %v\n", err)
		}
	}()

	if async {
		err := t.run(ctx, func(d *m24sr.Driver) error { return d.ManageI2CGPO(m24sr.GPOI2CAnswerReady) })
		if err != nil {
			return fmt.Errorf("failed to enable answer ready signal: %w", err)
		}
	}

	return fn()
}

// selectNDEF selects the application and the default NDEF file
func (t *tool) selectNDEF(ctx context.Context) error {
	if err := t.run(ctx, (*m24sr.Driver).SelectApplication); err != nil {
		return err
	}
	return t.run(ctx, func(d *m24sr.Driver) error { return d.SelectNDEFFile(m24sr.DefaultNDEFFileID) })
}
