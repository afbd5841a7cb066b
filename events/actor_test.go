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

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	m24sr "github.com/ZaparooProject/go-m24sr"
	testutil "github.com/ZaparooProject/go-m24sr/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEdges struct {
	ch chan struct{}
}

func (f *fakeEdges) WaitForEdge(timeout time.Duration) bool {
	select {
	case <-f.ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

func newAsyncDriver(t *testing.T) (*m24sr.Driver, *m24sr.MockTransport, <-chan m24sr.Event) {
	t.Helper()

	tag := testutil.NewVirtualM24SR()
	copy(tag.Files[testutil.NDEFFileID], []byte{0x00, 0x05, 0xD1, 0x01, 0x01})

	mock := m24sr.NewMockTransport()
	mock.SetResponder(tag.Handle)

	events := make(chan m24sr.Event, 16)
	listener := m24sr.EventListener(func(_ *m24sr.Driver, ev m24sr.Event) {
		if ev.Data != nil {
			ev.Data = append([]byte(nil), ev.Data...)
		}
		events <- ev
	})

	d, err := m24sr.New(mock, m24sr.WithMode(m24sr.ModeAsync), m24sr.WithListener(listener))
	require.NoError(t, err)
	return d, mock, events
}

func waitEvent(t *testing.T, events <-chan m24sr.Event) m24sr.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return m24sr.Event{}
	}
}

func startActor(t *testing.T, a *Actor) {
	t.Helper()
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, a.Stop(ctx))
	})
}

func TestActor_ResumesOnEdge(t *testing.T) {
	t.Parallel()

	d, _, events := newAsyncDriver(t)
	edges := &fakeEdges{ch: make(chan struct{})}
	a := NewActor(d, edges, &Config{EdgeTimeout: 5 * time.Millisecond, QueueSize: 1})
	startActor(t, a)

	ctx := context.Background()
	steps := []struct {
		run  func(*m24sr.Driver) error
		kind m24sr.OperationKind
	}{
		{run: (*m24sr.Driver).SelectApplication, kind: m24sr.OpSelectApplication},
		{run: func(d *m24sr.Driver) error { return d.SelectNDEFFile(m24sr.DefaultNDEFFileID) }, kind: m24sr.OpSelectNDEFFile},
	}
	for _, step := range steps {
		require.NoError(t, a.Do(ctx, step.run))
		assert.Empty(t, events, "no notification before the edge")

		edges.ch <- struct{}{}
		ev := waitEvent(t, events)
		assert.Equal(t, step.kind, ev.Kind)
		require.NoError(t, ev.Err)
	}

	buf := make([]byte, 2)
	require.NoError(t, a.Do(ctx, func(d *m24sr.Driver) error { return d.ReadBinary(0, buf) }))
	edges.ch <- struct{}{}
	ev := waitEvent(t, events)
	assert.Equal(t, m24sr.OpReadBinary, ev.Kind)
	require.NoError(t, ev.Err)
	assert.Equal(t, []byte{0x00, 0x05}, ev.Data)

	m := a.GetMetrics()
	assert.Equal(t, int64(3), m.Jobs)
	assert.Equal(t, int64(3), m.Edges)
	assert.Zero(t, m.EventErrors)
}

func TestActor_Notify(t *testing.T) {
	t.Parallel()

	d, _, events := newAsyncDriver(t)
	a := NewActor(d, nil, nil)
	startActor(t, a)

	require.NoError(t, a.Do(context.Background(), (*m24sr.Driver).SelectApplication))
	assert.Equal(t, m24sr.OpSelectApplication, d.Outstanding())

	a.Notify()
	ev := waitEvent(t, events)
	assert.Equal(t, m24sr.OpSelectApplication, ev.Kind)
	require.NoError(t, ev.Err)
}

func TestActor_EventError(t *testing.T) {
	t.Parallel()

	d, mock, events := newAsyncDriver(t)
	errs := make(chan error, 1)
	a := NewActor(d, nil, &Config{
		EdgeTimeout:  time.Millisecond,
		QueueSize:    1,
		OnEventError: func(err error) { errs <- err },
	})
	startActor(t, a)

	require.NoError(t, a.Do(context.Background(), (*m24sr.Driver).SelectApplication))
	mock.SetError(m24sr.MockReceive, m24sr.ErrTransportRead)

	a.Notify()
	ev := waitEvent(t, events)
	require.ErrorIs(t, ev.Err, m24sr.ErrTransportRead)

	select {
	case err := <-errs:
		require.ErrorIs(t, err, m24sr.ErrTransportRead)
	case <-time.After(time.Second):
		t.Fatal("OnEventError not called")
	}
	assert.Equal(t, int64(1), a.GetMetrics().EventErrors)
}

func TestActor_JobError(t *testing.T) {
	t.Parallel()

	d, _, _ := newAsyncDriver(t)
	a := NewActor(d, nil, nil)
	startActor(t, a)

	errJob := errors.New("job failed")
	err := a.Do(context.Background(), func(*m24sr.Driver) error { return errJob })
	require.ErrorIs(t, err, errJob)
	assert.Equal(t, int64(1), a.GetMetrics().JobErrors)
}

func TestActor_Lifecycle(t *testing.T) {
	t.Parallel()

	d, _, _ := newAsyncDriver(t)
	a := NewActor(d, &fakeEdges{ch: make(chan struct{})}, &Config{EdgeTimeout: time.Millisecond, QueueSize: 1})

	require.NoError(t, a.Start(context.Background()))
	require.Error(t, a.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, a.Stop(ctx))
	require.NoError(t, a.Stop(ctx))

	err := a.Do(ctx, func(*m24sr.Driver) error { return nil })
	require.ErrorIs(t, err, ErrActorStopped)
}

func TestActor_StopReleasesQueuedJob(t *testing.T) {
	t.Parallel()

	d, _, _ := newAsyncDriver(t)
	a := NewActor(d, nil, &Config{EdgeTimeout: time.Millisecond, QueueSize: 1})
	startActor(t, a)

	running := make(chan struct{})
	release := make(chan struct{})
	first := make(chan error, 1)
	go func() {
		first <- a.Do(context.Background(), func(*m24sr.Driver) error {
			close(running)
			<-release
			return nil
		})
	}()
	<-running

	second := make(chan error, 1)
	go func() {
		second <- a.Do(context.Background(), func(*m24sr.Driver) error { return nil })
	}()
	require.Eventually(t, func() bool { return len(a.jobs) == 1 }, time.Second, time.Millisecond)

	stopped := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		stopped <- a.Stop(ctx)
	}()
	require.Eventually(t, func() bool {
		select {
		case <-a.stop:
			return true
		default:
			return false
		}
	}, time.Second, time.Millisecond)
	close(release)

	select {
	case err := <-second:
		if err != nil {
			require.ErrorIs(t, err, ErrActorStopped)
		}
	case <-time.After(time.Second):
		t.Fatal("queued Do still blocked after Stop")
	}
	if err := <-first; err != nil {
		require.ErrorIs(t, err, ErrActorStopped)
	}
	require.NoError(t, <-stopped)
}
