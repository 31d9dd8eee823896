/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package autosave debounces remote persistence of album changes and runs a
// periodic fallback flush so unsynced work is bounded in time even while the
// user keeps editing. At most one persist call is in flight per coordinator;
// a save becoming due during a flight is coalesced into a single follow-up
// reflecting the latest state.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"goalbumstudio/internal/domain"
	applog "goalbumstudio/internal/log"
)

// State is the save status surfaced to the UI indicator.
type State int

const (
	Saved State = iota
	Unsaved
	Saving
)

func (s State) String() string {
	switch s {
	case Saved:
		return "saved"
	case Unsaved:
		return "unsaved"
	case Saving:
		return "saving"
	default:
		return "unknown"
	}
}

// Default timer intervals.
const (
	DefaultDebounce = 5 * time.Second
	DefaultFallback = 2 * time.Minute
)

// Saver is the external persistence collaborator. Failures are retryable and
// non-fatal; they never roll back in-memory state.
type Saver interface {
	Save(ctx context.Context, al *domain.Album) error
}

// Options configures a Coordinator.
type Options struct {
	Debounce time.Duration
	Fallback time.Duration
	// OnState feeds the status indicator; OnFailure surfaces a persist
	// failure to the user. Both may be nil.
	OnState   func(State)
	OnFailure func(error)
}

// Coordinator is the autosave state machine. It observes change notifications
// (NoteChange), debounces persist calls, and force-flushes on a periodic
// fallback cycle while any work remains unsynced.
type Coordinator struct {
	source func() *domain.Album
	saver  Saver
	opts   Options
	log    *slog.Logger

	mu        sync.Mutex
	state     State
	dirty     bool // unsaved changes exist that no snapshot has captured yet
	inFlight  bool
	closed    bool
	debounce  *time.Timer
	lastSaved time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

// New creates a coordinator in the Saved state. source must return a snapshot
// of the latest album state; it is called once per persist attempt so a
// coalesced follow-up always reflects the newest edits.
func New(source func() *domain.Album, saver Saver, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Fallback <= 0 {
		opts.Fallback = DefaultFallback
	}
	c := &Coordinator{
		source: source,
		saver:  saver,
		opts:   opts,
		log:    applog.WithComponent("autosave"),
		state:  Saved,
		stop:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.fallbackLoop()
	return c
}

// NoteChange records that the album advanced past the last persisted state.
// It (re)arms the debounce timer, so a burst of edits produces one persist
// call after quiescence.
func (c *Coordinator) NoteChange() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.dirty = true
	var transition *State
	if c.state == Saved {
		c.state = Unsaved
		st := c.state
		transition = &st
	}
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.opts.Debounce, c.debounceFired)
	c.mu.Unlock()
	c.notify(transition)
}

func (c *Coordinator) debounceFired() {
	c.mu.Lock()
	if c.closed || !c.dirty || c.inFlight {
		// A flight will pick the change up via dirty; nothing else to do.
		c.mu.Unlock()
		return
	}
	c.startFlightLocked()
}

// startFlightLocked transitions to Saving and launches the persist goroutine.
// The caller must hold mu; it is released here.
func (c *Coordinator) startFlightLocked() {
	c.inFlight = true
	c.state = Saving
	st := c.state
	c.wg.Add(1)
	c.mu.Unlock()
	c.notify(&st)
	go c.persist()
}

// persist runs save attempts until the state is clean or an attempt fails.
// At most one instance runs at a time.
func (c *Coordinator) persist() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		c.dirty = false
		c.mu.Unlock()
		snap := c.source()

		err := c.saver.Save(context.Background(), snap)

		c.mu.Lock()
		if err != nil {
			// The edit is not lost: local state stays; the next debounce or
			// fallback cycle retries.
			c.state = Unsaved
			c.dirty = true
			c.inFlight = false
			c.mu.Unlock()
			st := Unsaved
			c.notify(&st)
			c.log.Warn("persist failed", slog.Any("err", err))
			if c.opts.OnFailure != nil {
				c.opts.OnFailure(err)
			}
			return
		}
		c.lastSaved = time.Now()
		if c.dirty {
			// Changes arrived while saving; one coalesced follow-up.
			c.mu.Unlock()
			continue
		}
		c.state = Saved
		c.inFlight = false
		c.mu.Unlock()
		st := Saved
		c.notify(&st)
		return
	}
}

// fallbackLoop bounds how long unsynced work can remain unsynced: if the
// state is still Unsaved when the periodic timer fires, a flush starts
// immediately, bypassing the debounce wait.
func (c *Coordinator) fallbackLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(c.opts.Fallback)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			if c.closed || !c.dirty || c.inFlight {
				c.mu.Unlock()
				continue
			}
			c.startFlightLocked()
		}
	}
}

// Flush forces an immediate synchronous persist of the current state, used by
// explicit "save now" and after restoring a recovery snapshot. If a persist
// is already in flight the change is coalesced into its follow-up and Flush
// returns nil without waiting.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.debounce != nil {
		c.debounce.Stop()
	}
	if c.inFlight {
		c.dirty = true
		c.mu.Unlock()
		return nil
	}
	c.inFlight = true
	c.state = Saving
	c.dirty = false
	c.mu.Unlock()
	st := Saving
	c.notify(&st)

	err := c.saver.Save(ctx, c.source())

	c.mu.Lock()
	if err != nil {
		c.state = Unsaved
		c.dirty = true
		c.inFlight = false
		c.mu.Unlock()
		stf := Unsaved
		c.notify(&stf)
		if c.opts.OnFailure != nil {
			c.opts.OnFailure(err)
		}
		return err
	}
	c.lastSaved = time.Now()
	redo := c.dirty
	if !redo {
		c.state = Saved
	}
	c.inFlight = false
	c.mu.Unlock()
	if redo {
		// Changes landed during the synchronous save; let the debounce or
		// fallback pick them up.
		return nil
	}
	sts := Saved
	c.notify(&sts)
	return nil
}

// State returns the current save status.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastSaved returns the wall-clock time of the last successful persist.
func (c *Coordinator) LastSaved() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSaved
}

// Close cancels the timers and waits for any in-flight persist. The
// coordinator must not be used afterwards; changes made after Close are not
// persisted.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.debounce != nil {
		c.debounce.Stop()
	}
	close(c.stop)
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Coordinator) notify(st *State) {
	if st == nil || c.opts.OnState == nil {
		return
	}
	c.opts.OnState(*st)
}
