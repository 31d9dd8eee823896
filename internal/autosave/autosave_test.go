/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package autosave

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"goalbumstudio/internal/domain"
)

type fakeSaver struct {
	mu       sync.Mutex
	calls    int
	active   int32
	overlap  bool
	delay    time.Duration
	failures int // fail the first N calls
	titles   []string
}

func (f *fakeSaver) Save(_ context.Context, al *domain.Album) error {
	if atomic.AddInt32(&f.active, 1) > 1 {
		f.mu.Lock()
		f.overlap = true
		f.mu.Unlock()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	atomic.AddInt32(&f.active, -1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.titles = append(f.titles, al.Title)
	if f.failures > 0 {
		f.failures--
		return errors.New("backend unavailable")
	}
	return nil
}

func (f *fakeSaver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func testAlbum(title string) *domain.Album {
	return &domain.Album{ID: "a1", Title: title}
}

func TestSingleChangeDebounces(t *testing.T) {
	saver := &fakeSaver{}
	al := testAlbum("v1")
	var mu sync.Mutex
	c := New(func() *domain.Album {
		mu.Lock()
		defer mu.Unlock()
		return al
	}, saver, Options{Debounce: 20 * time.Millisecond, Fallback: time.Hour})
	defer c.Close()

	c.NoteChange()
	if got := c.State(); got != Unsaved {
		t.Fatalf("state after change = %v, want %v", got, Unsaved)
	}
	if saver.callCount() != 0 {
		t.Fatalf("saved before debounce elapsed")
	}
	waitFor(t, time.Second, func() bool { return c.State() == Saved })
	if got := saver.callCount(); got != 1 {
		t.Fatalf("save calls = %d, want 1", got)
	}
}

func TestRapidChangesCoalesce(t *testing.T) {
	saver := &fakeSaver{}
	c := New(func() *domain.Album { return testAlbum("final") }, saver,
		Options{Debounce: 30 * time.Millisecond, Fallback: time.Hour})
	defer c.Close()

	for i := 0; i < 10; i++ {
		c.NoteChange()
		time.Sleep(3 * time.Millisecond)
	}
	waitFor(t, time.Second, func() bool { return c.State() == Saved })
	if got := saver.callCount(); got != 1 {
		t.Fatalf("10 rapid changes produced %d saves, want 1", got)
	}
	saver.mu.Lock()
	first := saver.titles[0]
	saver.mu.Unlock()
	if first != "final" {
		t.Fatalf("persisted snapshot %q, want latest state", first)
	}
}

func TestChangeDuringFlightCoalescedFollowUp(t *testing.T) {
	saver := &fakeSaver{delay: 40 * time.Millisecond}
	var mu sync.Mutex
	title := "v1"
	c := New(func() *domain.Album {
		mu.Lock()
		defer mu.Unlock()
		return testAlbum(title)
	}, saver, Options{Debounce: 5 * time.Millisecond, Fallback: time.Hour})
	defer c.Close()

	c.NoteChange()
	waitFor(t, time.Second, func() bool { return c.State() == Saving })
	mu.Lock()
	title = "v2"
	mu.Unlock()
	c.NoteChange()

	waitFor(t, 2*time.Second, func() bool { return c.State() == Saved })
	if got := saver.callCount(); got != 2 {
		t.Fatalf("save calls = %d, want exactly one follow-up (2 total)", got)
	}
	saver.mu.Lock()
	overlap := saver.overlap
	last := saver.titles[len(saver.titles)-1]
	saver.mu.Unlock()
	if overlap {
		t.Fatal("two persist calls ran concurrently")
	}
	if last != "v2" {
		t.Fatalf("follow-up persisted %q, want v2", last)
	}
}

func TestFailureKeepsUnsavedAndRetries(t *testing.T) {
	saver := &fakeSaver{failures: 1}
	var failures int32
	c := New(func() *domain.Album { return testAlbum("v1") }, saver, Options{
		Debounce:  10 * time.Millisecond,
		Fallback:  30 * time.Millisecond,
		OnFailure: func(error) { atomic.AddInt32(&failures, 1) },
	})
	defer c.Close()

	c.NoteChange()
	waitFor(t, time.Second, func() bool { return atomic.LoadInt32(&failures) == 1 })
	if got := c.State(); got != Unsaved {
		t.Fatalf("state after failed persist = %v, want %v", got, Unsaved)
	}
	// The fallback cycle retries without further NoteChange calls.
	waitFor(t, 2*time.Second, func() bool { return c.State() == Saved })
	if got := saver.callCount(); got < 2 {
		t.Fatalf("save calls = %d, want a retry after failure", got)
	}
}

func TestFlushForcesImmediateSave(t *testing.T) {
	saver := &fakeSaver{}
	c := New(func() *domain.Album { return testAlbum("v1") }, saver,
		Options{Debounce: time.Hour, Fallback: time.Hour})
	defer c.Close()

	c.NoteChange()
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := c.State(); got != Saved {
		t.Fatalf("state after flush = %v, want %v", got, Saved)
	}
	if got := saver.callCount(); got != 1 {
		t.Fatalf("save calls = %d, want 1", got)
	}
	if c.LastSaved().IsZero() {
		t.Fatal("LastSaved not recorded")
	}
}

func TestFlushReportsError(t *testing.T) {
	saver := &fakeSaver{failures: 1}
	c := New(func() *domain.Album { return testAlbum("v1") }, saver,
		Options{Debounce: time.Hour, Fallback: time.Hour})
	defer c.Close()

	c.NoteChange()
	if err := c.Flush(context.Background()); err == nil {
		t.Fatal("Flush returned nil, want persist error")
	}
	if got := c.State(); got != Unsaved {
		t.Fatalf("state after failed flush = %v, want %v", got, Unsaved)
	}
}

func TestCloseWaitsForFlight(t *testing.T) {
	saver := &fakeSaver{delay: 30 * time.Millisecond}
	c := New(func() *domain.Album { return testAlbum("v1") }, saver,
		Options{Debounce: 5 * time.Millisecond, Fallback: time.Hour})

	c.NoteChange()
	waitFor(t, time.Second, func() bool { return c.State() == Saving })
	c.Close()
	if got := saver.callCount(); got != 1 {
		t.Fatalf("Close returned before in-flight persist finished (calls=%d)", got)
	}
	c.NoteChange() // no-op after Close
	time.Sleep(20 * time.Millisecond)
	if got := saver.callCount(); got != 1 {
		t.Fatalf("persist after Close (calls=%d)", got)
	}
}

func TestStateTransitionsNotified(t *testing.T) {
	saver := &fakeSaver{}
	var mu sync.Mutex
	var seen []State
	c := New(func() *domain.Album { return testAlbum("v1") }, saver, Options{
		Debounce: 10 * time.Millisecond,
		Fallback: time.Hour,
		OnState: func(s State) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		},
	})
	defer c.Close()

	c.NoteChange()
	waitFor(t, time.Second, func() bool { return c.State() == Saved })
	mu.Lock()
	defer mu.Unlock()
	want := []State{Unsaved, Saving, Saved}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", seen, want)
		}
	}
}
