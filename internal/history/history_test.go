/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"goalbumstudio/internal/domain"
	"goalbumstudio/internal/store"
)

func baseAlbum() *domain.Album {
	return &domain.Album{
		ID:     "al-1",
		Title:  "Trip",
		Pages:  []domain.Page{{ID: "pg-1", Number: 1, TemplateID: domain.TemplateFreeform}},
		Config: domain.Config{PageWidth: 595, PageHeight: 842},
	}
}

// record wraps a store mutation into a command, the way the editor does.
func record(t *testing.T, m *Manager, s *store.Store, label string, fn func() (bool, error)) {
	t.Helper()
	before := s.Snapshot()
	ok, err := fn()
	if err != nil || !ok {
		t.Fatalf("%s: ok=%v err=%v", label, ok, err)
	}
	m.Record(Command{Label: label, Before: before, After: s.Snapshot(), Stamp: time.Now()})
}

func TestUndoRedoNStepsRestoreExactStates(t *testing.T) {
	s := store.New(baseAlbum())
	m := NewManager(0)
	initial := s.Snapshot()

	const n = 8
	for i := 0; i < n; i++ {
		i := i
		record(t, m, s, fmt.Sprintf("add-%d", i), func() (bool, error) {
			_, ok, err := s.AddAsset("pg-1", domain.Asset{Type: domain.AssetImage, X: float64(i), Width: 10, Height: 10})
			return ok, err
		})
	}
	final := s.Snapshot()

	for i := 0; i < n; i++ {
		if _, ok := m.Undo(s); !ok {
			t.Fatalf("undo %d failed", i)
		}
	}
	if !reflect.DeepEqual(initial, s.Snapshot()) {
		t.Fatalf("N undos did not restore initial state")
	}
	if _, ok := m.Undo(s); ok {
		t.Fatalf("undo past empty stack should be a no-op")
	}

	for i := 0; i < n; i++ {
		if _, ok := m.Redo(s); !ok {
			t.Fatalf("redo %d failed", i)
		}
	}
	if !reflect.DeepEqual(final, s.Snapshot()) {
		t.Fatalf("N redos did not restore final state")
	}
	if _, ok := m.Redo(s); ok {
		t.Fatalf("redo past empty stack should be a no-op")
	}
}

func TestFreshEditClearsFuture(t *testing.T) {
	s := store.New(baseAlbum())
	m := NewManager(0)
	record(t, m, s, "title-a", func() (bool, error) { return s.SetTitle("A") })
	record(t, m, s, "title-b", func() (bool, error) { return s.SetTitle("B") })
	if _, ok := m.Undo(s); !ok {
		t.Fatalf("undo failed")
	}
	if !m.CanRedo() {
		t.Fatalf("expected redo available")
	}
	record(t, m, s, "title-c", func() (bool, error) { return s.SetTitle("C") })
	if m.CanRedo() {
		t.Fatalf("redo history must not survive a fresh edit")
	}
}

func TestPastStackBounded(t *testing.T) {
	s := store.New(baseAlbum())
	m := NewManager(5)
	for i := 0; i < 12; i++ {
		record(t, m, s, fmt.Sprintf("title-%d", i), func() (bool, error) {
			return s.SetTitle(fmt.Sprintf("T%d", i))
		})
	}
	past, _ := m.Depths()
	if past != 5 {
		t.Fatalf("past depth = %d, want 5", past)
	}
	undone := 0
	for {
		if _, ok := m.Undo(s); !ok {
			break
		}
		undone++
	}
	if undone != 5 {
		t.Fatalf("undone %d commands, want 5", undone)
	}
	// The oldest retained command's Before is title T6 (commands 7..11 kept).
	if got := s.Snapshot().Title; got != "T6" {
		t.Fatalf("deepest undo state = %q, want T6", got)
	}
}

func TestCompositeCommandUndoesAtomically(t *testing.T) {
	al := baseAlbum()
	al.Pages = append(al.Pages,
		domain.Page{ID: "pg-2", Number: 2, TemplateID: domain.TemplateFreeform},
		domain.Page{ID: "pg-3", Number: 3, TemplateID: domain.TemplateFreeform},
	)
	s := store.New(al)
	m := NewManager(0)
	before := s.Snapshot()
	bg := domain.Background{Color: "#101010", Opacity: 0.8}
	if ok, err := s.SyncBackgroundToAllPages(bg); !ok || err != nil {
		t.Fatalf("sync: ok=%v err=%v", ok, err)
	}
	m.Record(Command{Label: "sync-background", Before: before, After: s.Snapshot(), Stamp: time.Now()})

	if _, ok := m.Undo(s); !ok {
		t.Fatalf("undo failed")
	}
	got := s.Snapshot()
	for i, p := range got.Pages {
		if p.Background == bg {
			t.Fatalf("page %d still carries the synced background", i)
		}
	}
	if !reflect.DeepEqual(before, got) {
		t.Fatalf("composite undo left intermediate state")
	}
}

func TestClear(t *testing.T) {
	s := store.New(baseAlbum())
	m := NewManager(0)
	record(t, m, s, "title", func() (bool, error) { return s.SetTitle("X") })
	m.Clear()
	if m.CanUndo() || m.CanRedo() {
		t.Fatalf("clear left history behind")
	}
}
