/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history provides the two-stack undo/redo model over album
// snapshots. Each command carries full before/after album states, so undoing
// a batched mutation can never leave the document partially reverted.
package history

import (
	"sync"
	"time"

	"goalbumstudio/internal/domain"
)

// DefaultLimit is the default bound of the past stack.
const DefaultLimit = 50

// Target is where commands are applied; satisfied by *store.Store.
type Target interface {
	Restore(*domain.Album)
}

// Command is one reversible unit: the album state before and after a
// committed mutation, tagged with the UpdatedAt stamp it produced.
type Command struct {
	Label  string
	Before *domain.Album
	After  *domain.Album
	Stamp  time.Time
}

// Manager maintains the bounded past stack and the future stack.
// The future stack is cleared whenever a fresh command is recorded: redo
// history does not survive a new edit.
type Manager struct {
	mu     sync.Mutex
	past   []Command
	future []Command
	limit  int
}

// NewManager creates a manager with the given past-stack bound.
// Non-positive limits fall back to DefaultLimit.
func NewManager(limit int) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Manager{limit: limit}
}

// Record pushes a command produced by a fresh mutation. The oldest command is
// discarded beyond the limit; the future stack is cleared.
func (m *Manager) Record(cmd Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.past = append(m.past, cmd)
	if len(m.past) > m.limit {
		m.past = append([]Command(nil), m.past[len(m.past)-m.limit:]...)
	}
	m.future = nil
}

// Undo reverts the most recent command against t. It is a no-op when the
// past stack is empty. Returns the undone command's label and whether
// anything was undone.
func (m *Manager) Undo(t Target) (string, bool) {
	m.mu.Lock()
	if len(m.past) == 0 {
		m.mu.Unlock()
		return "", false
	}
	cmd := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append(m.future, cmd)
	m.mu.Unlock()
	t.Restore(cmd.Before)
	return cmd.Label, true
}

// Redo re-applies the most recently undone command against t.
func (m *Manager) Redo(t Target) (string, bool) {
	m.mu.Lock()
	if len(m.future) == 0 {
		m.mu.Unlock()
		return "", false
	}
	cmd := m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	m.past = append(m.past, cmd)
	m.mu.Unlock()
	t.Restore(cmd.After)
	return cmd.Label, true
}

// CanUndo reports whether the past stack is non-empty.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

// CanRedo reports whether the future stack is non-empty.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// Depths returns the current sizes of the past and future stacks.
func (m *Manager) Depths() (past, future int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past), len(m.future)
}

// Clear drops all history, e.g. after loading a different album.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.past = nil
	m.future = nil
}
