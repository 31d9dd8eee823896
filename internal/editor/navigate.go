/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"goalbumstudio/internal/spread"
)

// ViewPages returns the page indices currently on screen: one page, or two
// when the view starting at the current position is a spread.
func (e *Editor) ViewPages() []int {
	al := e.store.Snapshot()
	e.mu.Lock()
	idx := e.curView
	e.mu.Unlock()
	if idx >= len(al.Pages) {
		idx = len(al.Pages) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return spread.Resolve(al, idx)
}

// NextView advances to the following view and returns its page indices.
func (e *Editor) NextView() []int {
	al := e.store.Snapshot()
	e.mu.Lock()
	e.curView = spread.Next(al, e.curView)
	idx := e.curView
	e.mu.Unlock()
	return spread.Resolve(al, idx)
}

// PrevView steps back to the preceding view and returns its page indices.
func (e *Editor) PrevView() []int {
	al := e.store.Snapshot()
	e.mu.Lock()
	e.curView = spread.Prev(al, e.curView)
	idx := e.curView
	e.mu.Unlock()
	return spread.Resolve(al, idx)
}

// GoToPage jumps to the view containing the page at idx. Out-of-range values
// are clamped.
func (e *Editor) GoToPage(idx int) []int {
	al := e.store.Snapshot()
	if idx >= len(al.Pages) {
		idx = len(al.Pages) - 1
	}
	if idx < 0 {
		idx = 0
	}
	// Walk views from the front so a right-hand spread page resolves to the
	// view that contains it rather than one starting at it.
	cur := 0
	for cur < idx {
		pages := spread.Resolve(al, cur)
		if contains(pages, idx) {
			break
		}
		next := spread.Next(al, cur)
		if next == cur {
			break
		}
		cur = next
	}
	e.mu.Lock()
	e.curView = cur
	e.mu.Unlock()
	return spread.Resolve(al, cur)
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
