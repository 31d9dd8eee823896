/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"goalbumstudio/internal/store"
)

// Key is a normalized keyboard event from the UI shell. Name uses lowercase
// key names: letters, digits, "delete", "backspace", "left", "right", "up",
// "down".
type Key struct {
	Name  string
	Shift bool
	Ctrl  bool // Cmd on macOS
}

// Movement step sizes, in percent of the page edge for assets and in canvas
// pixels for panning.
const (
	nudgeStep      = 1.0
	nudgeStepLarge = 10.0
	panStep        = 20.0
	panStepLarge   = 100.0
)

// HandleKey routes a keyboard event to the matching editor action. It returns
// whether the event was consumed. Unmatched events are left to the caller.
func (e *Editor) HandleKey(k Key) (bool, error) {
	if k.Ctrl {
		switch k.Name {
		case "z":
			if k.Shift {
				_, _ = e.Redo()
			} else {
				_, _ = e.Undo()
			}
			return true, nil
		case "y":
			_, _ = e.Redo()
			return true, nil
		case "d":
			return e.duplicateSelected()
		case "0":
			e.ResetView()
			return true, nil
		}
		return false, nil
	}

	switch k.Name {
	case "delete", "backspace":
		return e.deleteSelected()
	case "left", "right", "up", "down":
		dx, dy := direction(k.Name)
		_, assetID := e.Selected()
		if assetID == "" {
			// Nothing selected: arrows pan the canvas.
			step := panStep
			if k.Shift {
				step = panStepLarge
			}
			e.mu.Lock()
			e.viewX += dx * step
			e.viewY += dy * step
			e.mu.Unlock()
			return true, nil
		}
		step := nudgeStep
		if k.Shift {
			step = nudgeStepLarge
		}
		return e.nudgeSelected(dx*step, dy*step)
	}
	return false, nil
}

func direction(name string) (dx, dy float64) {
	switch name {
	case "left":
		return -1, 0
	case "right":
		return 1, 0
	case "up":
		return 0, -1
	case "down":
		return 0, 1
	}
	return 0, 0
}

func (e *Editor) deleteSelected() (bool, error) {
	pageID, assetID := e.Selected()
	if assetID == "" {
		return false, nil
	}
	applied, err := e.Do("delete asset", func(s *store.Store) (bool, error) {
		return s.RemoveAsset(pageID, assetID)
	})
	if applied {
		e.ClearSelection()
	}
	return applied, err
}

func (e *Editor) duplicateSelected() (bool, error) {
	pageID, assetID := e.Selected()
	if assetID == "" {
		return false, nil
	}
	var copyID string
	applied, err := e.Do("duplicate asset", func(s *store.Store) (bool, error) {
		cp, ok, err := s.DuplicateAsset(pageID, assetID)
		copyID = cp.ID
		return ok, err
	})
	if applied {
		// The copy becomes the selection, matching direct-manipulation flow.
		e.Select(pageID, copyID)
	}
	return applied, err
}

func (e *Editor) nudgeSelected(dx, dy float64) (bool, error) {
	pageID, assetID := e.Selected()
	if assetID == "" {
		return false, nil
	}
	cur := e.store.Snapshot()
	pg := cur.PageByID(pageID)
	if pg == nil {
		return false, nil
	}
	a := pg.AssetByID(assetID)
	if a == nil {
		return false, nil
	}
	nx := a.X + dx
	ny := a.Y + dy
	return e.Do("move asset", func(s *store.Store) (bool, error) {
		return s.UpdateAsset(pageID, assetID, store.AssetPatch{X: &nx, Y: &ny})
	})
}
