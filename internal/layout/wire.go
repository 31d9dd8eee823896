/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"encoding/json"
	"errors"
	"fmt"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

// ErrInvalidLayout marks a malformed layout configuration. Callers treat the
// page as freeform when a config is rejected.
var ErrInvalidLayout = errors.New("invalid layout config")

// The persisted wire format is an array of slot descriptors. A descriptor may
// use either left/top or x/y for its position; both spellings occur in stored
// albums. A descriptor may carry nested content when the slot is filled.
//
// The schema enforces shape and numeric types; the left/top-or-x/y pairing is
// checked afterwards because JSON Schema draft-04 cannot express it tersely.
const wireSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id": {"type": "string"},
      "left": {"type": "number"},
      "top": {"type": "number"},
      "x": {"type": "number"},
      "y": {"type": "number"},
      "width": {"type": "number", "minimum": 0},
      "height": {"type": "number", "minimum": 0},
      "content": {
        "type": ["object", "null"],
        "properties": {
          "type": {"type": "string"},
          "url": {"type": "string"},
          "cropZoom": {"type": "number"},
          "cropOffsetX": {"type": "number"},
          "cropOffsetY": {"type": "number"},
          "rotation": {"type": "number"},
          "zIndex": {"type": "integer"}
        }
      }
    },
    "additionalProperties": false
  }
}`

type wireSlot struct {
	ID      string       `json:"id,omitempty"`
	Left    *float64     `json:"left,omitempty"`
	Top     *float64     `json:"top,omitempty"`
	X       *float64     `json:"x,omitempty"`
	Y       *float64     `json:"y,omitempty"`
	Width   *float64     `json:"width,omitempty"`
	Height  *float64     `json:"height,omitempty"`
	Content *SlotContent `json:"content,omitempty"`
}

func (w *wireSlot) empty() bool {
	return w.Left == nil && w.Top == nil && w.X == nil && w.Y == nil &&
		w.Width == nil && w.Height == nil && w.Content == nil && w.ID == ""
}

// DecodeConfig parses and validates the persisted layout config wire format.
// A valid config is an array where either every element is empty (the page is
// freeform; nil is returned) or every element has width/height and a
// left/top-or-x/y pair. Anything else is rejected with ErrInvalidLayout
// before it can be applied to a page.
func DecodeConfig(raw []byte) ([]Slot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(wireSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLayout, firstSchemaError(result))
	}
	var ws []wireSlot
	if err := json.Unmarshal(raw, &ws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	if len(ws) == 0 {
		return nil, nil
	}
	allEmpty := true
	for i := range ws {
		if !ws[i].empty() {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		return nil, nil
	}
	slots := make([]Slot, len(ws))
	for i := range ws {
		w := &ws[i]
		if w.Width == nil || w.Height == nil {
			return nil, fmt.Errorf("%w: slot %d missing width/height", ErrInvalidLayout, i)
		}
		left, top := w.Left, w.Top
		if left == nil {
			left = w.X
		}
		if top == nil {
			top = w.Y
		}
		if left == nil || top == nil {
			return nil, fmt.Errorf("%w: slot %d missing position", ErrInvalidLayout, i)
		}
		slots[i] = Slot{
			Index: i,
			Geometry: SlotGeometry{
				ID:     w.ID,
				Left:   *left,
				Top:    *top,
				Width:  *w.Width,
				Height: *w.Height,
			},
			Content: w.Content,
		}
	}
	return slots, nil
}

// EncodeConfig renders slots into the persisted wire format.
func EncodeConfig(slots []Slot) ([]byte, error) {
	ws := make([]wireSlot, len(slots))
	for i, s := range slots {
		left, top, width, height := s.Geometry.Left, s.Geometry.Top, s.Geometry.Width, s.Geometry.Height
		ws[i] = wireSlot{
			ID:      s.Geometry.ID,
			Left:    &left,
			Top:     &top,
			Width:   &width,
			Height:  &height,
			Content: s.Content,
		}
	}
	return json.Marshal(ws)
}

func firstSchemaError(r *gojsonschema.Result) string {
	for _, e := range r.Errors() {
		return e.String()
	}
	return "schema violation"
}
