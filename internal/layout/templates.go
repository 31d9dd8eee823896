/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

// Built-in slot templates, keyed by template id. Geometry is in page
// percentages with a 2% gutter.

var templates = map[string][]SlotGeometry{
	"single": {
		{ID: "main", Left: 2, Top: 2, Width: 96, Height: 96},
	},
	"grid-2": {
		{ID: "left", Left: 2, Top: 2, Width: 47, Height: 96},
		{ID: "right", Left: 51, Top: 2, Width: 47, Height: 96},
	},
	"grid-2-rows": {
		{ID: "top", Left: 2, Top: 2, Width: 96, Height: 47},
		{ID: "bottom", Left: 2, Top: 51, Width: 96, Height: 47},
	},
	"grid-4": {
		{ID: "tl", Left: 2, Top: 2, Width: 47, Height: 47},
		{ID: "tr", Left: 51, Top: 2, Width: 47, Height: 47},
		{ID: "bl", Left: 2, Top: 51, Width: 47, Height: 47},
		{ID: "br", Left: 51, Top: 51, Width: 47, Height: 47},
	},
	"hero-strip": {
		{ID: "hero", Left: 2, Top: 2, Width: 96, Height: 62},
		{ID: "s1", Left: 2, Top: 66, Width: 30, Height: 32},
		{ID: "s2", Left: 35, Top: 66, Width: 30, Height: 32},
		{ID: "s3", Left: 68, Top: 66, Width: 30, Height: 32},
	},
}

// Template returns the slot geometry for a named template.
// Unknown names (including "freeform" and "front-cover") return nil.
func Template(id string) []SlotGeometry {
	g, ok := templates[id]
	if !ok {
		return nil
	}
	out := make([]SlotGeometry, len(g))
	copy(out, g)
	return out
}

// TemplateNames lists the built-in template ids.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for k := range templates {
		names = append(names, k)
	}
	return names
}
