/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package spread computes which pages are displayed together. The step size
// of a navigation turn is asymmetric (1 for single-page views, 2 for true
// spreads) and is recomputed on every call: the cover's single-page status
// can change when its template is edited, so nothing here may be cached.
package spread

import "goalbumstudio/internal/domain"

// Resolve returns the indices of the 1 or 2 pages displayed for the view
// starting at idx. A single page is returned when spread view is off, when
// the page is a front cover, or when no following page exists to pair with.
func Resolve(al *domain.Album, idx int) []int {
	if al == nil || len(al.Pages) == 0 {
		return nil
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(al.Pages) {
		idx = len(al.Pages) - 1
	}
	if !al.Config.SpreadView || al.Pages[idx].IsCover() {
		return []int{idx}
	}
	if idx+1 < len(al.Pages) {
		return []int{idx, idx + 1}
	}
	return []int{idx}
}

// Next returns the index of the view following the one starting at idx,
// advancing by the width of the current view. The last view is sticky.
func Next(al *domain.Album, idx int) int {
	view := Resolve(al, idx)
	if len(view) == 0 {
		return 0
	}
	n := view[0] + len(view)
	if n >= len(al.Pages) {
		return view[0]
	}
	return n
}

// Prev returns the index of the view preceding the one starting at idx,
// stepping back by the width of the preceding view so that page 1 never
// pairs with an implicit page 0.
func Prev(al *domain.Album, idx int) int {
	view := Resolve(al, idx)
	if len(view) == 0 {
		return 0
	}
	cur := view[0]
	if cur <= 0 {
		return 0
	}
	if cur == 1 {
		return 0
	}
	back := cur - 2
	prev := Resolve(al, back)
	if len(prev) == 2 && prev[0] == back && prev[1] == cur-1 {
		return back
	}
	return cur - 1
}
