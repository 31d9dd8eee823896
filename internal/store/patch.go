/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package store

import "goalbumstudio/internal/domain"

// AssetPatch is a partial update for an asset; nil fields are left unchanged.
// Payload pointers replace the whole payload when set.
type AssetPatch struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
	IsLocked *bool
	Media    *domain.Media
	Text     *domain.TextPayload
	Geo      *domain.GeoPoint
}

// UnlockOnly reports whether the patch is exactly {IsLocked: false}, the one
// update permitted on a locked target.
func (p AssetPatch) UnlockOnly() bool {
	return p.IsLocked != nil && !*p.IsLocked &&
		p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.Rotation == nil && p.Media == nil && p.Text == nil && p.Geo == nil
}

func (p AssetPatch) applyTo(a *domain.Asset) bool {
	changed := false
	setF := func(dst *float64, src *float64) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	setF(&a.X, p.X)
	setF(&a.Y, p.Y)
	setF(&a.Width, p.Width)
	setF(&a.Height, p.Height)
	setF(&a.Rotation, p.Rotation)
	if p.IsLocked != nil && a.IsLocked != *p.IsLocked {
		a.IsLocked = *p.IsLocked
		changed = true
	}
	if p.Media != nil {
		m := *p.Media
		a.Media = &m
		changed = true
	}
	if p.Text != nil {
		t := *p.Text
		a.Text = &t
		changed = true
	}
	if p.Geo != nil {
		g := *p.Geo
		a.Geo = &g
		changed = true
	}
	return changed
}

// ConfigPatch is a partial update for the album config. The lock flag is
// deliberately absent; locking goes through ToggleLock.
type ConfigPatch struct {
	PageWidth  *float64
	PageHeight *float64
	Bleed      *float64
	SpreadView *bool
}

func (p ConfigPatch) applyTo(c *domain.Config) bool {
	changed := false
	setF := func(dst *float64, src *float64) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}
	setF(&c.PageWidth, p.PageWidth)
	setF(&c.PageHeight, p.PageHeight)
	setF(&c.Bleed, p.Bleed)
	if p.SpreadView != nil && c.SpreadView != *p.SpreadView {
		c.SpreadView = *p.SpreadView
		changed = true
	}
	return changed
}
