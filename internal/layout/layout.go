/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout converts between the two asset representations of a page:
// flat assets with absolute page-percentage geometry, and slotted assets
// positioned relative to a named template slot. Both directions are pure and
// stateless; freeform assets (no slot binding) pass through untouched.
package layout

import (
	"goalbumstudio/internal/domain"
)

// SlotGeometry is the template-defined region of a slot, in page percentages.
type SlotGeometry struct {
	ID     string  `json:"id,omitempty"`
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SlotContent is the media payload nested inside a filled slot.
type SlotContent struct {
	Type        domain.AssetType `json:"type"`
	URL         string           `json:"url"`
	CropZoom    float64          `json:"cropZoom,omitempty"`
	CropOffsetX float64          `json:"cropOffsetX,omitempty"`
	CropOffsetY float64          `json:"cropOffsetY,omitempty"`
	Rotation    float64          `json:"rotation,omitempty"`
	ZIndex      int              `json:"zIndex,omitempty"`
}

// Slot pairs a slot index and geometry with optional content.
// Content is nil for an unfilled slot.
type Slot struct {
	Index    int          `json:"index"`
	Geometry SlotGeometry `json:"geometry"`
	Content  *SlotContent `json:"content"`
}

// ToSlots distributes assets into the template's slots. For each slot index
// the asset whose SlotID equals that index contributes its media payload;
// absolute geometry is dropped since it is meaningless inside a slot.
// Unmatched slots get nil content. Freeform assets are ignored here.
func ToSlots(cfg []SlotGeometry, assets []domain.Asset) []Slot {
	slots := make([]Slot, len(cfg))
	for i, g := range cfg {
		slots[i] = Slot{Index: i, Geometry: g}
		for j := range assets {
			a := &assets[j]
			if a.SlotID == nil || *a.SlotID != i {
				continue
			}
			c := &SlotContent{
				Type:     a.Type,
				Rotation: a.Rotation,
				ZIndex:   a.ZIndex,
			}
			if a.Media != nil {
				c.URL = a.Media.URL
				c.CropZoom = a.Media.CropZoom
				c.CropOffsetX = a.Media.CropOffsetX
				c.CropOffsetY = a.Media.CropOffsetY
			}
			slots[i].Content = c
			break
		}
	}
	return slots
}

// FromSlots materializes assets from filled slots. Every slot with non-nil
// content yields an asset bound to that slot with default fill geometry
// (0,0,100,100); z-index is taken from the content or defaults to 1.
// Unfilled slots yield nothing.
func FromSlots(slots []Slot) []domain.Asset {
	var out []domain.Asset
	for _, s := range slots {
		if s.Content == nil {
			continue
		}
		idx := s.Index
		z := s.Content.ZIndex
		if z == 0 {
			z = 1
		}
		a := domain.Asset{
			Type:     s.Content.Type,
			SlotID:   &idx,
			X:        0,
			Y:        0,
			Width:    100,
			Height:   100,
			Rotation: s.Content.Rotation,
			ZIndex:   z,
		}
		if s.Content.Type != domain.AssetText {
			a.Media = &domain.Media{
				URL:         s.Content.URL,
				CropZoom:    s.Content.CropZoom,
				CropOffsetX: s.Content.CropOffsetX,
				CropOffsetY: s.Content.CropOffsetY,
			}
		}
		out = append(out, a)
	}
	return out
}

// Merge combines slotted assets materialized from slots with the freeform
// assets of an existing page. Freeform assets keep their identity and order;
// slotted ones replace the page's previous slot bindings.
func Merge(freeform []domain.Asset, slotted []domain.Asset) []domain.Asset {
	out := make([]domain.Asset, 0, len(freeform)+len(slotted))
	for i := range freeform {
		if freeform[i].SlotID == nil {
			out = append(out, freeform[i])
		}
	}
	out = append(out, slotted...)
	return out
}
