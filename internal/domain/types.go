/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the core data model structures for Album Studio.
// An Album is an ordered sequence of Pages; each Page carries an ordered
// sequence of Assets positioned in page-percentage coordinates. The model
// serializes to a human-readable JSON manifest.

import (
	"sort"
	"strings"
	"time"
)

// AssetType enumerates the supported asset kinds.
type AssetType string

const (
	AssetImage    AssetType = "image"
	AssetVideo    AssetType = "video"
	AssetText     AssetType = "text"
	AssetLocation AssetType = "location"
	AssetMap      AssetType = "map"
	AssetFrame    AssetType = "frame"
)

// Page template identifiers. TemplateFreeform means assets are absolutely
// positioned; TemplateFrontCover marks the single-page cover; any other value
// names a slot layout template.
const (
	TemplateFreeform   = "freeform"
	TemplateFrontCover = "front-cover"
)

// Album is the root of the document graph.
// UpdatedAt strictly increases on every committed mutation and is the single
// source of truth for "has unsaved state".
type Album struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Pages       []Page    `json:"pages"`
	Config      Config    `json:"config"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	Hashtags    []string  `json:"hashtags,omitempty"`
	Geotag      *GeoPoint `json:"geotag,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Config holds album-wide settings.
type Config struct {
	PageWidth  float64 `json:"pageWidth"`  // pt
	PageHeight float64 `json:"pageHeight"` // pt
	Bleed      float64 `json:"bleed,omitempty"`
	SpreadView bool    `json:"spreadView,omitempty"`
	IsLocked   bool    `json:"isLocked,omitempty"`
}

// Page represents a single album page.
// Number is 1-based, dense and contiguous; it always equals the page's index
// in Album.Pages plus one.
type Page struct {
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	TemplateID string     `json:"templateId"`
	Background Background `json:"background,omitempty"`
	IsLocked   bool       `json:"isLocked,omitempty"`
	Assets     []Asset    `json:"assets"`
}

// Background describes page background fill.
type Background struct {
	Color   string  `json:"color,omitempty"` // hex "#rrggbb"
	Opacity float64 `json:"opacity,omitempty"`
}

// Asset is a positioned element on a page.
// X/Y/Width/Height are percentages of the page unless SlotID is set, in which
// case they are slot-relative overrides (defaults 0,0,100,100).
// ZIndex values are unique within a page.
type Asset struct {
	ID       string    `json:"id"`
	Type     AssetType `json:"type"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	SlotID   *int      `json:"slotId,omitempty"`
	Rotation float64   `json:"rotation,omitempty"`
	ZIndex   int       `json:"zIndex"`
	IsLocked bool      `json:"isLocked,omitempty"`

	Media *Media       `json:"media,omitempty"`
	Text  *TextPayload `json:"text,omitempty"`
	Geo   *GeoPoint    `json:"geo,omitempty"`
}

// Media carries the payload for image/video/frame assets.
type Media struct {
	URL         string  `json:"url"`
	CropZoom    float64 `json:"cropZoom,omitempty"`
	CropOffsetX float64 `json:"cropOffsetX,omitempty"`
	CropOffsetY float64 `json:"cropOffsetY,omitempty"`
	Filter      string  `json:"filter,omitempty"`
}

// TextPayload carries rich text for text assets.
type TextPayload struct {
	HTML       string  `json:"html"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	Color      string  `json:"color,omitempty"`
	Align      string  `json:"align,omitempty"`
}

// GeoPoint is a latitude/longitude pair for location/map assets and geotags.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Slotted reports whether the asset is bound to a layout slot.
func (a *Asset) Slotted() bool { return a.SlotID != nil }

// PageByID returns a pointer to the page with the given id, or nil.
func (al *Album) PageByID(id string) *Page {
	for i := range al.Pages {
		if al.Pages[i].ID == id {
			return &al.Pages[i]
		}
	}
	return nil
}

// Renumber makes page numbers dense and contiguous, matching slice order.
func (al *Album) Renumber() {
	for i := range al.Pages {
		al.Pages[i].Number = i + 1
	}
}

// AssetByID returns a pointer to the asset with the given id, or nil.
func (p *Page) AssetByID(id string) *Asset {
	for i := range p.Assets {
		if p.Assets[i].ID == id {
			return &p.Assets[i]
		}
	}
	return nil
}

// MaxZIndex returns the highest z-index on the page, or 0 for an empty page.
func (p *Page) MaxZIndex() int {
	z := 0
	for i := range p.Assets {
		if p.Assets[i].ZIndex > z {
			z = p.Assets[i].ZIndex
		}
	}
	return z
}

// IsCover reports whether the page uses the front cover template.
func (p *Page) IsCover() bool { return p.TemplateID == TemplateFrontCover }

// NormalizeHashtag lowercases and strips surrounding whitespace and a leading
// '#'. An empty result means the tag is invalid.
func NormalizeHashtag(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "#")
	return strings.TrimSpace(s)
}

// SortHashtags sorts tags in place for deterministic serialization.
func SortHashtags(tags []string) { sort.Strings(tags) }
