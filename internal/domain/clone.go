/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Deep-copy helpers. Command snapshots, backup mirrors and change
// notifications all hand out clones so that no caller can alias the
// authoritative graph held by the document store.

// Clone returns a deep copy of the album.
func (al *Album) Clone() *Album {
	if al == nil {
		return nil
	}
	cp := *al
	// Preserve nilness: a clone must deep-equal its source structurally, not
	// just element-wise.
	if al.Pages != nil {
		cp.Pages = make([]Page, len(al.Pages))
		for i := range al.Pages {
			cp.Pages[i] = *al.Pages[i].Clone()
		}
	}
	if al.Hashtags != nil {
		cp.Hashtags = append([]string(nil), al.Hashtags...)
	}
	cp.Geotag = al.Geotag.clone()
	return &cp
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Assets != nil {
		cp.Assets = make([]Asset, len(p.Assets))
		for i := range p.Assets {
			cp.Assets[i] = *p.Assets[i].Clone()
		}
	}
	return &cp
}

// Clone returns a deep copy of the asset.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	cp := *a
	if a.SlotID != nil {
		v := *a.SlotID
		cp.SlotID = &v
	}
	if a.Media != nil {
		m := *a.Media
		cp.Media = &m
	}
	if a.Text != nil {
		t := *a.Text
		cp.Text = &t
	}
	cp.Geo = a.Geo.clone()
	return &cp
}

func (g *GeoPoint) clone() *GeoPoint {
	if g == nil {
		return nil
	}
	v := *g
	return &v
}
