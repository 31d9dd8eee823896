/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store holds the authoritative in-memory album graph. Every
// structural change goes through one of its operations: each validates its
// inputs, applies the change, advances UpdatedAt, and notifies subscribers
// with a snapshot of the committed state.
//
// Failure semantics: unknown page/asset ids return ErrNotFound; attempts to
// mutate a locked target are silently ignored (applied=false, nil error) so
// the UI stays idempotent under rapid input. Unlocking is always permitted.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"goalbumstudio/internal/domain"
	"goalbumstudio/internal/layout"
	applog "goalbumstudio/internal/log"
)

// ErrNotFound is returned when a referenced page or asset does not exist.
// A consistent UI should never trigger it; occurrences are logged.
var ErrNotFound = errors.New("not found")

// ZDirection selects the target of a z-order move.
type ZDirection int

const (
	ZFront ZDirection = iota
	ZBack
)

// Store is the single authoritative holder of an album graph.
// All operations are atomic from the caller's perspective.
type Store struct {
	mu    sync.Mutex
	album *domain.Album
	subs  []func(*domain.Album)
	now   func() time.Time
	newID func() string
	log   *slog.Logger
}

// New creates a store owning a deep copy of the given album.
func New(al *domain.Album) *Store {
	s := &Store{
		album: al.Clone(),
		now:   time.Now,
		newID: uuid.NewString,
		log:   applog.WithComponent("store"),
	}
	s.album.Renumber()
	return s
}

// OnChange registers a subscriber invoked with a snapshot after every
// committed mutation (including Restore). Subscribers run on the mutating
// goroutine; they must not call mutating operations re-entrantly.
func (s *Store) OnChange(fn func(*domain.Album)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the current album.
func (s *Store) Snapshot() *domain.Album {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.album.Clone()
}

// UpdatedAt returns the current change timestamp.
func (s *Store) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.album.UpdatedAt
}

// Restore replaces the whole album graph, including its UpdatedAt stamp.
// Used by undo/redo and crash recovery; fires a change notification but does
// not advance the stamp, so restored history keeps its recorded identity.
func (s *Store) Restore(al *domain.Album) {
	s.mu.Lock()
	s.album = al.Clone()
	s.album.Renumber()
	snap, subs := s.album.Clone(), append([]func(*domain.Album){}, s.subs...)
	s.mu.Unlock()
	for _, f := range subs {
		f(snap)
	}
}

// mutate runs fn on the album under the lock. When fn reports a change, the
// stamp is advanced and subscribers are notified outside the lock.
func (s *Store) mutate(fn func(al *domain.Album) (bool, error)) (bool, error) {
	s.mu.Lock()
	ok, err := fn(s.album)
	var snap *domain.Album
	var subs []func(*domain.Album)
	if ok && err == nil {
		stamp := s.now()
		if !stamp.After(s.album.UpdatedAt) {
			stamp = s.album.UpdatedAt.Add(time.Nanosecond)
		}
		s.album.UpdatedAt = stamp
		snap = s.album.Clone()
		subs = append([]func(*domain.Album){}, s.subs...)
	}
	s.mu.Unlock()
	if err != nil && errors.Is(err, ErrNotFound) {
		s.log.Error("mutation target missing", slog.Any("err", err))
	}
	for _, f := range subs {
		f(snap)
	}
	return ok && err == nil, err
}

func pageOf(al *domain.Album, pageID string) (*domain.Page, error) {
	p := al.PageByID(pageID)
	if p == nil {
		return nil, fmt.Errorf("page %s: %w", pageID, ErrNotFound)
	}
	return p, nil
}

// AddAsset appends an asset to the page, assigning a fresh id and a z-index
// one above the current maximum. Applied is false when the album or the page
// is locked.
func (s *Store) AddAsset(pageID string, a domain.Asset) (domain.Asset, bool, error) {
	var created domain.Asset
	ok, err := s.mutate(func(al *domain.Album) (bool, error) {
		p, err := pageOf(al, pageID)
		if err != nil {
			return false, err
		}
		if al.Config.IsLocked || p.IsLocked {
			return false, nil
		}
		a.ID = s.newID()
		a.ZIndex = p.MaxZIndex() + 1
		p.Assets = append(p.Assets, a)
		created = *p.Assets[len(p.Assets)-1].Clone()
		return true, nil
	})
	return created, ok, err
}

// UpdateAsset merges patch into the asset. The update is silently rejected
// when the album, the owner page, or the asset itself is locked — unless the
// patch is exactly {IsLocked: false}: unlocking is always permitted.
func (s *Store) UpdateAsset(pageID, assetID string, patch AssetPatch) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		p, err := pageOf(al, pageID)
		if err != nil {
			return false, err
		}
		a := p.AssetByID(assetID)
		if a == nil {
			return false, fmt.Errorf("asset %s: %w", assetID, ErrNotFound)
		}
		if (al.Config.IsLocked || p.IsLocked || a.IsLocked) && !patch.UnlockOnly() {
			return false, nil
		}
		return patch.applyTo(a), nil
	})
}

// RemoveAsset deletes the asset from its page.
func (s *Store) RemoveAsset(pageID, assetID string) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		p, err := pageOf(al, pageID)
		if err != nil {
			return false, err
		}
		idx := -1
		for i := range p.Assets {
			if p.Assets[i].ID == assetID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false, fmt.Errorf("asset %s: %w", assetID, ErrNotFound)
		}
		if al.Config.IsLocked || p.IsLocked || p.Assets[idx].IsLocked {
			return false, nil
		}
		p.Assets = append(p.Assets[:idx], p.Assets[idx+1:]...)
		return true, nil
	})
}

// DuplicateAsset clones the asset with a new id, a slight position offset and
// a z-index above the current maximum.
func (s *Store) DuplicateAsset(pageID, assetID string) (domain.Asset, bool, error) {
	var created domain.Asset
	ok, err := s.mutate(func(al *domain.Album) (bool, error) {
		p, err := pageOf(al, pageID)
		if err != nil {
			return false, err
		}
		src := p.AssetByID(assetID)
		if src == nil {
			return false, fmt.Errorf("asset %s: %w", assetID, ErrNotFound)
		}
		if al.Config.IsLocked || p.IsLocked {
			return false, nil
		}
		cp := src.Clone()
		cp.ID = s.newID()
		cp.IsLocked = false
		if cp.SlotID == nil {
			cp.X += 2
			cp.Y += 2
		}
		cp.ZIndex = p.MaxZIndex() + 1
		p.Assets = append(p.Assets, *cp)
		created = *cp.Clone()
		return true, nil
	})
	return created, ok, err
}

// SetAssetZIndex moves the asset to the front or back of the page's stacking
// order and renormalizes all z-indices to a dense 1..n range so repeated
// moves cannot drift unbounded.
func (s *Store) SetAssetZIndex(pageID, assetID string, dir ZDirection) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		p, err := pageOf(al, pageID)
		if err != nil {
			return false, err
		}
		a := p.AssetByID(assetID)
		if a == nil {
			return false, fmt.Errorf("asset %s: %w", assetID, ErrNotFound)
		}
		if al.Config.IsLocked || p.IsLocked || a.IsLocked {
			return false, nil
		}
		switch dir {
		case ZFront:
			a.ZIndex = p.MaxZIndex() + 1
		case ZBack:
			minZ := a.ZIndex
			for i := range p.Assets {
				if p.Assets[i].ZIndex < minZ {
					minZ = p.Assets[i].ZIndex
				}
			}
			a.ZIndex = minZ - 1
		}
		normalizeZ(p)
		return true, nil
	})
}

// normalizeZ reassigns dense unique z-index values 1..n preserving the
// current stacking order.
func normalizeZ(p *domain.Page) {
	idx := make([]int, len(p.Assets))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return p.Assets[idx[a]].ZIndex < p.Assets[idx[b]].ZIndex
	})
	for rank, i := range idx {
		p.Assets[i].ZIndex = rank + 1
	}
}

// AddPage appends a page using the given template and renumbers.
func (s *Store) AddPage(templateID string) (domain.Page, bool, error) {
	var created domain.Page
	ok, err := s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked {
			return false, nil
		}
		if templateID == "" {
			templateID = domain.TemplateFreeform
		}
		p := domain.Page{ID: s.newID(), TemplateID: templateID}
		al.Pages = append(al.Pages, p)
		al.Renumber()
		created = *al.Pages[len(al.Pages)-1].Clone()
		return true, nil
	})
	return created, ok, err
}

// InsertPage inserts a page at the given index (clamped) and renumbers.
func (s *Store) InsertPage(at int, templateID string) (domain.Page, bool, error) {
	var created domain.Page
	ok, err := s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked {
			return false, nil
		}
		if templateID == "" {
			templateID = domain.TemplateFreeform
		}
		if at < 0 {
			at = 0
		}
		if at > len(al.Pages) {
			at = len(al.Pages)
		}
		p := domain.Page{ID: s.newID(), TemplateID: templateID}
		al.Pages = append(al.Pages, domain.Page{})
		copy(al.Pages[at+1:], al.Pages[at:])
		al.Pages[at] = p
		al.Renumber()
		created = *al.Pages[at].Clone()
		return true, nil
	})
	return created, ok, err
}

// RemovePage deletes the page and renumbers the remainder.
func (s *Store) RemovePage(pageID string) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		idx := -1
		for i := range al.Pages {
			if al.Pages[i].ID == pageID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false, fmt.Errorf("page %s: %w", pageID, ErrNotFound)
		}
		if al.Config.IsLocked || al.Pages[idx].IsLocked {
			return false, nil
		}
		al.Pages = append(al.Pages[:idx], al.Pages[idx+1:]...)
		al.Renumber()
		return true, nil
	})
}

// MovePage moves the page to index `to` (clamped) and renumbers.
func (s *Store) MovePage(pageID string, to int) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		from := -1
		for i := range al.Pages {
			if al.Pages[i].ID == pageID {
				from = i
				break
			}
		}
		if from < 0 {
			return false, fmt.Errorf("page %s: %w", pageID, ErrNotFound)
		}
		if al.Config.IsLocked {
			return false, nil
		}
		if to < 0 {
			to = 0
		}
		if to >= len(al.Pages) {
			to = len(al.Pages) - 1
		}
		if to == from {
			return false, nil
		}
		p := al.Pages[from]
		al.Pages = append(al.Pages[:from], al.Pages[from+1:]...)
		al.Pages = append(al.Pages, domain.Page{})
		copy(al.Pages[to+1:], al.Pages[to:])
		al.Pages[to] = p
		al.Renumber()
		return true, nil
	})
}

// ApplyLayout switches the page to the given template. When rawConfig is
// non-nil it is decoded and validated as the persisted wire format; a
// malformed config is rejected before any mutation (the caller keeps treating
// the page as freeform). When rawConfig is nil the built-in template geometry
// is used. Existing slot bindings are re-matched by index; freeform assets
// pass through untouched.
func (s *Store) ApplyLayout(pageID, templateID string, rawConfig []byte) (bool, error) {
	var slots []layout.Slot
	if rawConfig != nil {
		var err error
		slots, err = layout.DecodeConfig(rawConfig)
		if err != nil {
			return false, err
		}
	} else {
		for i, g := range layout.Template(templateID) {
			slots = append(slots, layout.Slot{Index: i, Geometry: g})
		}
	}
	return s.mutate(func(al *domain.Album) (bool, error) {
		p, err := pageOf(al, pageID)
		if err != nil {
			return false, err
		}
		if al.Config.IsLocked || p.IsLocked {
			return false, nil
		}
		if templateID == "" {
			templateID = domain.TemplateFreeform
		}
		p.TemplateID = templateID
		if len(slots) == 0 {
			// Freeform: drop stale slot bindings, keep geometry as-is.
			for i := range p.Assets {
				p.Assets[i].SlotID = nil
			}
			return true, nil
		}
		// Keep existing bindings for slots the config leaves unfilled.
		geos := make([]layout.SlotGeometry, len(slots))
		for i := range slots {
			geos[i] = slots[i].Geometry
		}
		existing := layout.ToSlots(geos, p.Assets)
		for i := range slots {
			if slots[i].Content == nil {
				slots[i].Content = existing[i].Content
			}
		}
		materialized := layout.FromSlots(slots)
		for i := range materialized {
			materialized[i].ID = s.newID()
		}
		p.Assets = layout.Merge(p.Assets, materialized)
		normalizeZ(p)
		return true, nil
	})
}

// UpdateConfig merges patch into the album config. Lock state is not part of
// the patch; use ToggleLock.
func (s *Store) UpdateConfig(patch ConfigPatch) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked {
			return false, nil
		}
		return patch.applyTo(&al.Config), nil
	})
}

// ToggleLock flips the album lock and returns the new state. Enabling the
// lock forbids further mutation except unlocking; it does not retroactively
// void recorded commands.
func (s *Store) ToggleLock() bool {
	locked := false
	_, _ = s.mutate(func(al *domain.Album) (bool, error) {
		al.Config.IsLocked = !al.Config.IsLocked
		locked = al.Config.IsLocked
		return true, nil
	})
	return locked
}

// SetTitle updates the album title.
func (s *Store) SetTitle(title string) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked || al.Title == title {
			return false, nil
		}
		al.Title = title
		return true, nil
	})
}

// SetDescription updates the album description.
func (s *Store) SetDescription(desc string) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked || al.Description == desc {
			return false, nil
		}
		al.Description = desc
		return true, nil
	})
}

// SetCover updates the album cover URL.
func (s *Store) SetCover(url string) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked || al.CoverURL == url {
			return false, nil
		}
		al.CoverURL = url
		return true, nil
	})
}

// SetGeotag updates the album geotag; nil clears it.
func (s *Store) SetGeotag(g *domain.GeoPoint) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked {
			return false, nil
		}
		if g == nil {
			if al.Geotag == nil {
				return false, nil
			}
			al.Geotag = nil
			return true, nil
		}
		v := *g
		al.Geotag = &v
		return true, nil
	})
}

// AddHashtag adds a case-normalized tag; duplicates and empty tags are a
// silent no-op.
func (s *Store) AddHashtag(tag string) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked {
			return false, nil
		}
		norm := domain.NormalizeHashtag(tag)
		if norm == "" {
			return false, nil
		}
		for _, t := range al.Hashtags {
			if t == norm {
				return false, nil
			}
		}
		al.Hashtags = append(al.Hashtags, norm)
		domain.SortHashtags(al.Hashtags)
		return true, nil
	})
}

// RemoveHashtag removes a tag; unknown tags are a silent no-op.
func (s *Store) RemoveHashtag(tag string) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked {
			return false, nil
		}
		norm := domain.NormalizeHashtag(tag)
		for i, t := range al.Hashtags {
			if t == norm {
				al.Hashtags = append(al.Hashtags[:i], al.Hashtags[i+1:]...)
				return true, nil
			}
		}
		return false, nil
	})
}

// SyncBackgroundToAllPages applies the background to every unlocked page in
// one committed mutation, so history can undo it atomically.
func (s *Store) SyncBackgroundToAllPages(bg domain.Background) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		if al.Config.IsLocked {
			return false, nil
		}
		changed := false
		for i := range al.Pages {
			if al.Pages[i].IsLocked {
				continue
			}
			if al.Pages[i].Background != bg {
				al.Pages[i].Background = bg
				changed = true
			}
		}
		return changed, nil
	})
}

// SetPageBackground updates a single page's background.
func (s *Store) SetPageBackground(pageID string, bg domain.Background) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		p, err := pageOf(al, pageID)
		if err != nil {
			return false, err
		}
		if al.Config.IsLocked || p.IsLocked {
			return false, nil
		}
		if p.Background == bg {
			return false, nil
		}
		p.Background = bg
		return true, nil
	})
}

// TogglePageLock flips a page lock and returns the new state.
func (s *Store) TogglePageLock(pageID string) (bool, error) {
	return s.mutate(func(al *domain.Album) (bool, error) {
		p, err := pageOf(al, pageID)
		if err != nil {
			return false, err
		}
		if al.Config.IsLocked {
			return false, nil
		}
		p.IsLocked = !p.IsLocked
		return true, nil
	})
}
