/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the session layer tying the pieces together: the document
// store, undo history, the autosave coordinator, the local recovery mirror and
// the keyboard surface. One Editor corresponds to one open album.
package editor

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"goalbumstudio/internal/autosave"
	"goalbumstudio/internal/backup"
	"goalbumstudio/internal/domain"
	"goalbumstudio/internal/history"
	applog "goalbumstudio/internal/log"
	"goalbumstudio/internal/persist"
	"goalbumstudio/internal/preview"
	"goalbumstudio/internal/store"
	"goalbumstudio/internal/telemetry"
)

// Options configures an editor session.
type Options struct {
	Backup       *backup.Store // required; caller keeps ownership
	Provider     persist.Provider
	HistoryLimit int
	Debounce     time.Duration
	Fallback     time.Duration
	OnSaveState  func(autosave.State)
	OnSaveError  func(error)
}

// RecoveryOffer is presented when the local mirror holds work the backend
// never received, typically after a crash or a lost connection. The user
// decides: restore the local state or dismiss it.
type RecoveryOffer struct {
	Local       *backup.Snapshot
	RemoteStamp time.Time
}

// Editor is one open album session.
type Editor struct {
	store    *store.Store
	hist     *history.Manager
	saver    *autosave.Coordinator
	backup   *backup.Store
	provider persist.Provider
	log      *slog.Logger

	mu       sync.Mutex
	albumID  string
	selPage  string
	selAsset string
	viewX    float64
	viewY    float64
	zoom     float64
	curView  int
	offer    *RecoveryOffer
}

type providerSaver struct {
	p persist.Provider
}

func (ps providerSaver) Save(ctx context.Context, al *domain.Album) error {
	return ps.p.Save(ctx, al)
}

// Open loads the album from the backend, builds the session, and checks the
// local recovery mirror. A non-nil RecoveryOffer means the mirror diverges
// from the loaded state; no automatic restore happens.
func Open(ctx context.Context, id string, opts Options) (*Editor, *RecoveryOffer, error) {
	if opts.Backup == nil {
		return nil, nil, fmt.Errorf("backup store is required")
	}
	if opts.Provider == nil {
		return nil, nil, fmt.Errorf("persistence provider is required")
	}
	remote, err := opts.Provider.Load(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load album: %w", err)
	}

	e := &Editor{
		store:    store.New(remote),
		hist:     history.NewManager(opts.HistoryLimit),
		backup:   opts.Backup,
		provider: opts.Provider,
		log:      applog.WithAlbum(applog.WithComponent("editor"), id),
		albumID:  id,
		zoom:     1,
	}

	// Divergence means the mirror holds edits the backend never saw. Equality
	// of the stamps, not ordering: an older mirror stamp is still an offer
	// the user should see.
	if snap, berr := opts.Backup.Read(ctx, id); berr == nil {
		if !snap.Album.UpdatedAt.Equal(remote.UpdatedAt) {
			e.offer = &RecoveryOffer{Local: snap, RemoteStamp: remote.UpdatedAt}
			e.log.Info("recovery snapshot found",
				slog.Time("local", snap.Album.UpdatedAt),
				slog.Time("remote", remote.UpdatedAt))
			telemetry.AlbumEvent(id, telemetry.EventRecoveryOffered, nil)
		}
	}
	telemetry.AlbumEvent(id, telemetry.EventAlbumOpened, map[string]any{"pages": len(remote.Pages)})

	e.saver = autosave.New(e.store.Snapshot, providerSaver{opts.Provider}, autosave.Options{
		Debounce:  opts.Debounce,
		Fallback:  opts.Fallback,
		OnState:   opts.OnSaveState,
		OnFailure: opts.OnSaveError,
	})

	// Every committed edit lands in the mirror before the debounce even
	// starts; recovery granularity is the keystroke, not the save cycle.
	e.store.OnChange(func(al *domain.Album) {
		if err := e.backup.Write(context.Background(), al); err != nil {
			e.log.Warn("mirror write failed", slog.Any("err", err))
		}
		e.saver.NoteChange()
	})

	return e, e.offer, nil
}

// Album returns a snapshot of the current album state.
func (e *Editor) Album() *domain.Album {
	return e.store.Snapshot()
}

// Store exposes the underlying document store for read paths (spread
// resolution, rendering). Mutations must go through Do or the typed wrappers
// so they are recorded in history.
func (e *Editor) Store() *store.Store {
	return e.store
}

// Do runs one mutation against the store and, if it was applied, records it
// as a single undoable command.
func (e *Editor) Do(label string, fn func(*store.Store) (bool, error)) (bool, error) {
	before := e.store.Snapshot()
	applied, err := fn(e.store)
	if err != nil || !applied {
		return applied, err
	}
	after := e.store.Snapshot()
	e.hist.Record(history.Command{Label: label, Before: before, After: after, Stamp: after.UpdatedAt})
	return true, nil
}

// Batch runs fn, which may issue any number of store mutations, and records
// the whole thing as one undoable command. Returns whether anything changed.
func (e *Editor) Batch(label string, fn func(*store.Store) error) (bool, error) {
	before := e.store.Snapshot()
	if err := fn(e.store); err != nil {
		return false, err
	}
	after := e.store.Snapshot()
	if after.UpdatedAt.Equal(before.UpdatedAt) {
		return false, nil
	}
	e.hist.Record(history.Command{Label: label, Before: before, After: after, Stamp: after.UpdatedAt})
	return true, nil
}

// Undo reverts the most recent command. Returns its label and whether
// anything was undone.
func (e *Editor) Undo() (string, bool) {
	return e.hist.Undo(e.store)
}

// Redo re-applies the most recently undone command.
func (e *Editor) Redo() (string, bool) {
	return e.hist.Redo(e.store)
}

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// Select marks an asset as the active selection. An empty assetID selects
// just the page.
func (e *Editor) Select(pageID, assetID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selPage = pageID
	e.selAsset = assetID
}

// ClearSelection drops the active selection.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selPage, e.selAsset = "", ""
}

// Selected returns the active page and asset ids.
func (e *Editor) Selected() (pageID, assetID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selPage, e.selAsset
}

// View returns the canvas pan offset and zoom factor.
func (e *Editor) View() (x, y, zoom float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewX, e.viewY, e.zoom
}

// ResetView restores the default pan and zoom.
func (e *Editor) ResetView() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewX, e.viewY, e.zoom = 0, 0, 1
}

// SaveState reports the autosave status for the UI indicator.
func (e *Editor) SaveState() autosave.State {
	return e.saver.State()
}

// Flush forces an immediate persist of the current state.
func (e *Editor) Flush(ctx context.Context) error {
	return e.saver.Flush(ctx)
}

// RestoreBackup replaces the session state with the local recovery snapshot
// and immediately persists it, making the recovered work durable. Undo
// history starts fresh from the restored state.
func (e *Editor) RestoreBackup(ctx context.Context) error {
	e.mu.Lock()
	offer := e.offer
	e.offer = nil
	e.mu.Unlock()
	if offer == nil {
		return fmt.Errorf("no recovery offer pending")
	}
	e.store.Restore(offer.Local.Album)
	e.hist.Clear()
	if err := e.saver.Flush(ctx); err != nil {
		return fmt.Errorf("persist restored state: %w", err)
	}
	e.log.Info("recovery snapshot restored", slog.Time("stamp", offer.Local.Album.UpdatedAt))
	telemetry.AlbumEvent(e.albumID, telemetry.EventRecoveryRestored, nil)
	return nil
}

// DismissBackup discards the local recovery snapshot. The mirrored work is
// gone after this; the session keeps the state loaded from the backend.
func (e *Editor) DismissBackup(ctx context.Context) error {
	e.mu.Lock()
	e.offer = nil
	e.mu.Unlock()
	if err := e.backup.Clear(ctx, e.albumID); err != nil {
		return fmt.Errorf("clear recovery snapshot: %w", err)
	}
	telemetry.AlbumEvent(e.albumID, telemetry.EventRecoveryDismissed, nil)
	return nil
}

// UpdatePagePreview stores a fresh navigator thumbnail for the page.
func (e *Editor) UpdatePagePreview(ctx context.Context, pageID string, img image.Image) error {
	png, err := preview.EncodePNG(img, preview.DefaultMaxEdge)
	if err != nil {
		return err
	}
	return e.backup.WritePreview(ctx, e.albumID, pageID, png)
}

// PagePreview returns the stored thumbnail for a page, or nil.
func (e *Editor) PagePreview(ctx context.Context, pageID string) ([]byte, error) {
	return e.backup.ReadPreview(ctx, pageID)
}

// Close shuts the session down, waiting for any in-flight persist. The
// backup store stays open; it belongs to the caller.
func (e *Editor) Close() {
	e.saver.Close()
}
