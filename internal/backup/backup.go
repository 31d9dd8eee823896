/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backup keeps a local mirror of the in-memory album in an embedded
// SQLite database. The mirror is updated on every committed edit and outlives
// the process, so a crash or lost connection can be recovered from the last
// keystroke rather than the last successful remote save.
package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"goalbumstudio/internal/domain"
	applog "goalbumstudio/internal/log"

	_ "modernc.org/sqlite"
)

// FileName is the database file created inside the backup directory.
const FileName = "recovery.sqlite"

// ErrNoBackup is returned when no mirror row exists for the requested album.
var ErrNoBackup = errors.New("backup: no snapshot for album")

// Snapshot is a recovered album together with the time it was mirrored.
type Snapshot struct {
	Album   *domain.Album
	Written time.Time
}

// Store is the local recovery mirror. A single Store may hold snapshots for
// any number of albums, keyed by album id; each album has at most one row.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Path returns the full path of the database file under dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Open creates or opens the recovery database under dir, enables WAL mode and
// ensures the schema exists.
func Open(dir string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("backup"), "open").With(
		slog.String("dir", dir),
	)
	if dir == "" {
		return nil, errors.New("backup dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l.Error("create backup dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	uriPath := filepath.ToSlash(Path(dir))
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", uriPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("recovery store ready", slog.String("path", Path(dir)))
	return &Store{db: db, log: applog.WithComponent("backup")}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			album_id   TEXT PRIMARY KEY,
			written_at TEXT NOT NULL,
			album_json BLOB NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS previews (
			page_id    TEXT PRIMARY KEY,
			album_id   TEXT NOT NULL,
			written_at TEXT NOT NULL,
			png        BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_previews_album ON previews(album_id);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// Write replaces the mirror row for the album with the given state.
func (s *Store) Write(ctx context.Context, al *domain.Album) error {
	if al == nil || al.ID == "" {
		return errors.New("album with id is required")
	}
	blob, err := json.Marshal(al)
	if err != nil {
		return fmt.Errorf("encode album: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots(album_id, written_at, album_json) VALUES(?, ?, ?)
		ON CONFLICT(album_id) DO UPDATE SET written_at=excluded.written_at, album_json=excluded.album_json;
	`, al.ID, time.Now().UTC().Format(time.RFC3339Nano), blob)
	if err != nil {
		s.log.Error("write snapshot failed", slog.String("album", al.ID), slog.Any("err", err))
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Read returns the mirrored state for the album, or ErrNoBackup.
func (s *Store) Read(ctx context.Context, albumID string) (*Snapshot, error) {
	var writtenAt string
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT written_at, album_json FROM snapshots WHERE album_id = ?`, albumID,
	).Scan(&writtenAt, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var al domain.Album
	if err := json.Unmarshal(blob, &al); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, writtenAt)
	if err != nil {
		ts = time.Time{}
	}
	return &Snapshot{Album: &al, Written: ts}, nil
}

// Clear removes the mirror row and any page previews for the album. Called
// after the user dismisses a recovery offer or the state is known persisted.
func (s *Store) Clear(ctx context.Context, albumID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE album_id = ?`, albumID); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM previews WHERE album_id = ?`, albumID); err != nil {
		return fmt.Errorf("clear previews: %w", err)
	}
	return nil
}

// WritePreview stores a rendered page thumbnail (PNG bytes) for fast display
// in the page navigator.
func (s *Store) WritePreview(ctx context.Context, albumID, pageID string, png []byte) error {
	if pageID == "" {
		return errors.New("page id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO previews(page_id, album_id, written_at, png) VALUES(?, ?, ?, ?)
		ON CONFLICT(page_id) DO UPDATE SET album_id=excluded.album_id, written_at=excluded.written_at, png=excluded.png;
	`, pageID, albumID, time.Now().UTC().Format(time.RFC3339Nano), png)
	if err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}

// ReadPreview returns the stored thumbnail for a page, or nil when none exists.
func (s *Store) ReadPreview(ctx context.Context, pageID string) ([]byte, error) {
	var png []byte
	err := s.db.QueryRowContext(ctx, `SELECT png FROM previews WHERE page_id = ?`, pageID).Scan(&png)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preview: %w", err)
	}
	return png, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
