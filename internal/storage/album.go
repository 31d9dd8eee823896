/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists albums as on-disk working copies: a JSON manifest
// (album.json) plus standard subfolders for media, exports and timestamped
// manifest backups. Manifest writes are transactional (temp file + rename) so
// a crash mid-save never leaves a torn file.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"goalbumstudio/internal/domain"
)

const (
	ManifestFileName = "album.json"
	BackupsDirName   = "backups"
)

// Standard subfolders of an album working copy.
var standardSubDirs = []string{
	"media",
	"previews",
	"exports",
	BackupsDirName,
}

// AlbumHandle tracks an album working copy loaded from or saved to disk.
// Root is the directory containing album.json and the subfolders.
type AlbumHandle struct {
	Root         string
	ManifestPath string
	Album        domain.Album
}

// InitAlbum creates a working copy directory at root (creating it if needed),
// scaffolds the standard subfolders, and writes the manifest transactionally.
func InitAlbum(root string, al domain.Album) (*AlbumHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create album root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}

	ah := &AlbumHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Album:        al,
	}
	if err := Save(ah); err != nil {
		return nil, err
	}
	return ah, nil
}

// Open loads an existing working copy from the given root directory.
// If the current manifest cannot be read or parsed, the latest timestamped
// backup is tried before giving up.
func Open(root string) (*AlbumHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		al, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &AlbumHandle{Root: root, ManifestPath: mpath, Album: *al}, nil
	}
	var al domain.Album
	if uerr := json.Unmarshal(b, &al); uerr != nil {
		bal, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", uerr, berr)
		}
		return &AlbumHandle{Root: root, ManifestPath: mpath, Album: *bal}, nil
	}
	return &AlbumHandle{Root: root, ManifestPath: mpath, Album: al}, nil
}

// Save writes the current AlbumHandle.Album to disk with transactional
// semantics and a timestamped backup of the previous manifest (if present).
func Save(ah *AlbumHandle) error {
	if ah == nil {
		return errors.New("nil AlbumHandle")
	}
	if ah.Root == "" || ah.ManifestPath == "" {
		return errors.New("invalid AlbumHandle: missing paths")
	}
	data, err := json.MarshalIndent(ah.Album, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	bdir := filepath.Join(ah.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// Copy the current manifest to a timestamped backup before replacing.
	if _, statErr := os.Stat(ah.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp)
		bpath := filepath.Join(bdir, bname)
		if cerr := copyFile(ah.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// Transactional write: temp file in the same directory, then rename.
	dir := filepath.Dir(ah.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(ah.ManifestPath); err == nil {
		_ = os.Remove(ah.ManifestPath)
	}
	if rerr := os.Rename(temp, ah.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest to a new root folder, scaffolding structure if
// needed, and updates the handle.
func SaveAs(ah *AlbumHandle, newRoot string) error {
	if ah == nil {
		return errors.New("nil AlbumHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(newRoot, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	ah.Root = newRoot
	ah.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(ah)
}

// AutosaveCrashSnapshot writes the in-memory album to a timestamped snapshot
// in the backups folder without touching the live manifest. Used by the crash
// handler, where replacing the manifest mid-panic is too risky.
func AutosaveCrashSnapshot(ah *AlbumHandle) (string, error) {
	if ah == nil {
		return "", errors.New("nil AlbumHandle")
	}
	data, err := json.MarshalIndent(ah.Album, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')
	bdir := filepath.Join(ah.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("autosave-crash-%s.json", stamp))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup tries to open the latest timestamped backup.
func openFromLatestBackup(root string) (*domain.Album, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	var al domain.Album
	if err := json.Unmarshal(b, &al); err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return &al, nil
}
