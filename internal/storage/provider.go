/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"path/filepath"

	"goalbumstudio/internal/domain"
	"goalbumstudio/internal/persist"
)

// DirProvider persists albums as working copies under Base, one directory per
// album id. It satisfies persist.Provider, so an editor session can run fully
// offline against the local disk.
type DirProvider struct {
	Base string
}

var _ persist.Provider = (*DirProvider)(nil)

func (d *DirProvider) root(id string) string {
	return filepath.Join(d.Base, id)
}

// Load opens the working copy for the album id.
func (d *DirProvider) Load(_ context.Context, id string) (*domain.Album, error) {
	if _, err := os.Stat(d.root(id)); os.IsNotExist(err) {
		return nil, persist.ErrNotFound
	}
	ah, err := Open(d.root(id))
	if err != nil {
		return nil, err
	}
	al := ah.Album
	return &al, nil
}

// Save writes the album into its working copy, creating it on first save.
func (d *DirProvider) Save(_ context.Context, al *domain.Album) error {
	root := d.root(al.ID)
	if _, err := os.Stat(filepath.Join(root, ManifestFileName)); os.IsNotExist(err) {
		_, ierr := InitAlbum(root, *al.Clone())
		return ierr
	}
	ah, err := Open(root)
	if err != nil {
		return err
	}
	ah.Album = *al.Clone()
	return Save(ah)
}
