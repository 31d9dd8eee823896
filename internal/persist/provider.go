/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package persist moves whole albums between the editor and a durable
// backend. Two providers exist: an HTTP client for the hosted album API and a
// direct Postgres provider used by self-hosted deployments. Both treat the
// album as an opaque JSON document keyed by its id.
package persist

import (
	"context"
	"errors"

	"goalbumstudio/internal/domain"
)

// ErrNotFound is returned when the backend has no album with the given id.
var ErrNotFound = errors.New("persist: album not found")

// Provider loads and saves full album documents. Save replaces the stored
// document unconditionally; conflict handling is the caller's concern.
type Provider interface {
	Load(ctx context.Context, id string) (*domain.Album, error)
	Save(ctx context.Context, al *domain.Album) error
}
