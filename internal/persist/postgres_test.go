/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package persist

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"goalbumstudio/internal/domain"
)

// Integration test; requires a reachable Postgres. Set GAS_PG_TEST_DSN to run.
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("GAS_PG_TEST_DSN")
	if dsn == "" {
		t.Skip("GAS_PG_TEST_DSN not set; skipping Postgres integration test")
	}
	ctx := context.Background()
	p, err := OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer p.Close()

	id := uuid.NewString()
	want := &domain.Album{ID: id, Title: "pg-round-trip"}
	if err := p.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := p.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Title != want.Title {
		t.Fatalf("loaded title = %q, want %q", got.Title, want.Title)
	}

	want.Title = "pg-round-trip-v2"
	if err := p.Save(ctx, want); err != nil {
		t.Fatalf("Save upsert: %v", err)
	}
	got, err = p.Load(ctx, id)
	if err != nil {
		t.Fatalf("Load after upsert: %v", err)
	}
	if got.Title != "pg-round-trip-v2" {
		t.Fatalf("upsert did not replace document, title = %q", got.Title)
	}

	if _, err := p.Load(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load missing = %v, want ErrNotFound", err)
	}
}
