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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"goalbumstudio/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres stores album documents in a single JSONB table. Used by
// self-hosted deployments that run against their own database instead of the
// hosted API.
type Postgres struct {
	db *sql.DB
}

var _ Provider = (*Postgres)(nil)

// OpenPostgres connects to the database, verifies connectivity and ensures
// the albums table exists.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(pctx, `
		CREATE TABLE IF NOT EXISTS albums (
			id         TEXT PRIMARY KEY,
			doc        JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure albums table: %w", err)
	}
	return &Postgres{db: db}, nil
}

// Load fetches the album document by id.
func (p *Postgres) Load(ctx context.Context, id string) (*domain.Album, error) {
	var doc []byte
	err := p.db.QueryRowContext(ctx, `SELECT doc FROM albums WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select album: %w", err)
	}
	var al domain.Album
	if err := json.Unmarshal(doc, &al); err != nil {
		return nil, fmt.Errorf("decode album: %w", err)
	}
	return &al, nil
}

// Save upserts the album document.
func (p *Postgres) Save(ctx context.Context, al *domain.Album) error {
	doc, err := json.Marshal(al)
	if err != nil {
		return fmt.Errorf("encode album: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO albums(id, doc, updated_at) VALUES($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now();
	`, al.ID, doc)
	if err != nil {
		return fmt.Errorf("upsert album: %w", err)
	}
	return nil
}

// Close releases the database pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}
