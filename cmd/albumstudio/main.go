/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"goalbumstudio/internal/config"
	"goalbumstudio/internal/crash"
	"goalbumstudio/internal/domain"
	"goalbumstudio/internal/export"
	applog "goalbumstudio/internal/log"
	"goalbumstudio/internal/persist"
	"goalbumstudio/internal/storage"
	"goalbumstudio/internal/version"
)

func usage() {
	fmt.Println("Album Studio — photo album editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  albumstudio version|-v|--version          Show version")
	fmt.Println("  albumstudio new <dir> <title>             Create a new album working copy at <dir>")
	fmt.Println("  albumstudio open <dir>                    Open working copy at <dir> and print summary")
	fmt.Println("  albumstudio save <dir>                    Save working copy at <dir> (creates backup)")
	fmt.Println("  albumstudio export <dir> [<out.pdf>]      Export a proof PDF into <dir>/exports")
	fmt.Println("  albumstudio push <dir>                    Upload working copy to the configured backend")
	fmt.Println("  albumstudio pull <dir> <album-id>         Download an album from the backend into <dir>")
}

// newProvider builds the persistence backend the user configured: the hosted
// HTTP API or a direct Postgres connection. The returned func releases any
// held connection.
func newProvider(ctx context.Context, cfg config.AppConfig, token string) (persist.Provider, func(), error) {
	switch cfg.Backend.Provider {
	case "postgres":
		pg, err := persist.OpenPostgres(ctx, cfg.Backend.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres backend: %w", err)
		}
		return pg, func() { _ = pg.Close() }, nil
	default:
		return persist.NewClient(cfg.Backend.BaseURL, token), func() {}, nil
	}
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ah *storage.AlbumHandle
	defer func() { crash.Recover(ah) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Album Studio — photo album editor")
			fmt.Println(version.String())
			return
		case "new":
			if len(args) < 4 {
				fmt.Println("new requires <dir> and <title>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			title := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("new album", slog.String("root", abs), slog.String("title", title))
			al := domain.Album{
				ID:    uuid.NewString(),
				Title: title,
				Config: domain.Config{
					PageWidth:  210,
					PageHeight: 210,
					Bleed:      3,
				},
				Pages: []domain.Page{
					{Number: 1, TemplateID: domain.TemplateFrontCover},
				},
			}
			h, err := storage.InitAlbum(abs, al)
			if err != nil {
				l.Error("new failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ah = h
			fmt.Println("Created album at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("open album", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ah = h
			fmt.Printf("Opened album: %s\n", h.Album.Title)
			fmt.Printf("Pages: %d\n", len(h.Album.Pages))
			fmt.Println("Root:", h.Root)
			return
		case "save":
			if len(args) < 3 {
				fmt.Println("save requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("save album", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ah = h
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Saved album and created a backup of the previous manifest (if any).")
			return
		case "export":
			if len(args) < 3 {
				fmt.Println("export requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			out := "proof.pdf"
			if len(args) >= 4 {
				out = args[3]
			}
			l.Info("export proof", slog.String("root", abs), slog.String("out", out))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ah = h
			if err := export.ProofPDF(h, out, export.PDFOptions{IncludeGuides: true}); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote proof PDF.")
			return
		case "push":
			if len(args) < 3 {
				fmt.Println("push requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before push failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ah = h
			if h.Album.ID == "" {
				h.Album.ID = uuid.NewString()
				if err := storage.Save(h); err != nil {
					l.Error("assign album id failed", slog.Any("err", err))
					fmt.Println("Error:", err)
					os.Exit(1)
				}
			}
			cfg, token, err := config.Load()
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.EffectiveTimeout())
			defer cancel()
			prov, release, err := newProvider(ctx, cfg, token)
			if err != nil {
				l.Error("backend unavailable", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			defer release()
			l.Info("push album", slog.String("root", abs), slog.String("album", h.Album.ID))
			if err := prov.Save(ctx, &h.Album); err != nil {
				l.Error("push failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Printf("Pushed album %s to the %s backend.\n", h.Album.ID, cfg.Backend.Provider)
			return
		case "pull":
			if len(args) < 4 {
				fmt.Println("pull requires <dir> and <album-id>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			id := args[3]
			cfg, token, err := config.Load()
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ctx, cancel := context.WithTimeout(context.Background(), cfg.Backend.EffectiveTimeout())
			defer cancel()
			prov, release, err := newProvider(ctx, cfg, token)
			if err != nil {
				l.Error("backend unavailable", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			defer release()
			l.Info("pull album", slog.String("root", abs), slog.String("album", id))
			al, err := prov.Load(ctx, id)
			if err != nil {
				l.Error("pull failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h, err := storage.InitAlbum(abs, *al)
			if err != nil {
				l.Error("write working copy failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ah = h
			fmt.Printf("Pulled album %q into %s.\n", al.Title, abs)
			return
		}
	}
	usage()
}
