/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders album proof documents. The proof PDF is a layout
// check before ordering a print run: page outlines with trim and bleed
// guides, asset boxes in z-order and text content, not a print-ready file.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"goalbumstudio/internal/domain"
	"goalbumstudio/internal/storage"
	"goalbumstudio/internal/telemetry"
)

// PDFOptions controls proof export behavior. Page dimensions come from the
// album config and are treated as millimeters.
//
// Coordinates:
// - Page origin is top-left.
// - Asset geometry is percent of the page; it is scaled to trim size here.
// - Bleed is applied as an outer margin beyond trim.
type PDFOptions struct {
	IncludeGuides bool
	Pages         []int // page numbers (1-based); if empty, export all
}

// ProofPDF exports the album as a single multi-page proof PDF at outPath.
// A relative outPath is placed under the working copy's exports folder.
func ProofPDF(ah *storage.AlbumHandle, outPath string, opt PDFOptions) error {
	if ah == nil {
		return fmt.Errorf("album handle is nil")
	}
	al := ah.Album
	trimW := al.Config.PageWidth
	trimH := al.Config.PageHeight
	if trimW <= 0 || trimH <= 0 {
		return fmt.Errorf("album config has no page size")
	}
	bleed := al.Config.Bleed
	mediaW := trimW + 2*bleed
	mediaH := trimH + 2*bleed

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: mediaW, Ht: mediaH},
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s — Proof", al.Title), true)
	pdf.SetAuthor("Album Studio", false)
	// Built-in Helvetica keeps text vector without embedding.
	pdf.SetFont("Helvetica", "", 10)

	include := func(number int) bool {
		if len(opt.Pages) == 0 {
			return true
		}
		for _, n := range opt.Pages {
			if n == number {
				return true
			}
		}
		return false
	}

	exported := 0
	for _, pg := range al.Pages {
		if !include(pg.Number) {
			continue
		}
		exported++
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: mediaW, Ht: mediaH})

		if opt.IncludeGuides {
			pdf.SetDrawColor(255, 0, 0)
			pdf.SetLineWidth(0.1)
			// Bleed (outer border = media box), then trim box.
			pdf.Rect(0, 0, mediaW, mediaH, "D")
			pdf.Rect(bleed, bleed, trimW, trimH, "D")
		}

		assets := append([]domain.Asset(nil), pg.Assets...)
		sort.SliceStable(assets, func(i, j int) bool { return assets[i].ZIndex < assets[j].ZIndex })

		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.2)
		for _, a := range assets {
			// Percent geometry to trim millimeters, shifted into media space.
			x := bleed + a.X/100*trimW
			y := bleed + a.Y/100*trimH
			w := a.Width / 100 * trimW
			h := a.Height / 100 * trimH
			pdf.Rect(x, y, w, h, "D")

			label := string(a.Type)
			if a.Type == domain.AssetText && a.Text != nil {
				label = plainText(a.Text.HTML)
			} else if a.Media != nil && a.Media.URL != "" {
				label = filepath.Base(a.Media.URL)
			}
			pad := 1.5
			pdf.SetFont("Helvetica", "", 8)
			pdf.Text(x+pad, y+pad+2.5, label)
		}

		// Page number in the bottom margin.
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(bleed+2, mediaH-2, fmt.Sprintf("%d", pg.Number))
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ah.Root, "exports", outPath)
	}
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	telemetry.AlbumEvent(al.ID, telemetry.EventProofExported, map[string]any{"pages": exported})
	return nil
}

// plainText strips markup from a rich-text payload so the proof label stays
// readable in the core font.
func plainText(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
