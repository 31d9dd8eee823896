/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"errors"
	"reflect"
	"testing"

	"goalbumstudio/internal/domain"
)

func intp(v int) *int { return &v }

func slottedAsset(slot int, url string, z int) domain.Asset {
	return domain.Asset{
		ID: "as-" + url, Type: domain.AssetImage,
		SlotID: intp(slot), X: 0, Y: 0, Width: 100, Height: 100, ZIndex: z,
		Media: &domain.Media{URL: url, CropZoom: 1.5, CropOffsetX: 3, CropOffsetY: -2},
	}
}

func TestToSlotsMatchesByIndex(t *testing.T) {
	cfg := Template("grid-2")
	assets := []domain.Asset{
		slottedAsset(1, "b.jpg", 2),
		{ID: "free", Type: domain.AssetText, X: 10, Y: 10, Width: 20, Height: 10, ZIndex: 3,
			Text: &domain.TextPayload{HTML: "hi"}},
		slottedAsset(0, "a.jpg", 1),
	}
	slots := ToSlots(cfg, assets)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Content == nil || slots[0].Content.URL != "a.jpg" {
		t.Fatalf("slot 0 content wrong: %+v", slots[0].Content)
	}
	if slots[1].Content == nil || slots[1].Content.URL != "b.jpg" {
		t.Fatalf("slot 1 content wrong: %+v", slots[1].Content)
	}
	if slots[0].Content.CropZoom != 1.5 || slots[0].Content.CropOffsetX != 3 {
		t.Fatalf("crop transform not carried: %+v", slots[0].Content)
	}
}

func TestToSlotsUnmatchedSlotsNilContent(t *testing.T) {
	cfg := Template("grid-4")
	slots := ToSlots(cfg, []domain.Asset{slottedAsset(2, "c.jpg", 1)})
	for i, s := range slots {
		if i == 2 {
			if s.Content == nil {
				t.Fatalf("slot 2 should be filled")
			}
			continue
		}
		if s.Content != nil {
			t.Fatalf("slot %d should be empty", i)
		}
	}
}

func TestRoundTripPreservesSlotMapping(t *testing.T) {
	cfg := Template("grid-2")
	assets := []domain.Asset{
		slottedAsset(0, "a.jpg", 1),
		slottedAsset(1, "b.jpg", 2),
	}
	first := ToSlots(cfg, assets)
	again := ToSlots(cfg, FromSlots(first))
	if !reflect.DeepEqual(first, again) {
		t.Fatalf("round trip changed slot mapping:\nfirst=%+v\nagain=%+v", first, again)
	}
}

func TestFromSlotsDefaults(t *testing.T) {
	slots := []Slot{
		{Index: 0, Geometry: SlotGeometry{Left: 2, Top: 2, Width: 96, Height: 96},
			Content: &SlotContent{Type: domain.AssetImage, URL: "x.jpg"}},
		{Index: 1, Geometry: SlotGeometry{Left: 2, Top: 2, Width: 96, Height: 96}},
	}
	assets := FromSlots(slots)
	if len(assets) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(assets))
	}
	a := assets[0]
	if a.SlotID == nil || *a.SlotID != 0 {
		t.Fatalf("slot binding lost: %+v", a)
	}
	if a.X != 0 || a.Y != 0 || a.Width != 100 || a.Height != 100 {
		t.Fatalf("default fill geometry wrong: %+v", a)
	}
	if a.ZIndex != 1 {
		t.Fatalf("default z-index wrong: %d", a.ZIndex)
	}
}

func TestMergeKeepsFreeformUntouched(t *testing.T) {
	free := domain.Asset{ID: "free", Type: domain.AssetText, X: 7, Y: 8, Width: 20, Height: 10, ZIndex: 5}
	page := []domain.Asset{free, slottedAsset(0, "old.jpg", 1)}
	merged := Merge(page, FromSlots(ToSlots(Template("single"), []domain.Asset{slottedAsset(0, "new.jpg", 1)})))
	if len(merged) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(merged))
	}
	if !reflect.DeepEqual(merged[0], free) {
		t.Fatalf("freeform asset modified: %+v", merged[0])
	}
	if merged[1].Media.URL != "new.jpg" {
		t.Fatalf("slotted asset not replaced: %+v", merged[1])
	}
}

func TestDecodeConfigAcceptsBothPositionSpellings(t *testing.T) {
	raw := []byte(`[
		{"left": 2, "top": 2, "width": 47, "height": 96},
		{"x": 51, "y": 2, "width": 47, "height": 96}
	]`)
	slots, err := DecodeConfig(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[1].Geometry.Left != 51 || slots[1].Geometry.Top != 2 {
		t.Fatalf("x/y spelling not honored: %+v", slots[1].Geometry)
	}
}

func TestDecodeConfigRejectsMalformed(t *testing.T) {
	cases := [][]byte{
		[]byte(`{"left": 2}`),                          // not an array
		[]byte(`[{"left": 2, "top": 2, "width": 47}]`), // missing height
		[]byte(`[{"width": 47, "height": 96}]`),        // missing position pair
		[]byte(`[{"left": "a", "top": 2, "width": 47, "height": 96}]`), // wrong type
	}
	for i, raw := range cases {
		if _, err := DecodeConfig(raw); !errors.Is(err, ErrInvalidLayout) {
			t.Fatalf("case %d: expected ErrInvalidLayout, got %v", i, err)
		}
	}
}

func TestDecodeConfigEmptyMeansFreeform(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(`[]`), []byte(`[{}, {}]`)} {
		slots, err := DecodeConfig(raw)
		if err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if slots != nil {
			t.Fatalf("expected freeform (nil slots) for %s", raw)
		}
	}
}

func TestEncodeDecodeWire(t *testing.T) {
	slots := ToSlots(Template("grid-2"), []domain.Asset{slottedAsset(0, "a.jpg", 1)})
	raw, err := EncodeConfig(slots)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodeConfig(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back) != len(slots) {
		t.Fatalf("slot count changed: %d vs %d", len(back), len(slots))
	}
	if back[0].Content == nil || back[0].Content.URL != "a.jpg" {
		t.Fatalf("content lost on wire: %+v", back[0].Content)
	}
	if back[1].Content != nil {
		t.Fatalf("empty slot gained content")
	}
}

func TestTemplateLookup(t *testing.T) {
	if Template("grid-4") == nil {
		t.Fatalf("grid-4 missing")
	}
	if Template(domain.TemplateFreeform) != nil {
		t.Fatalf("freeform must have no slots")
	}
	if len(TemplateNames()) == 0 {
		t.Fatalf("no templates registered")
	}
}
