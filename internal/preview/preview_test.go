/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	return img
}

func TestThumbnailScalesLongestEdge(t *testing.T) {
	out := Thumbnail(solid(1024, 512), 256)
	b := out.Bounds()
	if b.Dx() != 256 || b.Dy() != 128 {
		t.Fatalf("thumbnail bounds = %dx%d, want 256x128", b.Dx(), b.Dy())
	}
}

func TestThumbnailPortraitOrientation(t *testing.T) {
	out := Thumbnail(solid(300, 600), 200)
	b := out.Bounds()
	if b.Dx() != 100 || b.Dy() != 200 {
		t.Fatalf("thumbnail bounds = %dx%d, want 100x200", b.Dx(), b.Dy())
	}
}

func TestThumbnailSmallImageUnchanged(t *testing.T) {
	src := solid(64, 48)
	out := Thumbnail(src, 256)
	if out != src {
		t.Fatal("small image was rescaled")
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	data, err := EncodePNG(solid(800, 600), 0)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != DefaultMaxEdge {
		t.Fatalf("decoded width = %d, want %d", b.Dx(), DefaultMaxEdge)
	}
}
