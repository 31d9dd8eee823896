/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package preview scales rendered page images down to navigator thumbnails.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// DefaultMaxEdge is the longest thumbnail edge in pixels.
const DefaultMaxEdge = 256

// Thumbnail scales src so its longest edge is maxEdge pixels, preserving
// aspect ratio. Images already small enough are returned unchanged.
func Thumbnail(src image.Image, maxEdge int) image.Image {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}
	var tw, th int
	if w >= h {
		tw = maxEdge
		th = h * maxEdge / w
	} else {
		th = maxEdge
		tw = w * maxEdge / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// EncodePNG returns the PNG bytes of a thumbnail of src, ready to store in
// the recovery database's preview table.
func EncodePNG(src image.Image, maxEdge int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Thumbnail(src, maxEdge)); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
