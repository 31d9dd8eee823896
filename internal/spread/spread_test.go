/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package spread

import (
	"fmt"
	"reflect"
	"testing"

	"goalbumstudio/internal/domain"
)

// tenPageAlbum builds a 10-page album with page 1 as a single-page cover.
func tenPageAlbum(spreadView bool) *domain.Album {
	al := &domain.Album{Config: domain.Config{SpreadView: spreadView}}
	for i := 0; i < 10; i++ {
		tpl := domain.TemplateFreeform
		if i == 0 {
			tpl = domain.TemplateFrontCover
		}
		al.Pages = append(al.Pages, domain.Page{ID: fmt.Sprintf("pg-%d", i+1), Number: i + 1, TemplateID: tpl})
	}
	return al
}

func TestResolveCoverIsSingle(t *testing.T) {
	al := tenPageAlbum(true)
	if got := Resolve(al, 0); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("cover view = %v, want [0]", got)
	}
}

func TestResolvePairsWithFollowingPage(t *testing.T) {
	al := tenPageAlbum(true)
	if got := Resolve(al, 1); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("view at 1 = %v, want [1 2]", got)
	}
	if got := Resolve(al, 9); !reflect.DeepEqual(got, []int{9}) {
		t.Fatalf("last page view = %v, want [9]", got)
	}
}

func TestResolveSpreadViewOff(t *testing.T) {
	al := tenPageAlbum(false)
	for i := 0; i < 10; i++ {
		if got := Resolve(al, i); !reflect.DeepEqual(got, []int{i}) {
			t.Fatalf("view at %d = %v, want [%d]", i, got, i)
		}
	}
}

func TestNextAsymmetricStep(t *testing.T) {
	al := tenPageAlbum(true)
	// From the cover the step is 1; from a true spread start it is 2.
	if got := Next(al, 0); got != 1 {
		t.Fatalf("next from 0 = %d, want 1", got)
	}
	if got := Next(al, 1); got != 3 {
		t.Fatalf("next from 1 = %d, want 3", got)
	}
	if got := Next(al, 3); got != 5 {
		t.Fatalf("next from 3 = %d, want 5", got)
	}
}

func TestNextStickyAtEnd(t *testing.T) {
	al := tenPageAlbum(true)
	if got := Next(al, 9); got != 9 {
		t.Fatalf("next past end = %d, want 9", got)
	}
}

func TestPrevMirrorsNext(t *testing.T) {
	al := tenPageAlbum(true)
	if got := Prev(al, 3); got != 1 {
		t.Fatalf("prev from 3 = %d, want 1", got)
	}
	if got := Prev(al, 1); got != 0 {
		t.Fatalf("prev from 1 = %d, want 0", got)
	}
	if got := Prev(al, 0); got != 0 {
		t.Fatalf("prev from 0 = %d, want 0", got)
	}
}

func TestStepNotCachedAfterTemplateEdit(t *testing.T) {
	al := tenPageAlbum(true)
	if got := Next(al, 0); got != 1 {
		t.Fatalf("next from cover = %d, want 1", got)
	}
	// Editing the cover template to a regular layout turns index 0 into a
	// spread start; the step must change accordingly.
	al.Pages[0].TemplateID = domain.TemplateFreeform
	if got := Next(al, 0); got != 2 {
		t.Fatalf("next after template edit = %d, want 2", got)
	}
}

func TestSinglePageAlbum(t *testing.T) {
	al := &domain.Album{
		Config: domain.Config{SpreadView: true},
		Pages:  []domain.Page{{ID: "pg-1", Number: 1, TemplateID: domain.TemplateFreeform}},
	}
	if got := Resolve(al, 0); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("single page view = %v, want [0]", got)
	}
	if got := Next(al, 0); got != 0 {
		t.Fatalf("next on single page album = %d, want 0", got)
	}
}
