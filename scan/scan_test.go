// Copyright (C) 2026 RGenomicsETL
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package scan

import (
	"sync"
	"testing"
)

func TestMaxThreadsRule(t *testing.T) {
	cases := []struct {
		hasIndex  bool
		nContigs  int
		hasRegion bool
		want      int
	}{
		{false, 5, false, 1},
		{true, 1, false, 1},
		{true, 5, true, 1},
		{true, 5, false, 5},
		{true, 100, false, 16},
	}
	for _, c := range cases {
		got := MaxThreads(c.hasIndex, c.nContigs, c.hasRegion)
		if got != c.want {
			t.Errorf("MaxThreads(%v,%d,%v) = %d, want %d", c.hasIndex, c.nContigs, c.hasRegion, got, c.want)
		}
	}
}

func TestContigClaimParallelEquivalence(t *testing.T) {
	names := []string{"chr1", "chr2", "chr3", "chr4", "chr5"}
	claim := NewContigClaim(names)

	var mu sync.Mutex
	seen := map[string]int{}
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				_, name, ok := claim.Next()
				if !ok {
					return
				}
				mu.Lock()
				seen[name]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != len(names) {
		t.Fatalf("expected every contig claimed exactly once, got %d/%d", len(seen), len(names))
	}
	for name, n := range seen {
		if n != 1 {
			t.Fatalf("contig %s claimed %d times, want exactly once", name, n)
		}
	}
	if _, _, ok := claim.Next(); ok {
		t.Fatalf("claim counter should be exhausted")
	}
}

func TestProjectionHas(t *testing.T) {
	var p Projection
	if !p.Has(3) {
		t.Fatalf("empty projection must request every column")
	}
	p = Projection{0, 2}
	if !p.Has(0) || p.Has(1) || !p.Has(2) {
		t.Fatalf("unexpected projection membership: %v", p)
	}
	if !p.HasAny(1, 2) {
		t.Fatalf("HasAny should match if any index is present")
	}
}

func TestNewGlobalStateAssignsDistinctScanIDs(t *testing.T) {
	a := NewGlobalState(true, []string{"chr1", "chr2"}, false)
	b := NewGlobalState(true, []string{"chr1", "chr2"}, false)
	if a.ScanID == "" || b.ScanID == "" {
		t.Fatalf("expected a non-empty ScanID, got %q and %q", a.ScanID, b.ScanID)
	}
	if a.ScanID == b.ScanID {
		t.Fatalf("two binds should not share a ScanID")
	}
}

func TestSplitRegions(t *testing.T) {
	got := SplitRegions(" chr1:1-100 , chr2 ,, chr3:5-10")
	want := []string{"chr1:1-100", "chr2", "chr3:5-10"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
