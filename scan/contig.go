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
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/RGenomicsETL/duckhts-sub000/htslog"
)

// ContigClaim is the single piece of shared mutable state during a
// parallel, contig-partitioned scan: an atomic fetch-and-add counter over
// an immutable contig name list. Every other piece of per-worker state
// (file handles, iterators, decode buffers) is exclusively owned by one
// worker; this is the only thing that crosses worker boundaries. Work
// stealing beats a static split here because per-contig record counts
// are skewed.
type ContigClaim struct {
	names   []string
	current atomic.Int64
}

// NewContigClaim builds a claim counter over names, starting at contig 0.
func NewContigClaim(names []string) *ContigClaim {
	return &ContigClaim{names: names}
}

// NumContigs returns the number of contigs available to claim.
func (c *ContigClaim) NumContigs() int { return len(c.names) }

// Next atomically claims the next contig and returns its index and name.
// ok is false once every contig has been claimed; callers must stop
// requesting further work at that point.
func (c *ContigClaim) Next() (idx int, name string, ok bool) {
	i := c.current.Add(1) - 1
	if int(i) >= len(c.names) {
		return 0, "", false
	}
	return int(i), c.names[i], true
}

// MaxThreads implements the global_init parallelism rule: min(n_contigs,
// 16) when the file is indexed, has more than one contig, and the user
// did not pin a region; 1 otherwise. Region-restricted scans are
// inherently single-stream (there is exactly one iterator to drive), and
// an unindexed file has no contig boundaries to partition on.
func MaxThreads(hasIndex bool, nContigs int, hasRegion bool) int {
	if !hasIndex || nContigs <= 1 || hasRegion {
		return 1
	}
	if nContigs > 16 {
		return 16
	}
	return nContigs
}

// GlobalState is the shared, mostly-immutable state published by
// global_init: the chosen parallelism and (for indexed, region-free
// scans) the contig claim counter workers use to fetch work.
type GlobalState struct {
	MaxThreads int
	Claim      *ContigClaim // nil when the scan is not contig-partitioned

	// ScanID correlates every log line this one bind's workers emit
	// (workerID alone repeats across unrelated scans run back to back in
	// the same process). Generated once in NewGlobalState, never parsed.
	ScanID string
}

// NewGlobalState derives a GlobalState from the bind-time facts every
// reader already has available: whether an index was found, how many
// contigs it names, and whether the caller pinned a region.
func NewGlobalState(hasIndex bool, contigNames []string, hasRegion bool) *GlobalState {
	mt := MaxThreads(hasIndex, len(contigNames), hasRegion)
	gs := &GlobalState{MaxThreads: mt, ScanID: uuid.NewString()}
	if mt > 1 {
		gs.Claim = NewContigClaim(contigNames)
	}
	htslog.Default.Infof("scan %s: max_threads=%d contigs=%d", gs.ScanID, mt, len(contigNames))
	return gs
}
