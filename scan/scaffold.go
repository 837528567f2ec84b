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

// Package scan holds the protocol every format reader in this module
// implements: bind, global_init, local_init, and the per-worker scan
// loop's supporting types (projection, contig work-stealing, staged
// errors, warning routing). Nothing in this package knows about any one
// file format; vcfreader, bamreader, fastareader, tabixreader and htsmeta
// each provide the format-specific Bind/LocalInit closures and are the
// only packages that import the HTS-format-specific decoding libraries.
package scan

import (
	"sync"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
)

// WarnFunc receives a Scan-warning-class event: a condition that must
// never abort the scan (a VCF spec mismatch, an empty user region, a
// multi-region query that may duplicate rows, ...). A nil WarnFunc means
// "use the package-wide htslog fallback."
type WarnFunc func(format string, args ...any)

// BindState is what Bind produces: an immutable, shared-across-workers
// description of the opened file (its derived Schema plus whatever
// reader-private fields live behind the interface) together with its
// destructor.
type BindState interface {
	Schema() chunk.Schema
	Close() error
}

// Reader is what LocalInit produces: the exclusively-owned, per-worker
// state that drives the scan loop.
type Reader interface {
	// Fill writes up to c.Cap() rows into c and calls c.SetLen with the
	// count actually produced. done is true once this worker has no more
	// rows to contribute (sequential EOF, or contig claim exhaustion
	// under parallel mode); Fill must not be called again afterward.
	Fill(c *chunk.Chunk) (done bool, err error)
	Close() error
}

// TableFunction is the full entry-point descriptor one table-valued
// function registers under: a name and the two closures that drive the
// bind → global-init → local-init lifecycle. Scan itself is just calling
// Reader.Fill in a loop, so it is not part of this struct; see
// RunSequential/RunParallel below for the loop the host actually drives.
type TableFunction struct {
	Name string

	// Bind opens path, reads its header, derives the schema, and reports
	// whether an index was found and (if so) the contig/reference names
	// in declaration order. It must not do any per-row work.
	Bind func(path string, opts Options) (BindState, *GlobalState, error)

	// LocalInit opens a private file handle/header copy for one worker
	// and returns a Reader ready to Fill chunks. workerID distinguishes
	// workers only for logging; region and projection are the two
	// bind-independent facts a worker needs (the caller-pinned region
	// string, already comma-split by the caller via SplitRegions, and the
	// projection column list).
	LocalInit func(bind BindState, global *GlobalState, workerID int, regions []string, proj Projection, warn WarnFunc) (Reader, error)
}

// RunSequential drives one Reader to completion, calling emit once per
// filled chunk. It is the single-worker (max_threads == 1) scan loop. A
// scan-fatal error still emits the partial chunk filled before the error
// was hit, then surfaces the error.
func RunSequential(r Reader, c *chunk.Chunk, emit func(*chunk.Chunk) error) error {
	for {
		c.Reset()
		done, err := r.Fill(c)
		if c.Len() > 0 {
			if eerr := emit(c); eerr != nil {
				return eerr
			}
		}
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// RunParallel drives nWorkers Readers to completion concurrently, each
// with its own Chunk (vector_size rows), calling emit once per filled
// chunk from whichever worker produced it. emit must be safe to call
// concurrently from multiple goroutines; this function does not
// serialize emit calls itself. The first error from any worker is
// returned after every worker has stopped; rows already emitted by other
// workers before that point are not rolled back (scan-fatal errors stop
// just the worker that hit them).
func RunParallel(readers []Reader, newChunk func() *chunk.Chunk, emit func(*chunk.Chunk) error) error {
	var wg sync.WaitGroup
	errs := make([]error, len(readers))
	for i, r := range readers {
		wg.Add(1)
		go func(i int, r Reader) {
			defer wg.Done()
			errs[i] = RunSequential(r, newChunk(), emit)
		}(i, r)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
