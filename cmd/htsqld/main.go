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

// htsqld is the demo host for this module's table functions: it binds
// register.All() the way an embedding query engine would, drives one
// table function's bind -> global_init -> local_init -> scan lifecycle
// against a path on disk, and writes the resulting rows as tab-separated
// text. It exists to exercise the whole stack end to end without
// depending on any particular SQL engine's plugin ABI.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/RGenomicsETL/duckhts-sub000/chunk"
	"github.com/RGenomicsETL/duckhts-sub000/register"
	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

var (
	dashtable     string
	dashregion    string
	dashindex     string
	dashreference string
	dashmate      string
	dashformat    string
	dashstdtags   bool
	dashauxtags   bool
	dashinterl    bool
	dashtidy      bool
	dashheader    bool
	dashattrmap   bool
	dasho         string
	dashlimit     int
	dashlist      bool
)

func init() {
	flag.StringVar(&dashtable, "table", "", "table function to run (see -list)")
	flag.StringVar(&dashregion, "region", "", "comma-separated region list (e.g. chr1:1-1000)")
	flag.StringVar(&dashindex, "index_path", "", "explicit index file path (default: alongside the input)")
	flag.StringVar(&dashreference, "reference", "", "reference FASTA, for CRAM input")
	flag.StringVar(&dashmate, "mate_path", "", "second FASTQ file of a paired read set")
	flag.StringVar(&dashformat, "format", "", "explicit format hint (vcf, bcf, sam, bam, cram, fasta, fastq, tabix, gtf, gff)")
	flag.BoolVar(&dashstdtags, "standard_tags", true, "decode standard BAM aux tags into named columns")
	flag.BoolVar(&dashauxtags, "auxiliary_tags", true, "surface non-standard BAM aux tags via an AUXILIARY_TAGS map column")
	flag.BoolVar(&dashinterl, "interleaved", false, "treat a single FASTQ input as an interleaved paired file")
	flag.BoolVar(&dashtidy, "tidy_format", false, "ask VCF/BCF sample-keyed FORMAT fields to unpack into one row per sample")
	flag.BoolVar(&dashheader, "header", true, "read_tabix: the first line not starting with the meta character ('#') is a column-name row")
	flag.BoolVar(&dashattrmap, "attributes_map", false, "GTF/GFF: add an attributes_map MAP column beside the raw attributes column")
	flag.StringVar(&dasho, "o", "", "file for output (default is stdout)")
	flag.IntVar(&dashlimit, "limit", 0, "stop after printing this many rows (0: unlimited)")
	flag.BoolVar(&dashlist, "list", false, "list every registered table function and exit")
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func exitf(f string, args ...any) {
	exit(fmt.Errorf(f, args...))
}

func main() {
	flag.Parse()

	if dashlist {
		for _, tf := range register.All() {
			fmt.Println(tf.Name)
		}
		return
	}

	if dashtable == "" {
		exitf("missing -table (run -list to see the registered table functions)")
	}
	args := flag.Args()
	if len(args) != 1 {
		exitf("usage: htsqld -table NAME [options] path")
	}
	path := args[0]

	tf, err := register.Lookup(dashtable)
	if err != nil {
		exit(err)
	}

	opts := scan.Options{}
	if dashregion != "" {
		opts["region"] = dashregion
	}
	if dashindex != "" {
		opts["index_path"] = dashindex
	}
	if dashreference != "" {
		opts["reference"] = dashreference
	}
	if dashmate != "" {
		opts["mate_path"] = dashmate
	}
	if dashformat != "" {
		opts["format"] = dashformat
	}
	opts["standard_tags"] = dashstdtags
	opts["auxiliary_tags"] = dashauxtags
	opts["interleaved"] = dashinterl
	opts["tidy_format"] = dashtidy
	opts["header"] = dashheader
	opts["attributes_map"] = dashattrmap

	bind, global, err := tf.Bind(path, opts)
	if err != nil {
		exit(err)
	}
	defer bind.Close()

	schema := bind.Schema()

	dst := os.Stdout
	if dasho != "" {
		f, err := os.Create(dasho)
		if err != nil {
			exit(err)
		}
		defer f.Close()
		dst = f
	}
	out := bufio.NewWriter(dst)
	defer out.Flush()

	names := make([]string, len(schema))
	for i, col := range schema {
		names[i] = col.Name
	}
	fmt.Fprintln(out, strings.Join(names, "\t"))

	var printed int
	var mu sync.Mutex
	emit := func(c *chunk.Chunk) error {
		mu.Lock()
		defer mu.Unlock()
		for row := 0; row < c.Len(); row++ {
			if dashlimit > 0 && printed >= dashlimit {
				return errLimitReached
			}
			writeRow(out, c, row)
			printed++
		}
		return nil
	}

	regions := scan.SplitRegions(dashregion)
	nWorkers := 1
	if global != nil {
		nWorkers = global.MaxThreads
	}
	if nWorkers <= 1 {
		r, err := tf.LocalInit(bind, global, 0, regions, nil, nil)
		if err != nil {
			exit(err)
		}
		err = scan.RunSequential(r, chunk.NewChunk(schema, nil, chunk.VectorSize), emit)
		r.Close()
		if err != nil && err != errLimitReached {
			exit(err)
		}
		return
	}

	readers := make([]scan.Reader, nWorkers)
	for i := range readers {
		r, err := tf.LocalInit(bind, global, i, regions, nil, nil)
		if err != nil {
			exit(err)
		}
		readers[i] = r
	}
	err = scan.RunParallel(readers, func() *chunk.Chunk { return chunk.NewChunk(schema, nil, chunk.VectorSize) }, emit)
	for _, r := range readers {
		r.Close()
	}
	if err != nil && err != errLimitReached {
		exit(err)
	}
}

var errLimitReached = fmt.Errorf("htsqld: row limit reached")

func writeRow(out *bufio.Writer, c *chunk.Chunk, row int) {
	for i := range c.Schema {
		if i > 0 {
			out.WriteByte('\t')
		}
		v := c.Column(i)
		if v == nil {
			continue // unprojected; never happens for this host's bare-star scans
		}
		out.WriteString(formatCell(v, row))
	}
	out.WriteByte('\n')
}

func formatCell(v *chunk.Vector, row int) string {
	if !v.IsValid(row) {
		return "\\N"
	}
	switch v.Type {
	case chunk.Boolean:
		return strconv.FormatBool(v.Bools[row])
	case chunk.Integer:
		return strconv.FormatInt(int64(v.Int32s[row]), 10)
	case chunk.BigInt:
		return strconv.FormatInt(v.Int64s[row], 10)
	case chunk.USmallInt:
		return strconv.FormatUint(uint64(v.Uint16s[row]), 10)
	case chunk.Float:
		return strconv.FormatFloat(float64(v.Float32s[row]), 'g', -1, 32)
	case chunk.Double:
		return strconv.FormatFloat(v.Float64s[row], 'g', -1, 64)
	case chunk.Varchar:
		return v.Strings[row]
	case chunk.Blob:
		return fmt.Sprintf("<%d bytes>", len(v.Blobs[row]))
	case chunk.List:
		return formatListCell(v, row)
	case chunk.Map:
		return formatMapCell(v, row)
	default:
		return ""
	}
}

func formatListCell(v *chunk.Vector, row int) string {
	start, end := v.Offsets[row], v.Offsets[row+1]
	elems := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		elems = append(elems, formatCell(v.Child, i))
	}
	return strings.Join(elems, ",")
}

func formatMapCell(v *chunk.Vector, row int) string {
	keys, vals := v.Keys[row], v.Values[row]
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + vals[i]
	}
	return strings.Join(pairs, ",")
}
