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

package tabixreader

import (
	"fmt"
	"os"
	"strings"

	"sigs.k8s.io/yaml"

	"github.com/RGenomicsETL/duckhts-sub000/scan"
)

// options is the named-parameter bag shared by read_tabix/read_gtf/read_gff.
type options struct {
	region        string
	indexPath     string
	attributesMap bool
	header        bool
	headerNames   []string
	autoDetect    bool
	columnTypes   []string
}

func parseOptions(o scan.Options) (options, error) {
	opts := options{
		region:        o.String("region", ""),
		indexPath:     o.String("index_path", ""),
		attributesMap: o.Bool("attributes_map", false),
		header:        o.Bool("header", false),
		autoDetect:    o.Bool("auto_detect", false),
	}

	names, err := stringListOrSidecar(o, "header_names")
	if err != nil {
		return options{}, err
	}
	opts.headerNames = names

	types, err := stringListOrSidecar(o, "column_types")
	if err != nil {
		return options{}, err
	}
	opts.columnTypes = types

	return opts, nil
}

// stringListOrSidecar resolves a named option that is normally an inline
// ordered list of strings, but may instead name a YAML sidecar file (an
// ergonomic extension of the named-parameter surface: a plain YAML list
// document, decoded with sigs.k8s.io/yaml).
func stringListOrSidecar(o scan.Options, name string) ([]string, error) {
	if l := o.StringList(name); l != nil {
		return l, nil
	}
	s := o.String(name, "")
	if s == "" {
		return nil, nil
	}
	if !strings.HasSuffix(s, ".yaml") && !strings.HasSuffix(s, ".yml") {
		return nil, fmt.Errorf("%s: expected an inline list or a .yaml/.yml sidecar path, got %q", name, s)
	}
	data, err := os.ReadFile(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var list []string
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return list, nil
}
