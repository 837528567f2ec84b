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

// Package htslog is the fallback sink for scan-warning-class events (a
// VCF spec mismatch, an empty user region, an un-deduplicated multi-region
// scan, ...): events that must never abort a scan but that an operator
// needs visibility into. Readers prefer a caller-supplied callback
// (scan.WarnFunc); htslog.Default is used only when none is installed.
package htslog

import (
	"log"
	"os"
)

// Logger wraps a *log.Logger with the leveled helpers this module's
// readers call; it intentionally does not attempt structured/JSON output.
type Logger struct {
	l *log.Logger
}

// New returns a Logger prefixed with component (e.g. "vcfreader").
func New(component string) *Logger {
	return &Logger{l: log.New(os.Stderr, "["+component+"] ", log.LstdFlags)}
}

// Default is the process-wide fallback logger used when a reader has no
// caller-installed warning callback.
var Default = New("htscore")

func (g *Logger) Warnf(format string, args ...interface{}) {
	g.l.Printf("WARN "+format, args...)
}

func (g *Logger) Errorf(format string, args ...interface{}) {
	g.l.Printf("ERROR "+format, args...)
}

func (g *Logger) Infof(format string, args ...interface{}) {
	g.l.Printf("INFO "+format, args...)
}
