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

import "fmt"

// Stage tags the lifecycle phase an error occurred in, used to route the
// error to the right engine-facing setter (bind/init error vs. scan
// function-error).
type Stage int

const (
	StageBind Stage = iota
	StageInit
	StageScan
)

func (s Stage) String() string {
	switch s {
	case StageBind:
		return "bind"
	case StageInit:
		return "init"
	case StageScan:
		return "scan"
	default:
		return "unknown"
	}
}

// Error is a stage-tagged, wrapped error. Bind-fatal and Init-fatal errors
// fail the whole query before execution starts; Scan-fatal errors stop
// just the worker that hit them (the worker still emits its last partial
// chunk before reporting done).
type Error struct {
	Stage Stage
	Op    string // e.g. "open", "read-header", "load-index"
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func BindError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: StageBind, Op: op, Err: err}
}

func InitError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: StageInit, Op: op, Err: err}
}

func ScanError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Stage: StageScan, Op: op, Err: err}
}
