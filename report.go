// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// ErrorKind classifies a diagnostic raised while reading or extracting a PDF.
type ErrorKind int

const (
	KindSyntaxWarning ErrorKind = iota
	KindSyntaxError
	KindIOError
	KindPermissionDenied
	KindUnimplemented
	KindConfigError
	KindInternalError
)

func (k ErrorKind) String() string {
	switch k {
	case KindSyntaxWarning:
		return "syntax-warning"
	case KindSyntaxError:
		return "syntax-error"
	case KindIOError:
		return "io-error"
	case KindPermissionDenied:
		return "permission-denied"
	case KindUnimplemented:
		return "unimplemented"
	case KindConfigError:
		return "config-error"
	case KindInternalError:
		return "internal-error"
	default:
		return "unknown"
	}
}

// Reporter receives diagnostics produced while parsing or extracting a
// document. No error escapes the parser as a Go panic or aborts the whole
// document; instead every anomaly is funneled through Report so that a
// caller can log it, collect it, or ignore it.
type Reporter interface {
	Report(kind ErrorKind, filePos int64, message string)
}

// slogReporter adapts Reporter to a *slog.Logger, one log line per report.
type slogReporter struct {
	logger *slog.Logger
}

func (r *slogReporter) Report(kind ErrorKind, filePos int64, message string) {
	level := slog.LevelWarn
	switch kind {
	case KindIOError, KindInternalError, KindPermissionDenied:
		level = slog.LevelError
	case KindSyntaxWarning:
		level = slog.LevelDebug
	}
	r.logger.Log(context.Background(), level, message, slog.String("kind", kind.String()), slog.Int64("pos", filePos))
}

// discardReporter drops every report; it is the default when no Reporter
// has been configured.
type discardReporter struct{}

func (discardReporter) Report(ErrorKind, int64, string) {}

var defaultReporter atomic.Pointer[Reporter]

// SetReporter installs the package-level Reporter used by Open/Read when no
// per-call Reporter is supplied. Pass nil to discard all reports.
//
// SetReporter is safe for concurrent use.
func SetReporter(r Reporter) {
	if r == nil {
		r = discardReporter{}
	}
	defaultReporter.Store(&r)
}

// NewSlogReporter returns a Reporter that logs each report as a single
// structured record through logger.
func NewSlogReporter(logger *slog.Logger) Reporter {
	return &slogReporter{logger: logger}
}

// getReporter returns the configured package-level Reporter, defaulting to
// a Reporter that discards everything.
func getReporter() Reporter {
	p := defaultReporter.Load()
	if p == nil {
		var r Reporter = discardReporter{}
		defaultReporter.Store(&r)
		return r
	}
	return *p
}

func reportf(kind ErrorKind, filePos int64, format string, args ...interface{}) {
	getReporter().Report(kind, filePos, fmt.Sprintf(format, args...))
}
