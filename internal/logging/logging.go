// Package logging provides the leveled logger the protocol engine and
// nodes report drops, warnings, and protocol faults through, plus a
// session-file logger for the demo binaries.
//
// Grounded on the pack's own example of a structured, leveled logger
// (github.com/op/go-logging, as used by kryptco-kr) rather than
// reaching for the standard library's bare log.Printf.
package logging

import (
	"os"

	golog "github.com/op/go-logging"
)

// Logger is the interface the engine and nodes log through, so the
// backend stays swappable (a test can substitute a silent or
// recording logger without pulling in go-logging).
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

var format = golog.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} %{module} ▶ %{message}`,
)

// goLogger adapts github.com/op/go-logging to Logger.
type goLogger struct {
	backend *golog.Logger
}

// New creates a Logger backed by go-logging, writing to stderr at the
// given module name (shown in every line so multiple engines/nodes in
// one process can be told apart).
func New(module string) Logger {
	backend := golog.NewLogBackend(os.Stderr, "", 0)
	formatted := golog.NewBackendFormatter(backend, format)
	leveled := golog.AddModuleLevel(formatted)
	leveled.SetLevel(golog.INFO, module)
	golog.SetBackend(leveled)
	return goLogger{backend: golog.MustGetLogger(module)}
}

func (g goLogger) Debugf(format string, args ...interface{}) { g.backend.Debugf(format, args...) }
func (g goLogger) Infof(format string, args ...interface{})  { g.backend.Infof(format, args...) }
func (g goLogger) Warnf(format string, args ...interface{})  { g.backend.Warningf(format, args...) }
func (g goLogger) Errorf(format string, args ...interface{}) { g.backend.Errorf(format, args...) }

// Discard is a Logger that drops everything, for tests that don't
// want protocol warnings on stderr.
var Discard Logger = discard{}

type discard struct{}

func (discard) Debugf(string, ...interface{}) {}
func (discard) Infof(string, ...interface{})  {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}
