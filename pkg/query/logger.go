package query

import (
	"fmt"
	"log"
)

// Severity ranks a log message: the fatal/error/warn split the engine
// surfaces to an embedding application.
type Severity int

const (
	SeverityWarn Severity = iota
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "warn"
	}
}

// Locator pinpoints where in the query source a message applies; any field
// may be negative to mean "unknown". It exists so a parser front end can
// report line/column/byte positions through the same channel the engine
// reports compile and evaluation problems on.
type Locator struct {
	Line, Column, Byte int
}

func (l *Locator) String() string {
	if l == nil || l.Line < 0 {
		return ""
	}
	if l.Column < 0 {
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("line %d, column %d", l.Line, l.Column)
}

// Logger is the message handler a World routes severity-tagged messages
// through, a thin wrapper over the standard log.Logger.
type Logger struct {
	l *log.Logger
}

// NewLogger wraps a standard logger; a nil argument yields a Logger that
// discards everything.
func NewLogger(l *log.Logger) *Logger { return &Logger{l: l} }

func (lg *Logger) log(sev Severity, loc *Locator, format string, args ...interface{}) {
	if lg == nil || lg.l == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if where := loc.String(); where != "" {
		lg.l.Printf("%s: %s: %s", sev, where, msg)
		return
	}
	lg.l.Printf("%s: %s", sev, msg)
}

// Warn reports a recoverable condition (e.g. a SERVICE clause that will not
// be executed).
func (lg *Logger) Warn(loc *Locator, format string, args ...interface{}) {
	lg.log(SeverityWarn, loc, format, args...)
}

// Error reports a failure that marks the query failed but leaves the
// process healthy (parse and compile errors).
func (lg *Logger) Error(loc *Locator, format string, args ...interface{}) {
	lg.log(SeverityError, loc, format, args...)
}

// Fatal reports an unrecoverable condition. It still only logs: lifecycle
// decisions stay with the caller, never the library.
func (lg *Logger) Fatal(loc *Locator, format string, args ...interface{}) {
	lg.log(SeverityFatal, loc, format, args...)
}

// Std exposes the wrapped standard logger for collaborators that take a
// plain *log.Logger (the rowsource builder's SERVICE warning path).
func (lg *Logger) Std() *log.Logger {
	if lg == nil {
		return nil
	}
	return lg.l
}
