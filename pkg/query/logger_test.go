package query

import (
	"bytes"
	"log"
	"testing"
)

func TestLoggerSeverityAndLocatorFormatting(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(log.New(&buf, "", 0))

	lg.Warn(&Locator{Line: 3, Column: 7, Byte: -1}, "unexpected %s", "thing")
	if got, want := buf.String(), "warn: line 3, column 7: unexpected thing\n"; got != want {
		t.Errorf("Warn output = %q, want %q", got, want)
	}

	buf.Reset()
	lg.Error(nil, "boom")
	if got, want := buf.String(), "error: boom\n"; got != want {
		t.Errorf("Error output = %q, want %q", got, want)
	}
}

func TestLoggerNilReceiversDiscard(t *testing.T) {
	var nilLogger *Logger
	nilLogger.Warn(nil, "must not panic")
	NewLogger(nil).Fatal(nil, "must not panic either")
}
