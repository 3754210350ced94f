package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogSink_QuietSuppressesTableStartedAndDone(t *testing.T) {
	var buf bytes.Buffer
	s := newLogSink(&buf, true)
	s.TableStarted("users", 100)
	s.TableDone("users", 100)
	if buf.Len() != 0 {
		t.Errorf("quiet sink wrote output: %q", buf.String())
	}
}

func TestLogSink_WarningAlwaysWrites(t *testing.T) {
	var buf bytes.Buffer
	s := newLogSink(&buf, true)
	s.Warning("dropped an index")
	if !strings.Contains(buf.String(), "dropped an index") {
		t.Errorf("Warning() did not write message, got %q", buf.String())
	}
}

func TestLogSink_ErrorAlwaysWrites(t *testing.T) {
	var buf bytes.Buffer
	s := newLogSink(&buf, true)
	s.Error("boom")
	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Error() did not write message, got %q", buf.String())
	}
}

func TestLogSink_TableStartedLogsWhenNotQuiet(t *testing.T) {
	var buf bytes.Buffer
	s := newLogSink(&buf, false)
	s.TableStarted("posts", 0)
	if !strings.Contains(buf.String(), "posts") {
		t.Errorf("TableStarted() did not log table name, got %q", buf.String())
	}
	if s.bar != nil {
		t.Error("expected no progress bar when estimatedRows is 0")
	}
}
