// ABOUTME: Tests for logger construction.
// ABOUTME: Checks level selection and output prefix.
package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLevels(t *testing.T) {
	if got := New(&bytes.Buffer{}, false).GetLevel(); got != log.InfoLevel {
		t.Errorf("level = %v, want info", got)
	}
	if got := New(&bytes.Buffer{}, true).GetLevel(); got != log.DebugLevel {
		t.Errorf("verbose level = %v, want debug", got)
	}
}

func TestNewWritesPrefixAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug("hidden")
	logger.Error("write failed", "kind", "peso")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug output leaked at info level: %q", out)
	}
	if !strings.Contains(out, "vitals") || !strings.Contains(out, "write failed") || !strings.Contains(out, "kind=peso") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing to see")
}
