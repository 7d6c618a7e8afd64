package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSimpleProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(4)
	progress.Update(2)
	progress.Finish()

	out := buf.String()
	if !strings.Contains(out, "(2/4)") || !strings.Contains(out, "(4/4)") {
		t.Errorf("unexpected progress output %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("Finish should end the line")
	}
}

func TestSimpleProgressZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestProgressFunc(t *testing.T) {
	buf := &bytes.Buffer{}
	update := ProgressFunc(NewProgressReporter(buf))

	update(1, 3)
	update(3, 3)

	out := buf.String()
	if !strings.Contains(out, "(1/3)") || !strings.Contains(out, "(3/3)") {
		t.Errorf("unexpected progress output %q", out)
	}
}

func TestSimpleProgressError(t *testing.T) {
	buf := &bytes.Buffer{}
	NewProgressReporter(buf).Error(errors.New("store closed"))
	if !strings.Contains(buf.String(), "store closed") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
