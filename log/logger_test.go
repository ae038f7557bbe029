package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestMinLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)
	defer SetMinLevel(LProgress)

	SetMinLevel(LInfo)
	Printf("[debug] hidden %d", 1)
	Printf("[progress] hidden %d", 2)
	Printf("[info] shown %d", 3)
	Printf("[warn] shown %d", 4)
	Println("shown without level")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error(out)
	}
	for _, s := range []string{"[info] shown 3", "[warn] shown 4", "shown without level"} {
		if !strings.Contains(out, s) {
			t.Errorf("missing %q in %q", s, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 3 {
		t.Errorf("expected 3 lines, got %d", n)
	}
}

func TestStep(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	done := Step("Converting")
	done()
	out := buf.String()
	if !strings.Contains(out, "[step] Starting: Converting") || !strings.Contains(out, "[step] Finished: Converting in ") {
		t.Error(out)
	}
}

func TestParseLevel(t *testing.T) {
	if l, err := ParseLevel("warn"); err != nil || l != LWarn {
		t.Error(l, err)
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error")
	}
}
