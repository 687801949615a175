package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogDisabledByDefault(t *testing.T) {
	Disable()
	Log("test", "nothing %d", 1)
	if Enabled() {
		t.Fatal("logging enabled after Disable")
	}
}

func TestLogWritesCategory(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	Log("session", "start cursor=%v", "2s")
	out := buf.String()
	if !strings.Contains(out, "category=session") {
		t.Errorf("missing category field in %q", out)
	}
	if !strings.Contains(out, "start cursor=2s") {
		t.Errorf("missing message in %q", out)
	}
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableWriter(&buf)
	defer Disable()

	for i := 0; i < 9; i++ {
		LogEvery(3, "tick", "every test")
	}
	if got := strings.Count(buf.String(), "every test"); got != 3 {
		t.Errorf("logged %d times, want 3", got)
	}
}
