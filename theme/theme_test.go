package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go-wander/music"
)

func TestDefaultPalette(t *testing.T) {
	p := Default()
	if p.Name != "plasma" {
		t.Errorf("name = %q, want plasma", p.Name)
	}
	if len(p.Colors) != 9 {
		t.Fatalf("%d colours, want 9", len(p.Colors))
	}
	if p.Lookup(0) != (RGB{13, 8, 135}) || p.Lookup(1) != (RGB{240, 249, 33}) {
		t.Errorf("ends = %v %v", p.Lookup(0), p.Lookup(1))
	}
	if p.Lookup(-1) != p.Colors[0] || p.Lookup(2) != p.Colors[8] {
		t.Error("out of range lookups should clamp")
	}
}

func TestLookupInterpolates(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}}}
	if got := p.Lookup(0.5); got != (RGB{100, 50, 25}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}
}

func TestParseGPLErrors(t *testing.T) {
	if _, err := ParseGPL(strings.NewReader("GIMP Palette\nName: empty\n")); err == nil {
		t.Error("palette with no colours parsed")
	}
	if _, err := LoadGPL(filepath.Join(t.TempDir(), "missing.gpl")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	if err != nil || p.Name != "plasma" {
		t.Fatalf("LoadOrDefault(\"\") = %v, %v", p, err)
	}

	path := filepath.Join(t.TempDir(), "mono.gpl")
	if err := os.WriteFile(path, []byte("GIMP Palette\nName: mono\n0 0 0\n255 255 255\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err = LoadOrDefault(path)
	if err != nil || p.Name != "mono" || len(p.Colors) != 2 {
		t.Errorf("LoadOrDefault(file) = %+v, %v", p, err)
	}
}

func TestVoiceColoursDistinct(t *testing.T) {
	th := New(Default())
	seen := map[string]music.Role{}
	for _, r := range music.Roles {
		c := string(th.Voice(r))
		if other, ok := seen[c]; ok {
			t.Errorf("%s and %s share colour %s", r, other, c)
		}
		seen[c] = r
	}
}
