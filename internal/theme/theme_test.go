package theme

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseOverridesDefaults(t *testing.T) {
	th, err := Parse(strings.NewReader(`
# comment
Name: Custom
background: #112233
Selection: rgba(255,0,0,1)
Unknown: #000000
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.Name != "Custom" {
		t.Errorf("name = %q", th.Name)
	}
	if th.Background != (color.RGBA{0x11, 0x22, 0x33, 255}) {
		t.Errorf("background = %v", th.Background)
	}
	if th.Selection != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("selection = %v", th.Selection)
	}
	if th.CheckerDark != Default().CheckerDark {
		t.Errorf("unset keys should keep defaults")
	}
}

func TestParseBadColor(t *testing.T) {
	if _, err := Parse(strings.NewReader("Background: #12")); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmbeddedDefaultMatchesBuiltin(t *testing.T) {
	th, err := NewLoader().Load("default")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	for i, f := range th.Fields() {
		if w := want.Fields()[i]; f != w {
			t.Errorf("field %s = %s, want %s", f[0], f[1], w[1])
		}
	}
}

func TestLoaderSearchOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ocean.theme"), []byte("Name: Ocean\nBackground: #0000FF\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir}
	th, err := l.Load("ocean")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if th.Name != "Ocean" {
		t.Errorf("name = %q", th.Name)
	}
	byPath, err := l.Load(filepath.Join(dir, "ocean.theme"))
	if err != nil || byPath.Background != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("load by path: %v %v", byPath, err)
	}
	if _, err := l.Load("missing"); err == nil {
		t.Error("expected not found")
	}
	if def, _ := l.Load(""); def.Name != "Default" {
		t.Error("empty name should give default")
	}
}

func TestEmbeddedNames(t *testing.T) {
	names := Embedded()
	if len(names) != 2 || names[0] != "dark" || names[1] != "default" {
		t.Errorf("names = %v", names)
	}
}
