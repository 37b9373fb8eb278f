package theme

import (
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Loader finds themes by name or path.
type Loader struct {
	ConfigDir string
	SystemDir string
}

// NewLoader creates a Loader with the standard search directories.
func NewLoader() *Loader {
	home, _ := os.UserHomeDir()
	return &Loader{
		ConfigDir: filepath.Join(home, ".config", "pixmark", "themes"),
		SystemDir: "/usr/share/pixmark/themes",
	}
}

// Load resolves name in order: existing file path, embedded theme, ConfigDir,
// SystemDir. An empty name yields the default theme.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if st, err := os.Stat(name); err == nil && !st.IsDir() {
		return parseFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
	}

	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	if t, err := parseFile(EmbeddedThemes, "defaults/"+filename); err == nil {
		return t, nil
	}
	for _, dir := range []string{l.ConfigDir, l.SystemDir} {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, filename)); err != nil {
			continue
		}
		return parseFile(os.DirFS(dir), filename)
	}
	return nil, fmt.Errorf("theme '%s' not found", name)
}

// Embedded lists the names of the built-in themes.
func Embedded() []string {
	entries, err := fs.ReadDir(EmbeddedThemes, "defaults")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".theme"))
	}
	sort.Strings(names)
	return names
}

func parseFile(fsys fs.FS, name string) (*Theme, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer closeQuietly(f)
	return Parse(f)
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		log.Printf("theme: close: %v", err)
	}
}
