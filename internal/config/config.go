package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/surface"
	"github.com/example/pixmark/internal/theme"
)

// Search holds the image search settings.
type Search struct {
	APIKey       string
	BaseURL      string
	PerPage      int
	SafeSearch   bool
	Timeout      time.Duration
	DefaultQuery string // searched when no query is given
	DefaultCount int
}

// Editor holds settings for the annotation editor.
type Editor struct {
	Viewport surface.Viewport // used when the display size is unknown
	Output   string
}

// Serve holds settings for the search proxy.
type Serve struct {
	Addr        string
	CORSOrigins string
}

// Notify holds notification settings.
type Notify struct {
	Export bool
	Copy   bool
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Search  Search
	Editor  Editor
	Serve   Serve
	Notify  Notify
	Themes  map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Search: Search{
			BaseURL:      gallery.DefaultBaseURL,
			PerPage:      gallery.DefaultPerPage,
			SafeSearch:   true,
			Timeout:      gallery.DefaultTimeout,
			DefaultQuery: gallery.DefaultQuery,
			DefaultCount: gallery.DefaultCount,
		},
		Editor: Editor{Viewport: surface.DefaultViewport},
		Serve:  Serve{Addr: ":8080", CORSOrigins: "*"},
		Themes: make(map[string]*theme.Theme),
	}
}

// Gallery returns a search client configured from c.
func (c *Config) Gallery() *gallery.Client {
	return gallery.NewClient(c.Search.APIKey,
		gallery.WithBaseURL(c.Search.BaseURL),
		gallery.WithSafeSearch(c.Search.SafeSearch),
		gallery.WithTimeout(c.Search.Timeout),
	)
}

// ResolveTheme returns the theme named by c.Theme, looking at themes defined
// in the config before the loader's sources.
func (c *Config) ResolveTheme(l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[c.Theme]; ok {
		return t, nil
	}
	return l.Load(c.Theme)
}

// String returns the configuration in rc format. The api key is written as
// is; callers printing to a terminal should use Redacted.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	sb.WriteString("\n")

	sb.WriteString("[search]\n")
	if c.Search.APIKey != "" {
		fmt.Fprintf(&sb, "api_key = %s\n", c.Search.APIKey)
	}
	fmt.Fprintf(&sb, "base_url = %s\n", c.Search.BaseURL)
	fmt.Fprintf(&sb, "per_page = %d\n", c.Search.PerPage)
	fmt.Fprintf(&sb, "safesearch = %v\n", c.Search.SafeSearch)
	fmt.Fprintf(&sb, "timeout = %s\n", c.Search.Timeout)
	if c.Search.DefaultQuery != "" {
		fmt.Fprintf(&sb, "default_query = %s\n", c.Search.DefaultQuery)
	}
	fmt.Fprintf(&sb, "default_count = %d\n", c.Search.DefaultCount)
	sb.WriteString("\n")

	sb.WriteString("[editor]\n")
	fmt.Fprintf(&sb, "viewport = %s\n", c.Editor.Viewport)
	if c.Editor.Output != "" {
		fmt.Fprintf(&sb, "output = %s\n", c.Editor.Output)
	}
	sb.WriteString("\n")

	sb.WriteString("[serve]\n")
	fmt.Fprintf(&sb, "addr = %s\n", c.Serve.Addr)
	fmt.Fprintf(&sb, "cors_origins = %s\n", c.Serve.CORSOrigins)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	var names []string
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f[0], f[1])
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Redacted is String with the api key masked.
func (c *Config) Redacted() string {
	cp := *c
	if cp.Search.APIKey != "" {
		cp.Search.APIKey = "********"
	}
	return cp.String()
}
