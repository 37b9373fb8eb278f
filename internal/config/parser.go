package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/pixmark/internal/surface"
	"github.com/example/pixmark/internal/theme"
)

// Parse reads configuration in rc format: optional root keys followed by
// [section] blocks of "key = value" or "Key: value" lines.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	var current *theme.Theme
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			current = nil
			if name, ok := strings.CutPrefix(section, "theme."); ok {
				current = theme.Default()
				current.Name = name
				cfg.Themes[name] = current
			}
			continue
		}

		key, value, ok := splitKV(line)
		if !ok {
			continue
		}

		var err error
		switch {
		case current != nil:
			err = current.Set(key, value)
		case section == "":
			err = setRootField(cfg, key, value)
		case section == "search":
			err = setSearchField(&cfg.Search, key, value)
		case section == "editor":
			err = setEditorField(&cfg.Editor, key, value)
		case section == "serve":
			err = setServeField(&cfg.Serve, key, value)
		case section == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("line %d: error in root section: %w", lineNo, err)
			}
			return nil, fmt.Errorf("line %d: error in section [%s]: %w", lineNo, section, err)
		}
	}
	return cfg, scanner.Err()
}

func splitKV(line string) (key, value string, ok bool) {
	i := strings.IndexAny(line, "=:")
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	value = strings.TrimSpace(line[i+1:])
	if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	}
	return nil
}

func setSearchField(s *Search, key, value string) error {
	switch strings.ToLower(key) {
	case "api_key":
		s.APIKey = value
	case "base_url":
		s.BaseURL = value
	case "per_page":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		s.PerPage = n
	case "safesearch":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for key %s: %w", key, err)
		}
		s.SafeSearch = b
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for key %s: %w", key, err)
		}
		s.Timeout = d
	case "default_query":
		s.DefaultQuery = value
	case "default_count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		s.DefaultCount = n
	}
	return nil
}

func setEditorField(e *Editor, key, value string) error {
	switch strings.ToLower(key) {
	case "viewport":
		vp, err := surface.ParseViewport(value)
		if err != nil {
			return err
		}
		e.Viewport = vp
	case "output":
		e.Output = value
	}
	return nil
}

func setServeField(s *Serve, key, value string) error {
	switch strings.ToLower(key) {
	case "addr":
		s.Addr = value
	case "cors_origins":
		s.CORSOrigins = value
	}
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "export":
		n.Export = b
	case "copy":
		n.Copy = b
	}
	return nil
}
