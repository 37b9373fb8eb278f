package main

import (
	"fmt"
	"sort"

	"github.com/example/pixmark/internal/theme"
)

type versionCmd struct{ *root }

func (v *versionCmd) Run() error {
	fmt.Fprintf(v.stdout, "%s version %s", v.program, version)
	if commit != "" {
		fmt.Fprintf(v.stdout, " (%s", commit)
		if date != "" {
			fmt.Fprintf(v.stdout, " %s", date)
		}
		fmt.Fprint(v.stdout, ")")
	}
	fmt.Fprintln(v.stdout)
	return nil
}

type themesCmd struct{ *root }

func (t *themesCmd) Run() error {
	for _, name := range theme.Embedded() {
		fmt.Fprintln(t.stdout, name)
	}
	var custom []string
	for name := range t.config.Themes {
		custom = append(custom, name)
	}
	sort.Strings(custom)
	for _, name := range custom {
		fmt.Fprintf(t.stdout, "%s (config)\n", name)
	}
	return nil
}
