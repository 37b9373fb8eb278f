package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"

	"github.com/example/pixmark/internal/clipboard"
	"github.com/example/pixmark/internal/gallery"
	"github.com/example/pixmark/internal/picker"
)

type searcher interface {
	Search(ctx context.Context, query string, perPage int) ([]gallery.ImageRecord, error)
}

var (
	newSearcher = func(r *root) searcher { return r.config.Gallery() }
	runPicker   = picker.Run
)

type searchCmd struct {
	*root
	fs      *flag.FlagSet
	query   string
	perPage int
	asJSON  bool
	pick    bool
}

func (s *searchCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseSearchCmd(args []string, r *root) (*searchCmd, error) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	s := &searchCmd{root: r.subcommand("search"), fs: fs}
	fs.Usage = usageFunc(s)
	fs.IntVar(&s.perPage, "n", 0, "number of results (3-200, default from config)")
	fs.BoolVar(&s.asJSON, "json", false, "print results as JSON")
	fs.BoolVar(&s.pick, "pick", false, "choose a result interactively and print it")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	s.query = strings.Join(fs.Args(), " ")
	if strings.TrimSpace(s.query) == "" {
		s.query, s.perPage = r.defaultGallery(s.perPage)
	}
	return s, nil
}

// defaultGallery returns the query searched when none is given, and the
// result count to use when n is unset.
func (r *root) defaultGallery(n int) (string, int) {
	query, count := gallery.DefaultQuery, gallery.DefaultCount
	if r.config != nil {
		if q := strings.TrimSpace(r.config.Search.DefaultQuery); q != "" {
			query = q
		}
		if r.config.Search.DefaultCount > 0 {
			count = r.config.Search.DefaultCount
		}
	}
	if n != 0 {
		count = n
	}
	return query, count
}

// subcommand returns a copy of r named for a child command.
func (r *root) subcommand(name string) *root {
	child := *r
	child.program = strings.TrimSpace(r.program + " " + name)
	return &child
}

func (r *root) perPage(n int) int {
	if n == 0 && r.config != nil {
		n = r.config.Search.PerPage
	}
	return gallery.ClampPerPage(n)
}

func (r *root) search(query string, n int) ([]gallery.ImageRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*gallery.DefaultTimeout)
	defer cancel()
	hits, err := newSearcher(r).Search(ctx, query, r.perPage(n))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", strings.TrimSpace(query), err)
	}
	return hits, nil
}

func (s *searchCmd) Run() error {
	hits, err := s.search(s.query, s.perPage)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Fprintln(s.stderr, "no results")
		return nil
	}
	if s.pick {
		rec, err := runPicker(hits, s.stderr, picker.WithTitle("results for "+s.query), picker.WithCopy(clipboard.WriteText))
		if err != nil {
			return err
		}
		hits = []gallery.ImageRecord{rec}
	}
	if s.asJSON {
		enc := json.NewEncoder(s.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	for i, h := range hits {
		fmt.Fprintf(s.stdout, "%3d  %s\n     %s\n", i, picker.Row(h), h.SourceURL())
	}
	return nil
}
