package main

import (
	"flag"
	"os"

	"github.com/example/pixmark/internal/config"
	"github.com/example/pixmark/internal/server"
)

var startServer = func(s *server.Server) error { return s.Start() }

type serveCmd struct {
	*root
	fs    *flag.FlagSet
	addr  string
	cors  string
	quiet bool
}

func (s *serveCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	s := &serveCmd{root: r.subcommand("serve"), fs: fs}
	fs.Usage = usageFunc(s)
	addr, origins := ":8080", "*"
	if r.config != nil {
		addr, origins = r.config.Serve.Addr, r.config.Serve.CORSOrigins
	}
	if env := os.Getenv(config.EnvAddr); env != "" {
		addr = env
	}
	fs.StringVar(&s.addr, "addr", addr, "listen address")
	fs.StringVar(&s.cors, "cors", origins, "allowed CORS origins, comma separated")
	fs.BoolVar(&s.quiet, "quiet", false, "disable request logging")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: s}
	}
	return s, nil
}

func (s *serveCmd) Run() error {
	perPage := 0
	if s.config != nil {
		perPage = s.config.Search.PerPage
	}
	srv := server.New(server.Config{
		Addr:        s.addr,
		CORSOrigins: s.cors,
		PerPage:     perPage,
		Quiet:       s.quiet,
	}, newSearcher(s.root))
	return startServer(srv)
}
