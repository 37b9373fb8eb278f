package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/pixmark/internal/config"
	"github.com/example/pixmark/internal/logging"
	"github.com/example/pixmark/internal/notify"
	"github.com/example/pixmark/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	config       *config.Config
	exportAlerts bool
	copyAlerts   bool
	themeName    string
	configPath   string
	verbose      bool
	activeTheme  *theme.Theme
	stdout       io.Writer
	stderr       io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	r := &root{
		fs:       flag.NewFlagSet("pixmark", flag.ExitOnError),
		program:  "pixmark",
		notifier: notify.New(notify.LoadPreferences()),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.BoolVar(&r.exportAlerts, "notify-export", false, "show a desktop notification after exporting an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", false, "show a desktop notification after copying to the clipboard")
	r.fs.StringVar(&r.themeName, "theme", "", "color theme for the editor window (default, dark, or a file)")
	r.fs.StringVar(&r.configPath, "config", configPathOverride, "configuration file to load")
	r.fs.BoolVar(&r.verbose, "v", false, "log debug output to stderr")
	r.fs.Usage = usageFunc(r)
	return r
}

// loadConfig reads the rc file and environment. Flags that were not given
// explicitly fall back to the config values.
func (r *root) loadConfig() {
	cfg, err := config.NewLoader(version, r.configPath).Load()
	if err != nil {
		fmt.Fprintf(r.stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
		config.ApplyEnv(cfg)
	}
	r.config = cfg

	set := map[string]bool{}
	r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["notify-export"] {
		r.exportAlerts = cfg.Notify.Export
	}
	if !set["notify-copy"] {
		r.copyAlerts = cfg.Notify.Copy
	}
}

func (r *root) setupLogging() {
	level := slog.LevelInfo
	if r.verbose {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: level})))
}

// resolveTheme picks the editor theme. Precedence: flag, environment, config.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = r.config.Theme
	}
	if t, ok := r.config.Themes[name]; ok {
		return t
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		if name != "" && !strings.EqualFold(name, "default") {
			fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	r.setupLogging()
	r.loadConfig()
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "search":
		cmd, err = parseSearchCmd(subArgs, r)
	case "annotate":
		cmd, err = parseAnnotateCmd(subArgs, r)
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "serve":
		cmd, err = parseServeCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "themes":
		cmd = &themesCmd{root: r}
	case "version":
		cmd = &versionCmd{root: r}
	case "help":
		err = &UsageError{of: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
