package main

import (
	"flag"
	"fmt"

	"github.com/example/pixmark/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	path   string
	reveal bool
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r.subcommand("config"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.path, "path", "", "file written by save (default: the loaded config or "+config.DefaultPath()+")")
	fs.BoolVar(&c.reveal, "reveal", false, "print the api key instead of redacting it")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

func (c *configCmd) runPrint() error {
	if c.reveal {
		fmt.Fprint(c.stdout, c.config.String())
	} else {
		fmt.Fprint(c.stdout, c.config.Redacted())
	}
	return nil
}

func (c *configCmd) runSave() error {
	path := c.path
	if path == "" {
		path = config.NewLoader(version, c.configPath).GetConfigPath()
	}
	if path == "" {
		path = config.DefaultPath()
	}
	if path == "" {
		return fmt.Errorf("no config path: home directory unknown")
	}
	if err := config.Save(c.config, path); err != nil {
		return err
	}
	fmt.Fprintf(c.stderr, "Configuration saved to %s\n", path)
	return nil
}
