package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").Funcs(map[string]any{
		"flags": func(fs *flag.FlagSet) []flagInfo {
			result := []flagInfo{}
			if fs == nil {
				return result
			}
			fs.VisitAll(func(f *flag.Flag) {
				result = append(result, flagInfo{f.Name, f.DefValue, f.Usage})
			})
			return result
		},
	}).ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

type UsageError struct {
	of  HelpData
	msg string
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	if e.msg != "" {
		return e.msg + "\n\n" + help
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), e.of)
	if err != nil {
		log.Printf("error rendering help template: %v", err)
		return "", err
	}
	return buf.String(), nil
}

func usageErrorf(of HelpData, format string, args ...any) *UsageError {
	return &UsageError{of: of, msg: fmt.Sprintf(format, args...)}
}

// usageFunc renders the help template for flag.FlagSet.Usage.
func usageFunc(of HelpData) func() {
	return func() {
		fmt.Fprint(os.Stderr, (&UsageError{of: of}).Error())
	}
}

func (r *root) Template() string {
	return "root.txt"
}

func (s *searchCmd) Template() string {
	return "search.txt"
}

func (a *annotateCmd) Template() string {
	return "annotate.txt"
}

func (e *editCmd) Template() string {
	return "edit.txt"
}

func (s *serveCmd) Template() string {
	return "serve.txt"
}

func (c *configCmd) Template() string {
	return "config.txt"
}
