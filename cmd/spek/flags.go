// ABOUTME: CLI flag parsing using stdlib flag package
// ABOUTME: Global flags (-version, -verbose) plus per-subcommand flag sets

package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

type cliArgs struct {
	version bool
	verbose bool
	rest    []string
}

func parseFlags(args []string, stderr io.Writer) (cliArgs, error) {
	var a cliArgs

	fs := flag.NewFlagSet("spek", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&a.version, "version", false, "Show version and exit")
	fs.BoolVar(&a.verbose, "verbose", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return a, err
	}
	a.rest = fs.Args()
	return a, nil
}

const usage = `usage: spek [flags] <command> [args]

commands:
  show [-format text|markdown|json] [-field name] <path>
                                              display a gemspec, or one field of it
  pick [-format ...] <name>                   display an installed gem, choosing among versions
  version <value> <path>                      set the version in a gemspec
  bump <major|minor|patch> <path>             increment the version in a gemspec
  watch [-trigger glob]... <path>             redisplay a gemspec whenever it changes

flags:
`

// formatFlag registers the shared -format flag on fs.
func formatFlag(fs *flag.FlagSet) *string {
	return fs.String("format", "text", "Output format: text, markdown or json")
}

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// subcommand parses flags for one command and checks its positional count.
func subcommand(name string, args []string, stderr io.Writer, want int, define func(*flag.FlagSet)) ([]string, error) {
	fs := flag.NewFlagSet("spek "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != want {
		return nil, fmt.Errorf("%s: expected %d argument(s), got %d", name, want, fs.NArg())
	}
	return fs.Args(), nil
}
