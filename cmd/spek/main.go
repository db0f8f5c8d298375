// ABOUTME: CLI entry point for spek: inspect, pick, and re-version gem specifications
// ABOUTME: Loads config, wires store/loader/picker/versioner, dispatches to subcommands

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	// termfix must be imported before any package that imports bubbletea.
	_ "github.com/mauromedda/spek/internal/termfix"

	"github.com/mauromedda/spek/internal/config"
	"github.com/mauromedda/spek/internal/gemspec"
	spklog "github.com/mauromedda/spek/internal/log"
	"github.com/mauromedda/spek/internal/render"
	"github.com/mauromedda/spek/internal/spek"
	"github.com/mauromedda/spek/internal/suggest"
	"github.com/mauromedda/spek/internal/tui"
	"github.com/mauromedda/spek/internal/watch"
	"github.com/mauromedda/spek/pkg/version"
)

var (
	buildVersion = "dev"
	commit       = "unknown"
	date         = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wiring shared by every subcommand.
type app struct {
	cfg      *config.Settings
	store    *gemspec.Store
	loader   *spek.Loader
	renderer *render.Renderer
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// run performs initialization and dispatches to the selected subcommand.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cli, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if cli.version {
		fmt.Fprintf(stdout, "spek %s (%s) built %s\n", buildVersion, commit, date)
		return nil
	}
	if len(cli.rest) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := spklog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cli.verbose {
		level = spklog.LevelDebug
	}
	spklog.SetLevel(level)
	spklog.Debug("gem dirs: %v, gem home: %s", cfg.GemDirs(), cfg.GemHome)

	store := gemspec.NewStore(
		gemspec.WithPaths(cfg.GemDirs()...),
		gemspec.WithHome(cfg.GemHome),
	)
	a := &app{
		cfg:    cfg,
		store:  store,
		loader: spek.NewLoader(store),
		renderer: render.New(
			render.WithWidth(outputWidth(stdout)),
			render.WithStyle(cfg.Style),
		),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	cmd, rest := cli.rest[0], cli.rest[1:]
	switch cmd {
	case "show":
		return a.show(rest)
	case "pick":
		return a.pick(ctx, rest)
	case "version":
		return a.setVersion(rest)
	case "bump":
		return a.bump(rest)
	case "watch":
		return a.watch(ctx, rest)
	default:
		return fmt.Errorf("unknown command %q: expected show, pick, version, bump, or watch", cmd)
	}
}

func (a *app) show(args []string) error {
	var format, field *string
	pos, err := subcommand("show", args, a.stderr, 1, func(fs *flag.FlagSet) {
		format = formatFlag(fs)
		field = fs.String("field", "", "Print only this field, e.g. package_path")
	})
	if err != nil {
		return err
	}
	f, err := render.ParseFormat(*format)
	if err != nil {
		return err
	}

	p, err := a.loader.Load(pos[0])
	if err != nil {
		return err
	}
	if *field != "" {
		value, ok := p.Field(*field)
		if !ok {
			return fmt.Errorf("unknown field %q", *field)
		}
		fmt.Fprintln(a.stdout, value)
		return nil
	}
	return a.renderer.Render(a.stdout, p, f)
}

func (a *app) pick(ctx context.Context, args []string) error {
	var format *string
	pos, err := subcommand("pick", args, a.stderr, 1, func(fs *flag.FlagSet) { format = formatFlag(fs) })
	if err != nil {
		return err
	}
	f, err := render.ParseFormat(*format)
	if err != nil {
		return err
	}

	name := pos[0]
	picker := spek.NewPicker(a.store, a.chooser())
	record, err := picker.Pick(ctx, name)

	var nf *spek.NotFoundError
	if errors.As(err, &nf) {
		if hints, serr := suggest.ForName(ctx, a.store, name); serr == nil {
			if hint := suggest.Hint(hints); hint != "" {
				fmt.Fprintln(a.stderr, hint)
			}
		}
	}
	if err != nil {
		return err
	}
	return a.renderer.Render(a.stdout, spek.NewPresenter(record), f)
}

// chooser selects the disambiguation UI. "auto" uses the TUI only when both
// stdin and stderr are terminals.
func (a *app) chooser() spek.Chooser {
	useTUI := a.cfg.Chooser == config.ChooserTUI
	if a.cfg.Chooser == config.ChooserAuto {
		useTUI = isTerminal(a.stdin) && isTerminal(a.stderr)
	}
	if useTUI {
		return tui.NewChooser(a.stdin, a.stderr)
	}
	return spek.NewPromptChooser(a.stdin, a.stdout)
}

func (a *app) setVersion(args []string) error {
	pos, err := subcommand("version", args, a.stderr, 2, nil)
	if err != nil {
		return err
	}
	ver, err := version.Parse(pos[0])
	if err != nil {
		return err
	}

	p, err := spek.NewVersioner(a.loader).SetVersion(ver, pos[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, p.NamedVersion())
	return nil
}

func (a *app) bump(args []string) error {
	pos, err := subcommand("bump", args, a.stderr, 2, nil)
	if err != nil {
		return err
	}
	level := version.Level(pos[0])
	switch level {
	case version.LevelMajor, version.LevelMinor, version.LevelPatch:
	default:
		return fmt.Errorf("unknown bump level %q: expected major, minor, or patch", pos[0])
	}

	p, err := spek.NewVersioner(a.loader).Bump(level, pos[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, p.NamedVersion())
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	var triggers stringList
	pos, err := subcommand("watch", args, a.stderr, 1, func(fs *flag.FlagSet) {
		fs.Var(&triggers, "trigger", "Glob, relative to the gemspec, of other files that cause a reload (repeatable)")
	})
	if err != nil {
		return err
	}

	w, err := watch.New(pos[0], a.loader, watch.WithTriggers(triggers...))
	if err != nil {
		return err
	}

	updates := make(chan watch.Update)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(ctx, updates) })
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case u := <-updates:
				if u.Err != nil {
					fmt.Fprintf(a.stderr, "error: %v\n", u.Err)
					continue
				}
				if err := a.renderer.Render(a.stdout, u.Presenter, render.FormatText); err != nil {
					return err
				}
			}
		}
	})
	return g.Wait()
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func outputWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		return render.TerminalWidth(f)
	}
	return 0
}
