package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/sadopc/termsplit/internal/config"
	"github.com/sadopc/termsplit/internal/export"
	"github.com/sadopc/termsplit/internal/input"
	"github.com/sadopc/termsplit/internal/logging"
	"github.com/sadopc/termsplit/internal/session"
	"github.com/sadopc/termsplit/internal/splits"
	"github.com/sadopc/termsplit/internal/store"
	"github.com/sadopc/termsplit/internal/tui"
	"golang.org/x/term"
)

const usage = `termsplit: a splits timer for the terminal

Usage:
  termsplit open [-config file] [-no-hotkeys] [splits]
  termsplit new [-f] <splits> <name>...
  termsplit rename <splits> <split number> <name>
  termsplit history [-config file] [-n N] [splits]
  termsplit history [-config file] -id ID
  termsplit history [-config file] -delete ID
  termsplit export [-config file] [-format csv|json] [-o out] [splits]
  termsplit config [-config file] [-init [-f]]

open without a splits file reopens the last one used.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "open":
		err = runOpen(args)
	case "new":
		err = runNew(args)
	case "rename":
		err = runRename(args)
	case "history":
		err = runHistory(args)
	case "export":
		err = runExport(args)
	case "config":
		err = runConfig(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	path := cfg.Storage.HistoryPath
	if path == "" {
		var err error
		if path, err = store.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	s, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return s, nil
}

// splitsArg resolves the optional splits file argument, falling back to
// the last file opened.
func splitsArg(fs *flag.FlagSet, st *store.Store) (string, error) {
	if fs.NArg() > 1 {
		return "", fmt.Errorf("expected at most one splits file, got %d", fs.NArg())
	}
	if fs.NArg() == 1 {
		return filepath.Abs(fs.Arg(0))
	}
	if st != nil {
		if last, err := st.LastSplits(); err == nil && last != "" {
			return last, nil
		}
	}
	return "", errors.New("no splits file given")
}

func runOpen(args []string) error {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default "+config.DefaultPath()+")")
	noHotkeys := fs.Bool("no-hotkeys", false, "use terminal keys only")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	logCfg, err := logging.FromStrings(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Path)
	if err != nil {
		return err
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Logger

	var history *store.Store
	if cfg.Storage.RecordHistory {
		if history, err = openStore(cfg); err != nil {
			log.Warn("attempt history disabled", "err", err)
			fmt.Fprintf(os.Stderr, "warning: %v; attempts will not be recorded\n", err)
		} else {
			defer history.Close()
		}
	}

	path, err := splitsArg(fs, history)
	if err != nil {
		return err
	}

	ctl, err := openLedger(path, fs.NArg() == 0, history, log)
	if err != nil {
		return err
	}

	runErr := runSession(ctl, cfg, log, !*noHotkeys)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	if ctl.Dirty() {
		offerSave(ctl)
	}
	return runErr
}

// openLedger opens the splits file and, once it has opened, remembers it as
// the last one used. A remembered file that fails to open is forgotten.
func openLedger(path string, remembered bool, history *store.Store, log *slog.Logger) (*session.Controller, error) {
	opts := session.Options{Log: log}
	if history != nil {
		opts.History = history
	}
	ctl, err := session.Open(path, opts)
	if err != nil {
		if history != nil && remembered {
			if err := history.SetSetting(store.SettingLastSplits, ""); err != nil {
				log.Warn("forget splits file", "err", err)
			}
		}
		return nil, err
	}
	if history != nil {
		if err := history.SetSetting(store.SettingLastSplits, path); err != nil {
			log.Warn("remember splits file", "err", err)
		}
	}
	return ctl, nil
}

// runSession runs the timer until quit. Input readers are stopped and the
// terminal is restored before it returns.
func runSession(ctl *session.Controller, cfg *config.Config, log *slog.Logger, hotkeys bool) error {
	src := input.NewSource(log)
	defer src.Close()

	bindings := cfg.KeyBindings()
	if hotkeys {
		devs, err := input.OpenKeyboards(log)
		if err != nil {
			log.Warn("global hotkeys unavailable", "err", err)
			fmt.Fprintf(os.Stderr, "warning: global hotkeys unavailable (%v); using terminal keys only\n", err)
		}
		lookup := bindings.Invert()
		for _, dev := range devs {
			src.AddDevice(dev, lookup)
		}
	}

	stdin := int(os.Stdin.Fd())
	if input.IsTerminal(stdin) {
		release, err := input.AcquireTerminal(stdin)
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		defer release()
	}
	if err := src.AddLocal(os.Stdin); err != nil {
		return err
	}

	if produce, stop, err := session.WatchLedger(ctl.Path(), log); err != nil {
		log.Warn("splits file watcher disabled", "err", err)
	} else {
		src.Go(produce, stop)
	}

	screen := tui.NewScreen(os.Stdout, cfg.Display.Color)
	runner := session.NewRunner(ctl, src, screen, session.RunnerOptions{
		Interval: cfg.Interval(),
		Help:     tui.HelpText(bindings),
		Log:      log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := runner.Run(ctx)
	// readers must be gone before the terminal mode is restored by the
	// deferred release
	src.Close()
	return err
}

// offerSave gives the operator a chance to keep unsaved ledger changes,
// re-prompting when the save fails. Without a terminal the ledger is
// dumped to stderr instead.
func offerSave(ctl *session.Controller) {
	if !input.IsTerminal(int(os.Stdin.Fd())) {
		dumpLedger(os.Stderr, ctl.Ledger())
		return
	}

	var lastErr error
	for {
		path, err := tui.PromptSave(os.Stdin, os.Stderr, ctl.Path(), lastErr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "prompt: %v\n", err)
			dumpLedger(os.Stderr, ctl.Ledger())
			return
		}
		if path == "" {
			return
		}
		if lastErr = ctl.SaveAs(path); lastErr == nil {
			fmt.Fprintf(os.Stderr, "Saved %s\n", path)
			return
		}
	}
}

func dumpLedger(w io.Writer, l *splits.Ledger) {
	fmt.Fprintln(w, "Unsaved splits:")
	fmt.Fprint(w, l.Dump())
}

func runNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ExitOnError)
	force := fs.Bool("f", false, "overwrite an existing file")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return errors.New("usage: termsplit new <splits> <name>...")
	}
	path := fs.Arg(0)
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -f to overwrite)", path)
	}

	l := splits.New(fs.Args()[1:]...)
	for i, s := range l.Splits {
		if err := checkName(i, s.Name); err != nil {
			return err
		}
	}
	if err := l.SaveFile(path); err != nil {
		return err
	}
	fmt.Printf("Created %s with %d splits\n", path, l.Len())
	return nil
}

func checkName(i int, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("split %d: name is empty", i+1)
	}
	if strings.ContainsAny(name, "\t\r\n") {
		return fmt.Errorf("split %d: name must not contain tabs or newlines", i+1)
	}
	return nil
}

func runRename(args []string) error {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 3 {
		return errors.New("usage: termsplit rename <splits> <split number> <name>")
	}
	path := fs.Arg(0)
	n, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("split number %q: %w", fs.Arg(1), err)
	}
	name := strings.TrimSpace(fs.Arg(2))
	if err := checkName(n-1, name); err != nil {
		return err
	}

	l, err := splits.LoadFile(path)
	if err != nil {
		return err
	}
	old := ""
	if n >= 1 && n <= l.Len() {
		old = l.Splits[n-1].Name
	}
	if err := l.Rename(n-1, name); err != nil {
		return err
	}
	if err := l.SaveFile(path); err != nil {
		return err
	}
	fmt.Printf("Renamed split %d %q to %q\n", n, old, name)
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	limit := fs.Int("n", 20, "number of attempts to show")
	id := fs.Int64("id", 0, "show one attempt split by split")
	del := fs.Int64("delete", 0, "delete one attempt")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	switch {
	case *del > 0:
		if _, err := st.GetAttempt(*del); err != nil {
			return fmt.Errorf("attempt %d: %w", *del, err)
		}
		if err := st.DeleteAttempt(*del); err != nil {
			return err
		}
		fmt.Printf("Deleted attempt #%d\n", *del)
		return nil
	case *id > 0:
		a, err := st.GetAttempt(*id)
		if err != nil {
			return fmt.Errorf("attempt %d: %w", *id, err)
		}
		fmt.Print(tui.RenderAttempt(os.Stdout, *a, cfg.Display.Color))
		return nil
	}

	h := tui.History{Title: "All splits"}
	filter := store.AttemptFilter{Limit: *limit}
	if fs.NArg() > 0 {
		path, err := splitsArg(fs, st)
		if err != nil {
			return err
		}
		filter.Ledger = path
		h.Title = path
		if h.Stats, err = st.GetLedgerStats(path); err != nil {
			return err
		}
	}
	if h.Attempts, err = st.ListAttempts(filter); err != nil {
		return err
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	fmt.Print(h.Render(os.Stdout, width, cfg.Display.Color))
	return nil
}

func runExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	format := fs.String("format", "csv", "csv or json")
	out := fs.String("o", "", "output file (default attempts.<format>)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var filter store.AttemptFilter
	if fs.NArg() > 0 {
		if filter.Ledger, err = splitsArg(fs, st); err != nil {
			return err
		}
	}
	attempts, err := st.ListAttempts(filter)
	if err != nil {
		return err
	}

	if *out == "" {
		*out = "attempts." + *format
	}
	switch *format {
	case "csv":
		err = export.ToCSV(attempts, *out)
	case "json":
		err = export.ToJSON(attempts, *out)
	default:
		return fmt.Errorf("unknown format %q (csv or json)", *format)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d attempts to %s\n", len(attempts), *out)
	return nil
}

func runConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (default "+config.DefaultPath()+")")
	initFile := fs.Bool("init", false, "write the default configuration")
	force := fs.Bool("f", false, "overwrite an existing file with -init")
	fs.Parse(args)

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}

	if *initFile {
		if _, err := os.Stat(path); err == nil && !*force {
			return fmt.Errorf("%s already exists (use -f to overwrite)", path)
		}
		if err := config.Save(config.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	fmt.Printf("Config: %s\n", path)
	for _, d := range tui.HelpText(cfg.KeyBindings()) {
		fmt.Println(d)
	}

	if !cfg.Storage.RecordHistory {
		return nil
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	settings, err := st.Settings()
	if err != nil {
		return err
	}
	for _, s := range settings {
		fmt.Printf("%s = %s\n", s.Key, s.Value)
	}
	return nil
}
