// Command beacons reconstructs a global beacon map from scanner reports and
// prints the beacon count and the largest Manhattan distance between two
// scanners.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/banshee-data/beacon.map/internal/align"
	"github.com/banshee-data/beacon.map/internal/config"
	"github.com/banshee-data/beacon.map/internal/db"
	"github.com/banshee-data/beacon.map/internal/fsutil"
	"github.com/banshee-data/beacon.map/internal/monitoring"
	"github.com/banshee-data/beacon.map/internal/render"
	"github.com/banshee-data/beacon.map/internal/scanner"
	"github.com/banshee-data/beacon.map/internal/version"
)

var (
	inputPath   = flag.String("input", "", "Scanner report file (default stdin)")
	configPath  = flag.String("config", "", "Tuning config JSON file (default built-in values)")
	workers     = flag.Int("workers", 0, "Matcher goroutines, overrides the config (0 keeps the config value)")
	dbPath      = flag.String("db", "", "SQLite database to record the run in (disabled when empty)")
	htmlPath    = flag.String("html", "", "Write an interactive HTML map to this path")
	plotPath    = flag.String("plot", "", "Write a static map to this path (.png, .svg or .pdf)")
	verbose     = flag.Bool("v", false, "Enable diagnostic logging")
	trace       = flag.Bool("trace", false, "Enable per-pair trace logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// options carries the parsed command line into run.
type options struct {
	Input    string
	Config   string
	Workers  int
	DB       string
	HTML     string
	Plot     string
	Output   fsutil.FileSystem
	Verbose  bool
	Trace    bool
	LogsTo   io.Writer
	rawInput io.Reader
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("beacons"))
		return
	}
	if *workers < 0 {
		log.Fatal("-workers must not be negative")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		Input:    *inputPath,
		Config:   *configPath,
		Workers:  *workers,
		DB:       *dbPath,
		HTML:     *htmlPath,
		Plot:     *plotPath,
		Output:   fsutil.OSFileSystem{},
		Verbose:  *verbose,
		Trace:    *trace,
		LogsTo:   os.Stderr,
		rawInput: os.Stdin,
	}
	if err := run(ctx, opts, os.Stdout); err != nil {
		var unresolvable *align.UnresolvableError
		if errors.As(err, &unresolvable) {
			log.Fatalf("no overlap path to scanners %v: %v", unresolvable.Unresolved, err)
		}
		log.Fatalf("beacons: %v", err)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	writers := monitoring.LogWriters{Ops: opts.LogsTo}
	if opts.Verbose || opts.Trace {
		writers.Diag = opts.LogsTo
	}
	if opts.Trace {
		writers.Trace = opts.LogsTo
	}
	monitoring.SetLogWriters(writers)

	tuning := config.DefaultTuningConfig()
	if opts.Config != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(opts.Config); err != nil {
			return err
		}
	}
	if opts.Workers > 0 {
		tuning.Workers = &opts.Workers
	}

	start := time.Now()
	scanners, err := readScanners(opts)
	if err != nil {
		return err
	}
	monitoring.Opsf("parsing %d scanners took %s", len(scanners), time.Since(start))

	res, err := align.Resolve(ctx, scanners, tuning.ResolverConfig())
	if err != nil {
		return err
	}
	monitoring.Opsf("resolving took %s (%s attempts, %s pruned, %d passes)",
		res.Elapsed, humanize.Comma(int64(res.Attempts)), humanize.Comma(int64(res.Pruned)), res.Passes)

	start = time.Now()
	m, err := align.Assemble(res.Scanners)
	if err != nil {
		return err
	}
	dist, a, b := m.MaxScannerDistance()
	monitoring.Opsf("assembling took %s", time.Since(start))

	fmt.Fprintf(stdout, "Answer 1: %d\n", m.BeaconCount())
	fmt.Fprintf(stdout, "Answer 2: %d\n", dist)
	monitoring.Diagf("largest distance is between scanners %d and %d", a, b)

	if opts.HTML != "" {
		if err := render.WriteHTML(opts.Output, opts.HTML, m); err != nil {
			return err
		}
		monitoring.Opsf("wrote %s", opts.HTML)
	}
	if opts.Plot != "" {
		if err := render.WritePlot(opts.Output, opts.Plot, m); err != nil {
			return err
		}
		monitoring.Opsf("wrote %s", opts.Plot)
	}
	if opts.DB != "" {
		if err := recordRun(ctx, opts.DB, tuning, res, m); err != nil {
			return err
		}
	}
	return nil
}

func readScanners(opts options) ([]*scanner.Scanner, error) {
	if opts.Input == "" {
		return scanner.Parse(opts.rawInput)
	}
	f, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return scanner.Parse(f)
}

func recordRun(ctx context.Context, path string, tuning *config.TuningConfig, res *align.Result, m *align.Map) error {
	store, err := db.NewDB(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	params, err := json.Marshal(tuning)
	if err != nil {
		return fmt.Errorf("failed to encode tuning: %w", err)
	}
	run, err := store.RecordRun(ctx, res, m, params)
	if err != nil {
		return err
	}
	monitoring.Opsf("recorded run %s in %s", run.RunID, path)
	return nil
}
