package align

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/beacon.map/internal/fingerprint"
	"github.com/banshee-data/beacon.map/internal/geom"
	"github.com/banshee-data/beacon.map/internal/monitoring"
	"github.com/banshee-data/beacon.map/internal/scanner"
)

var (
	// ErrUnresolvable is wrapped by UnresolvableError.
	ErrUnresolvable = errors.New("overlap graph is not connected to scanner 0")
	// ErrNoScanners is returned when there is nothing to resolve.
	ErrNoScanners = errors.New("no scanners to resolve")
)

// UnresolvableError lists the scanners that could not be aligned once no
// resolved scanner was left to search.
type UnresolvableError struct {
	Unresolved []int
}

func (e *UnresolvableError) Error() string {
	return fmt.Sprintf("%v: %d scanner(s) left unresolved %v", ErrUnresolvable, len(e.Unresolved), e.Unresolved)
}

func (e *UnresolvableError) Unwrap() error {
	return ErrUnresolvable
}

// Config controls the Resolver. Zero values select defaults.
type Config struct {
	// OverlapThreshold is the number of coincident beacons needed to accept
	// an alignment (default 12).
	OverlapThreshold int
	// MinSharedFingerprints is the fingerprint pruning threshold (default 8).
	MinSharedFingerprints int
	// DisablePruning matches every pair exhaustively from the start.
	DisablePruning bool
	// DisableFallback fails as soon as the pruned search starves instead of
	// retrying the skipped pairs exhaustively.
	DisableFallback bool
	// Workers bounds concurrent matcher calls (default runtime.NumCPU()).
	Workers int
}

// DefaultConfig returns the default resolver configuration.
func DefaultConfig() Config {
	return Config{
		OverlapThreshold:      DefaultOverlapThreshold,
		MinSharedFingerprints: fingerprint.DefaultMinShared,
		Workers:               runtime.NumCPU(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.OverlapThreshold <= 0 {
		c.OverlapThreshold = d.OverlapThreshold
	}
	if c.MinSharedFingerprints <= 0 {
		c.MinSharedFingerprints = d.MinSharedFingerprints
	}
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	return c
}

// Result summarises a resolver run.
type Result struct {
	Scanners []*scanner.Scanner
	// Order lists scanner IDs in the order they were resolved, starting
	// with the reference scanner.
	Order []int
	// Parent maps each scanner ID to the ID it was matched against; the
	// reference and unresolved scanners have -1.
	Parent []int
	// Attempts counts matcher invocations.
	Attempts int
	// Pruned counts pairs skipped by the fingerprint index.
	Pruned int
	// Passes counts targets searched.
	Passes int
	// FallbackUsed is set when the exhaustive retry ran.
	FallbackUsed bool
	Elapsed      time.Duration
}

// Resolver places every scanner in the frame of scanner 0 by breadth-first
// expansion over the overlap graph. It is the only writer of scanner
// resolution state.
type Resolver struct {
	cfg      Config
	scanners []*scanner.Scanner
	matcher  Matcher
	index    *fingerprint.Index

	// tried[r][s] is set once s has been matched against target r.
	tried [][]bool
}

// NewResolver validates scanners and prepares the fingerprint index.
// scanners must be index-addressed (scanners[i].ID == i). Scanner 0 is
// resolved to the identity transform if it is not already; every other
// scanner must be unresolved.
func NewResolver(scanners []*scanner.Scanner, cfg Config) (*Resolver, error) {
	if len(scanners) == 0 {
		return nil, ErrNoScanners
	}
	cfg = cfg.withDefaults()

	for i, s := range scanners {
		if s == nil {
			return nil, fmt.Errorf("scanner %d is nil", i)
		}
		if s.ID != i {
			return nil, fmt.Errorf("scanner at index %d has id %d", i, s.ID)
		}
		if i > 0 && s.IsResolved() {
			return nil, fmt.Errorf("scanner %d: %w before resolution started", i, scanner.ErrAlreadyResolved)
		}
	}

	ref := scanners[0]
	if res, ok := ref.Resolution(); ok {
		if !res.Transform.Orientation.IsIdentity() || res.Transform.Translation.Mag() != 0 {
			return nil, fmt.Errorf("reference scanner must sit at the identity transform, got %s", res.Transform)
		}
	} else if err := ref.Resolve(geom.IdentityTransform()); err != nil {
		return nil, err
	}

	sets := make([]fingerprint.Set, len(scanners))
	for i, s := range scanners {
		sets[i] = s.Fingerprint()
	}

	tried := make([][]bool, len(scanners))
	for i := range tried {
		tried[i] = make([]bool, len(scanners))
	}

	return &Resolver{
		cfg:      cfg,
		scanners: scanners,
		matcher:  NewMatcher(cfg.OverlapThreshold),
		index:    fingerprint.NewIndex(sets, cfg.MinSharedFingerprints),
		tried:    tried,
	}, nil
}

// Config returns the effective configuration.
func (r *Resolver) Config() Config {
	return r.cfg
}

// Run resolves every scanner. On an UnresolvableError the partial Result
// is returned alongside the error. Cancelling ctx stops the run between
// targets and returns ctx.Err().
func (r *Resolver) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{
		Scanners: r.scanners,
		Order:    []int{0},
		Parent:   make([]int, len(r.scanners)),
	}
	for i := range res.Parent {
		res.Parent[i] = -1
	}

	exhaustive := r.cfg.DisablePruning
	queue := []int{0}
	for {
		for len(queue) > 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			target := queue[0]
			queue = queue[1:]

			resolved, err := r.search(ctx, target, exhaustive, res)
			if err != nil {
				return nil, err
			}
			queue = append(queue, resolved...)
		}

		unresolved := r.unresolved()
		if len(unresolved) == 0 {
			break
		}
		if exhaustive || r.cfg.DisableFallback {
			res.Elapsed = time.Since(start)
			monitoring.Opsf("alignment starved: %d of %d scanners unresolved %v", len(unresolved), len(r.scanners), unresolved)
			return res, &UnresolvableError{Unresolved: unresolved}
		}

		monitoring.Opsf("fingerprint pruning left %d scanner(s) unresolved %v, retrying skipped pairs exhaustively", len(unresolved), unresolved)
		exhaustive = true
		res.FallbackUsed = true
		queue = append(queue, res.Order...)
	}

	res.Elapsed = time.Since(start)
	monitoring.Opsf("resolved %d scanners in %s (%d matches tried, %d pruned, %d passes)",
		len(r.scanners), res.Elapsed, res.Attempts, res.Pruned, res.Passes)
	return res, nil
}

// search tries every unresolved, untried scanner against target and
// commits the matches in index order. It returns the newly resolved IDs.
func (r *Resolver) search(ctx context.Context, target int, exhaustive bool, res *Result) ([]int, error) {
	start := time.Now()
	ref := r.scanners[target]

	var (
		pending []int
		pruned  int
	)
	for si, s := range r.scanners {
		if si == target || s.IsResolved() || r.tried[target][si] {
			continue
		}
		if !exhaustive && !r.index.Candidate(target, si) {
			pruned++
			continue
		}
		r.tried[target][si] = true
		pending = append(pending, si)
	}

	matches := make([]*Match, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, si := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if m, ok := r.matcher.MatchScanner(ref, r.scanners[si]); ok {
				matches[i] = &m
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var resolved []int
	trace := monitoring.TraceEnabled()
	for i, si := range pending {
		m := matches[i]
		if m == nil {
			if trace {
				monitoring.Tracef("scanner %d vs %d: no match", target, si)
			}
			continue
		}
		if err := r.scanners[si].Resolve(m.Transform()); err != nil {
			if errors.Is(err, scanner.ErrAlreadyResolved) {
				continue
			}
			return nil, err
		}
		if trace {
			monitoring.Tracef("scanner %d vs %d: %s", target, si, m)
		}
		res.Parent[si] = target
		res.Order = append(res.Order, si)
		resolved = append(resolved, si)
	}

	res.Attempts += len(pending)
	res.Pruned += pruned
	res.Passes++
	monitoring.Diagf("running scanner %d took %s, checked %d scanners, pruned %d, resolved %v",
		target, time.Since(start), len(pending), pruned, resolved)
	return resolved, nil
}

func (r *Resolver) unresolved() []int {
	var out []int
	for i, s := range r.scanners {
		if !s.IsResolved() {
			out = append(out, i)
		}
	}
	return out
}

// Resolve is a convenience wrapper around NewResolver and Run.
func Resolve(ctx context.Context, scanners []*scanner.Scanner, cfg Config) (*Result, error) {
	r, err := NewResolver(scanners, cfg)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx)
}
