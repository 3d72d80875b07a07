// Package testutil provides shared test utilities and fixtures.
//
// The World fixtures build synthetic ground truth: beacons placed in the
// reference frame, scanner placements, and the local reports each scanner
// would produce. Coordinates are drawn from a seeded source so fixtures are
// reproducible.
package testutil

import (
	"math/rand"
	"testing"

	"github.com/banshee-data/beacon.map/internal/geom"
	"github.com/banshee-data/beacon.map/internal/scanner"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// World is a synthetic scanner layout with known answers.
type World struct {
	// Beacons is every distinct beacon in the reference frame.
	Beacons []geom.Point
	// Transforms is the true placement of each scanner.
	Transforms []geom.Transform
	// Reports is what each scanner sees, in its own frame.
	Reports [][]geom.Point

	rng   *rand.Rand
	used  geom.PointSet
	views [][]geom.Point
}

// NewWorld builds n scanners. Each edge {a, b} gets shared beacons seen by
// both ends; every scanner also sees unique beacons nobody else sees.
// Scanner 0 sits at the identity transform; the others get distinct
// non-identity orientations and random positions.
func NewWorld(seed int64, n int, edges [][2]int, shared, unique int) *World {
	w := &World{
		rng:   rand.New(rand.NewSource(seed)),
		used:  make(geom.PointSet),
		views: make([][]geom.Point, n),
	}

	w.Transforms = make([]geom.Transform, n)
	w.Transforms[0] = geom.IdentityTransform()
	for i := 1; i < n; i++ {
		w.Transforms[i] = geom.Transform{
			Orientation: geom.OrientationAt(1 + (i*7)%(geom.NumOrientations-1)),
			Translation: w.randPoint(2000),
		}
	}

	for _, e := range edges {
		pts := w.freshBeacons(shared)
		w.views[e[0]] = append(w.views[e[0]], pts...)
		w.views[e[1]] = append(w.views[e[1]], pts...)
	}
	for i := 0; i < n; i++ {
		w.views[i] = append(w.views[i], w.freshBeacons(unique)...)
	}

	w.Reports = make([][]geom.Point, n)
	for i, view := range w.views {
		inv := w.Transforms[i].Inverse()
		local := inv.ApplyAll(view)
		w.rng.Shuffle(len(local), func(a, b int) { local[a], local[b] = local[b], local[a] })
		w.Reports[i] = local
	}
	return w
}

// NewChainWorld links scanner i to scanner i+1.
func NewChainWorld(seed int64, n, shared, unique int) *World {
	edges := make([][2]int, 0, n-1)
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return NewWorld(seed, n, edges, shared, unique)
}

// Scanners turns the reports into scanner entities: scanner 0 resolved to
// the identity, the rest unresolved.
func (w *World) Scanners() []*scanner.Scanner {
	out := make([]*scanner.Scanner, len(w.Reports))
	for i, pts := range w.Reports {
		if i == 0 {
			out[i] = scanner.NewReference(i, pts)
		} else {
			out[i] = scanner.New(i, pts)
		}
	}
	return out
}

// MaxScannerDistance returns the true largest Manhattan distance between
// two scanner positions.
func (w *World) MaxScannerDistance() int {
	best := 0
	for i := range w.Transforms {
		for j := i + 1; j < len(w.Transforms); j++ {
			if d := w.Transforms[i].Translation.Manhattan(w.Transforms[j].Translation); d > best {
				best = d
			}
		}
	}
	return best
}

func (w *World) randPoint(span int) geom.Point {
	c := func() int { return w.rng.Intn(2*span+1) - span }
	return geom.NewPoint(c(), c(), c())
}

func (w *World) freshBeacons(n int) []geom.Point {
	out := make([]geom.Point, 0, n)
	for len(out) < n {
		p := w.randPoint(1000)
		if w.used.Contains(p) {
			continue
		}
		w.used.Add(p)
		w.Beacons = append(w.Beacons, p)
		out = append(out, p)
	}
	return out
}

// Colinear returns the points (0,0,0) .. (n-1,0,0).
func Colinear(n int) []geom.Point {
	out := make([]geom.Point, n)
	for i := range out {
		out[i] = geom.NewPoint(i, 0, 0)
	}
	return out
}
