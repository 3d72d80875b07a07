package align

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/beacon.map/internal/geom"
	"github.com/banshee-data/beacon.map/internal/scanner"
	"github.com/banshee-data/beacon.map/internal/testutil"
)

func resolvedScanners(t *testing.T) []*scanner.Scanner {
	t.Helper()
	a := scanner.NewReference(0, []geom.Point{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}})
	b := scanner.New(1, []geom.Point{{0, 0, 0}, {1, 0, 0}, {9, 9, 9}})
	c := scanner.New(2, []geom.Point{{0, 0, 0}})

	testutil.AssertNoError(t, b.Resolve(geom.Transform{Orientation: geom.Identity(), Translation: geom.NewPoint(1, 0, 0)}))
	testutil.AssertNoError(t, c.Resolve(geom.Transform{Orientation: geom.OrientationAt(8), Translation: geom.NewPoint(-3, 4, 10)}))
	return []*scanner.Scanner{a, b, c}
}

func TestAssemble_DeduplicatesByValue(t *testing.T) {
	m, err := Assemble(resolvedScanners(t))
	testutil.AssertNoError(t, err)

	want := []geom.Point{{-3, 4, 10}, {0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {10, 9, 9}}
	if diff := cmp.Diff(want, m.Beacons); diff != "" {
		t.Errorf("beacons mismatch (-want +got):\n%s", diff)
	}
	if m.BeaconCount() != 5 {
		t.Errorf("BeaconCount() = %d, want 5", m.BeaconCount())
	}
}

func TestAssemble_MaxScannerDistance(t *testing.T) {
	m, err := Assemble(resolvedScanners(t))
	testutil.AssertNoError(t, err)

	dist, a, b := m.MaxScannerDistance()
	// (1,0,0) to (-3,4,10): 4 + 4 + 10
	if dist != 18 || a != 1 || b != 2 {
		t.Errorf("MaxScannerDistance() = %d (%d, %d), want 18 (1, 2)", dist, a, b)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	scanners := resolvedScanners(t)
	first, err := Assemble(scanners)
	testutil.AssertNoError(t, err)
	second, err := Assemble(scanners)
	testutil.AssertNoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second assembly differs (-first +second):\n%s", diff)
	}
	d1, _, _ := first.MaxScannerDistance()
	d2, _, _ := second.MaxScannerDistance()
	if d1 != d2 {
		t.Errorf("max distance changed: %d then %d", d1, d2)
	}
}

func TestAssemble_RequiresResolved(t *testing.T) {
	scanners := []*scanner.Scanner{
		scanner.NewReference(0, testutil.Colinear(3)),
		scanner.New(1, testutil.Colinear(3)),
	}
	_, err := Assemble(scanners)
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Assemble() error = %v, want ErrIncomplete", err)
	}

	_, err = Assemble(nil)
	if !errors.Is(err, ErrNoScanners) {
		t.Fatalf("Assemble(nil) error = %v, want ErrNoScanners", err)
	}
}

func TestMap_SingleScanner(t *testing.T) {
	m, err := Assemble([]*scanner.Scanner{scanner.NewReference(0, testutil.Colinear(2))})
	testutil.AssertNoError(t, err)
	dist, a, b := m.MaxScannerDistance()
	if dist != 0 || a != 0 || b != 0 {
		t.Errorf("MaxScannerDistance() = %d (%d, %d), want 0 (0, 0)", dist, a, b)
	}
}
