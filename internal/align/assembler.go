package align

import (
	"errors"
	"fmt"

	"github.com/banshee-data/beacon.map/internal/geom"
	"github.com/banshee-data/beacon.map/internal/scanner"
)

// ErrIncomplete is returned when a map is assembled before every scanner
// has been resolved.
var ErrIncomplete = errors.New("not every scanner is resolved")

// Map is the merged beacon map of a fully resolved scanner set.
type Map struct {
	// Beacons holds every distinct beacon in the reference frame, sorted.
	Beacons []geom.Point
	// Positions holds each scanner's location, indexed like the input.
	Positions []geom.Point
	// ScannerIDs holds the scanner IDs, indexed like Positions.
	ScannerIDs []int
}

// Assemble merges the resolved clouds of scanners into one map. It only
// reads scanner state.
func Assemble(scanners []*scanner.Scanner) (*Map, error) {
	if len(scanners) == 0 {
		return nil, ErrNoScanners
	}

	beacons := make(geom.PointSet)
	m := &Map{
		Positions:  make([]geom.Point, len(scanners)),
		ScannerIDs: make([]int, len(scanners)),
	}
	for i, s := range scanners {
		res, ok := s.Resolution()
		if !ok {
			return nil, fmt.Errorf("scanner %d: %w", s.ID, ErrIncomplete)
		}
		for _, p := range res.Global {
			beacons.Add(p)
		}
		m.Positions[i] = res.Transform.Translation
		m.ScannerIDs[i] = s.ID
	}
	m.Beacons = beacons.Sorted()
	return m, nil
}

// BeaconCount returns the number of distinct beacons.
func (m *Map) BeaconCount() int {
	return len(m.Beacons)
}

// MaxScannerDistance returns the largest Manhattan distance between any two
// scanner positions, and the IDs of one pair that attains it.
func (m *Map) MaxScannerDistance() (dist, a, b int) {
	if len(m.Positions) == 0 {
		return 0, -1, -1
	}
	a, b = m.ScannerIDs[0], m.ScannerIDs[0]
	for i := range m.Positions {
		for j := i + 1; j < len(m.Positions); j++ {
			if d := m.Positions[i].Manhattan(m.Positions[j]); d > dist {
				dist, a, b = d, m.ScannerIDs[i], m.ScannerIDs[j]
			}
		}
	}
	return dist, a, b
}
