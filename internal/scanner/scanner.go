// Package scanner owns the Scanner entity: the immutable local point cloud a
// sensor reported, its resolution state relative to the reference frame,
// and per-scanner caches reused across every pairing attempt.
package scanner

import (
	"errors"
	"fmt"
	"sync"

	"github.com/banshee-data/beacon.map/internal/fingerprint"
	"github.com/banshee-data/beacon.map/internal/geom"
)

// ErrAlreadyResolved is returned when a second resolution is committed for
// the same scanner.
var ErrAlreadyResolved = errors.New("scanner already resolved")

// State is the resolution state of a scanner.
type State int

const (
	// Unresolved scanners have no known placement in the reference frame.
	Unresolved State = iota
	// Resolved scanners carry a transform into the reference frame.
	Resolved
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Resolution is the placement of a resolved scanner.
type Resolution struct {
	Transform geom.Transform
	// Global is Local mapped through Transform, in Local order.
	Global []geom.Point

	globalSet geom.PointSet
}

// Contains reports whether p is one of the resolved global points.
func (r *Resolution) Contains(p geom.Point) bool {
	return r.globalSet.Contains(p)
}

// Scanner is one sensor report.
type Scanner struct {
	ID    int
	local []geom.Point

	mu         sync.RWMutex
	resolution *Resolution

	variantsOnce sync.Once
	variants     [geom.NumOrientations][]geom.Point

	fpOnce      sync.Once
	fingerprint fingerprint.Set
}

// New returns an unresolved scanner. Duplicate points collapse; the first
// occurrence keeps its position in the report order.
func New(id int, pts []geom.Point) *Scanner {
	return &Scanner{ID: id, local: geom.Unique(pts)}
}

// NewReference returns a scanner already resolved to the identity transform.
func NewReference(id int, pts []geom.Point) *Scanner {
	s := New(id, pts)
	_ = s.Resolve(geom.IdentityTransform())
	return s
}

// Local returns a copy of the reported points.
func (s *Scanner) Local() []geom.Point {
	out := make([]geom.Point, len(s.local))
	copy(out, s.local)
	return out
}

// Len returns the number of distinct reported points.
func (s *Scanner) Len() int {
	return len(s.local)
}

// State returns the current resolution state.
func (s *Scanner) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.resolution == nil {
		return Unresolved
	}
	return Resolved
}

// IsResolved reports whether the scanner has a placement.
func (s *Scanner) IsResolved() bool {
	return s.State() == Resolved
}

// Resolution returns the placement, or false while unresolved.
func (s *Scanner) Resolution() (*Resolution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolution, s.resolution != nil
}

// Position returns the scanner's location in the reference frame, or false
// while unresolved.
func (s *Scanner) Position() (geom.Point, bool) {
	r, ok := s.Resolution()
	if !ok {
		return geom.Point{}, false
	}
	return r.Transform.Translation, true
}

// Resolve commits t as the scanner's placement. A scanner resolves exactly
// once; later calls return ErrAlreadyResolved and leave the first
// placement intact.
func (s *Scanner) Resolve(t geom.Transform) error {
	global := t.ApplyAll(s.local)
	res := &Resolution{
		Transform: t,
		Global:    global,
		globalSet: geom.NewPointSet(global),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resolution != nil {
		return fmt.Errorf("scanner %d: %w", s.ID, ErrAlreadyResolved)
	}
	s.resolution = res
	return nil
}

// Variants returns the local cloud rotated by each of the 24 orientations,
// indexed like geom.Orientations. The result is computed once and shared;
// callers must not modify it.
func (s *Scanner) Variants() *[geom.NumOrientations][]geom.Point {
	s.variantsOnce.Do(func() {
		for i, o := range geom.Orientations() {
			s.variants[i] = o.ApplyAll(s.local)
		}
	})
	return &s.variants
}

// Fingerprint returns the nearest-neighbour fingerprint of the local cloud.
func (s *Scanner) Fingerprint() fingerprint.Set {
	s.fpOnce.Do(func() {
		s.fingerprint = fingerprint.Compute(s.local)
	})
	return s.fingerprint
}

func (s *Scanner) String() string {
	if r, ok := s.Resolution(); ok {
		return fmt.Sprintf("scanner %d (%d points, at %s)", s.ID, len(s.local), r.Transform.Translation)
	}
	return fmt.Sprintf("scanner %d (%d points, unresolved)", s.ID, len(s.local))
}
