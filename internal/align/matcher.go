package align

import (
	"fmt"

	"github.com/banshee-data/beacon.map/internal/geom"
	"github.com/banshee-data/beacon.map/internal/scanner"
)

// DefaultOverlapThreshold is the number of coincident beacons required to
// accept an alignment.
const DefaultOverlapThreshold = 12

// Match is an accepted alignment of a candidate cloud onto a target cloud:
// Orientation(candidate) + Translation puts at least Overlap candidate
// points on target points.
type Match struct {
	OrientationIndex int
	Orientation      geom.Orientation
	Translation      geom.Point
	Overlap          int
}

// Transform returns the match as a rigid transform.
func (m Match) Transform() geom.Transform {
	return geom.Transform{Orientation: m.Orientation, Translation: m.Translation}
}

func (m Match) String() string {
	return fmt.Sprintf("orientation %d t=(%s) overlap=%d", m.OrientationIndex, m.Translation, m.Overlap)
}

// Matcher tests scanner clouds for overlap.
type Matcher struct {
	// Threshold is the minimum number of coincident points. Zero means
	// DefaultOverlapThreshold.
	Threshold int
}

// NewMatcher returns a matcher with the given threshold.
func NewMatcher(threshold int) Matcher {
	return Matcher{Threshold: threshold}
}

func (m Matcher) threshold() int {
	if m.Threshold <= 0 {
		return DefaultOverlapThreshold
	}
	return m.Threshold
}

// Match searches for an orientation and translation placing at least
// Threshold points of candidate (raw local coordinates) onto target
// (reference-frame coordinates). The second result is false when no
// hypothesis reaches the threshold.
func (m Matcher) Match(target, candidate []geom.Point) (Match, bool) {
	target = geom.Unique(target)
	candidate = geom.Unique(candidate)
	targetSet := geom.NewPointSet(target)

	var variants [geom.NumOrientations][]geom.Point
	for i, o := range geom.Orientations() {
		variants[i] = o.ApplyAll(candidate)
	}
	return m.search(target, targetSet.Contains, &variants)
}

// MatchScanner matches candidate's local cloud against target's resolved
// cloud, reusing the rotated variants cached on candidate. An unresolved
// target never matches.
func (m Matcher) MatchScanner(target, candidate *scanner.Scanner) (Match, bool) {
	res, ok := target.Resolution()
	if !ok {
		return Match{}, false
	}
	return m.search(res.Global, res.Contains, candidate.Variants())
}

func (m Matcher) search(target []geom.Point, contains func(geom.Point) bool, variants *[geom.NumOrientations][]geom.Point) (Match, bool) {
	need := m.threshold()
	if len(target) < need {
		return Match{}, false
	}

	for oi := range variants {
		rotated := variants[oi]
		if len(rotated) < need {
			return Match{}, false
		}
		// Any alignment with need coincidences uses at least one of the
		// first len-need+1 points, so later anchors cannot find a new one.
		anchors := rotated[:len(rotated)-need+1]
		for _, p := range anchors {
			for _, q := range target {
				t := q.Sub(p)
				if n := countOverlap(rotated, t, contains, need); n >= need {
					return Match{
						OrientationIndex: oi,
						Orientation:      geom.OrientationAt(oi),
						Translation:      t,
						Overlap:          n,
					}, true
				}
			}
		}
	}
	return Match{}, false
}

// countOverlap counts points of pts that land on the target after shifting
// by t. It gives up early once need can no longer be reached.
func countOverlap(pts []geom.Point, t geom.Point, contains func(geom.Point) bool, need int) int {
	n := 0
	for i, p := range pts {
		if contains(p.Add(t)) {
			n++
		} else if n+len(pts)-i-1 < need {
			return n
		}
	}
	return n
}
