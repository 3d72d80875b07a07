// Package fingerprint computes rotation- and translation-invariant
// signatures of point clouds, used to skip scanner pairs that cannot
// plausibly overlap before paying for a full match.
package fingerprint

import (
	"sort"

	"github.com/banshee-data/beacon.map/internal/geom"
)

// DefaultMinShared is the default number of shared fingerprint values
// required before a pair is worth matching.
const DefaultMinShared = 8

// Set is the set of nearest-neighbour squared distances of a cloud.
type Set map[int]struct{}

// Compute returns, for every point of pts, the minimum squared distance to
// any other point of pts, collected as a set. Clouds with fewer than two
// points have no fingerprint.
func Compute(pts []geom.Point) Set {
	s := make(Set, len(pts))
	if len(pts) < 2 {
		return s
	}
	for i, p := range pts {
		best := -1
		for j, q := range pts {
			if i == j {
				continue
			}
			d := p.Euclid(q)
			if d == 0 {
				// duplicate detection, carries no shape information
				continue
			}
			if best < 0 || d < best {
				best = d
			}
		}
		if best >= 0 {
			s[best] = struct{}{}
		}
	}
	return s
}

// Shared counts values present in both a and b.
func Shared(a, b Set) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for v := range a {
		if _, ok := b[v]; ok {
			n++
		}
	}
	return n
}

// Values returns the fingerprint values in ascending order.
func (s Set) Values() []int {
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// Index holds precomputed fingerprints for an index-addressed collection of
// clouds and proposes candidate overlapping pairs.
type Index struct {
	sets      []Set
	minShared int
}

// NewIndex builds an index over sets. A minShared of zero or less accepts
// every pair.
func NewIndex(sets []Set, minShared int) *Index {
	return &Index{sets: sets, minShared: minShared}
}

// Len returns the number of indexed clouds.
func (idx *Index) Len() int {
	return len(idx.sets)
}

// MinShared returns the acceptance threshold.
func (idx *Index) MinShared() int {
	return idx.minShared
}

// Shared returns the number of fingerprint values clouds i and j have in common.
func (idx *Index) Shared(i, j int) int {
	return Shared(idx.sets[i], idx.sets[j])
}

// Candidate reports whether clouds i and j share enough fingerprints to be
// worth a full match.
func (idx *Index) Candidate(i, j int) bool {
	if idx.minShared <= 0 {
		return true
	}
	return idx.Shared(i, j) >= idx.minShared
}

// Candidates returns every pair (i < j) accepted by Candidate.
func (idx *Index) Candidates() [][2]int {
	var out [][2]int
	for i := range idx.sets {
		for j := i + 1; j < len(idx.sets); j++ {
			if idx.Candidate(i, j) {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}
