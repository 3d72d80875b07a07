package geom

// PointSet is a value-keyed set of points.
type PointSet map[Point]struct{}

// NewPointSet builds a set from pts. Duplicates collapse.
func NewPointSet(pts []Point) PointSet {
	s := make(PointSet, len(pts))
	for _, p := range pts {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p.
func (s PointSet) Add(p Point) {
	s[p] = struct{}{}
}

// Contains reports whether p is in the set.
func (s PointSet) Contains(p Point) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of distinct points.
func (s PointSet) Len() int {
	return len(s)
}

// Sorted returns the members ordered by Point.Less.
func (s PointSet) Sorted() []Point {
	out := make([]Point, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	SortPoints(out)
	return out
}

// Unique returns pts with duplicates removed, keeping first occurrences in order.
func Unique(pts []Point) []Point {
	seen := make(PointSet, len(pts))
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if seen.Contains(p) {
			continue
		}
		seen.Add(p)
		out = append(out, p)
	}
	return out
}
