package geom

import (
	"fmt"
	"sort"
)

// Point is an exact 3D position in some scanner's frame.
// Points are comparable and may be used as map keys.
type Point struct {
	X, Y, Z int
}

// Origin is the zero point.
var Origin = Point{}

// NewPoint returns the point (x, y, z).
func NewPoint(x, y, z int) Point {
	return Point{X: x, Y: y, Z: z}
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Neg returns -p.
func (p Point) Neg() Point {
	return Origin.Sub(p)
}

// RotateX rotates p by 90 degrees about the x axis: (x,y,z) -> (x,-z,y).
func (p Point) RotateX() Point {
	return Point{X: p.X, Y: -p.Z, Z: p.Y}
}

// RotateY rotates p by 90 degrees about the y axis: (x,y,z) -> (-z,y,x).
func (p Point) RotateY() Point {
	return Point{X: -p.Z, Y: p.Y, Z: p.X}
}

// RotateZ rotates p by 90 degrees about the z axis: (x,y,z) -> (y,-x,z).
func (p Point) RotateZ() Point {
	return Point{X: p.Y, Y: -p.X, Z: p.Z}
}

// Mag returns the Manhattan magnitude |x|+|y|+|z|.
func (p Point) Mag() int {
	return abs(p.X) + abs(p.Y) + abs(p.Z)
}

// Euclid returns the squared Euclidean distance between p and q.
func (p Point) Euclid(q Point) int {
	d := p.Sub(q)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// Manhattan returns the Manhattan distance between p and q.
func (p Point) Manhattan(q Point) int {
	return p.Sub(q).Mag()
}

// Less orders points by X, then Y, then Z.
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.Z < q.Z
}

// String formats p as "x,y,z", the same form scanners report.
func (p Point) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

// SortPoints sorts pts in place using Point.Less.
func SortPoints(pts []Point) {
	sort.Slice(pts, func(i, j int) bool { return pts[i].Less(pts[j]) })
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
