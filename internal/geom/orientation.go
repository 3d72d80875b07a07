package geom

import "fmt"

// NumOrientations is the order of the rotation group of the cube.
const NumOrientations = 24

// Orientation is one of the 24 axis-aligned rotations of 3-space, stored as
// a row-major integer matrix whose entries are -1, 0 or 1.
type Orientation struct {
	m [3][3]int
}

// Identity returns the orientation that leaves every point in place.
func Identity() Orientation {
	return Orientation{m: [3][3]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}}
}

// orientationOf captures a linear point map as a matrix by sampling the
// images of the basis vectors.
func orientationOf(f func(Point) Point) Orientation {
	var o Orientation
	basis := [3]Point{{X: 1}, {Y: 1}, {Z: 1}}
	for j, e := range basis {
		img := f(e)
		o.m[0][j] = img.X
		o.m[1][j] = img.Y
		o.m[2][j] = img.Z
	}
	return o
}

var (
	rotX = orientationOf(Point.RotateX)
	rotY = orientationOf(Point.RotateY)
	rotZ = orientationOf(Point.RotateZ)
)

// Apply rotates p.
func (o Orientation) Apply(p Point) Point {
	return Point{
		X: o.m[0][0]*p.X + o.m[0][1]*p.Y + o.m[0][2]*p.Z,
		Y: o.m[1][0]*p.X + o.m[1][1]*p.Y + o.m[1][2]*p.Z,
		Z: o.m[2][0]*p.X + o.m[2][1]*p.Y + o.m[2][2]*p.Z,
	}
}

// ApplyAll rotates every point of pts into a new slice.
func (o Orientation) ApplyAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = o.Apply(p)
	}
	return out
}

// Compose returns the orientation that applies inner first, then o.
func (o Orientation) Compose(inner Orientation) Orientation {
	var r Orientation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r.m[i][j] += o.m[i][k] * inner.m[k][j]
			}
		}
	}
	return r
}

// Inverse returns the inverse rotation (the transpose).
func (o Orientation) Inverse() Orientation {
	var r Orientation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r.m[i][j] = o.m[j][i]
		}
	}
	return r
}

// Equal reports whether o and other are the same rotation.
func (o Orientation) Equal(other Orientation) bool {
	return o.m == other.m
}

// IsIdentity reports whether o is the identity.
func (o Orientation) IsIdentity() bool {
	return o.m == Identity().m
}

// Matrix returns the row-major rotation matrix.
func (o Orientation) Matrix() [3][3]int {
	return o.m
}

func (o Orientation) String() string {
	return fmt.Sprintf("[%d %d %d; %d %d %d; %d %d %d]",
		o.m[0][0], o.m[0][1], o.m[0][2],
		o.m[1][0], o.m[1][1], o.m[1][2],
		o.m[2][0], o.m[2][1], o.m[2][2])
}

func repeat(o Orientation, n int) Orientation {
	r := Identity()
	for i := 0; i < n; i++ {
		r = o.Compose(r)
	}
	return r
}

// faces send +x to +x, +y, -x, -y, +z and -z respectively.
var faces = [6]Orientation{
	Identity(),
	repeat(rotZ, 3),
	repeat(rotZ, 2),
	rotZ,
	rotY,
	repeat(rotY, 3),
}

var orientations = generateOrientations()

func generateOrientations() [NumOrientations]Orientation {
	var out [NumOrientations]Orientation
	for f, face := range faces {
		for spin := 0; spin < 4; spin++ {
			out[f*4+spin] = face.Compose(repeat(rotX, spin))
		}
	}
	return out
}

// Orientations returns the 24 cube rotations in a fixed order. Index 0 is
// the identity. Each group of four shares a face (where +x is sent) and
// differs by a spin about the local x axis.
func Orientations() []Orientation {
	out := make([]Orientation, NumOrientations)
	copy(out, orientations[:])
	return out
}

// OrientationAt returns orientation i of Orientations without copying.
func OrientationAt(i int) Orientation {
	return orientations[i]
}

// IndexOf returns the position of o in Orientations, or -1.
func IndexOf(o Orientation) int {
	for i, c := range orientations {
		if c.Equal(o) {
			return i
		}
	}
	return -1
}
