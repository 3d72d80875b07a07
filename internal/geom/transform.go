package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MatrixValidationTolerance is the tolerance for checking rotation matrix validity.
const MatrixValidationTolerance = 0.01

// Transform is a rigid placement of a scanner frame in the reference frame:
// a point p in scanner coordinates maps to Orientation(p) + Translation.
// Translation is therefore the scanner's own position.
type Transform struct {
	Orientation Orientation
	Translation Point
}

// IdentityTransform returns the transform of the reference scanner.
func IdentityTransform() Transform {
	return Transform{Orientation: Identity()}
}

// Apply maps p into the reference frame.
func (t Transform) Apply(p Point) Point {
	return t.Orientation.Apply(p).Add(t.Translation)
}

// ApplyAll maps every point of pts into a new slice.
func (t Transform) ApplyAll(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = t.Apply(p)
	}
	return out
}

// Compose returns the transform that applies inner first, then t.
func (t Transform) Compose(inner Transform) Transform {
	return Transform{
		Orientation: t.Orientation.Compose(inner.Orientation),
		Translation: t.Orientation.Apply(inner.Translation).Add(t.Translation),
	}
}

// Inverse returns the transform mapping reference coordinates back into
// scanner coordinates.
func (t Transform) Inverse() Transform {
	inv := t.Orientation.Inverse()
	return Transform{Orientation: inv, Translation: inv.Apply(t.Translation).Neg()}
}

// Matrix returns t as a 4x4 homogeneous matrix in row-major order.
func (t Transform) Matrix() [16]float64 {
	m := t.Orientation.m
	return [16]float64{
		float64(m[0][0]), float64(m[0][1]), float64(m[0][2]), float64(t.Translation.X),
		float64(m[1][0]), float64(m[1][1]), float64(m[1][2]), float64(t.Translation.Y),
		float64(m[2][0]), float64(m[2][1]), float64(m[2][2]), float64(t.Translation.Z),
		0, 0, 0, 1,
	}
}

func (t Transform) String() string {
	return fmt.Sprintf("rot=%s t=(%s)", t.Orientation, t.Translation)
}

// IsValidTransformMatrix checks if a 4x4 row-major matrix is a rigid transform:
// the rotation block has determinant 1 and the last row is [0 0 0 1].
func IsValidTransformMatrix(T [16]float64) bool {
	r := mat.NewDense(3, 3, []float64{
		T[0], T[1], T[2],
		T[4], T[5], T[6],
		T[8], T[9], T[10],
	})
	if math.Abs(mat.Det(r)-1.0) > MatrixValidationTolerance {
		return false
	}

	// Rows must be orthonormal, otherwise a shear with det 1 would pass.
	var rrt mat.Dense
	rrt.Mul(r, r.T())
	if !mat.EqualApprox(&rrt, mat.NewDiagDense(3, []float64{1, 1, 1}), MatrixValidationTolerance) {
		return false
	}

	if T[12] != 0 || T[13] != 0 || T[14] != 0 || math.Abs(T[15]-1.0) > 0.001 {
		return false
	}
	return true
}

// TransformFromMatrix rebuilds a Transform from a row-major 4x4 matrix. The
// rotation block must be one of the 24 cube orientations and the
// translation must be integral.
func TransformFromMatrix(T [16]float64) (Transform, error) {
	if !IsValidTransformMatrix(T) {
		return Transform{}, fmt.Errorf("invalid transform matrix (not proper rigid transform)")
	}

	var o Orientation
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			o.m[i][j] = int(math.Round(T[i*4+j]))
		}
	}
	if IndexOf(o) < 0 {
		return Transform{}, fmt.Errorf("rotation %s is not axis-aligned", o)
	}

	var tr Point
	for i, dst := range []*int{&tr.X, &tr.Y, &tr.Z} {
		v := T[i*4+3]
		if v != math.Trunc(v) {
			return Transform{}, fmt.Errorf("translation component %d is not integral: %g", i, v)
		}
		*dst = int(v)
	}
	return Transform{Orientation: o, Translation: tr}, nil
}
