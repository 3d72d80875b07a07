package geom

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrientations_Count(t *testing.T) {
	os := Orientations()
	require.Len(t, os, NumOrientations)
	assert.True(t, os[0].IsIdentity(), "index 0 must be the identity")
}

func TestOrientations_DistinctOnGenericPoint(t *testing.T) {
	p := NewPoint(1, 2, 3)
	seen := make(map[Point]int)
	for i, o := range Orientations() {
		img := o.Apply(p)
		if j, dup := seen[img]; dup {
			t.Errorf("orientations %d and %d both map %v to %v", j, i, p, img)
		}
		seen[img] = i
	}
	assert.Len(t, seen, NumOrientations)
}

func TestOrientations_Closure(t *testing.T) {
	os := Orientations()
	for i, a := range os {
		for j, b := range os {
			if IndexOf(a.Compose(b)) < 0 {
				t.Fatalf("composition of %d and %d is not a generated orientation", i, j)
			}
		}
	}
}

func TestOrientations_InverseInSet(t *testing.T) {
	for i, o := range Orientations() {
		inv := o.Inverse()
		require.GreaterOrEqual(t, IndexOf(inv), 0, "inverse of %d missing", i)
		assert.True(t, o.Compose(inv).IsIdentity(), "o * o^-1 != I for %d", i)
		assert.True(t, inv.Compose(o).IsIdentity(), "o^-1 * o != I for %d", i)
	}
}

func TestOrientations_Isometry(t *testing.T) {
	rng := rand.New(rand.NewSource(19))
	randPoint := func() Point {
		return NewPoint(rng.Intn(2001)-1000, rng.Intn(2001)-1000, rng.Intn(2001)-1000)
	}
	for trial := 0; trial < 50; trial++ {
		p, q := randPoint(), randPoint()
		want := p.Euclid(q)
		for i, o := range Orientations() {
			if got := o.Apply(p).Euclid(o.Apply(q)); got != want {
				t.Fatalf("orientation %d: distance %d, want %d", i, got, want)
			}
			if o.Apply(p).Mag() != p.Mag() {
				t.Fatalf("orientation %d changed Manhattan magnitude of %v", i, p)
			}
		}
	}
}

func TestOrientations_FaceOrder(t *testing.T) {
	faces := []Point{{1, 0, 0}, {0, 1, 0}, {-1, 0, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	unitX := NewPoint(1, 0, 0)
	for i, o := range Orientations() {
		assert.Equal(t, faces[i/4], o.Apply(unitX), "orientation %d", i)
	}
}

func TestOrientations_MatchPrimitiveRotations(t *testing.T) {
	p := NewPoint(4, -9, 6)
	assert.Equal(t, p.RotateX(), rotX.Apply(p))
	assert.Equal(t, p.RotateY(), rotY.Apply(p))
	assert.Equal(t, p.RotateZ(), rotZ.Apply(p))

	for _, o := range []Orientation{rotX, rotY, rotZ} {
		assert.GreaterOrEqual(t, IndexOf(o), 0, "primitive %s not generated", o)
	}
}

func TestOrientations_ReturnsCopy(t *testing.T) {
	os := Orientations()
	os[0] = rotX
	assert.True(t, Orientations()[0].IsIdentity())
	assert.True(t, OrientationAt(0).IsIdentity())
}

func TestOrientation_ApplyAll(t *testing.T) {
	pts := []Point{{1, 0, 0}, {0, 1, 0}}
	got := rotZ.ApplyAll(pts)
	assert.Equal(t, []Point{{0, -1, 0}, {1, 0, 0}}, got)
	assert.Equal(t, Point{1, 0, 0}, pts[0], "input must not be modified")
}
