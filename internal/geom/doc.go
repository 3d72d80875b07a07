// Package geom holds the integer geometry used by the alignment engine.
//
// Responsibilities: exact 3D points, the 24 axis-aligned orientations of the
// cube rotation group, and rigid transforms built from them.
// Key types: Point, PointSet, Orientation, Transform.
//
// All arithmetic is integer. Nothing here allocates global mutable state.
package geom
