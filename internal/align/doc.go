// Package align is the alignment engine.
//
// Responsibilities: pairwise matching of a resolved cloud against a raw
// candidate cloud under the 24 cube orientations (Matcher), breadth-first
// resolution of every scanner into the frame of scanner 0 (Resolver), and
// aggregation of resolved scanners into one beacon map (Assemble).
//
// The matcher accepts the first (orientation, anchor pair) hypothesis that
// reaches the overlap threshold. Hypotheses are visited in a fixed order:
// orientation index, then candidate point order, then target point order.
// A constellation symmetric enough to admit two accepted alignments
// resolves to whichever comes first in that order.
package align
