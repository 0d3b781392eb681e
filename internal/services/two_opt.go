package services

import (
	"context"
	"slices"
)

type improvement struct {
	path      []int
	total     float64
	accepted  int
	exhausted bool
}

// Refine a tour with first-improvement 2-opt on an open path.
//
// Position 0 (the origin, or the first stop when there is none) stays fixed.
// Every accepted move strictly shortens the path by more than the tolerance,
// so the loop terminates. maxIterations bounds accepted moves; hitting it, or
// a done ctx, while an improving move still exists returns the current tour
// with exhausted set.
func twoOpt(ctx context.Context, m *legMatrix, path []int, maxIterations int, eps float64) improvement {
	cur := slices.Clone(path)
	total := m.pathDistance(cur)
	accepted := 0

	for {
		i, j, found := firstImprovingMove(m, cur, total, eps)
		if !found {
			return improvement{path: cur, total: total, accepted: accepted}
		}

		if accepted >= maxIterations || ctx.Err() != nil {
			return improvement{path: cur, total: total, accepted: accepted, exhausted: true}
		}

		slices.Reverse(cur[i+1 : j+1])
		// Recompute rather than accumulate deltas to avoid float drift.
		total = m.pathDistance(cur)
		accepted++
	}
}

// firstImprovingMove scans i ascending, then j ascending, for the first move
// replacing edges (i,i+1),(j,j+1) with (i,j),(i+1,j+1) that shortens the path.
// When j is the last position there is no (j,j+1) edge and only the first
// edge changes.
func firstImprovingMove(m *legMatrix, path []int, total, eps float64) (int, int, bool) {
	n := len(path)
	threshold := -tolerance(eps, total)

	for i := 0; i < n-2; i++ {
		a, b := path[i], path[i+1]
		ab := m.distance(a, b)

		for j := i + 2; j < n; j++ {
			c := path[j]
			delta := m.distance(a, c) - ab
			if j+1 < n {
				d := path[j+1]
				delta += m.distance(b, d) - m.distance(c, d)
			}

			if delta < threshold {
				return i, j, true
			}
		}
	}

	return 0, 0, false
}
