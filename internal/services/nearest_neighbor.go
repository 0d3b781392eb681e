package services

import "math"

// Build an initial tour using a greedy nearest-neighbor algorithm.
//
// The tour starts at the origin when one is set, otherwise at the first stop in
// input order. Each step moves to the closest unvisited stop. Candidates are
// scanned in ascending input order and a later one only wins when it is closer
// beyond tolerance, so ties resolve to the lower input index.
func nearestNeighborTour(m *legMatrix, stopCount int, eps float64) []int {
	path := make([]int, 0, m.size())
	if stopCount == 0 {
		return path
	}

	visited := make([]bool, m.size())

	current := m.stopNode(0)
	if m.hasOrigin {
		current = 0
	}
	visited[current] = true
	path = append(path, current)

	for len(path) < m.size() {
		best := -1
		bestDistance := math.Inf(1)

		// Select next stop by minimum travel distance (greedy step).
		for node := 0; node < m.size(); node++ {
			if visited[node] {
				continue
			}

			d := m.distance(current, node)
			if best == -1 || d < bestDistance-tolerance(eps, bestDistance) {
				best = node
				bestDistance = d
			}
		}

		visited[best] = true
		path = append(path, best)
		current = best
	}

	return path
}
