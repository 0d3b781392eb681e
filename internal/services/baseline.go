package services

// inputOrderPath returns the node path visiting stops in caller-supplied order,
// starting at the origin when one is set.
func inputOrderPath(m *legMatrix, stopCount int) []int {
	path := make([]int, 0, m.size())
	if m.hasOrigin {
		path = append(path, 0)
	}
	for i := 0; i < stopCount; i++ {
		path = append(path, m.stopNode(i))
	}
	return path
}

// baselineDistance is the total distance of the unsequenced input order.
// It is computed exactly as the assembler totals a tour and is only used
// to report improvement.
func baselineDistance(m *legMatrix, stopCount int) float64 {
	return m.pathDistance(inputOrderPath(m, stopCount))
}
