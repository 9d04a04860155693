package admission

// Admissible reports whether one more appointment fits next to overlapCount existing ones.
func Admissible(overlapCount, maxSimultaneous int) bool {
	return overlapCount < maxSimultaneous
}

type Decision struct {
	Admitted bool
	Count    int
	Limit    int
}

func Decide(overlapCount, maxSimultaneous int) Decision {
	return Decision{
		Admitted: Admissible(overlapCount, maxSimultaneous),
		Count:    overlapCount,
		Limit:    maxSimultaneous,
	}
}
