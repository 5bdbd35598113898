package phase10

var phaseRequirements = []string{
	1:  "2 sets of 3",
	2:  "1 set of 3 + 1 run of 4",
	3:  "1 set of 4 + 1 run of 4",
	4:  "1 run of 7",
	5:  "1 run of 8",
	6:  "1 run of 9",
	7:  "2 sets of 4",
	8:  "7 cards of one color",
	9:  "1 set of 5 + 1 set of 2",
	10: "1 set of 5 + 1 set of 3",
}

// PhaseRequirement describes what a player must lay down to pass phase n.
// Phases outside 1..10 return an empty string.
func PhaseRequirement(n int) string {
	if n < 1 || n >= len(phaseRequirements) {
		return ""
	}
	return phaseRequirements[n]
}
