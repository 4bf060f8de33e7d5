// Package scoring awards points for score predictions.
//
// Scoring rules:
//   - 4 points: exact final score.
//   - 2 points: correct outcome and goal difference, but not the exact score.
//     Draws other than the exact one land here (difference 0 on both sides).
//   - 1 point: correct outcome only.
//   - 0 points: otherwise.
package scoring

// CalculatePoints returns the points a prediction earns against the actual
// score. Total for all non-negative inputs, no side effects.
func CalculatePoints(actualHome, actualAway, predictedHome, predictedAway int) int {
	// Exact score
	if actualHome == predictedHome && actualAway == predictedAway {
		return 4
	}

	actualDiff := actualHome - actualAway
	predictedDiff := predictedHome - predictedAway

	// 1 for home win, -1 for away win, 0 for draw
	if sign(actualDiff) == sign(predictedDiff) {
		// Correct goal difference (includes draws, where both diffs are 0)
		if actualDiff == predictedDiff {
			return 2
		}
		// Correct outcome but wrong difference
		return 1
	}

	return 0
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
