package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		name                         string
		actualHome, actualAway       int
		predictedHome, predictedAway int
		want                         int
	}{
		{"exact score", 2, 1, 2, 1, 4},
		{"exact draw", 1, 1, 1, 1, 4},
		{"exact zero draw", 0, 0, 0, 0, 4},
		{"same winner and difference", 2, 1, 3, 2, 2},
		{"same winner and difference low", 2, 1, 1, 0, 2},
		{"draw with different score", 1, 1, 2, 2, 2},
		{"draw with different score zero", 2, 2, 0, 0, 2},
		{"same winner wrong difference", 2, 1, 3, 0, 1},
		{"away win both wrong difference", 0, 2, 1, 4, 1},
		{"wrong winner", 2, 0, 0, 1, 0},
		{"predicted draw actual home win", 2, 1, 1, 1, 0},
		{"predicted home win actual draw", 1, 1, 2, 1, 0},
		{"high scoring wrong winner", 4, 5, 3, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePoints(tt.actualHome, tt.actualAway, tt.predictedHome, tt.predictedAway)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculatePoints_RangeAndExactness(t *testing.T) {
	valid := map[int]bool{0: true, 1: true, 2: true, 4: true}

	for ah := 0; ah <= 5; ah++ {
		for aa := 0; aa <= 5; aa++ {
			for ph := 0; ph <= 5; ph++ {
				for pa := 0; pa <= 5; pa++ {
					got := CalculatePoints(ah, aa, ph, pa)
					assert.True(t, valid[got], "points %d out of range for %d-%d vs %d-%d", got, ah, aa, ph, pa)

					exact := ah == ph && aa == pa
					assert.Equal(t, exact, got == 4, "4 points iff exact prediction: %d-%d vs %d-%d", ah, aa, ph, pa)
				}
			}
		}
	}
}
