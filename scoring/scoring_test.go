package scoring

import (
	"testing"

	"github.com/pronoleague/pronostics/models"
)

func intPtr(v int) *int { return &v }

func TestScore_ExactScore(t *testing.T) {
	cases := [][2]int{{2, 1}, {0, 0}, {3, 3}, {0, 4}}
	for _, c := range cases {
		if got := Score(c[0], c[1], c[0], c[1]); got != 5 {
			t.Errorf("Score(%d,%d,%d,%d) = %d, want 5", c[0], c[1], c[0], c[1], got)
		}
	}
}

func TestScore_DrawnMatch(t *testing.T) {
	// Predicting any draw on a drawn match earns 4 unless it was exact.
	if got := Score(0, 0, 1, 1); got != 4 {
		t.Errorf("Score(0,0,1,1) = %d, want 4", got)
	}
	if got := Score(2, 2, 1, 1); got != 4 {
		t.Errorf("Score(2,2,1,1) = %d, want 4", got)
	}
	// A non-draw guess on a drawn match scores 0, never the
	// goal-difference tier.
	if got := Score(2, 1, 1, 1); got != 0 {
		t.Errorf("Score(2,1,1,1) = %d, want 0", got)
	}
	if got := Score(0, 3, 2, 2); got != 0 {
		t.Errorf("Score(0,3,2,2) = %d, want 0", got)
	}
}

func TestScore_GoalDifference(t *testing.T) {
	if got := Score(2, 1, 4, 3); got != 4 {
		t.Errorf("Score(2,1,4,3) = %d, want 4 (same +1 difference)", got)
	}
	if got := Score(0, 2, 1, 3); got != 4 {
		t.Errorf("Score(0,2,1,3) = %d, want 4 (same -2 difference)", got)
	}
}

func TestScore_CorrectWinnerOnly(t *testing.T) {
	if got := Score(3, 0, 1, 0); got != 3 {
		t.Errorf("Score(3,0,1,0) = %d, want 3", got)
	}
	if got := Score(0, 1, 1, 3); got != 3 {
		t.Errorf("Score(0,1,1,3) = %d, want 3", got)
	}
}

func TestScore_WrongDirection(t *testing.T) {
	if got := Score(0, 1, 1, 0); got != 0 {
		t.Errorf("Score(0,1,1,0) = %d, want 0", got)
	}
	if got := Score(2, 0, 0, 3); got != 0 {
		t.Errorf("Score(2,0,0,3) = %d, want 0", got)
	}
}

func TestScore_AlwaysInTierSet(t *testing.T) {
	valid := map[int]bool{0: true, 3: true, 4: true, 5: true}
	for ph := 0; ph <= 5; ph++ {
		for pa := 0; pa <= 5; pa++ {
			for ah := 0; ah <= 5; ah++ {
				for aa := 0; aa <= 5; aa++ {
					if got := Score(ph, pa, ah, aa); !valid[got] {
						t.Fatalf("Score(%d,%d,%d,%d) = %d, not in {0,3,4,5}", ph, pa, ah, aa, got)
					}
				}
			}
		}
	}
}

func TestPoints_UnplayedMatch(t *testing.T) {
	p := &models.Prediction{HomeScore: intPtr(2), AwayScore: intPtr(1)}
	m := &models.Match{} // no result yet

	if got := Points(p, m); got != 0 {
		t.Errorf("Points on unplayed match = %d, want 0", got)
	}
}

func TestPoints_IncompletePrediction(t *testing.T) {
	m := &models.Match{HomeScore: intPtr(2), AwayScore: intPtr(1)}

	if got := Points(&models.Prediction{}, m); got != 0 {
		t.Errorf("Points with empty prediction = %d, want 0", got)
	}
	half := &models.Prediction{HomeScore: intPtr(2)}
	if got := Points(half, m); got != 0 {
		t.Errorf("Points with half prediction = %d, want 0", got)
	}
}

func TestPoints_PlayedMatch(t *testing.T) {
	p := &models.Prediction{HomeScore: intPtr(2), AwayScore: intPtr(1)}
	m := &models.Match{HomeScore: intPtr(2), AwayScore: intPtr(1)}

	if got := Points(p, m); got != 5 {
		t.Errorf("Points exact = %d, want 5", got)
	}
}
