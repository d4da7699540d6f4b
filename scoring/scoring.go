// Package scoring computes the points a prediction earns against the
// actual result of a match. It is pure: no storage, no clock, no I/O.
package scoring

import "github.com/pronoleague/pronostics/models"

// Points awarded per tier.
const (
	PointsExact      = 5 // exact final score
	PointsDraw       = 4 // predicted a draw, match was a draw, wrong score
	PointsDifference = 4 // correct goal difference, wrong score
	PointsWinner     = 3 // correct winner, wrong difference
	PointsNone       = 0
)

// Score returns the points for a prediction (ph, pa) against the actual
// result (ah, aa). Tiers are evaluated in order; the first hit wins:
//
//  1. exact score                      → 5
//  2. actual draw, predicted draw      → 4 (any other guess on a draw → 0)
//  3. same goal difference             → 4
//  4. same winner                      → 3
//  5. anything else                    → 0
func Score(ph, pa, ah, aa int) int {
	if ph == ah && pa == aa {
		return PointsExact
	}

	// A drawn match only rewards draw predictions; the exact draw was
	// already caught above.
	if ah == aa {
		if ph == pa {
			return PointsDraw
		}
		return PointsNone
	}

	if ph-pa == ah-aa {
		return PointsDifference
	}

	if (ph > pa && ah > aa) || (ph < pa && ah < aa) {
		return PointsWinner
	}

	return PointsNone
}

// Points scores a prediction against its match. It returns 0 when the
// match has not been played or the prediction is incomplete.
func Points(p *models.Prediction, m *models.Match) int {
	if p == nil || m == nil || !m.IsPlayed() || !p.IsComplete() {
		return PointsNone
	}
	return Score(*p.HomeScore, *p.AwayScore, *m.HomeScore, *m.AwayScore)
}
