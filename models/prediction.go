package models

// Prediction is a user's guessed final score for one match. There is at
// most one per (user, match) pair. Points is denormalized: it is
// recomputed from the scoring rules on every save and never mutated
// independently.
type Prediction struct {
	ID        int  `json:"id"`
	UserID    int  `json:"user_id"`
	MatchID   int  `json:"match_id"`
	HomeScore *int `json:"home_score,omitempty"`
	AwayScore *int `json:"away_score,omitempty"`
	Points    int  `json:"points"`

	Match *Match `json:"match,omitempty"`
}

// IsComplete reports whether both predicted scores have been submitted.
func (p *Prediction) IsComplete() bool {
	return p.HomeScore != nil && p.AwayScore != nil
}
