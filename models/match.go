package models

import "time"

type Match struct {
	ID         int       `json:"id"`
	SeasonID   int       `json:"season_id"`
	Round      int       `json:"round"`
	HomeTeamID int       `json:"home_team_id"`
	AwayTeamID int       `json:"away_team_id"`
	HomeScore  *int      `json:"home_score,omitempty"`
	AwayScore  *int      `json:"away_score,omitempty"`
	KickoffAt  time.Time `json:"kickoff_at"`

	// Populated on reads that join the related rows.
	HomeTeam *Team   `json:"home_team,omitempty"`
	AwayTeam *Team   `json:"away_team,omitempty"`
	Season   *Season `json:"season,omitempty"`
}

// IsPlayed reports whether the final score has been recorded.
// Scores are written in pairs, so checking both is belt and braces.
func (m *Match) IsPlayed() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// IsOpenForPrediction reports whether predictions may still be submitted.
func (m *Match) IsOpenForPrediction(now time.Time) bool {
	return now.Before(m.KickoffAt)
}
