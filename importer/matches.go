package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
)

// EventMatchesReconciled is broadcast after a match import changed data.
const EventMatchesReconciled = "MATCHES_RECONCILED"

const kickoffLayout = "2006-01-02 15:04"

// matchKey identifies a match in the source file: its two teams and the
// exact kickoff time. Kickoff is kept as a unix timestamp so the key is
// safely comparable regardless of time.Time internals.
type matchKey struct {
	homeTeamID int
	awayTeamID int
	kickoff    int64
}

type matchRow struct {
	seasonLabel string
	round       int
	homeName    string
	awayName    string
	kickoff     time.Time
	homeScore   *int
	awayScore   *int
}

// MatchImporter reconciles the match store against a CSV file.
type MatchImporter struct {
	db      *sql.DB
	teams   repositories.TeamRepository
	seasons repositories.SeasonRepository
	matches repositories.MatchRepository
	logger  *slog.Logger
	hub     Notifier

	// Path of the source file.
	Path string
	// SkipBadRows makes malformed rows log-and-skip instead of aborting
	// the run.
	SkipBadRows bool
}

func NewMatchImporter(
	db *sql.DB,
	teams repositories.TeamRepository,
	seasons repositories.SeasonRepository,
	matches repositories.MatchRepository,
	logger *slog.Logger,
	hub Notifier,
	path string,
) *MatchImporter {
	return &MatchImporter{
		db:      db,
		teams:   teams,
		seasons: seasons,
		matches: matches,
		logger:  logger,
		hub:     hub,
		Path:    path,
	}
}

// Run reads the source file and makes the match store match it exactly:
// every row is upserted by (home team, away team, kickoff) and every
// stored match absent from the file is deleted. The whole run executes
// inside one transaction. A missing source file is a logged no-op.
func (imp *MatchImporter) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	file, err := os.Open(imp.Path)
	if err != nil {
		if os.IsNotExist(err) {
			imp.logger.Warn("matches source file not found, skipping import", slog.String("path", imp.Path))
			return stats, nil
		}
		return stats, fmt.Errorf("failed to open matches file: %w", err)
	}
	defer file.Close()

	rows, skipped, err := imp.parse(file)
	if err != nil {
		return stats, err
	}
	stats.Skipped = skipped

	tx, exec, err := beginTx(ctx, imp.db)
	if err != nil {
		return stats, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	if tx != nil {
		defer tx.Rollback()
	}

	sourceKeys := make(map[matchKey]bool, len(rows))
	for _, row := range rows {
		home, _, err := imp.teams.GetOrCreateByName(ctx, exec, row.homeName)
		if err != nil {
			return stats, err
		}
		away, _, err := imp.teams.GetOrCreateByName(ctx, exec, row.awayName)
		if err != nil {
			return stats, err
		}
		season, _, err := imp.seasons.GetOrCreateByLabel(ctx, exec, row.seasonLabel)
		if err != nil {
			return stats, err
		}

		match := &models.Match{
			SeasonID:   season.ID,
			Round:      row.round,
			HomeTeamID: home.ID,
			AwayTeamID: away.ID,
			KickoffAt:  row.kickoff,
			HomeScore:  row.homeScore,
			AwayScore:  row.awayScore,
		}

		outcome, err := imp.matches.Upsert(ctx, exec, match)
		if err != nil {
			return stats, err
		}
		sourceKeys[matchKey{home.ID, away.ID, row.kickoff.Unix()}] = true

		switch outcome {
		case repositories.UpsertCreated:
			stats.Created++
			imp.logger.Info("match created",
				slog.String("home", row.homeName),
				slog.String("away", row.awayName),
				slog.Time("kickoff", row.kickoff))
		case repositories.UpsertUpdated:
			stats.Updated++
			imp.logger.Info("match updated",
				slog.String("home", row.homeName),
				slog.String("away", row.awayName),
				slog.Time("kickoff", row.kickoff))
		}
	}

	// Deletion pass: the file is authoritative, anything not in it goes.
	stored, err := imp.matches.ListAll(ctx, exec)
	if err != nil {
		return stats, err
	}
	for _, m := range stored {
		key := matchKey{m.HomeTeamID, m.AwayTeamID, m.KickoffAt.Unix()}
		if sourceKeys[key] {
			continue
		}
		if err := imp.matches.Delete(ctx, exec, m.ID); err != nil {
			return stats, err
		}
		stats.Deleted++
		imp.logger.Info("match deleted",
			slog.Int("match_id", m.ID),
			slog.Time("kickoff", m.KickoffAt))
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return stats, fmt.Errorf("failed to commit import transaction: %w", err)
		}
	}

	if imp.hub != nil && stats.changed() {
		imp.hub.BroadcastEvent(EventMatchesReconciled, stats)
	}
	return stats, nil
}

// parse reads the whole file up front so a malformed row in strict mode
// aborts before anything touches the store.
func (imp *MatchImporter) parse(r io.Reader) ([]matchRow, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // short rows are skipped, not fatal

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read matches csv: %w", err)
	}

	rows := make([]matchRow, 0, len(records))
	skipped := 0
	for i, record := range records {
		if i == 0 {
			continue // header
		}
		if len(record) < 8 {
			continue
		}

		row, err := parseMatchRow(record)
		if err != nil {
			if imp.SkipBadRows {
				skipped++
				imp.logger.Warn("skipping malformed match row",
					slog.Int("line", i+1), slog.Any("error", err))
				continue
			}
			return nil, 0, fmt.Errorf("line %d: %w", i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func parseMatchRow(record []string) (matchRow, error) {
	row := matchRow{
		seasonLabel: strings.TrimSpace(record[0]),
		homeName:    strings.TrimSpace(record[2]),
		awayName:    strings.TrimSpace(record[3]),
		round:       1,
	}

	if roundStr := strings.TrimSpace(record[1]); roundStr != "" {
		round, err := strconv.Atoi(roundStr)
		if err != nil {
			return row, fmt.Errorf("%w: bad round %q", ErrInvalidRow, roundStr)
		}
		row.round = round
	}

	kickoff, err := time.ParseInLocation(kickoffLayout,
		strings.TrimSpace(record[4])+" "+strings.TrimSpace(record[5]), time.Local)
	if err != nil {
		return row, fmt.Errorf("%w: bad kickoff date/time: %v", ErrInvalidRow, err)
	}
	row.kickoff = kickoff

	row.homeScore, err = parseOptionalScore(record[6])
	if err != nil {
		return row, err
	}
	row.awayScore, err = parseOptionalScore(record[7])
	if err != nil {
		return row, err
	}
	// Scores come in pairs; a half-recorded result is a data error.
	if (row.homeScore == nil) != (row.awayScore == nil) {
		return row, fmt.Errorf("%w: only one of the two scores is set", ErrInvalidRow)
	}
	return row, nil
}

func parseOptionalScore(field string) (*int, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	score, err := strconv.Atoi(field)
	if err != nil {
		return nil, fmt.Errorf("%w: bad score %q", ErrInvalidRow, field)
	}
	return &score, nil
}
