// Package importer keeps the match and user stores reconciled with two
// external CSV files. Imports are authoritative: after a run the store
// holds exactly the rows present in the source file (the protected
// superuser excepted), so repeated runs over an unchanged file are no-ops.
package importer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pronoleague/pronostics/repositories"
)

// ErrInvalidRow marks a source row that could not be parsed. In strict
// mode it aborts the whole run and the transaction rolls back.
var ErrInvalidRow = errors.New("invalid source row")

// Stats summarizes the effect of one reconciliation run.
type Stats struct {
	Created int
	Updated int
	Deleted int
	Skipped int
}

func (s Stats) changed() bool {
	return s.Created > 0 || s.Updated > 0 || s.Deleted > 0
}

// Notifier receives an event after a run that changed stored data. The
// live hub satisfies this.
type Notifier interface {
	BroadcastEvent(eventType string, payload interface{})
}

// beginTx starts a transaction when a pool is configured. Tests inject
// fake repositories and no pool; they run without one.
func beginTx(ctx context.Context, db *sql.DB) (*sql.Tx, repositories.SQLExecutor, error) {
	if db == nil {
		return nil, nil, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	return tx, tx, nil
}
