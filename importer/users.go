package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pronoleague/pronostics/models"
	"github.com/pronoleague/pronostics/repositories"
)

// EventUsersReconciled is broadcast after a user import changed data.
const EventUsersReconciled = "USERS_RECONCILED"

// UserImporter reconciles the user store against a CSV file with named
// columns username, email, first_name, last_name. The protected
// superuser account is never created, updated or deleted by an import.
type UserImporter struct {
	db     *sql.DB
	users  repositories.UserRepository
	logger *slog.Logger
	hub    Notifier

	// Path of the source file.
	Path string
	// ProtectedUsername is the one account imports must leave alone.
	ProtectedUsername string
}

func NewUserImporter(
	db *sql.DB,
	users repositories.UserRepository,
	logger *slog.Logger,
	hub Notifier,
	path string,
	protectedUsername string,
) *UserImporter {
	return &UserImporter{
		db:                db,
		users:             users,
		logger:            logger,
		hub:               hub,
		Path:              path,
		ProtectedUsername: protectedUsername,
	}
}

type userRow struct {
	username  string
	email     string
	firstName string
	lastName  string
}

// Run makes the user store match the source file: new usernames are
// created with no usable password, existing ones are updated only when a
// field actually changed, and stored users absent from the file are
// deleted, except the protected superuser, which always survives.
func (imp *UserImporter) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	file, err := os.Open(imp.Path)
	if err != nil {
		if os.IsNotExist(err) {
			imp.logger.Warn("users source file not found, skipping import", slog.String("path", imp.Path))
			return stats, nil
		}
		return stats, fmt.Errorf("failed to open users file: %w", err)
	}
	defer file.Close()

	rows, err := imp.parse(file)
	if err != nil {
		return stats, err
	}

	tx, exec, err := beginTx(ctx, imp.db)
	if err != nil {
		return stats, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	if tx != nil {
		defer tx.Rollback()
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		seen[row.username] = true

		user, err := imp.users.GetByUsername(ctx, exec, row.username)
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			// PasswordHash stays nil: the account cannot log in until
			// the first-login flow sets a password.
			user = &models.User{
				Username:  row.username,
				Email:     row.email,
				FirstName: row.firstName,
				LastName:  row.lastName,
			}
			if err := imp.users.Create(ctx, exec, user); err != nil {
				return stats, err
			}
			stats.Created++
			imp.logger.Info("user created", slog.String("username", row.username))

		case err != nil:
			return stats, err

		default:
			if user.Email == row.email && user.FirstName == row.firstName && user.LastName == row.lastName {
				continue // nothing changed, avoid a no-op write
			}
			user.Email = row.email
			user.FirstName = row.firstName
			user.LastName = row.lastName
			if err := imp.users.Update(ctx, exec, user); err != nil {
				return stats, err
			}
			stats.Updated++
			imp.logger.Info("user updated", slog.String("username", row.username))
		}
	}

	// Deletion pass.
	stored, err := imp.users.List(ctx, exec)
	if err != nil {
		return stats, err
	}
	for _, user := range stored {
		if user.IsProtected || user.Username == imp.ProtectedUsername {
			continue
		}
		if seen[user.Username] {
			continue
		}
		if err := imp.users.Delete(ctx, exec, user.ID); err != nil {
			return stats, err
		}
		stats.Deleted++
		imp.logger.Info("user deleted", slog.String("username", user.Username))
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return stats, fmt.Errorf("failed to commit import transaction: %w", err)
		}
	}

	if imp.hub != nil && stats.changed() {
		imp.hub.BroadcastEvent(EventUsersReconciled, stats)
	}
	return stats, nil
}

func (imp *UserImporter) parse(r io.Reader) ([]userRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read users csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Header-driven columns; first_name/last_name are optional.
	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	usernameIdx, ok := col["username"]
	if !ok {
		return nil, fmt.Errorf("%w: users csv has no username column", ErrInvalidRow)
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	rows := make([]userRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if usernameIdx >= len(record) {
			continue
		}
		username := strings.TrimSpace(record[usernameIdx])
		if username == "" || username == imp.ProtectedUsername {
			continue
		}
		rows = append(rows, userRow{
			username:  username,
			email:     field(record, "email"),
			firstName: field(record, "first_name"),
			lastName:  field(record, "last_name"),
		})
	}
	return rows, nil
}
