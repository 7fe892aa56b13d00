package changelog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/KirkDiggler/beyond-tracker/internal/domain/character"
	dnderr "github.com/KirkDiggler/beyond-tracker/internal/errors"
	"github.com/KirkDiggler/beyond-tracker/internal/uuid"
)

// Schema for the change_log table, applied on open.
const schema = `
CREATE TABLE IF NOT EXISTS change_log (
	id TEXT PRIMARY KEY,
	character_id INTEGER NOT NULL,
	from_version INTEGER NOT NULL,
	to_version INTEGER NOT NULL,
	timestamp INTEGER NOT NULL,
	field_path TEXT NOT NULL,
	change_type TEXT NOT NULL,
	priority TEXT NOT NULL,
	category TEXT NOT NULL,
	description TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_change_log_character ON change_log(character_id, timestamp);
`

// sqliteRepo implements Repository on a SQLite file.
type sqliteRepo struct {
	db            *sql.DB
	uuidGenerator uuid.Generator
}

// SQLiteConfig holds configuration for the SQLite repository
type SQLiteConfig struct {
	Path          string         // Required: database file path
	UUIDGenerator uuid.Generator // Optional, defaults to google uuids
}

// NewSQLite opens (and if needed creates) the change-log database.
func NewSQLite(cfg *SQLiteConfig) (Repository, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, dnderr.InvalidArgument("database path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, dnderr.Wrap(err, "failed to open change log database")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, dnderr.Wrap(err, "failed to apply change log schema")
	}

	generator := cfg.UUIDGenerator
	if generator == nil {
		generator = uuid.NewGoogleUUIDGenerator()
	}
	return &sqliteRepo{db: db, uuidGenerator: generator}, nil
}

func (r *sqliteRepo) Append(ctx context.Context, changeSet *character.ChangeSet) error {
	if changeSet == nil || len(changeSet.Changes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dnderr.Wrap(err, "failed to begin change log transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO change_log
		(id, character_id, from_version, to_version, timestamp, field_path, change_type, priority, category, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dnderr.Wrap(err, "failed to prepare change log insert")
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, change := range changeSet.Changes {
		_, err := stmt.ExecContext(ctx,
			r.uuidGenerator.New(),
			changeSet.CharacterID,
			changeSet.FromVersion,
			changeSet.ToVersion,
			changeSet.Timestamp.Unix(),
			change.FieldPath,
			string(change.ChangeType),
			change.Priority.String(),
			string(change.Category),
			change.Description,
		)
		if err != nil {
			return dnderr.Wrapf(err, "failed to append change for %s", change.FieldPath)
		}
	}

	if err := tx.Commit(); err != nil {
		return dnderr.Wrap(err, "failed to commit change log")
	}
	return nil
}

func (r *sqliteRepo) History(ctx context.Context, characterID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, character_id, from_version, to_version, timestamp,
		       field_path, change_type, priority, category, description
		FROM change_log
		WHERE character_id = ?
		ORDER BY timestamp DESC, field_path ASC
		LIMIT ?`, characterID, limit)
	if err != nil {
		return nil, dnderr.Wrapf(err, "failed to query history for character %d", characterID)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var ts int64
		if err := rows.Scan(
			&entry.ID, &entry.CharacterID, &entry.FromVersion, &entry.ToVersion, &ts,
			&entry.FieldPath, &entry.ChangeType, &entry.Priority, &entry.Category, &entry.Description,
		); err != nil {
			return nil, dnderr.Wrap(err, "failed to scan change log row")
		}
		entry.Timestamp = time.Unix(ts, 0).UTC()
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, dnderr.Wrap(err, "failed to iterate change log rows")
	}
	return entries, nil
}

// String implements fmt.Stringer for log lines.
func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s (%s)", e.Priority, e.Description, e.FieldPath)
}
