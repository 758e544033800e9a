package database

import (
	"fmt"
	"time"

	"modbot/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// InitModActionDB opens the ledger database and ensures the table exists.
func InitModActionDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	schema := `CREATE TABLE IF NOT EXISTS mod_actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		action TEXT NOT NULL,
		moderator_id TEXT NOT NULL DEFAULT '',
		target_id TEXT NOT NULL,
		channel_id TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mod_actions_target ON mod_actions (guild_id, target_id, created_at);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create mod_actions table: %w", err)
	}
	return db, nil
}

// AddModAction inserts a record and returns its ID. A zero CreatedAt is set to now.
func AddModAction(db *sqlx.DB, action model.ModAction) (int64, error) {
	if action.CreatedAt == 0 {
		action.CreatedAt = time.Now().Unix()
	}
	query := `INSERT INTO mod_actions (guild_id, action, moderator_id, target_id, channel_id, detail, created_at)
			  VALUES (:guild_id, :action, :moderator_id, :target_id, :channel_id, :detail, :created_at)`

	result, err := db.NamedExec(query, action)
	if err != nil {
		return 0, fmt.Errorf("failed to insert mod action: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// GetModActionsByTarget returns the latest records for a member in a guild, newest first.
func GetModActionsByTarget(db *sqlx.DB, guildID, targetID string, limit int) ([]model.ModAction, error) {
	var records []model.ModAction
	query := `SELECT * FROM mod_actions WHERE guild_id = ? AND target_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	if err := db.Select(&records, query, guildID, targetID, limit); err != nil {
		return nil, fmt.Errorf("failed to get mod actions for user %s in guild %s: %w", targetID, guildID, err)
	}
	return records, nil
}

// CountModActions returns the number of records for a guild created at or after since.
func CountModActions(db *sqlx.DB, guildID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM mod_actions WHERE guild_id = ? AND created_at >= ?`
	if err := db.Get(&count, query, guildID, since.Unix()); err != nil {
		return 0, fmt.Errorf("failed to count mod actions for guild %s: %w", guildID, err)
	}
	return count, nil
}

// DeleteModActionsBefore prunes records older than cutoff and returns how many were removed.
func DeleteModActionsBefore(db *sqlx.DB, cutoff time.Time) (int64, error) {
	result, err := db.Exec(`DELETE FROM mod_actions WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune mod actions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return n, nil
}

// Ledger adapts the database to model.Recorder.
type Ledger struct {
	DB *sqlx.DB
}

func (l Ledger) Record(action model.ModAction) error {
	if l.DB == nil {
		return nil
	}
	_, err := AddModAction(l.DB, action)
	return err
}
