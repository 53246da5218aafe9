package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
)

type ImportSessionRepo struct {
	db *sql.DB
}

func NewImportSessionRepo(db *sql.DB) *ImportSessionRepo {
	return &ImportSessionRepo{db: db}
}

var importSessionColumns = []string{
	"id", "steam_user_id", "status", "total_games", "completed_games",
	"total_screenshots", "completed_screenshots", "skipped_screenshots",
	"failed_screenshots", "error_log", "started_at", "completed_at", "ctime",
}

func scanImportSession(scan func(dest ...interface{}) error) (*model.ImportSession, error) {
	var s model.ImportSession
	var errorLog string
	var startedAt, completedAt sql.NullInt64
	if err := scan(
		&s.ID, &s.SteamUserID, &s.Status, &s.TotalGames, &s.CompletedGames,
		&s.TotalScreenshots, &s.CompletedScreenshots, &s.SkippedScreenshots,
		&s.FailedScreenshots, &errorLog, &startedAt, &completedAt, &s.Ctime,
	); err != nil {
		return nil, err
	}
	if startedAt.Valid {
		s.StartedAt = &startedAt.Int64
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Int64
	}
	s.ErrorLog = []string{}
	_ = json.Unmarshal([]byte(errorLog), &s.ErrorLog)
	return &s, nil
}

func (r *ImportSessionRepo) Create(ctx context.Context, id, steamUserID string) error {
	data := map[string]interface{}{
		"id":            id,
		"steam_user_id": steamUserID,
		"status":        model.ImportStatusPending,
		"error_log":     "[]",
		"ctime":         time.Now().Unix(),
	}
	sqlStr, args, err := builder.BuildInsert("import_sessions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ImportSessionRepo) Get(ctx context.Context, id string) (*model.ImportSession, error) {
	sqlStr, args, err := builder.BuildSelect("import_sessions", map[string]interface{}{"id": id}, importSessionColumns)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	session, err := scanImportSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Update writes only the provided fields; absent fields are untouched so
// counters can advance independently of status.
func (r *ImportSessionRepo) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	sqlStr, args, err := builder.BuildUpdate("import_sessions", map[string]interface{}{"id": id}, fields)
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// AppendError appends to the session's error log, preserving prior entries.
// The orchestrator is the only writer per session, so the read-modify-write
// here is not contended.
func (r *ImportSessionRepo) AppendError(ctx context.Context, id string, message string) error {
	var errorLog string
	row := r.db.QueryRowContext(ctx, "SELECT error_log FROM import_sessions WHERE id = ?", id)
	if err := row.Scan(&errorLog); err != nil {
		if err == sql.ErrNoRows {
			return appErr.ErrNotFound
		}
		return err
	}
	entries := []string{}
	_ = json.Unmarshal([]byte(errorLog), &entries)
	entries = append(entries, message)
	encoded, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "UPDATE import_sessions SET error_log = ? WHERE id = ?", string(encoded), id)
	return err
}

// ListStale returns non-terminal sessions created before the cutoff, for the
// maintenance sweep.
func (r *ImportSessionRepo) ListStale(ctx context.Context, cutoff int64) ([]*model.ImportSession, error) {
	where := map[string]interface{}{
		"status in": []interface{}{model.ImportStatusPending, model.ImportStatusRunning},
		"ctime <":   cutoff,
	}
	sqlStr, args, err := builder.BuildSelect("import_sessions", where, importSessionColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]*model.ImportSession, 0)
	for rows.Next() {
		session, err := scanImportSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}
