package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
)

// hashChunkSize bounds IN() lists to stay under sqlite's variable limit.
const hashChunkSize = 500

type ScreenshotRepo struct {
	db *sql.DB
}

func NewScreenshotRepo(db *sql.DB) *ScreenshotRepo {
	return &ScreenshotRepo{db: db}
}

var screenshotColumns = []string{
	"id", "game_id", "filename", "file_path", "source", "steam_id", "caption",
	"sha256", "width", "height", "format", "file_size", "taken_at",
	"uploaded_at", "favorite", "thumb_small", "thumb_medium",
}

func scanScreenshot(scan func(dest ...interface{}) error) (*model.Screenshot, error) {
	var s model.Screenshot
	var steamID, sha256 sql.NullString
	var takenAt sql.NullInt64
	var favorite int
	if err := scan(
		&s.ID, &s.GameID, &s.Filename, &s.FilePath, &s.Source, &steamID,
		&s.Caption, &sha256, &s.Width, &s.Height, &s.Format, &s.FileSize,
		&takenAt, &s.UploadedAt, &favorite, &s.ThumbSmall, &s.ThumbMedium,
	); err != nil {
		return nil, err
	}
	s.SteamID = steamID.String
	s.SHA256 = sha256.String
	if takenAt.Valid {
		s.TakenAt = &takenAt.Int64
	}
	s.Favorite = favorite != 0
	return &s, nil
}

func (r *ScreenshotRepo) Create(ctx context.Context, s *model.Screenshot) error {
	data := map[string]interface{}{
		"game_id":      s.GameID,
		"filename":     s.Filename,
		"file_path":    s.FilePath,
		"source":       s.Source,
		"caption":      s.Caption,
		"width":        s.Width,
		"height":       s.Height,
		"format":       s.Format,
		"file_size":    s.FileSize,
		"taken_at":     s.TakenAt,
		"uploaded_at":  s.UploadedAt,
		"thumb_small":  s.ThumbSmall,
		"thumb_medium": s.ThumbMedium,
	}
	if s.SteamID != "" {
		data["steam_id"] = s.SteamID
	}
	if s.SHA256 != "" {
		data["sha256"] = s.SHA256
	}
	sqlStr, args, err := builder.BuildInsert("screenshots", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	s.ID, err = result.LastInsertId()
	return err
}

func (r *ScreenshotRepo) Get(ctx context.Context, id int64) (*model.Screenshot, error) {
	sqlStr, args, err := builder.BuildSelect("screenshots", map[string]interface{}{"id": id}, screenshotColumns)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	s, err := scanScreenshot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *ScreenshotRepo) ListByGame(ctx context.Context, gameID int64, offset, limit uint) ([]*model.Screenshot, error) {
	where := map[string]interface{}{
		"game_id":  gameID,
		"_orderby": "COALESCE(taken_at, uploaded_at) desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("screenshots", where, screenshotColumns)
	if err != nil {
		return nil, err
	}
	return r.queryMany(ctx, sqlStr, args)
}

func (r *ScreenshotRepo) CountByGame(ctx context.Context, gameID int64) (int, error) {
	sqlStr, args, err := builder.BuildSelect("screenshots", map[string]interface{}{"game_id": gameID}, []string{"count(*)"})
	if err != nil {
		return 0, err
	}
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ScreenshotRepo) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	sqlStr, args, err := builder.BuildUpdate("screenshots", map[string]interface{}{"id": id}, fields)
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

func (r *ScreenshotRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildDelete("screenshots", map[string]interface{}{"id": id})
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

// ExistsBySteamID reports whether a screenshot with this external id has
// already been imported.
func (r *ScreenshotRepo) ExistsBySteamID(ctx context.Context, steamID string) (bool, error) {
	sqlStr, args, err := builder.BuildSelect("screenshots", map[string]interface{}{"steam_id": steamID}, []string{"1"})
	if err != nil {
		return false, err
	}
	var one int
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindByHash returns the existing screenshot with identical content, if any.
// Two sessions importing the same bytes concurrently can both see nil here
// before either writes; that race is accepted.
func (r *ScreenshotRepo) FindByHash(ctx context.Context, sha256 string) (*model.Screenshot, error) {
	sqlStr, args, err := builder.BuildSelect("screenshots", map[string]interface{}{"sha256": sha256}, screenshotColumns)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	s, err := scanScreenshot(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ExistingHashes returns the subset of the given hashes already persisted,
// chunking the IN() query to respect sqlite's bound-variable limit.
func (r *ScreenshotRepo) ExistingHashes(ctx context.Context, hashes []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	for start := 0; start < len(hashes); start += hashChunkSize {
		end := start + hashChunkSize
		if end > len(hashes) {
			end = len(hashes)
		}
		chunk := make([]interface{}, 0, end-start)
		for _, hash := range hashes[start:end] {
			chunk = append(chunk, hash)
		}
		where := map[string]interface{}{"sha256 in": chunk}
		sqlStr, args, err := builder.BuildSelect("screenshots", where, []string{"sha256"})
		if err != nil {
			return nil, err
		}
		rows, err := r.db.QueryContext(ctx, sqlStr, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var hash string
			if err := rows.Scan(&hash); err != nil {
				rows.Close()
				return nil, err
			}
			existing[hash] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return existing, nil
}

func (r *ScreenshotRepo) queryMany(ctx context.Context, sqlStr string, args []interface{}) ([]*model.Screenshot, error) {
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shots := make([]*model.Screenshot, 0)
	for rows.Next() {
		s, err := scanScreenshot(rows.Scan)
		if err != nil {
			return nil, err
		}
		shots = append(shots, s)
	}
	return shots, rows.Err()
}
