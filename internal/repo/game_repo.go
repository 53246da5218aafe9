package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
)

type GameRepo struct {
	db *sql.DB
}

func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

var gameColumns = []string{
	"id", "name", "folder_name", "steam_app_id", "description", "developer",
	"publisher", "release_date", "genres", "cover_path", "is_public",
	"screenshot_count", "first_taken_at", "last_taken_at", "ctime", "mtime",
}

func scanGame(scan func(dest ...interface{}) error) (*model.Game, error) {
	var g model.Game
	var appID, firstTaken, lastTaken sql.NullInt64
	if err := scan(
		&g.ID, &g.Name, &g.FolderName, &appID, &g.Description, &g.Developer,
		&g.Publisher, &g.ReleaseDate, &g.Genres, &g.CoverPath, &g.IsPublic,
		&g.ScreenshotCount, &firstTaken, &lastTaken, &g.Ctime, &g.Mtime,
	); err != nil {
		return nil, err
	}
	if appID.Valid {
		g.SteamAppID = &appID.Int64
	}
	if firstTaken.Valid {
		g.FirstTakenAt = &firstTaken.Int64
	}
	if lastTaken.Valid {
		g.LastTakenAt = &lastTaken.Int64
	}
	return &g, nil
}

func (r *GameRepo) Create(ctx context.Context, game *model.Game) error {
	now := time.Now().Unix()
	game.Ctime = now
	game.Mtime = now
	data := map[string]interface{}{
		"name":         game.Name,
		"folder_name":  game.FolderName,
		"steam_app_id": game.SteamAppID,
		"description":  game.Description,
		"developer":    game.Developer,
		"publisher":    game.Publisher,
		"release_date": game.ReleaseDate,
		"genres":       game.Genres,
		"cover_path":   game.CoverPath,
		"is_public":    game.IsPublic,
		"ctime":        game.Ctime,
		"mtime":        game.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("games", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	game.ID, err = result.LastInsertId()
	return err
}

func (r *GameRepo) Get(ctx context.Context, id int64) (*model.Game, error) {
	return r.getWhere(ctx, map[string]interface{}{"id": id})
}

func (r *GameRepo) GetByName(ctx context.Context, name string) (*model.Game, error) {
	return r.getWhere(ctx, map[string]interface{}{"name": name})
}

func (r *GameRepo) GetBySteamAppID(ctx context.Context, appID int64) (*model.Game, error) {
	return r.getWhere(ctx, map[string]interface{}{"steam_app_id": appID})
}

func (r *GameRepo) getWhere(ctx context.Context, where map[string]interface{}) (*model.Game, error) {
	sqlStr, args, err := builder.BuildSelect("games", where, gameColumns)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	game, err := scanGame(row.Scan)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (r *GameRepo) List(ctx context.Context, sortBy string) ([]*model.Game, error) {
	order := map[string]string{
		"name":  "name asc",
		"date":  "last_taken_at desc",
		"count": "screenshot_count desc",
	}[sortBy]
	if order == "" {
		order = "name asc"
	}
	where := map[string]interface{}{"_orderby": order}
	sqlStr, args, err := builder.BuildSelect("games", where, gameColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	games := make([]*model.Game, 0)
	for rows.Next() {
		game, err := scanGame(rows.Scan)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// ListPublic lists only games opted into the unauthenticated gallery.
func (r *GameRepo) ListPublic(ctx context.Context, sortBy string) ([]*model.Game, error) {
	order := map[string]string{
		"name":  "name asc",
		"date":  "last_taken_at desc",
		"count": "screenshot_count desc",
	}[sortBy]
	if order == "" {
		order = "name asc"
	}
	where := map[string]interface{}{"is_public": 1, "_orderby": order}
	sqlStr, args, err := builder.BuildSelect("games", where, gameColumns)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	games := make([]*model.Game, 0)
	for rows.Next() {
		game, err := scanGame(rows.Scan)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

// Update writes only the provided fields; mtime is always refreshed.
func (r *GameRepo) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["mtime"] = time.Now().Unix()
	sqlStr, args, err := builder.BuildUpdate("games", map[string]interface{}{"id": id}, fields)
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

func (r *GameRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildDelete("games", map[string]interface{}{"id": id})
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

// RecomputeStats refreshes the denormalized screenshot counters from the
// screenshots table.
func (r *GameRepo) RecomputeStats(ctx context.Context, id int64) error {
	const query = `
		UPDATE games SET
			screenshot_count = (SELECT COUNT(*) FROM screenshots WHERE game_id = games.id),
			first_taken_at = (SELECT MIN(COALESCE(taken_at, uploaded_at)) FROM screenshots WHERE game_id = games.id),
			last_taken_at = (SELECT MAX(COALESCE(taken_at, uploaded_at)) FROM screenshots WHERE game_id = games.id),
			mtime = ?
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, time.Now().Unix(), id)
	return err
}
