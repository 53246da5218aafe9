package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
)

type ShareRepo struct {
	db *sql.DB
}

func NewShareRepo(db *sql.DB) *ShareRepo {
	return &ShareRepo{db: db}
}

var shareColumns = []string{"id", "screenshot_id", "token", "expires_at", "ctime"}

func scanShare(scan func(dest ...interface{}) error) (*model.ShareLink, error) {
	var link model.ShareLink
	var expiresAt sql.NullInt64
	if err := scan(&link.ID, &link.ScreenshotID, &link.Token, &expiresAt, &link.Ctime); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		link.ExpiresAt = &expiresAt.Int64
	}
	return &link, nil
}

func (r *ShareRepo) Create(ctx context.Context, link *model.ShareLink) error {
	link.Ctime = time.Now().Unix()
	data := map[string]interface{}{
		"screenshot_id": link.ScreenshotID,
		"token":         link.Token,
		"expires_at":    link.ExpiresAt,
		"ctime":         link.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("share_links", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	link.ID, err = result.LastInsertId()
	return err
}

func (r *ShareRepo) GetByToken(ctx context.Context, token string) (*model.ShareLink, error) {
	return r.getWhere(ctx, map[string]interface{}{"token": token})
}

func (r *ShareRepo) GetByScreenshot(ctx context.Context, screenshotID int64) (*model.ShareLink, error) {
	return r.getWhere(ctx, map[string]interface{}{"screenshot_id": screenshotID})
}

func (r *ShareRepo) getWhere(ctx context.Context, where map[string]interface{}) (*model.ShareLink, error) {
	sqlStr, args, err := builder.BuildSelect("share_links", where, shareColumns)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	link, err := scanShare(row.Scan)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

func (r *ShareRepo) Delete(ctx context.Context, id int64) error {
	sqlStr, args, err := builder.BuildDelete("share_links", map[string]interface{}{"id": id})
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
