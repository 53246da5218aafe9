package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
)

type AnnotationRepo struct {
	db *sql.DB
}

func NewAnnotationRepo(db *sql.DB) *AnnotationRepo {
	return &AnnotationRepo{db: db}
}

var annotationColumns = []string{"id", "screenshot_id", "title", "content", "ctime", "mtime"}

func (r *AnnotationRepo) GetByScreenshot(ctx context.Context, screenshotID int64) (*model.Annotation, error) {
	sqlStr, args, err := builder.BuildSelect("annotations", map[string]interface{}{"screenshot_id": screenshotID}, annotationColumns)
	if err != nil {
		return nil, err
	}
	var a model.Annotation
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	err = row.Scan(&a.ID, &a.ScreenshotID, &a.Title, &a.Content, &a.Ctime, &a.Mtime)
	if err == sql.ErrNoRows {
		return nil, appErr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Upsert creates or replaces the single annotation attached to a screenshot.
func (r *AnnotationRepo) Upsert(ctx context.Context, screenshotID int64, title, content string) (*model.Annotation, error) {
	now := time.Now().Unix()
	const query = `
		INSERT INTO annotations (screenshot_id, title, content, ctime, mtime)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(screenshot_id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			mtime = excluded.mtime`
	if _, err := r.db.ExecContext(ctx, query, screenshotID, title, content, now, now); err != nil {
		return nil, err
	}
	return r.GetByScreenshot(ctx, screenshotID)
}

func (r *AnnotationRepo) Delete(ctx context.Context, screenshotID int64) error {
	sqlStr, args, err := builder.BuildDelete("annotations", map[string]interface{}{"screenshot_id": screenshotID})
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
