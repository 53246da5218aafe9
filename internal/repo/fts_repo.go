package repo

import (
	"context"
	"database/sql"
	"strings"
	"unicode"

	"github.com/gamevault/gamevault/internal/model"
)

// FTSRepo maintains and queries the screenshots_fts index. Row ids in the
// index mirror screenshot ids.
type FTSRepo struct {
	db *sql.DB
}

func NewFTSRepo(db *sql.DB) *FTSRepo {
	return &FTSRepo{db: db}
}

// SearchFilter narrows both MATCH searches and empty-query listings.
type SearchFilter struct {
	GameID        *int64
	DateFrom      *int64
	DateTo        *int64
	FavoritesOnly bool
	Sort          string // relevance | date
	Offset        uint
	Limit         uint
}

func (r *FTSRepo) Upsert(ctx context.Context, screenshotID int64, gameName, filename, caption, annotation string) error {
	_ = r.Delete(ctx, screenshotID)
	const query = `
		INSERT INTO screenshots_fts (rowid, game_name, filename, caption, annotation)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, screenshotID, gameName, filename, caption, annotation)
	return err
}

func (r *FTSRepo) Delete(ctx context.Context, screenshotID int64) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM screenshots_fts WHERE rowid = ?", screenshotID)
	return err
}

// Search runs an FTS5 MATCH with bm25 ranking. Column weights favor
// annotation text, then game name, then caption, then filename.
func (r *FTSRepo) Search(ctx context.Context, query string, filter SearchFilter) ([]*model.Screenshot, int, error) {
	cleaned := sanitizeFTSQuery(query)
	if cleaned == "" {
		return []*model.Screenshot{}, 0, nil
	}

	base := `
		FROM screenshots_fts fts
		JOIN screenshots s ON s.id = fts.rowid
		WHERE screenshots_fts MATCH ?`
	args := []interface{}{cleaned}
	base, args = applySearchFilter(base, args, filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY bm25(screenshots_fts, 5.0, 1.0, 3.0, 10.0)"
	if filter.Sort == "date" {
		order = " ORDER BY COALESCE(s.taken_at, s.uploaded_at) DESC"
	}
	sqlStr := "SELECT " + prefixedScreenshotColumns() + " " + base + order + " LIMIT ? OFFSET ?"
	args = append(args, limitOrDefault(filter.Limit), filter.Offset)

	shots, err := r.queryScreenshots(ctx, sqlStr, args)
	if err != nil {
		return nil, 0, err
	}
	return shots, total, nil
}

// ListFiltered is the empty-query path: a plain filtered listing with the
// same filter semantics as Search.
func (r *FTSRepo) ListFiltered(ctx context.Context, filter SearchFilter) ([]*model.Screenshot, int, error) {
	base := " FROM screenshots s WHERE 1 = 1"
	args := []interface{}{}
	base, args = applySearchFilter(base, args, filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sqlStr := "SELECT " + prefixedScreenshotColumns() + base +
		" ORDER BY COALESCE(s.taken_at, s.uploaded_at) DESC LIMIT ? OFFSET ?"
	args = append(args, limitOrDefault(filter.Limit), filter.Offset)

	shots, err := r.queryScreenshots(ctx, sqlStr, args)
	if err != nil {
		return nil, 0, err
	}
	return shots, total, nil
}

func applySearchFilter(base string, args []interface{}, filter SearchFilter) (string, []interface{}) {
	if filter.GameID != nil {
		base += " AND s.game_id = ?"
		args = append(args, *filter.GameID)
	}
	if filter.DateFrom != nil {
		base += " AND COALESCE(s.taken_at, s.uploaded_at) >= ?"
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		base += " AND COALESCE(s.taken_at, s.uploaded_at) <= ?"
		args = append(args, *filter.DateTo)
	}
	if filter.FavoritesOnly {
		base += " AND s.favorite = 1"
	}
	return base, args
}

func prefixedScreenshotColumns() string {
	cols := make([]string, 0, len(screenshotColumns))
	for _, col := range screenshotColumns {
		cols = append(cols, "s."+col)
	}
	return strings.Join(cols, ", ")
}

func limitOrDefault(limit uint) uint {
	if limit == 0 {
		return 50
	}
	return limit
}

func (r *FTSRepo) queryScreenshots(ctx context.Context, sqlStr string, args []interface{}) ([]*model.Screenshot, error) {
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

// sanitizeFTSQuery strips FTS5 operators and quotes terms, appending a
// prefix wildcard to the final term for as-you-type matching.
func sanitizeFTSQuery(query string) string {
	terms := strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(terms))
	for i, term := range terms {
		if i == len(terms)-1 {
			quoted = append(quoted, `"`+term+`"*`)
			continue
		}
		quoted = append(quoted, `"`+term+`"`)
	}
	return strings.Join(quoted, " ")
}
