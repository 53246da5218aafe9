package repo

import (
	"context"

	"github.com/gamevault/gamevault/internal/model"
)

// Timeline queries bucket screenshots by capture day, falling back to the
// upload time for shots with no capture time.

const effectiveDay = "date(COALESCE(taken_at, uploaded_at), 'unixepoch')"

func (r *ScreenshotRepo) CountByDay(ctx context.Context, filter SearchFilter) ([]model.TimelineDay, error) {
	base := " FROM screenshots s WHERE 1 = 1"
	args := []interface{}{}
	base, args = applySearchFilter(base, args, filter)

	sqlStr := "SELECT " + effectiveDay + " AS day, COUNT(*)" + base +
		" GROUP BY day ORDER BY day DESC"
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	days := make([]model.TimelineDay, 0)
	for rows.Next() {
		var day model.TimelineDay
		if err := rows.Scan(&day.Date, &day.Count); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (r *ScreenshotRepo) ListByDay(ctx context.Context, day string, filter SearchFilter) ([]*model.Screenshot, error) {
	base := " FROM screenshots s WHERE " + effectiveDay + " = ?"
	args := []interface{}{day}
	base, args = applySearchFilter(base, args, filter)

	sqlStr := "SELECT " + prefixedScreenshotColumns() + base +
		" ORDER BY COALESCE(taken_at, uploaded_at) DESC"
	return r.queryMany(ctx, sqlStr, args)
}
