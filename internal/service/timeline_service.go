package service

import (
	"context"
	"regexp"

	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/repo"
)

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// TimelineService groups the library by capture day for the calendar view.
type TimelineService struct {
	shots *repo.ScreenshotRepo
}

func NewTimelineService(shots *repo.ScreenshotRepo) *TimelineService {
	return &TimelineService{shots: shots}
}

func (s *TimelineService) Days(ctx context.Context, filter repo.SearchFilter) ([]model.TimelineDay, error) {
	return s.shots.CountByDay(ctx, filter)
}

func (s *TimelineService) Day(ctx context.Context, day string, filter repo.SearchFilter) ([]*model.Screenshot, error) {
	if !dayPattern.MatchString(day) {
		return nil, appErr.ErrInvalid
	}
	return s.shots.ListByDay(ctx, day, filter)
}
