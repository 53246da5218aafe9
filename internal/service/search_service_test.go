package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/repo"
)

func TestSearchEmptyQueryLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	uploadShot(t, f, "Hades", "run1.jpg")
	uploadShot(t, f, "Celeste", "summit.jpg")

	result, err := f.searchService.Search(ctx, "", repo.SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
	require.Len(t, result.Screenshots, 2)

	result, err = f.searchService.Search(ctx, "summit", repo.SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
}

func TestTimeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shot := uploadShot(t, f, "Hades", "run1.jpg")
	taken := int64(1721037600) // 2024-07-15 UTC
	require.NoError(t, f.shots.Update(ctx, shot.ID, map[string]interface{}{"taken_at": taken}))

	days, err := f.timelineService.Days(ctx, repo.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, days, 1)
	require.Equal(t, "2024-07-15", days[0].Date)
	require.Equal(t, 1, days[0].Count)

	shots, err := f.timelineService.Day(ctx, "2024-07-15", repo.SearchFilter{})
	require.NoError(t, err)
	require.Len(t, shots, 1)
	require.Equal(t, shot.ID, shots[0].ID)

	_, err = f.timelineService.Day(ctx, "15-07-2024", repo.SearchFilter{})
	require.ErrorIs(t, err, appErr.ErrInvalid)
	_, err = f.timelineService.Day(ctx, "2024-07-15'; DROP TABLE screenshots", repo.SearchFilter{})
	require.ErrorIs(t, err, appErr.ErrInvalid)
}
