package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/repo"
)

func uploadShot(t *testing.T, f *fixture, gameName, filename string) *model.Screenshot {
	ctx := context.Background()
	game, err := f.gameService.GetOrCreateSteamGame(ctx, int64(len(gameName))+1000, gameName)
	require.NoError(t, err)
	shot, err := f.uploadService.Upload(ctx, game.ID, filename, testJPEG(t, 64+len(filename), 48))
	require.NoError(t, err)
	return shot
}

func searchTotal(t *testing.T, f *fixture, query string) int {
	result, err := f.searchService.Search(context.Background(), query, repo.SearchFilter{})
	require.NoError(t, err)
	return result.Total
}

func TestSetFavorite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shot := uploadShot(t, f, "Hades", "boons.jpg")

	updated, err := f.screenshotService.SetFavorite(ctx, shot.ID, true)
	require.NoError(t, err)
	require.True(t, updated.Favorite)

	updated, err = f.screenshotService.SetFavorite(ctx, shot.ID, false)
	require.NoError(t, err)
	require.False(t, updated.Favorite)

	_, err = f.screenshotService.SetFavorite(ctx, 99999, true)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestSetCaptionSyncsSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shot := uploadShot(t, f, "Hades", "boons.jpg")

	require.Zero(t, searchTotal(t, f, "zagreus"))

	updated, err := f.screenshotService.SetCaption(ctx, shot.ID, "zagreus escape attempt")
	require.NoError(t, err)
	require.Equal(t, "zagreus escape attempt", updated.Caption)
	require.Equal(t, 1, searchTotal(t, f, "zagreus"))

	_, err = f.screenshotService.SetCaption(ctx, shot.ID, "")
	require.NoError(t, err)
	require.Zero(t, searchTotal(t, f, "zagreus"))
}

func TestAnnotationSyncsSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shot := uploadShot(t, f, "Hades", "boons.jpg")

	_, err := f.screenshotService.GetAnnotation(ctx, shot.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	ann, err := f.screenshotService.Annotate(ctx, shot.ID, "Build notes", "Stacked poseidon boons this run")
	require.NoError(t, err)
	require.Equal(t, "Build notes", ann.Title)
	require.Equal(t, 1, searchTotal(t, f, "poseidon"))

	// Upsert replaces, never duplicates.
	again, err := f.screenshotService.Annotate(ctx, shot.ID, "Build notes", "Switched to artemis")
	require.NoError(t, err)
	require.Equal(t, ann.ID, again.ID)
	require.Zero(t, searchTotal(t, f, "poseidon"))
	require.Equal(t, 1, searchTotal(t, f, "artemis"))

	require.NoError(t, f.screenshotService.DeleteAnnotation(ctx, shot.ID))
	require.Zero(t, searchTotal(t, f, "artemis"))
	_, err = f.screenshotService.GetAnnotation(ctx, shot.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestScreenshotDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shot := uploadShot(t, f, "Hades", "boons.jpg")

	require.NoError(t, f.screenshotService.Delete(ctx, shot.ID))

	_, err := f.screenshotService.Get(ctx, shot.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = f.store.Open(ctx, shot.FilePath)
	require.Error(t, err)
	require.Zero(t, searchTotal(t, f, "boons"))

	require.ErrorIs(t, f.screenshotService.Delete(ctx, shot.ID), appErr.ErrNotFound)
}

func TestListByGamePagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	game, err := f.gameService.CreateManual(ctx, "Hades")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := f.uploadService.Upload(ctx, game.ID, "run.jpg", testJPEG(t, 100+i, 50))
		require.NoError(t, err)
	}

	shots, total, err := f.screenshotService.ListByGame(ctx, game.ID, 0, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, shots, 2)

	rest, total, err := f.screenshotService.ListByGame(ctx, game.ID, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, rest, 1)
}
