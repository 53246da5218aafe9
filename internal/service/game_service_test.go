package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
)

func TestGetOrCreateSteamGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	game, err := f.gameService.GetOrCreateSteamGame(ctx, 570, "Dota 2")
	require.NoError(t, err)
	require.Equal(t, "Dota 2 (570)", game.FolderName)

	again, err := f.gameService.GetOrCreateSteamGame(ctx, 570, "Dota 2")
	require.NoError(t, err)
	require.Equal(t, game.ID, again.ID)
}

func TestGetOrCreateSteamGameAdoptsManualGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	manual, err := f.gameService.CreateManual(ctx, "Dota 2")
	require.NoError(t, err)
	require.Nil(t, manual.SteamAppID)

	// A later import of the same game by name attaches the app id instead
	// of creating a second library entry.
	adopted, err := f.gameService.GetOrCreateSteamGame(ctx, 570, "Dota 2")
	require.NoError(t, err)
	require.Equal(t, manual.ID, adopted.ID)
	require.NotNil(t, adopted.SteamAppID)
	require.EqualValues(t, 570, *adopted.SteamAppID)
}

func TestCreateManual(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.gameService.CreateManual(ctx, "")
	require.ErrorIs(t, err, appErr.ErrInvalid)

	game, err := f.gameService.CreateManual(ctx, "Factorio")
	require.NoError(t, err)
	require.Equal(t, "Factorio", game.FolderName)

	_, err = f.gameService.CreateManual(ctx, "Factorio")
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestGameDeleteRemovesEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	game, err := f.gameService.CreateManual(ctx, "Factorio")
	require.NoError(t, err)
	shot, err := f.uploadService.Upload(ctx, game.ID, "base.jpg", testJPEG(t, 64, 48))
	require.NoError(t, err)

	require.NoError(t, f.gameService.Delete(ctx, game.ID))

	_, err = f.gameService.Get(ctx, game.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	// Screenshot rows go with the game (cascade), files go best-effort.
	_, err = f.screenshotService.Get(ctx, shot.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	_, err = f.store.Open(ctx, shot.FilePath)
	require.Error(t, err)
}
