package repo

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
)

func newTestDB(t *testing.T) *sql.DB {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, ApplyMigrations(db))
	// Migrations are idempotent and re-run on every boot.
	require.NoError(t, ApplyMigrations(db))
	return db
}

func createGame(t *testing.T, games *GameRepo, name string, appID int64) *model.Game {
	game := &model.Game{Name: name, FolderName: name}
	if appID > 0 {
		game.SteamAppID = &appID
	}
	require.NoError(t, games.Create(context.Background(), game))
	return game
}

func createScreenshot(t *testing.T, shots *ScreenshotRepo, gameID int64, mutate func(*model.Screenshot)) *model.Screenshot {
	s := &model.Screenshot{
		GameID:     gameID,
		Filename:   "shot.jpg",
		FilePath:   "g/screenshots/shot.jpg",
		Source:     model.SourceUpload,
		Format:     "jpg",
		UploadedAt: time.Now().Unix(),
	}
	if mutate != nil {
		mutate(s)
	}
	require.NoError(t, shots.Create(context.Background(), s))
	return s
}

func TestGameRepoCRUD(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	require.NotZero(t, game.ID)

	got, err := games.Get(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, "Dota 2", got.Name)
	require.NotNil(t, got.SteamAppID)
	require.EqualValues(t, 570, *got.SteamAppID)

	byApp, err := games.GetBySteamAppID(ctx, 570)
	require.NoError(t, err)
	require.Equal(t, game.ID, byApp.ID)

	byName, err := games.GetByName(ctx, "Dota 2")
	require.NoError(t, err)
	require.Equal(t, game.ID, byName.ID)

	require.NoError(t, games.Update(ctx, game.ID, map[string]interface{}{"developer": "Valve"}))
	got, err = games.Get(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, "Valve", got.Developer)

	require.NoError(t, games.Delete(ctx, game.ID))
	_, err = games.Get(ctx, game.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
	require.ErrorIs(t, games.Delete(ctx, game.ID), appErr.ErrNotFound)
}

func TestGameRepoListSorting(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	ctx := context.Background()

	a := createGame(t, games, "Alpha", 0)
	b := createGame(t, games, "Beta", 0)
	require.NoError(t, games.Update(ctx, a.ID, map[string]interface{}{"screenshot_count": 1}))
	require.NoError(t, games.Update(ctx, b.ID, map[string]interface{}{"screenshot_count": 5}))

	byName, err := games.List(ctx, "name")
	require.NoError(t, err)
	require.Equal(t, "Alpha", byName[0].Name)

	byCount, err := games.List(ctx, "count")
	require.NoError(t, err)
	require.Equal(t, "Beta", byCount[0].Name)
}

func TestGameRepoRecomputeStats(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	shots := NewScreenshotRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	taken := int64(1700000000)
	createScreenshot(t, shots, game.ID, func(s *model.Screenshot) {
		s.TakenAt = &taken
		s.UploadedAt = 1800000000
	})
	createScreenshot(t, shots, game.ID, func(s *model.Screenshot) {
		s.UploadedAt = 1750000000
	})

	require.NoError(t, games.RecomputeStats(ctx, game.ID))
	got, err := games.Get(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.ScreenshotCount)
	require.NotNil(t, got.FirstTakenAt)
	require.EqualValues(t, 1700000000, *got.FirstTakenAt)
	require.EqualValues(t, 1750000000, *got.LastTakenAt)
}

func TestScreenshotRepoDedupGate(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	shots := NewScreenshotRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	createScreenshot(t, shots, game.ID, func(s *model.Screenshot) {
		s.SteamID = "1001"
		s.SHA256 = "aaa"
	})

	exists, err := shots.ExistsBySteamID(ctx, "1001")
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = shots.ExistsBySteamID(ctx, "9999")
	require.NoError(t, err)
	require.False(t, exists)

	found, err := shots.FindByHash(ctx, "aaa")
	require.NoError(t, err)
	require.NotNil(t, found)
	found, err = shots.FindByHash(ctx, "bbb")
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestScreenshotRepoExistingHashesChunks(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	shots := NewScreenshotRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	stored := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		hash := fmt.Sprintf("hash-%04d", i)
		stored = append(stored, hash)
		createScreenshot(t, shots, game.ID, func(s *model.Screenshot) {
			s.SHA256 = hash
			s.SteamID = fmt.Sprintf("%d", 1000+i)
		})
	}

	// Query with more candidates than one chunk holds.
	candidates := make([]string, 0, hashChunkSize+10)
	candidates = append(candidates, stored...)
	for i := 0; i < hashChunkSize+5; i++ {
		candidates = append(candidates, fmt.Sprintf("missing-%05d", i))
	}
	existing, err := shots.ExistingHashes(ctx, candidates)
	require.NoError(t, err)
	require.Len(t, existing, 3)
	for _, hash := range stored {
		require.Contains(t, existing, hash)
	}
}

func TestScreenshotRepoEmptySteamIDStoredAsNull(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	shots := NewScreenshotRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	createScreenshot(t, shots, game.ID, nil)
	createScreenshot(t, shots, game.ID, func(s *model.Screenshot) { s.FilePath = "g/screenshots/other.jpg" })

	// Uploads carry no steam id; they must never satisfy the dedup probe.
	exists, err := shots.ExistsBySteamID(ctx, "")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestImportSessionRepoLifecycle(t *testing.T) {
	db := newTestDB(t)
	sessions := NewImportSessionRepo(db)
	ctx := context.Background()

	require.NoError(t, sessions.Create(ctx, "s1", "tester"))
	session, err := sessions.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, model.ImportStatusPending, session.Status)
	require.Empty(t, session.ErrorLog)
	require.False(t, session.Terminal())

	require.NoError(t, sessions.Update(ctx, "s1", map[string]interface{}{
		"status":                model.ImportStatusRunning,
		"completed_screenshots": 7,
	}))
	session, err = sessions.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, model.ImportStatusRunning, session.Status)
	require.Equal(t, 7, session.CompletedScreenshots)

	require.NoError(t, sessions.AppendError(ctx, "s1", "first"))
	require.NoError(t, sessions.AppendError(ctx, "s1", "second"))
	session, err = sessions.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, session.ErrorLog)

	_, err = sessions.Get(ctx, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestImportSessionRepoListStale(t *testing.T) {
	db := newTestDB(t)
	sessions := NewImportSessionRepo(db)
	ctx := context.Background()

	require.NoError(t, sessions.Create(ctx, "old-running", "tester"))
	require.NoError(t, sessions.Create(ctx, "old-done", "tester"))
	require.NoError(t, sessions.Create(ctx, "fresh", "tester"))

	past := time.Now().Add(-48 * time.Hour).Unix()
	_, err := db.Exec("UPDATE import_sessions SET ctime = ? WHERE id IN ('old-running', 'old-done')", past)
	require.NoError(t, err)
	require.NoError(t, sessions.Update(ctx, "old-done", map[string]interface{}{"status": model.ImportStatusCompleted}))

	stale, err := sessions.ListStale(ctx, time.Now().Add(-24*time.Hour).Unix())
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Equal(t, "old-running", stale[0].ID)
}

func TestAnnotationRepoUpsert(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	shots := NewScreenshotRepo(db)
	annotations := NewAnnotationRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	shot := createScreenshot(t, shots, game.ID, nil)

	first, err := annotations.Upsert(ctx, shot.ID, "Title", "Body")
	require.NoError(t, err)
	require.Equal(t, "Title", first.Title)

	second, err := annotations.Upsert(ctx, shot.ID, "Title 2", "Body 2")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Title 2", second.Title)

	require.NoError(t, annotations.Delete(ctx, shot.ID))
	_, err = annotations.GetByScreenshot(ctx, shot.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestShareRepo(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	shots := NewScreenshotRepo(db)
	shares := NewShareRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	shot := createScreenshot(t, shots, game.ID, nil)

	link := &model.ShareLink{ScreenshotID: shot.ID, Token: "tok"}
	require.NoError(t, shares.Create(ctx, link))

	got, err := shares.GetByToken(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, shot.ID, got.ScreenshotID)
	require.Nil(t, got.ExpiresAt)

	require.NoError(t, shares.Delete(ctx, link.ID))
	_, err = shares.GetByToken(ctx, "tok")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestSettingsRepo(t *testing.T) {
	db := newTestDB(t)
	settings := NewSettingsRepo(db)
	ctx := context.Background()

	_, err := settings.Get(ctx, "missing")
	require.ErrorIs(t, err, appErr.ErrNotFound)

	require.NoError(t, settings.Set(ctx, "key", "v1"))
	require.NoError(t, settings.Set(ctx, "key", "v2"))
	value, err := settings.Get(ctx, "key")
	require.NoError(t, err)
	require.Equal(t, "v2", value)

	require.NoError(t, settings.Delete(ctx, "key"))
	_, err = settings.Get(ctx, "key")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestFTSSearch(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	shots := NewScreenshotRepo(db)
	fts := NewFTSRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	annotated := createScreenshot(t, shots, game.ID, func(s *model.Screenshot) {
		s.Caption = "mid lane"
		s.SteamID = "1"
		s.FilePath = "a"
	})
	other := createScreenshot(t, shots, game.ID, func(s *model.Screenshot) {
		s.SteamID = "2"
		s.FilePath = "b"
	})
	require.NoError(t, fts.Upsert(ctx, annotated.ID, game.Name, annotated.Filename, annotated.Caption, "Roshan timing notes"))
	require.NoError(t, fts.Upsert(ctx, other.ID, game.Name, other.Filename, "", ""))

	// Game name matches both; bm25 ordering is exercised, not asserted.
	results, total, err := fts.Search(ctx, "dota", SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, results, 2)

	// Annotation text matches only the annotated one.
	results, total, err = fts.Search(ctx, "roshan", SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, annotated.ID, results[0].ID)

	// Prefix matching on the final term.
	_, total, err = fts.Search(ctx, "rosh", SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)

	// Operator characters are neutralized, not executed.
	_, _, err = fts.Search(ctx, `"mid AND OR NOT (lane)*`, SearchFilter{})
	require.NoError(t, err)

	require.NoError(t, fts.Delete(ctx, annotated.ID))
	_, total, err = fts.Search(ctx, "roshan", SearchFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestFTSListFilteredAndFilters(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	shots := NewScreenshotRepo(db)
	fts := NewFTSRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	otherGame := createGame(t, games, "Team Fortress 2", 440)

	early := int64(1700000000)
	late := int64(1800000000)
	favorite := createScreenshot(t, shots, game.ID, func(s *model.Screenshot) {
		s.TakenAt = &early
		s.SteamID = "1"
		s.FilePath = "a"
	})
	require.NoError(t, shots.Update(ctx, favorite.ID, map[string]interface{}{"favorite": 1}))
	createScreenshot(t, shots, otherGame.ID, func(s *model.Screenshot) {
		s.TakenAt = &late
		s.SteamID = "2"
		s.FilePath = "b"
	})

	all, total, err := fts.ListFiltered(ctx, SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, all, 2)
	// Newest first.
	require.Equal(t, "2", all[0].SteamID)

	byGame, total, err := fts.ListFiltered(ctx, SearchFilter{GameID: &game.ID})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, favorite.ID, byGame[0].ID)

	favs, total, err := fts.ListFiltered(ctx, SearchFilter{FavoritesOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, favorite.ID, favs[0].ID)

	cutoff := int64(1750000000)
	recent, total, err := fts.ListFiltered(ctx, SearchFilter{DateFrom: &cutoff})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "2", recent[0].SteamID)

	paged, total, err := fts.ListFiltered(ctx, SearchFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, paged, 1)
}

func TestTimelineQueries(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	shots := NewScreenshotRepo(db)
	ctx := context.Background()

	game := createGame(t, games, "Dota 2", 570)
	day1a := time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC).Unix()
	day1b := time.Date(2024, 7, 15, 22, 0, 0, 0, time.UTC).Unix()
	day2 := time.Date(2024, 7, 16, 8, 0, 0, 0, time.UTC).Unix()
	for i, taken := range []int64{day1a, day1b, day2} {
		captured := taken
		createScreenshot(t, shots, game.ID, func(s *model.Screenshot) {
			s.TakenAt = &captured
			s.SteamID = fmt.Sprintf("%d", i+1)
			s.FilePath = fmt.Sprintf("p%d", i)
		})
	}

	days, err := shots.CountByDay(ctx, SearchFilter{})
	require.NoError(t, err)
	require.Len(t, days, 2)
	require.Equal(t, "2024-07-16", days[0].Date)
	require.Equal(t, 1, days[0].Count)
	require.Equal(t, "2024-07-15", days[1].Date)
	require.Equal(t, 2, days[1].Count)

	shotsOfDay, err := shots.ListByDay(ctx, "2024-07-15", SearchFilter{})
	require.NoError(t, err)
	require.Len(t, shotsOfDay, 2)
	// Newest of the day first.
	require.Equal(t, "2", shotsOfDay[0].SteamID)
}

func TestGameRepoListPublic(t *testing.T) {
	db := newTestDB(t)
	games := NewGameRepo(db)
	ctx := context.Background()

	pub := &model.Game{Name: "Outer Wilds", FolderName: "outer-wilds", IsPublic: true}
	require.NoError(t, games.Create(ctx, pub))
	priv := &model.Game{Name: "Secret Project", FolderName: "secret-project"}
	require.NoError(t, games.Create(ctx, priv))

	listed, err := games.ListPublic(ctx, "name")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, pub.ID, listed[0].ID)
	require.True(t, listed[0].IsPublic)

	// Flipping the flag moves a game between the two surfaces.
	require.NoError(t, games.Update(ctx, priv.ID, map[string]interface{}{"is_public": true}))
	require.NoError(t, games.Update(ctx, pub.ID, map[string]interface{}{"is_public": false}))
	listed, err = games.ListPublic(ctx, "name")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, priv.ID, listed[0].ID)
}
