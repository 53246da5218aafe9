package service

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/library"
	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/repo"
)

type GameService struct {
	games *repo.GameRepo
	shots *repo.ScreenshotRepo
	fts   *repo.FTSRepo
	store filestore.Store
}

func NewGameService(games *repo.GameRepo, shots *repo.ScreenshotRepo, fts *repo.FTSRepo, store filestore.Store) *GameService {
	return &GameService{games: games, shots: shots, fts: fts, store: store}
}

func (s *GameService) List(ctx context.Context, sortBy string) ([]*model.Game, error) {
	return s.games.List(ctx, sortBy)
}

// ListPublic lists the games visible in the unauthenticated gallery.
func (s *GameService) ListPublic(ctx context.Context, sortBy string) ([]*model.Game, error) {
	return s.games.ListPublic(ctx, sortBy)
}

// GetPublic fetches one gallery game. A private game reads as absent so the
// public surface never confirms its existence.
func (s *GameService) GetPublic(ctx context.Context, id int64) (*model.Game, error) {
	game, err := s.games.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !game.IsPublic {
		return nil, appErr.ErrNotFound
	}
	return game, nil
}

func (s *GameService) Get(ctx context.Context, id int64) (*model.Game, error) {
	return s.games.Get(ctx, id)
}

// GetOrCreateSteamGame finds the game for a Steam app id, creating it with
// its library folder on first sight. Lookup falls back to the name so a
// manually created game adopts the app id on first import.
func (s *GameService) GetOrCreateSteamGame(ctx context.Context, appID int64, name string) (*model.Game, error) {
	game, err := s.games.GetBySteamAppID(ctx, appID)
	if err == nil {
		return game, nil
	}
	if !appErr.IsNotFound(err) {
		return nil, err
	}
	game, err = s.games.GetByName(ctx, name)
	if err == nil {
		if game.SteamAppID == nil {
			if err := s.games.Update(ctx, game.ID, map[string]interface{}{"steam_app_id": appID}); err != nil {
				return nil, err
			}
			game.SteamAppID = &appID
		}
		return game, nil
	}
	if !appErr.IsNotFound(err) {
		return nil, err
	}
	game = &model.Game{
		Name:       name,
		FolderName: library.GameFolder(name, &appID),
		SteamAppID: &appID,
		IsPublic:   true,
	}
	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// CreateManual adds a game without a Steam association, for hand-uploaded
// screenshots.
func (s *GameService) CreateManual(ctx context.Context, name string) (*model.Game, error) {
	if name == "" {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.games.GetByName(ctx, name); err == nil {
		return nil, appErr.ErrConflict
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}
	game := &model.Game{
		Name:       name,
		FolderName: library.GameFolder(name, nil),
		IsPublic:   true,
	}
	if err := s.games.Create(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

func (s *GameService) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.Game, error) {
	if err := s.games.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.games.Get(ctx, id)
}

// Delete removes a game with its screenshots, annotations and files. File
// removal is best-effort; rows go first so a half-failed delete never leaves
// records pointing at missing files the user still sees.
func (s *GameService) Delete(ctx context.Context, id int64) error {
	game, err := s.games.Get(ctx, id)
	if err != nil {
		return err
	}
	shots, err := s.shots.ListByGame(ctx, id, 0, 0)
	if err != nil {
		return err
	}
	if err := s.games.Delete(ctx, id); err != nil {
		return err
	}
	logger := logutil.GetLogger(ctx).With(zap.Int64("game_id", id))
	for _, shot := range shots {
		_ = s.fts.Delete(ctx, shot.ID)
		removeScreenshotFiles(ctx, s.store, shot)
	}
	if game.CoverPath != "" {
		if err := s.store.Delete(ctx, game.CoverPath); err != nil {
			logger.Warn("delete cover failed", zap.Error(err))
		}
	}
	return nil
}

func (s *GameService) RecomputeStats(ctx context.Context, id int64) error {
	return s.games.RecomputeStats(ctx, id)
}

func removeScreenshotFiles(ctx context.Context, store filestore.Store, shot *model.Screenshot) {
	logger := logutil.GetLogger(ctx).With(zap.Int64("screenshot_id", shot.ID))
	for _, key := range []string{shot.FilePath, shot.ThumbSmall, shot.ThumbMedium} {
		if key == "" {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logger.Warn("delete file failed", zap.String("key", key), zap.Error(err))
		}
	}
}
