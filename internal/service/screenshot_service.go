package service

import (
	"context"

	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/model"
	"github.com/gamevault/gamevault/internal/repo"
)

type ScreenshotService struct {
	shots       *repo.ScreenshotRepo
	games       *repo.GameRepo
	annotations *repo.AnnotationRepo
	fts         *repo.FTSRepo
	store       filestore.Store
}

func NewScreenshotService(
	shots *repo.ScreenshotRepo,
	games *repo.GameRepo,
	annotations *repo.AnnotationRepo,
	fts *repo.FTSRepo,
	store filestore.Store,
) *ScreenshotService {
	return &ScreenshotService{
		shots:       shots,
		games:       games,
		annotations: annotations,
		fts:         fts,
		store:       store,
	}
}

func (s *ScreenshotService) Get(ctx context.Context, id int64) (*model.Screenshot, error) {
	return s.shots.Get(ctx, id)
}

func (s *ScreenshotService) ListByGame(ctx context.Context, gameID int64, offset, limit uint) ([]*model.Screenshot, int, error) {
	shots, err := s.shots.ListByGame(ctx, gameID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.shots.CountByGame(ctx, gameID)
	if err != nil {
		return nil, 0, err
	}
	return shots, total, nil
}

func (s *ScreenshotService) SetFavorite(ctx context.Context, id int64, favorite bool) (*model.Screenshot, error) {
	value := 0
	if favorite {
		value = 1
	}
	if err := s.shots.Update(ctx, id, map[string]interface{}{"favorite": value}); err != nil {
		return nil, err
	}
	return s.shots.Get(ctx, id)
}

func (s *ScreenshotService) SetCaption(ctx context.Context, id int64, caption string) (*model.Screenshot, error) {
	if err := s.shots.Update(ctx, id, map[string]interface{}{"caption": caption}); err != nil {
		return nil, err
	}
	shot, err := s.shots.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.syncFTS(ctx, shot); err != nil {
		return nil, err
	}
	return shot, nil
}

// Delete removes the record, its search row and its files, then refreshes
// the owning game's counters.
func (s *ScreenshotService) Delete(ctx context.Context, id int64) error {
	shot, err := s.shots.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.shots.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.fts.Delete(ctx, id)
	removeScreenshotFiles(ctx, s.store, shot)
	return s.games.RecomputeStats(ctx, shot.GameID)
}

func (s *ScreenshotService) GetAnnotation(ctx context.Context, screenshotID int64) (*model.Annotation, error) {
	if _, err := s.shots.Get(ctx, screenshotID); err != nil {
		return nil, err
	}
	return s.annotations.GetByScreenshot(ctx, screenshotID)
}

// Annotate attaches or replaces the screenshot's markdown annotation and
// refreshes the search index, which weights annotation text highest.
func (s *ScreenshotService) Annotate(ctx context.Context, screenshotID int64, title, content string) (*model.Annotation, error) {
	shot, err := s.shots.Get(ctx, screenshotID)
	if err != nil {
		return nil, err
	}
	annotation, err := s.annotations.Upsert(ctx, screenshotID, title, content)
	if err != nil {
		return nil, err
	}
	if err := s.syncFTS(ctx, shot); err != nil {
		return nil, err
	}
	return annotation, nil
}

func (s *ScreenshotService) DeleteAnnotation(ctx context.Context, screenshotID int64) error {
	shot, err := s.shots.Get(ctx, screenshotID)
	if err != nil {
		return err
	}
	if err := s.annotations.Delete(ctx, screenshotID); err != nil {
		return err
	}
	return s.syncFTS(ctx, shot)
}

// syncFTS rebuilds the screenshot's search row from its current caption,
// game name and annotation.
func (s *ScreenshotService) syncFTS(ctx context.Context, shot *model.Screenshot) error {
	gameName := ""
	if game, err := s.games.Get(ctx, shot.GameID); err == nil {
		gameName = game.Name
	}
	annotationText := ""
	if annotation, err := s.annotations.GetByScreenshot(ctx, shot.ID); err == nil {
		annotationText = annotation.Title + "\n" + annotation.Content
	}
	// Re-read the caption in case the caller mutated it just before.
	current, err := s.shots.Get(ctx, shot.ID)
	if err != nil {
		return err
	}
	return s.fts.Upsert(ctx, shot.ID, gameName, current.Filename, current.Caption, annotationText)
}

// IndexScreenshot publishes a freshly created screenshot to the search
// index. Used by both the importer and uploads.
func (s *ScreenshotService) IndexScreenshot(ctx context.Context, shot *model.Screenshot) error {
	return s.syncFTS(ctx, shot)
}
