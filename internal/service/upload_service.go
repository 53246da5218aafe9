package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/imaging"
	"github.com/gamevault/gamevault/internal/library"
	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/repo"
)

// UploadService handles manual screenshot uploads. Uploads share the
// content-hash dedup gate with Steam imports: identical bytes are rejected
// no matter how they arrived.
type UploadService struct {
	games       *repo.GameRepo
	shots       *repo.ScreenshotRepo
	screenshots *ScreenshotService
	store       filestore.Store
	quality     int
	maxBytes    int64
}

func NewUploadService(
	games *repo.GameRepo,
	shots *repo.ScreenshotRepo,
	screenshots *ScreenshotService,
	store filestore.Store,
	quality int,
	maxBytes int64,
) *UploadService {
	return &UploadService{
		games:       games,
		shots:       shots,
		screenshots: screenshots,
		store:       store,
		quality:     quality,
		maxBytes:    maxBytes,
	}
}

func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

func (s *UploadService) Upload(ctx context.Context, gameID int64, filename string, data []byte) (*model.Screenshot, error) {
	if len(data) == 0 {
		return nil, appErr.ErrInvalid
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", appErr.ErrInvalid, s.maxBytes)
	}
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}

	hash := imaging.SHA256Hex(data)
	if existing, err := s.shots.FindByHash(ctx, hash); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, appErr.ErrDuplicateImage
	}

	format := imaging.DetectFormat(data)
	if format == "" {
		return nil, fmt.Errorf("%w: unrecognized image format", appErr.ErrInvalid)
	}
	width, height := imaging.Dimensions(data)

	// Uploaded names are user-controlled; a random prefix keeps two uploads
	// named alike from colliding on the store.
	name := newToken()[:8] + "_" + library.SanitizeName(filename)
	shot := &model.Screenshot{
		GameID:     game.ID,
		Filename:   name,
		FilePath:   library.ScreenshotKey(game.FolderName, name),
		Source:     model.SourceUpload,
		SHA256:     hash,
		Width:      width,
		Height:     height,
		Format:     format,
		FileSize:   int64(len(data)),
		UploadedAt: time.Now().Unix(),
	}

	if err := filestore.SaveBytes(ctx, s.store, shot.FilePath, data); err != nil {
		return nil, fmt.Errorf("store screenshot: %w", err)
	}
	small, medium, err := imaging.Previews(data, s.quality)
	if err != nil {
		logutil.GetLogger(ctx).Warn("preview generation failed", zap.String("filename", name), zap.Error(err))
	} else {
		shot.ThumbSmall = library.ThumbnailKey(game.FolderName, name, imaging.PreviewSmall)
		shot.ThumbMedium = library.ThumbnailKey(game.FolderName, name, imaging.PreviewMedium)
		if err := filestore.SaveBytes(ctx, s.store, shot.ThumbSmall, small); err != nil {
			return nil, fmt.Errorf("store preview: %w", err)
		}
		if err := filestore.SaveBytes(ctx, s.store, shot.ThumbMedium, medium); err != nil {
			return nil, fmt.Errorf("store preview: %w", err)
		}
	}

	if err := s.shots.Create(ctx, shot); err != nil {
		return nil, err
	}
	if err := s.screenshots.IndexScreenshot(ctx, shot); err != nil {
		return nil, err
	}
	if err := s.games.RecomputeStats(ctx, game.ID); err != nil {
		return nil, err
	}
	return shot, nil
}
