package importer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/imaging"
	"github.com/gamevault/gamevault/internal/library"
	"github.com/gamevault/gamevault/internal/model"
	"github.com/gamevault/gamevault/internal/progress"
	"github.com/gamevault/gamevault/internal/steam"
)

func newSessionID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// run drives one import session from pending to a terminal status. It is
// the single writer of the session row; every exit path emits the done
// event so progress streams always terminate.
func (s *Service) run(ctx context.Context, sessionID string, req StartRequest) {
	logger := logutil.GetLogger(ctx).With(
		zap.String("session_id", sessionID),
		zap.String("steam_user_id", req.SteamUserID),
	)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("import panicked", zap.Any("panic", r))
			s.fail(ctx, sessionID, fmt.Sprintf("internal error: %v", r))
		}
		s.registry.Push(sessionID, progress.Done())
		s.release(sessionID)
	}()

	source := s.factory(steam.Options{
		UserID: req.SteamUserID,
		Credentials: steam.Credentials{
			SteamLoginSecure: req.SteamLoginSecure,
			SessionID:        req.SessionID,
			APIKey:           s.settings.EffectiveSteamAPIKey(ctx),
		},
		RateLimit: s.rateLimit,
	})

	startedAt := time.Now().Unix()
	if err := s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"status":     model.ImportStatusRunning,
		"started_at": startedAt,
	}); err != nil {
		logger.Error("mark session running failed", zap.Error(err))
		s.fail(ctx, sessionID, fmt.Sprintf("session store: %v", err))
		return
	}
	s.pushStatus(ctx, sessionID)

	profile, err := source.ValidateProfile(ctx)
	if err != nil {
		logger.Error("profile validation failed", zap.Error(err))
		s.fail(ctx, sessionID, fmt.Sprintf("profile validation failed: %v", err))
		return
	}
	logger.Info("profile validated", zap.String("persona", profile.Name))
	_ = s.settings.SetDefaultSteamUserID(ctx, req.SteamUserID)

	games, err := source.DiscoverGames(ctx, false)
	if err != nil {
		logger.Error("game discovery failed", zap.Error(err))
		s.fail(ctx, sessionID, fmt.Sprintf("game discovery failed: %v", err))
		return
	}
	if len(games) == 0 {
		s.fail(ctx, sessionID, "no games with screenshots found")
		return
	}
	games = filterGames(games, req.GameFilter)
	if len(games) == 0 {
		s.fail(ctx, sessionID, "no discovered games matched the filter")
		return
	}
	if err := s.sessions.Update(ctx, sessionID, map[string]interface{}{"total_games": len(games)}); err != nil {
		logger.Error("update totals failed", zap.Error(err))
		s.fail(ctx, sessionID, fmt.Sprintf("session store: %v", err))
		return
	}
	s.pushStatus(ctx, sessionID)

	counters := &sessionCounters{}
	for _, remote := range games {
		if s.registry.IsCancelled(sessionID) {
			s.finish(ctx, sessionID, model.ImportStatusCancelled)
			return
		}
		if err := s.importGame(ctx, sessionID, source, remote, req.FetchDetails, counters); err != nil {
			logger.Error("session store write failed", zap.Error(err))
			s.fail(ctx, sessionID, fmt.Sprintf("session store: %v", err))
			return
		}
		// A game aborted by cancellation gets no completion credit.
		if s.registry.IsCancelled(sessionID) {
			s.finish(ctx, sessionID, model.ImportStatusCancelled)
			return
		}
		counters.completedGames++
		if err := s.flushCounters(ctx, sessionID, counters); err != nil {
			s.fail(ctx, sessionID, fmt.Sprintf("session store: %v", err))
			return
		}
		s.registry.Push(sessionID, progress.Event{Kind: progress.KindGame, Data: map[string]interface{}{
			"app_id":    remote.AppID,
			"name":      remote.Name,
			"phase":     "complete",
			"completed": counters.completedGames,
			"total":     len(games),
		}})
	}

	status := model.ImportStatusCompleted
	if s.registry.IsCancelled(sessionID) {
		status = model.ImportStatusCancelled
	}
	s.finish(ctx, sessionID, status)
	logger.Info("import finished",
		zap.String("status", status),
		zap.Int("games", counters.completedGames),
		zap.Int("imported", counters.completed),
		zap.Int("skipped", counters.skipped),
		zap.Int("failed", counters.failed),
	)
}

type sessionCounters struct {
	completedGames int
	total          int
	completed      int
	skipped        int
	failed         int
}

// importGame imports every screenshot of one title. Listing failure logs
// against the session and moves on; one bad game never aborts the run. A
// non-nil return means the session store rejected a write, which does.
func (s *Service) importGame(
	ctx context.Context,
	sessionID string,
	source steam.Source,
	remote steam.Game,
	fetchDetails bool,
	counters *sessionCounters,
) error {
	logger := logutil.GetLogger(ctx).With(
		zap.String("session_id", sessionID),
		zap.Int64("app_id", remote.AppID),
		zap.String("game", remote.Name),
	)
	s.registry.Push(sessionID, progress.Event{Kind: progress.KindGame, Data: map[string]interface{}{
		"app_id": remote.AppID,
		"name":   remote.Name,
		"phase":  "start",
	}})
	shots, err := source.ListScreenshots(ctx, remote.AppID)
	if err != nil {
		logger.Error("list screenshots failed", zap.Error(err))
		return s.logError(ctx, sessionID, fmt.Sprintf("%s: listing screenshots failed: %v", remote.Name, err))
	}
	counters.total += len(shots)
	if err := s.flushCounters(ctx, sessionID, counters); err != nil {
		return err
	}
	if len(shots) == 0 {
		return nil
	}

	game, err := s.games.GetOrCreateSteamGame(ctx, remote.AppID, remote.Name)
	if err != nil {
		logger.Error("get or create game failed", zap.Error(err))
		return s.logError(ctx, sessionID, fmt.Sprintf("%s: creating game failed: %v", remote.Name, err))
	}

	for _, shot := range shots {
		if s.registry.IsCancelled(sessionID) {
			return nil
		}
		outcome, err := s.importScreenshot(ctx, source, game, shot, fetchDetails)
		result, reason := outcome.label()
		switch {
		case err != nil:
			counters.failed++
			result, reason = "failed", err.Error()
			logger.Warn("screenshot import failed", zap.String("steam_id", shot.ID), zap.Error(err))
			if err := s.logError(ctx, sessionID, fmt.Sprintf("%s: screenshot %s: %v", remote.Name, shot.ID, err)); err != nil {
				return err
			}
		case outcome.skipped():
			counters.skipped++
		default:
			counters.completed++
		}
		if err := s.flushCounters(ctx, sessionID, counters); err != nil {
			return err
		}
		s.registry.Push(sessionID, progress.Event{Kind: progress.KindScreenshot, Data: map[string]interface{}{
			"steam_id":  shot.ID,
			"game":      remote.Name,
			"outcome":   result,
			"reason":    reason,
			"completed": counters.completed,
			"skipped":   counters.skipped,
			"failed":    counters.failed,
			"total":     counters.total,
		}})
	}

	if err := s.games.RecomputeStats(ctx, game.ID); err != nil {
		logger.Error("recompute stats failed", zap.Error(err))
	}
	if s.metadata != nil {
		// Cover art and store metadata are decoration; failure is logged and
		// forgotten.
		if err := s.metadata.Apply(ctx, game.ID); err != nil {
			logger.Warn("metadata enrichment failed", zap.Error(err))
		}
	}
	return nil
}

type importOutcome int

const (
	outcomeImported importOutcome = iota
	// Skip reasons are reported separately: the item was either imported by
	// an earlier session (external id) or its bytes are already in the
	// library under another identity (content hash).
	outcomeSkippedExisting
	outcomeSkippedDuplicate
)

func (o importOutcome) skipped() bool {
	return o == outcomeSkippedExisting || o == outcomeSkippedDuplicate
}

func (o importOutcome) label() (outcome, reason string) {
	switch o {
	case outcomeSkippedExisting:
		return "skipped", "already_imported"
	case outcomeSkippedDuplicate:
		return "skipped", "duplicate_hash"
	default:
		return "imported", ""
	}
}

// importScreenshot runs the per-item pipeline: id dedup, detail resolution,
// download, content dedup, store, record, index.
func (s *Service) importScreenshot(
	ctx context.Context,
	source steam.Source,
	game *model.Game,
	shot steam.Screenshot,
	fetchDetails bool,
) (importOutcome, error) {
	exists, err := s.shots.ExistsBySteamID(ctx, shot.ID)
	if err != nil {
		return 0, err
	}
	if exists {
		return outcomeSkippedExisting, nil
	}

	if fetchDetails || shot.FullImageURL == "" {
		shot = source.ResolveDetail(ctx, shot)
	}
	url := shot.FullImageURL
	if url == "" {
		url = shot.ThumbnailURL
	}
	if url == "" {
		return 0, fmt.Errorf("no downloadable url")
	}

	data := source.Download(ctx, url)
	if data == nil && url != shot.ThumbnailURL && shot.ThumbnailURL != "" {
		data = source.Download(ctx, shot.ThumbnailURL)
	}
	if data == nil {
		return 0, fmt.Errorf("download failed")
	}

	hash := imaging.SHA256Hex(data)
	if existing, err := s.shots.FindByHash(ctx, hash); err != nil {
		return 0, err
	} else if existing != nil {
		return outcomeSkippedDuplicate, nil
	}

	ext := imaging.GuessExtension(url, data)
	filename := library.SteamFilename(shot.ID, ext)
	width, height := imaging.Dimensions(data)
	if width == 0 {
		width, height = shot.Width, shot.Height
	}

	record := &model.Screenshot{
		GameID:     game.ID,
		Filename:   filename,
		FilePath:   library.ScreenshotKey(game.FolderName, filename),
		Source:     model.SourceSteamImport,
		SteamID:    shot.ID,
		Caption:    shot.Caption,
		SHA256:     hash,
		Width:      width,
		Height:     height,
		Format:     ext,
		FileSize:   int64(len(data)),
		UploadedAt: time.Now().Unix(),
	}
	if shot.TakenAt != nil {
		taken := shot.TakenAt.Unix()
		record.TakenAt = &taken
	}

	if err := filestore.SaveBytes(ctx, s.store, record.FilePath, data); err != nil {
		return 0, fmt.Errorf("store screenshot: %w", err)
	}
	if small, medium, err := imaging.Previews(data, s.quality); err == nil {
		record.ThumbSmall = library.ThumbnailKey(game.FolderName, filename, imaging.PreviewSmall)
		record.ThumbMedium = library.ThumbnailKey(game.FolderName, filename, imaging.PreviewMedium)
		if err := filestore.SaveBytes(ctx, s.store, record.ThumbSmall, small); err != nil {
			return 0, fmt.Errorf("store preview: %w", err)
		}
		if err := filestore.SaveBytes(ctx, s.store, record.ThumbMedium, medium); err != nil {
			return 0, fmt.Errorf("store preview: %w", err)
		}
	}

	if err := s.shots.Create(ctx, record); err != nil {
		return 0, err
	}
	if err := s.screenshots.IndexScreenshot(ctx, record); err != nil {
		return 0, err
	}
	return outcomeImported, nil
}

func filterGames(games []steam.Game, allowlist []int64) []steam.Game {
	if len(allowlist) == 0 {
		return games
	}
	allowed := make(map[int64]bool, len(allowlist))
	for _, appID := range allowlist {
		allowed[appID] = true
	}
	filtered := make([]steam.Game, 0, len(games))
	for _, game := range games {
		if allowed[game.AppID] {
			filtered = append(filtered, game)
		}
	}
	return filtered
}

func (s *Service) flushCounters(ctx context.Context, sessionID string, counters *sessionCounters) error {
	err := s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"completed_games":       counters.completedGames,
		"total_screenshots":     counters.total,
		"completed_screenshots": counters.completed,
		"skipped_screenshots":   counters.skipped,
		"failed_screenshots":    counters.failed,
	})
	if err != nil {
		logutil.GetLogger(ctx).Error("flush counters failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return err
}

func (s *Service) logError(ctx context.Context, sessionID, message string) error {
	err := s.sessions.AppendError(ctx, sessionID, message)
	if err != nil {
		logutil.GetLogger(ctx).Error("append error failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.registry.Push(sessionID, progress.Event{Kind: progress.KindError, Data: message})
	return err
}

// fail records the failure and moves the session to its terminal state.
// The writes here are best-effort: when the store itself is the reason for
// failing there is nothing left to report to.
func (s *Service) fail(ctx context.Context, sessionID, message string) {
	_ = s.logError(ctx, sessionID, message)
	s.finish(ctx, sessionID, model.ImportStatusFailed)
}

func (s *Service) finish(ctx context.Context, sessionID, status string) {
	err := s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"status":       status,
		"completed_at": time.Now().Unix(),
	})
	if err != nil {
		logutil.GetLogger(ctx).Error("finish session failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	s.pushStatus(ctx, sessionID)
}

func (s *Service) pushStatus(ctx context.Context, sessionID string) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return
	}
	s.registry.Push(sessionID, progress.Event{Kind: progress.KindStatus, Data: session})
}
