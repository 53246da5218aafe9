package service

import (
	"context"
	"strings"
	"time"

	"github.com/gamevault/gamevault/internal/model"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/repo"
)

// ShareService manages public share links for screenshots. A screenshot has
// at most one active link; requesting a share again returns the existing one.
type ShareService struct {
	shares  *repo.ShareRepo
	shots   *repo.ScreenshotRepo
	baseURL string
}

func NewShareService(shares *repo.ShareRepo, shots *repo.ScreenshotRepo, baseURL string) *ShareService {
	return &ShareService{shares: shares, shots: shots, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Create issues a share link. expiresInHours <= 0 means the link never
// expires. An expired existing link is replaced instead of reused.
func (s *ShareService) Create(ctx context.Context, screenshotID int64, expiresInHours int) (*model.ShareLink, error) {
	if _, err := s.shots.Get(ctx, screenshotID); err != nil {
		return nil, err
	}
	existing, err := s.shares.GetByScreenshot(ctx, screenshotID)
	if err == nil {
		if !expired(existing) {
			return s.withURL(existing), nil
		}
		if err := s.shares.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}

	link := &model.ShareLink{
		ScreenshotID: screenshotID,
		Token:        newToken(),
	}
	if expiresInHours > 0 {
		expiresAt := time.Now().Add(time.Duration(expiresInHours) * time.Hour).Unix()
		link.ExpiresAt = &expiresAt
	}
	if err := s.shares.Create(ctx, link); err != nil {
		return nil, err
	}
	return s.withURL(link), nil
}

func (s *ShareService) GetForScreenshot(ctx context.Context, screenshotID int64) (*model.ShareLink, error) {
	link, err := s.shares.GetByScreenshot(ctx, screenshotID)
	if err != nil {
		return nil, err
	}
	if expired(link) {
		return nil, appErr.ErrShareExpired
	}
	return s.withURL(link), nil
}

// Resolve looks a share token up for public consumption.
func (s *ShareService) Resolve(ctx context.Context, token string) (*model.ShareLink, *model.Screenshot, error) {
	link, err := s.shares.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if expired(link) {
		return nil, nil, appErr.ErrShareExpired
	}
	shot, err := s.shots.Get(ctx, link.ScreenshotID)
	if err != nil {
		return nil, nil, err
	}
	return s.withURL(link), shot, nil
}

func (s *ShareService) Revoke(ctx context.Context, screenshotID int64) error {
	link, err := s.shares.GetByScreenshot(ctx, screenshotID)
	if err != nil {
		return err
	}
	return s.shares.Delete(ctx, link.ID)
}

func (s *ShareService) withURL(link *model.ShareLink) *model.ShareLink {
	link.URL = s.baseURL + "/api/v1/public/share/" + link.Token + "/page"
	return link
}

func expired(link *model.ShareLink) bool {
	return link.ExpiresAt != nil && *link.ExpiresAt < time.Now().Unix()
}
