package steam

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// Privacy bitmask: private + friends-only + public.
	privacyFilter = 14

	// maxGridPages is the runaway guard for grid pagination.
	maxGridPages = 200
)

// webSource scrapes steamcommunity.com. It is the fallback strategy when no
// API key is configured, and the discovery/detail path even when one is.
type webSource struct {
	c            *client
	communityURL string
	profileURL   string
	userID       string
	numeric      bool
}

func newWebSource(opts Options) *webSource {
	communityURL := opts.CommunityURL
	if communityURL == "" {
		communityURL = defaultCommunityURL
	}
	numeric := opts.NumericID || isNumericID(opts.UserID)
	profileURL := communityURL + "/id/" + opts.UserID
	if numeric {
		profileURL = communityURL + "/profiles/" + opts.UserID
	}
	return &webSource{
		c:            newClient(opts),
		communityURL: communityURL,
		profileURL:   profileURL,
		userID:       opts.UserID,
		numeric:      numeric,
	}
}

func (s *webSource) ValidateProfile(ctx context.Context) (*Profile, error) {
	body, status, err := s.c.get(ctx, s.profileURL)
	if err != nil {
		return nil, fmt.Errorf("fetch profile page: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("profile page returned HTTP %d", status)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse profile page: %w", err)
	}
	if doc.Find(".error_ctn").Length() > 0 {
		return nil, ErrProfileNotFound
	}
	profile := &Profile{
		UserID:    s.userID,
		NumericID: s.numeric,
		URL:       s.profileURL,
		Name:      strings.TrimSpace(doc.Find(".actual_persona_name").First().Text()),
	}
	if avatar, ok := doc.Find(".playerAvatarAutoSizeInner img").First().Attr("src"); ok {
		profile.AvatarURL = avatar
	}
	return profile, nil
}

// DiscoverGames parses the game filter sidebar of the all-games screenshot
// grid. Layouts drift: the current selector set is tried first, then the
// older one; neither matching yields an empty list, not an error.
func (s *webSource) DiscoverGames(ctx context.Context, fetchCounts bool) ([]Game, error) {
	body, status, err := s.c.get(ctx, s.gridURL(0, 1))
	if err != nil {
		return nil, fmt.Errorf("fetch screenshots page: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("screenshots page returned HTTP %d", status)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse screenshots page: %w", err)
	}

	items := doc.Find(".screenshot_filter_app")
	if items.Length() == 0 {
		items = doc.Find(".gameListRow, [data-appid]")
	}

	games := make([]Game, 0)
	seen := make(map[int64]bool)
	items.Each(func(_ int, item *goquery.Selection) {
		appID := int64(0)
		if raw, ok := item.Attr("data-appid"); ok {
			appID = parseCount64(raw)
		}
		link := item.Find("a").First()
		if appID == 0 {
			if href, ok := link.Attr("href"); ok {
				appID = parseAppID(href)
			}
		}
		if appID == 0 || seen[appID] {
			return
		}
		seen[appID] = true

		name := strings.TrimSpace(item.Find(".screenshot_filter_app_name, .gameName").First().Text())
		if name == "" {
			name = strings.TrimSpace(link.Text())
		}
		if name == "" {
			name = fmt.Sprintf("App %d", appID)
		}
		count := parseCount(item.Find(".screenshot_filter_app_count, .gameCount").First().Text())
		games = append(games, Game{AppID: appID, Name: name, ScreenshotCount: count})
	})

	if fetchCounts {
		for i := range games {
			if games[i].ScreenshotCount > 0 {
				continue
			}
			shots, err := s.ListScreenshots(ctx, games[i].AppID)
			if err != nil {
				continue
			}
			games[i].ScreenshotCount = len(shots)
		}
	}
	return games, nil
}

func (s *webSource) ListScreenshots(ctx context.Context, appID int64) ([]Screenshot, error) {
	all := make([]Screenshot, 0)
	for page := 1; page <= maxGridPages; page++ {
		body, status, err := s.c.get(ctx, s.gridURL(appID, page))
		if err != nil {
			return nil, fmt.Errorf("fetch grid page %d: %w", page, err)
		}
		if status != 200 {
			break
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			break
		}
		shots := parseGridPage(doc)
		if len(shots) == 0 {
			break
		}
		all = append(all, shots...)
	}
	return all, nil
}

func parseGridPage(doc *goquery.Document) []Screenshot {
	shots := make([]Screenshot, 0)
	seen := make(map[string]bool)
	doc.Find(".apphub_Card, .profile_media_item, a[href*='filedetails']").Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Attr("href")
		if !ok || !item.Is("a") {
			href, _ = item.Find("a").First().Attr("href")
		}
		if !strings.Contains(href, "filedetails") {
			return
		}
		id := parseScreenshotID(href)
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		img := item.Find("img").First()
		thumbnail, _ := img.Attr("src")
		if thumbnail == "" {
			thumbnail, _ = img.Attr("data-src")
		}
		shots = append(shots, Screenshot{
			ID:           id,
			DetailURL:    href,
			ThumbnailURL: thumbnail,
			FullImageURL: fullImageURL(thumbnail),
		})
	})
	return shots
}

func (s *webSource) ResolveDetail(ctx context.Context, shot Screenshot) Screenshot {
	detailURL := shot.DetailURL
	if detailURL == "" {
		return shot
	}
	if !strings.HasPrefix(detailURL, "http") {
		detailURL = s.communityURL + detailURL
	}
	body, status, err := s.c.get(ctx, detailURL)
	if err != nil || status != 200 {
		return shot
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return shot
	}

	if src, ok := doc.Find(".actualmediactn a img, .screenshotActualSize img, #ActualMedia img").First().Attr("src"); ok && src != "" {
		shot.FullImageURL = fullImageURL(src)
	}
	if shot.FullImageURL == "" {
		if href, ok := doc.Find(".actualmediactn a, a[href*='ugc']").First().Attr("href"); ok {
			if strings.Contains(href, "akamaihd.net") || strings.Contains(href, "ugc") {
				shot.FullImageURL = fullImageURL(href)
			}
		}
	}

	if caption := strings.TrimSpace(doc.Find(".screenshotDescription, .nonSelectedScreenshotDescription").First().Text()); caption != "" {
		shot.Caption = caption
	}
	// Stat cells carry posted date, file size and dimensions in no fixed
	// order; classify each by what parses.
	doc.Find(".detailsStatRight, .screenshotDate").Each(func(_ int, stat *goquery.Selection) {
		text := strings.TrimSpace(stat.Text())
		if shot.TakenAt == nil {
			if taken := parseSteamDate(text); taken != nil {
				shot.TakenAt = taken
				return
			}
		}
		if strings.Contains(text, "MB") || strings.Contains(text, "KB") {
			if size := parseFileSize(text); size > 0 {
				shot.FileSize = size
			}
		}
	})
	return shot
}

func (s *webSource) Download(ctx context.Context, url string) []byte {
	return s.c.download(ctx, url)
}

func (s *webSource) gridURL(appID int64, page int) string {
	return fmt.Sprintf(
		"%s/screenshots/?appid=%d&sort=newestfirst&browsefilter=myfiles&view=grid&privacy=%d&p=%d",
		s.profileURL, appID, privacyFilter, page,
	)
}

func parseCount64(raw string) int64 {
	return int64(parseCount(raw))
}
