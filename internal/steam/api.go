package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	apiPageSize = 100

	// maxAPIPages mirrors the grid ceiling so neither strategy can loop on a
	// misbehaving response.
	maxAPIPages = 200

	// appTypeScreenshot filters GetUserFiles to screenshots.
	appTypeScreenshot = 4
)

// apiSource queries the structured Web API for screenshot enumeration and
// profile lookup. Discovery and detail pages have no API equivalent, so
// those delegate to the scrape strategy.
type apiSource struct {
	web    *webSource
	apiURL string
	apiKey string
	userID string
}

func newAPISource(opts Options, web *webSource) *apiSource {
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &apiSource{
		web:    web,
		apiURL: apiURL,
		apiKey: opts.Credentials.APIKey,
		userID: opts.UserID,
	}
}

type vanityResponse struct {
	Response struct {
		Success int    `json:"success"`
		SteamID string `json:"steamid"`
	} `json:"response"`
}

type playerSummariesResponse struct {
	Response struct {
		Players []struct {
			SteamID     string `json:"steamid"`
			PersonaName string `json:"personaname"`
			AvatarFull  string `json:"avatarfull"`
			ProfileURL  string `json:"profileurl"`
		} `json:"players"`
	} `json:"response"`
}

type userFilesResponse struct {
	Response struct {
		Total int             `json:"total"`
		Files []publishedFile `json:"publishedfiledetails"`
	} `json:"response"`
}

type publishedFile struct {
	PublishedFileID string `json:"publishedfileid"`
	FileURL         string `json:"file_url"`
	PreviewURL      string `json:"preview_url"`
	Description     string `json:"file_description"`
	TimeCreated     int64  `json:"time_created"`
	FileSize        string `json:"file_size"`
	ImageWidth      int    `json:"image_width"`
	ImageHeight     int    `json:"image_height"`
}

// ValidateProfile resolves the steam64 ID and fetches the persona via
// GetPlayerSummaries. Any API-side failure falls back to the scrape path so
// a bad key degrades instead of blocking imports.
func (s *apiSource) ValidateProfile(ctx context.Context) (*Profile, error) {
	steamID, err := s.resolveSteamID(ctx)
	if err != nil {
		return s.web.ValidateProfile(ctx)
	}

	url := fmt.Sprintf("%s/ISteamUser/GetPlayerSummaries/v2/?key=%s&steamids=%s", s.apiURL, s.apiKey, steamID)
	body, status, err := s.web.c.get(ctx, url)
	if err != nil || status != 200 {
		return s.web.ValidateProfile(ctx)
	}
	var parsed playerSummariesResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Response.Players) == 0 {
		return s.web.ValidateProfile(ctx)
	}
	player := parsed.Response.Players[0]
	return &Profile{
		UserID:    s.userID,
		Name:      player.PersonaName,
		AvatarURL: player.AvatarFull,
		NumericID: isNumericID(s.userID),
		URL:       player.ProfileURL,
	}, nil
}

func (s *apiSource) DiscoverGames(ctx context.Context, fetchCounts bool) ([]Game, error) {
	return s.web.DiscoverGames(ctx, fetchCounts)
}

// ListScreenshots pages through IPublishedFileService/GetUserFiles. API
// results carry the full-resolution URL and metadata up front, so imports
// from this path skip the per-item detail fetch.
func (s *apiSource) ListScreenshots(ctx context.Context, appID int64) ([]Screenshot, error) {
	steamID, err := s.resolveSteamID(ctx)
	if err != nil {
		return s.web.ListScreenshots(ctx, appID)
	}

	all := make([]Screenshot, 0)
	for page := 1; page <= maxAPIPages; page++ {
		url := fmt.Sprintf(
			"%s/IPublishedFileService/GetUserFiles/v1/?key=%s&steamid=%s&appid=%d&page=%d&numperpage=%d&filetype=%d&return_vote_data=false",
			s.apiURL, s.apiKey, steamID, appID, page, apiPageSize, appTypeScreenshot,
		)
		body, status, err := s.web.c.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetch user files page %d: %w", page, err)
		}
		if status != 200 {
			return s.web.ListScreenshots(ctx, appID)
		}
		var parsed userFilesResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("decode user files page %d: %w", page, err)
		}
		files := parsed.Response.Files
		if len(files) == 0 {
			break
		}
		for _, file := range files {
			all = append(all, mapPublishedFile(file))
		}
		if parsed.Response.Total > 0 && len(all) >= parsed.Response.Total {
			break
		}
		if len(files) < apiPageSize {
			break
		}
	}
	return all, nil
}

func mapPublishedFile(file publishedFile) Screenshot {
	shot := Screenshot{
		ID:           file.PublishedFileID,
		FullImageURL: file.FileURL,
		ThumbnailURL: file.PreviewURL,
		Caption:      file.Description,
		FileSize:     parseAPIFileSize(file.FileSize),
		Width:        file.ImageWidth,
		Height:       file.ImageHeight,
	}
	if shot.FullImageURL == "" {
		shot.FullImageURL = file.PreviewURL
	}
	if file.TimeCreated > 0 {
		taken := time.Unix(file.TimeCreated, 0).UTC()
		shot.TakenAt = &taken
	}
	return shot
}

// ResolveDetail is a no-op on the API path: the listing already carried the
// full metadata, and items that came from scrape fallbacks still resolve
// through the scraper.
func (s *apiSource) ResolveDetail(ctx context.Context, shot Screenshot) Screenshot {
	if shot.FullImageURL != "" {
		return shot
	}
	return s.web.ResolveDetail(ctx, shot)
}

func (s *apiSource) Download(ctx context.Context, url string) []byte {
	return s.web.Download(ctx, url)
}

// resolveSteamID turns a vanity name into a steam64 ID. Numeric IDs pass
// through untouched.
func (s *apiSource) resolveSteamID(ctx context.Context) (string, error) {
	if isNumericID(s.userID) {
		return s.userID, nil
	}
	url := fmt.Sprintf("%s/ISteamUser/ResolveVanityURL/v1/?key=%s&vanityurl=%s", s.apiURL, s.apiKey, s.userID)
	body, status, err := s.web.c.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("resolve vanity url: %w", err)
	}
	if status != 200 {
		return "", fmt.Errorf("resolve vanity url: HTTP %d", status)
	}
	var parsed vanityResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode vanity response: %w", err)
	}
	if parsed.Response.Success != 1 || parsed.Response.SteamID == "" {
		return "", ErrProfileNotFound
	}
	return parsed.Response.SteamID, nil
}

func parseAPIFileSize(raw string) int64 {
	var size int64
	_, err := fmt.Sscanf(raw, "%d", &size)
	if err != nil {
		return 0
	}
	return size
}
