package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/gamevault/gamevault/internal/filestore"
	"github.com/gamevault/gamevault/internal/library"
	appErr "github.com/gamevault/gamevault/internal/pkg/errors"
	"github.com/gamevault/gamevault/internal/repo"
)

const (
	defaultStoreAPIURL   = "https://store.steampowered.com/api"
	defaultGridDBAPIURL  = "https://www.steamgriddb.com/api/v2"
	metadataFetchTimeout = 30 * time.Second
)

// GameMetadata is what the store pages know about a title.
type GameMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Developer   string `json:"developer,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	Genres      string `json:"genres,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
}

// MetadataService enriches games with store metadata and cover art. Results
// are cached; the upstreams rate-limit aggressively and metadata is nearly
// static.
type MetadataService struct {
	games        *repo.GameRepo
	store        filestore.Store
	http         *http.Client
	cache        *expirable.LRU[int64, *GameMetadata]
	gridDBKey    string
	storeAPIURL  string
	gridDBAPIURL string
}

type MetadataOption func(*MetadataService)

// WithMetadataEndpoints points the service at test servers.
func WithMetadataEndpoints(storeAPIURL, gridDBAPIURL string) MetadataOption {
	return func(s *MetadataService) {
		s.storeAPIURL = storeAPIURL
		s.gridDBAPIURL = gridDBAPIURL
	}
}

func WithMetadataHTTPClient(client *http.Client) MetadataOption {
	return func(s *MetadataService) {
		s.http = client
	}
}

func NewMetadataService(
	games *repo.GameRepo,
	store filestore.Store,
	gridDBKey string,
	cacheSize int,
	cacheTTL time.Duration,
	opts ...MetadataOption,
) *MetadataService {
	s := &MetadataService{
		games:        games,
		store:        store,
		http:         &http.Client{Timeout: metadataFetchTimeout},
		cache:        expirable.NewLRU[int64, *GameMetadata](cacheSize, nil, cacheTTL),
		gridDBKey:    gridDBKey,
		storeAPIURL:  defaultStoreAPIURL,
		gridDBAPIURL: defaultGridDBAPIURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type appDetailsResponse map[string]struct {
	Success bool `json:"success"`
	Data    struct {
		Name             string   `json:"name"`
		ShortDescription string   `json:"short_description"`
		HeaderImage      string   `json:"header_image"`
		Developers       []string `json:"developers"`
		Publishers       []string `json:"publishers"`
		ReleaseDate      struct {
			Date string `json:"date"`
		} `json:"release_date"`
		Genres []struct {
			Description string `json:"description"`
		} `json:"genres"`
	} `json:"data"`
}

type gridDBResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// ExternalGame is one store-catalog search hit, offered to the user when
// linking a manual game to its Steam identity.
type ExternalGame struct {
	Name       string `json:"name"`
	SteamAppID int64  `json:"steam_app_id"`
	CoverURL   string `json:"cover_url,omitempty"`
	Source     string `json:"source"`
}

type storeSearchResponse struct {
	Items []struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		TinyImage string `json:"tiny_image"`
	} `json:"items"`
}

const maxSearchResults = 10

// SearchExternal queries the Steam store catalog by name. Upstream failure
// degrades to an empty result list; the caller cannot do anything better
// with the error.
func (s *MetadataService) SearchExternal(ctx context.Context, term string) []ExternalGame {
	if strings.TrimSpace(term) == "" {
		return []ExternalGame{}
	}
	query := url.Values{}
	query.Set("term", term)
	query.Set("l", "english")
	query.Set("cc", "US")
	body, err := s.getJSON(ctx, fmt.Sprintf("%s/storesearch/?%s", s.storeAPIURL, query.Encode()), "")
	if err != nil {
		logutil.GetLogger(ctx).Warn("store search failed", zap.String("term", term), zap.Error(err))
		return []ExternalGame{}
	}
	var parsed storeSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		logutil.GetLogger(ctx).Warn("store search decode failed", zap.String("term", term), zap.Error(err))
		return []ExternalGame{}
	}
	results := make([]ExternalGame, 0, maxSearchResults)
	for _, item := range parsed.Items {
		if len(results) == maxSearchResults {
			break
		}
		results = append(results, ExternalGame{
			Name:       item.Name,
			SteamAppID: item.ID,
			CoverURL:   item.TinyImage,
			Source:     "steam",
		})
	}
	return results
}

// Fetch returns metadata for a Steam app id, from cache when possible.
func (s *MetadataService) Fetch(ctx context.Context, appID int64) (*GameMetadata, error) {
	if cached, ok := s.cache.Get(appID); ok {
		return cached, nil
	}
	meta, err := s.fetchStoreDetails(ctx, appID)
	if err != nil {
		return nil, err
	}
	if cover := s.fetchGridDBCover(ctx, appID); cover != "" {
		meta.CoverURL = cover
	}
	s.cache.Add(appID, meta)
	return meta, nil
}

// Apply fetches metadata for a game and writes it through, downloading the
// cover into the game's library folder. Fields the user already filled in
// manually are preserved.
func (s *MetadataService) Apply(ctx context.Context, gameID int64) error {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return err
	}
	if game.SteamAppID == nil {
		return fmt.Errorf("%w: game has no steam app id", appErr.ErrInvalid)
	}
	meta, err := s.Fetch(ctx, *game.SteamAppID)
	if err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if game.Description == "" && meta.Description != "" {
		fields["description"] = meta.Description
	}
	if game.Developer == "" && meta.Developer != "" {
		fields["developer"] = meta.Developer
	}
	if game.Publisher == "" && meta.Publisher != "" {
		fields["publisher"] = meta.Publisher
	}
	if game.ReleaseDate == "" && meta.ReleaseDate != "" {
		fields["release_date"] = meta.ReleaseDate
	}
	if game.Genres == "" && meta.Genres != "" {
		fields["genres"] = meta.Genres
	}
	if game.CoverPath == "" && meta.CoverURL != "" {
		if key := s.downloadCover(ctx, game.FolderName, meta.CoverURL); key != "" {
			fields["cover_path"] = key
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return s.games.Update(ctx, gameID, fields)
}

func (s *MetadataService) fetchStoreDetails(ctx context.Context, appID int64) (*GameMetadata, error) {
	url := fmt.Sprintf("%s/appdetails?appids=%d", s.storeAPIURL, appID)
	body, err := s.getJSON(ctx, url, "")
	if err != nil {
		return nil, fmt.Errorf("fetch app details: %w", err)
	}
	var parsed appDetailsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode app details: %w", err)
	}
	entry, ok := parsed[fmt.Sprintf("%d", appID)]
	if !ok || !entry.Success {
		return nil, appErr.ErrNotFound
	}
	genres := make([]string, 0, len(entry.Data.Genres))
	for _, genre := range entry.Data.Genres {
		genres = append(genres, genre.Description)
	}
	return &GameMetadata{
		Name:        entry.Data.Name,
		Description: entry.Data.ShortDescription,
		Developer:   strings.Join(entry.Data.Developers, ", "),
		Publisher:   strings.Join(entry.Data.Publishers, ", "),
		ReleaseDate: entry.Data.ReleaseDate.Date,
		Genres:      strings.Join(genres, ", "),
		CoverURL:    entry.Data.HeaderImage,
	}, nil
}

// fetchGridDBCover prefers SteamGridDB art over the store header image.
// No key or any failure just keeps the header image.
func (s *MetadataService) fetchGridDBCover(ctx context.Context, appID int64) string {
	if s.gridDBKey == "" {
		return ""
	}
	url := fmt.Sprintf("%s/grids/steam/%d", s.gridDBAPIURL, appID)
	body, err := s.getJSON(ctx, url, "Bearer "+s.gridDBKey)
	if err != nil {
		logutil.GetLogger(ctx).Warn("steamgriddb lookup failed", zap.Int64("app_id", appID), zap.Error(err))
		return ""
	}
	var parsed gridDBResponse
	if err := json.Unmarshal(body, &parsed); err != nil || !parsed.Success || len(parsed.Data) == 0 {
		return ""
	}
	return parsed.Data[0].URL
}

func (s *MetadataService) downloadCover(ctx context.Context, folder, coverURL string) string {
	body, err := s.getJSON(ctx, coverURL, "")
	if err != nil {
		logutil.GetLogger(ctx).Warn("cover download failed", zap.String("url", coverURL), zap.Error(err))
		return ""
	}
	key := library.CoverKey(folder)
	if err := filestore.SaveBytes(ctx, s.store, key, body); err != nil {
		logutil.GetLogger(ctx).Warn("cover store failed", zap.String("key", key), zap.Error(err))
		return ""
	}
	return key
}

func (s *MetadataService) getJSON(ctx context.Context, url, authorization string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
