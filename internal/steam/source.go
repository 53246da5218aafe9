package steam

import (
	"context"
	"net/http"
	"time"
)

// Source hides the two strategies for reaching Steam: the authenticated Web
// API and unauthenticated page scraping. Every extraction point degrades to
// "no data found" rather than failing, so one bad screenshot never aborts a
// whole run; only ValidateProfile and DiscoverGames return typed failures.
type Source interface {
	ValidateProfile(ctx context.Context) (*Profile, error)

	// DiscoverGames lists titles with importable media. fetchCounts enables
	// the expensive per-game count pass; without it counts may be 0.
	DiscoverGames(ctx context.Context, fetchCounts bool) ([]Game, error)

	ListScreenshots(ctx context.Context, appID int64) ([]Screenshot, error)

	// ResolveDetail fills in the full-resolution URL, caption and capture
	// time from the item's detail page. On failure the item is returned
	// unchanged so the caller can fall back to the thumbnail.
	ResolveDetail(ctx context.Context, shot Screenshot) Screenshot

	// Download returns the image bytes, or nil when the response is not a
	// plausible image, whatever the cause.
	Download(ctx context.Context, url string) []byte
}

type Options struct {
	UserID      string
	NumericID   bool
	Credentials Credentials
	RateLimit   time.Duration

	// Overridable for tests; empty means the real endpoints.
	CommunityURL string
	APIURL       string
	HTTPClient   *http.Client
}

// Factory builds a Source for one import run's credentials. The importer
// takes a Factory so tests can substitute a fake source.
type Factory func(opts Options) Source

// New selects the strategy: the Web API when a key is present, else page
// scraping. The API strategy still scrapes for discovery and detail pages,
// since the API has no "list all games with media" call.
func New(opts Options) Source {
	web := newWebSource(opts)
	if opts.Credentials.HasAPIKey() {
		return newAPISource(opts, web)
	}
	return web
}
