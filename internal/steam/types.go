package steam

import (
	"errors"
	"time"
)

// ErrProfileNotFound means the remote reports the profile as missing or
// private. Transport problems surface as ordinary wrapped errors instead.
var ErrProfileNotFound = errors.New("steam profile not found or private")

type Credentials struct {
	SteamLoginSecure string
	SessionID        string
	APIKey           string
}

func (c Credentials) HasAPIKey() bool {
	return c.APIKey != ""
}

type Profile struct {
	UserID    string
	Name      string
	AvatarURL string
	NumericID bool
	URL       string
}

// Game is one title discovered with importable media. ScreenshotCount is
// authoritative only when obtained from the structured API or a count pass;
// 0 means unknown.
type Game struct {
	AppID           int64
	Name            string
	ScreenshotCount int
}

// Screenshot describes one remote screenshot prior to import. Scrape-path
// items usually carry only a thumbnail until ResolveDetail fills in the
// full-resolution URL.
type Screenshot struct {
	ID           string
	DetailURL    string
	ThumbnailURL string
	FullImageURL string
	Caption      string
	TakenAt      *time.Time
	FileSize     int64
	Width        int
	Height       int
}
