package model

type ShareLink struct {
	ID           int64  `json:"id"`
	ScreenshotID int64  `json:"screenshot_id"`
	Token        string `json:"token"`
	ExpiresAt    *int64 `json:"expires_at,omitempty"`
	Ctime        int64  `json:"ctime"`

	// URL is derived from the configured base URL, never stored.
	URL string `json:"url,omitempty"`
}
