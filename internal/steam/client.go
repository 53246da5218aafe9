package steam

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	defaultCommunityURL = "https://steamcommunity.com"
	defaultAPIURL       = "https://api.steampowered.com"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	pageTimeout     = 30 * time.Second
	downloadTimeout = 60 * time.Second

	// minImageBytes rejects error pages served with a 200 status.
	minImageBytes = 1000
)

// client is the shared rate-limited HTTP layer under both strategies. The
// delay after every request keeps callers compliant regardless of call site.
type client struct {
	http      *http.Client
	cookies   []*http.Cookie
	rateLimit time.Duration
}

func newClient(opts Options) *client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	cookies := []*http.Cookie{
		// Age-gate bypass for games behind mature-content checks.
		{Name: "birthtime", Value: "0"},
		{Name: "mature_content", Value: "1"},
		{Name: "lastagecheckage", Value: "1-0-1990"},
	}
	if opts.Credentials.SteamLoginSecure != "" {
		cookies = append(cookies, &http.Cookie{Name: "steamLoginSecure", Value: opts.Credentials.SteamLoginSecure})
	}
	if opts.Credentials.SessionID != "" {
		cookies = append(cookies, &http.Cookie{Name: "sessionid", Value: opts.Credentials.SessionID})
	}
	return &client{
		http:      httpClient,
		cookies:   cookies,
		rateLimit: opts.RateLimit,
	}
}

// get fetches a page or API endpoint with the page timeout. The body is
// returned for any status; callers inspect the code.
func (c *client) get(ctx context.Context, url string) ([]byte, int, error) {
	return c.fetch(ctx, url, pageTimeout)
}

func (c *client) fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.throttle()
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	c.throttle()
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// download fetches binary content with the longer timeout and returns nil
// for anything that does not look like an image.
func (c *client) download(ctx context.Context, url string) []byte {
	if url == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		c.throttle()
		return nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	c.throttle()
	if err != nil || resp.StatusCode != http.StatusOK {
		return nil
	}
	contentType := resp.Header.Get("Content-Type")
	if !isImageContentType(contentType) && len(body) <= minImageBytes {
		return nil
	}
	return body
}

func (c *client) throttle() {
	if c.rateLimit > 0 {
		time.Sleep(c.rateLimit)
	}
}

func isImageContentType(contentType string) bool {
	return len(contentType) >= 5 && contentType[:5] == "image"
}
