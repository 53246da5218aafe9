package steam

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Known Steam community date renderings. The set drifts over time; parsing
// failure just leaves the capture time unset.
var dateLayouts = []string{
	"Jan 2, 2006 @ 3:04pm",
	"Jan 2, 2006, 3:04pm",
	"2 Jan, 2006 @ 3:04pm",
	"2 Jan, 2006, 3:04pm",
	"Jan 2, 2006 @ 3:04 pm",
	"2 Jan, 2006 @ 3:04 pm",
}

var (
	appIDPattern        = regexp.MustCompile(`appid=(\d+)`)
	screenshotIDPattern = regexp.MustCompile(`id=(\d+)`)
	countPattern        = regexp.MustCompile(`(\d+)`)
	fileSizePattern     = regexp.MustCompile(`([\d.]+)\s*(MB|KB)`)
)

func parseSteamDate(text string) *time.Time {
	cleaned := strings.Join(strings.Fields(text), " ")
	if cleaned == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, cleaned); err == nil {
			return &parsed
		}
	}
	return nil
}

// fullImageURL converts a thumbnail URL to the full-size image URL by
// stripping the resize query parameters.
func fullImageURL(thumbnailURL string) string {
	if thumbnailURL == "" {
		return ""
	}
	parsed, err := url.Parse(thumbnailURL)
	if err != nil {
		return thumbnailURL
	}
	return parsed.Scheme + "://" + parsed.Host + parsed.Path
}

func parseAppID(href string) int64 {
	match := appIDPattern.FindStringSubmatch(href)
	if match == nil {
		return 0
	}
	id, _ := strconv.ParseInt(match[1], 10, 64)
	return id
}

func parseScreenshotID(href string) string {
	match := screenshotIDPattern.FindStringSubmatch(href)
	if match == nil {
		return ""
	}
	return match[1]
}

func parseCount(text string) int {
	match := countPattern.FindStringSubmatch(strings.ReplaceAll(text, ",", ""))
	if match == nil {
		return 0
	}
	count, _ := strconv.Atoi(match[1])
	return count
}

func parseFileSize(text string) int64 {
	match := fileSizePattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	unit := int64(1024)
	if match[2] == "MB" {
		unit = 1024 * 1024
	}
	return int64(value * float64(unit))
}

func isNumericID(userID string) bool {
	if userID == "" {
		return false
	}
	for _, r := range userID {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
