// Package library defines the on-store layout of the screenshot library:
// one folder per game, originals under screenshots/ and generated previews
// under thumbnails/<edge>/.
package library

import (
	"fmt"
	"path"
	"strings"
)

const (
	screenshotsDir = "screenshots"
	thumbnailsDir  = "thumbnails"
	coverName      = "cover.jpg"
)

// Windows reserved device names, rejected case-insensitively so a library
// on an SMB share stays portable.
var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true,
	"com5": true, "com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true,
	"lpt5": true, "lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

const invalidChars = `<>:"/\|?*`

// SanitizeName turns an arbitrary game or file name into a safe path
// segment. Empty or fully-invalid input becomes "untitled".
func SanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if r < 0x20 || strings.ContainsRune(invalidChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.Trim(b.String(), " .")
	if cleaned == "" {
		return "untitled"
	}
	stem := cleaned
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}
	if reservedNames[strings.ToLower(stem)] {
		return "_" + cleaned
	}
	return cleaned
}

// GameFolder derives the library folder for a game, suffixing the app id
// when known so renamed titles keep a stable folder.
func GameFolder(name string, steamAppID *int64) string {
	folder := SanitizeName(name)
	if steamAppID != nil && *steamAppID > 0 {
		folder = fmt.Sprintf("%s (%d)", folder, *steamAppID)
	}
	return folder
}

// SteamFilename is the canonical name for an imported screenshot.
func SteamFilename(steamID, ext string) string {
	return "steam_" + steamID + "." + ext
}

func ScreenshotKey(folder, filename string) string {
	return path.Join(folder, screenshotsDir, filename)
}

// ThumbnailKey places previews next to the original, bucketed by edge size.
// Previews are always JPEG regardless of the source format.
func ThumbnailKey(folder, filename string, edge int) string {
	stem := filename
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}
	return path.Join(folder, thumbnailsDir, fmt.Sprintf("%d", edge), stem+".jpg")
}

func CoverKey(folder string) string {
	return path.Join(folder, coverName)
}
