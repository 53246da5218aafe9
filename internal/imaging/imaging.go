package imaging

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Preview edge sizes, small for grids and medium for lightboxes.
const (
	PreviewSmall  = 300
	PreviewMedium = 800
)

const defaultJPEGQuality = 85

// SHA256Hex returns the lowercase hex digest used as the dedup identity of
// an image.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Dimensions decodes only the header. Zero values mean the format was not
// recognized.
func Dimensions(data []byte) (width, height int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// DetectFormat sniffs magic bytes. It works on truncated data and does not
// require a registered decoder.
func DetectFormat(data []byte) string {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpg"
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return "png"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "gif"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "webp"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return "bmp"
	default:
		return ""
	}
}

// GuessExtension picks a file extension for downloaded bytes: the source
// URL suffix when it names an image type, else magic bytes, else jpg.
func GuessExtension(url string, data []byte) string {
	path := url
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if i := strings.LastIndex(path, "."); i >= 0 {
		switch ext := strings.ToLower(path[i+1:]); ext {
		case "jpg", "jpeg":
			return "jpg"
		case "png", "gif", "webp", "bmp":
			return ext
		}
	}
	if format := DetectFormat(data); format != "" {
		return format
	}
	return "jpg"
}

// Previews renders small and medium JPEG previews. The source aspect ratio
// is preserved; images already smaller than a target edge are re-encoded
// without upscaling. quality <= 0 uses the default.
func Previews(data []byte, quality int) (small, medium []byte, err error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("decode image: %w", err)
	}
	if quality <= 0 {
		quality = defaultJPEGQuality
	}
	small, err = encodeResized(src, PreviewSmall, quality)
	if err != nil {
		return nil, nil, err
	}
	medium, err = encodeResized(src, PreviewMedium, quality)
	if err != nil {
		return nil, nil, err
	}
	return small, medium, nil
}

func encodeResized(src image.Image, maxEdge, quality int) ([]byte, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxEdge || h > maxEdge {
		if w >= h {
			h = h * maxEdge / w
			w = maxEdge
		} else {
			w = w * maxEdge / h
			h = maxEdge
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
