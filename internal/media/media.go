// Package media describes uploaded assets and the limits applied to them.
package media

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Category is the coarse media kind of an asset.
type Category string

const (
	CategoryImage   Category = "image"
	CategoryVideo   Category = "video"
	CategoryUnknown Category = ""
)

// Asset is one uploaded media file held in memory for the duration of a request.
type Asset struct {
	Name        string
	ContentType string
	Category    Category
	Data        []byte
}

// Size is the payload length in bytes.
func (a Asset) Size() int64 {
	return int64(len(a.Data))
}

// Ext returns the lower-cased extension of the original name, derived from the
// content type when the name has none.
func (a Asset) Ext() string {
	if ext := strings.ToLower(filepath.Ext(a.Name)); ext != "" {
		return ext
	}
	if a.ContentType != "" {
		if exts, err := mime.ExtensionsByType(a.ContentType); err == nil && len(exts) > 0 {
			return exts[0]
		}
	}
	return ""
}

// NewAsset builds an asset, resolving its content type and category. The declared
// content type wins when it is image/* or video/*; otherwise the bytes are sniffed.
func NewAsset(name, declaredType string, data []byte) Asset {
	contentType := declaredType
	category := CategoryOf(declaredType)
	if category == CategoryUnknown {
		detected := mimetype.Detect(data)
		contentType = detected.String()
		category = CategoryOf(contentType)
	}
	return Asset{Name: name, ContentType: contentType, Category: category, Data: data}
}

// CategoryOf maps a MIME type onto a Category.
func CategoryOf(contentType string) Category {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), ";")
	switch {
	case strings.HasPrefix(base, "image/"):
		return CategoryImage
	case strings.HasPrefix(base, "video/"):
		return CategoryVideo
	default:
		return CategoryUnknown
	}
}

// Limits bounds the assets one publish request may carry.
type Limits struct {
	MaxImages     int
	MaxVideos     int
	MaxImageBytes int64
	MaxVideoBytes int64
}

const mebibyte = 1 << 20

// DefaultLimits are the limits enforced by the publishing providers.
var DefaultLimits = Limits{
	MaxImages:     10,
	MaxVideos:     1,
	MaxImageBytes: 10 * mebibyte,
	MaxVideoBytes: 400 * mebibyte,
}

// MaxCount returns the asset count ceiling for c.
func (l Limits) MaxCount(c Category) int {
	if c == CategoryVideo {
		return l.MaxVideos
	}
	return l.MaxImages
}

// MaxBytes returns the per-asset size ceiling for c.
func (l Limits) MaxBytes(c Category) int64 {
	if c == CategoryVideo {
		return l.MaxVideoBytes
	}
	return l.MaxImageBytes
}

// ContentTypeForName infers a served content type from a file extension.
func ContentTypeForName(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "mp4":
		return "video/mp4"
	case "mov":
		return "video/quicktime"
	case "avi":
		return "video/x-msvideo"
	case "webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
