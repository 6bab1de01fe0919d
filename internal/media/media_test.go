package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryImage, CategoryOf("image/png"))
	assert.Equal(t, CategoryVideo, CategoryOf("Video/MP4; codecs=avc1"))
	assert.Equal(t, CategoryUnknown, CategoryOf("application/pdf"))
	assert.Equal(t, CategoryUnknown, CategoryOf(""))
}

func TestNewAssetPrefersDeclaredType(t *testing.T) {
	a := NewAsset("clip.mp4", "video/mp4", []byte("whatever"))
	assert.Equal(t, CategoryVideo, a.Category)
	assert.Equal(t, "video/mp4", a.ContentType)
	assert.Equal(t, int64(8), a.Size())
}

func TestNewAssetSniffsGenericUploads(t *testing.T) {
	a := NewAsset("upload", "application/octet-stream", pngHeader)
	assert.Equal(t, CategoryImage, a.Category)
	assert.Equal(t, "image/png", a.ContentType)
	assert.Equal(t, ".png", a.Ext())

	unknown := NewAsset("notes.txt", "", []byte("plain text"))
	assert.Equal(t, CategoryUnknown, unknown.Category)
}

func TestAssetExt(t *testing.T) {
	assert.Equal(t, ".jpg", Asset{Name: "Photo.JPG"}.Ext())
	assert.Equal(t, "", Asset{Name: "blob"}.Ext())
}

func TestLimits(t *testing.T) {
	assert.Equal(t, 10, DefaultLimits.MaxCount(CategoryImage))
	assert.Equal(t, 1, DefaultLimits.MaxCount(CategoryVideo))
	assert.Equal(t, int64(10<<20), DefaultLimits.MaxBytes(CategoryImage))
	assert.Equal(t, int64(400<<20), DefaultLimits.MaxBytes(CategoryVideo))
}

func TestContentTypeForName(t *testing.T) {
	assert.Equal(t, "image/jpeg", ContentTypeForName("a.JPEG"))
	assert.Equal(t, "video/quicktime", ContentTypeForName("b.mov"))
	assert.Equal(t, "application/octet-stream", ContentTypeForName("c.bin"))
	assert.Equal(t, "application/octet-stream", ContentTypeForName("noext"))
}
