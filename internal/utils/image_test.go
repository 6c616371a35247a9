package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"

	"lexassist/internal/models"
)

// 1x1 red PNG
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53,
	0xde, 0x00, 0x00, 0x00, 0x0c, 0x49, 0x44, 0x41,
	0x54, 0x08, 0xd7, 0x63, 0xf8, 0xcf, 0xc0, 0x00,
	0x00, 0x00, 0x02, 0x00, 0x01, 0xe2, 0x21, 0xbc,
	0x33, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e,
	0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestIsValidImageFormat(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"image/jpeg", true},
		{"image/png", true},
		{"image/gif", true},
		{"image/webp", true},
		{"IMAGE/PNG", true},
		{"image/png; charset=binary", true},
		{"image/bmp", false},
		{"image/svg+xml", false},
		{"application/pdf", false},
		{"text/plain", false},
		{"png", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidImageFormat(tt.mimeType))
		})
	}
}

func TestFilterImagesDropsUnsupported(t *testing.T) {
	images := []models.ImageData{
		{FileName: "a.png", MimeType: "image/png", Base64: "AAA"},
		{FileName: "lease.pdf", MimeType: "application/pdf", Base64: "BBB"},
		{FileName: "b.jpg", MimeType: "image/jpeg", Base64: "CCC"},
		{FileName: "c.tiff", MimeType: "image/tiff", Base64: "DDD"},
	}

	got := FilterImages(images)

	assert.Len(t, got, 2)
	assert.Equal(t, "a.png", got[0].FileName)
	assert.Equal(t, "b.jpg", got[1].FileName)
}

func TestFilterImagesEmpty(t *testing.T) {
	assert.Empty(t, FilterImages(nil))
}

func TestFilterImagesFillsMissingMimeType(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(tinyPNG)

	got := FilterImages([]models.ImageData{
		{FileName: "scan", Base64: encoded},
		{FileName: "photo.webp", Base64: "not base64!"},
		{FileName: "notes.txt", Base64: "not base64!"},
	})

	assert.Len(t, got, 2)
	assert.Equal(t, "image/png", got[0].MimeType)
	assert.Equal(t, "image/webp", got[1].MimeType)
}

func TestDetectImageMimeType(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(tinyPNG)

	assert.Equal(t, "image/png", DetectImageMimeType(encoded))
	assert.Equal(t, "image/png", DetectImageMimeType("data:image/png;base64,"+encoded))
	assert.Equal(t, "", DetectImageMimeType("%%%"))
}

func TestGetMimeTypeFromExtension(t *testing.T) {
	assert.Equal(t, "image/jpeg", GetMimeTypeFromExtension(".JPG"))
	assert.Equal(t, "image/gif", GetMimeTypeFromExtension(".gif"))
	assert.Equal(t, "application/octet-stream", GetMimeTypeFromExtension(".docx"))
}
