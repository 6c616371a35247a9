package utils

import (
	"encoding/base64"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	log "github.com/sirupsen/logrus"

	"lexassist/internal/models"
)

// validImageTypes is the allow-list of encodings the vision model accepts
var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsValidImageFormat checks a MIME type against the accepted image formats.
// Parameters such as "; charset=binary" and letter case are ignored.
func IsValidImageFormat(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return validImageTypes[mimeType]
}

// GetMimeTypeFromExtension returns MIME type for a file extension
func GetMimeTypeFromExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}

// DetectImageMimeType sniffs the MIME type of a base64 payload.
// Data URL prefixes ("data:image/png;base64,") are accepted. Returns "" when the payload
// is not valid base64.
func DetectImageMimeType(payload string) string {
	if i := strings.Index(payload, ";base64,"); i >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[i+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ""
	}
	return mimetype.Detect(data).String()
}

// FilterImages returns the images whose MIME type is accepted, in input order.
// An absent MIME type is filled in from the payload bytes, then from the file extension.
// Rejected images are logged and skipped; they never fail the request.
func FilterImages(images []models.ImageData) []models.ImageData {
	valid := make([]models.ImageData, 0, len(images))
	for i, img := range images {
		if strings.TrimSpace(img.MimeType) == "" {
			img.MimeType = DetectImageMimeType(img.Base64)
			if !IsValidImageFormat(img.MimeType) {
				img.MimeType = GetMimeTypeFromExtension(filepath.Ext(img.FileName))
			}
		}

		if !IsValidImageFormat(img.MimeType) {
			log.WithFields(log.Fields{
				"index":     i,
				"file_name": img.FileName,
				"mime_type": img.MimeType,
				"event":     "image_rejected",
			}).Warn("Skipping attachment with unsupported image format")
			continue
		}
		valid = append(valid, img)
	}
	return valid
}
