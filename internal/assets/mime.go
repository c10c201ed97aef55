package assets

import (
	"path/filepath"
	"strings"
)

// Category is the storage bucket an asset belongs to. Values double as the
// directory (local) and key prefix (remote) names.
type Category string

const (
	// CategoryAvatar holds composer portrait images
	CategoryAvatar Category = "avatars"

	// CategorySheet holds sheet music documents
	CategorySheet Category = "sheets"

	// CategoryRecording holds audio recordings
	CategoryRecording Category = "recordings"
)

// DefaultContentType is used for files with an unrecognized extension
const DefaultContentType = "application/octet-stream"

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
}

var categories = map[string]Category{
	".pdf":  CategorySheet,
	".jpg":  CategoryAvatar,
	".jpeg": CategoryAvatar,
	".png":  CategoryAvatar,
	".webp": CategoryAvatar,
	".mp3":  CategoryRecording,
	".wav":  CategoryRecording,
	".m4a":  CategoryRecording,
	".ogg":  CategoryRecording,
}

// ContentTypeForPath infers the MIME content type from a file extension.
// Unknown extensions map to application/octet-stream.
func ContentTypeForPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return DefaultContentType
}

// CategoryForPath infers the storage category from a file extension.
// Returns false for extensions with no category mapping.
func CategoryForPath(path string) (Category, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	cat, ok := categories[ext]
	return cat, ok
}
