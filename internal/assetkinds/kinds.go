// Package assetkinds classifies game asset files by extension and maps
// extensions to MIME types for preview delivery.
package assetkinds

import "strings"

var imageExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
	"tga":  true,
	"tif":  true,
	"tiff": true,
	"ico":  true,
}

var audioExtensions = map[string]bool{
	"ogg":  true,
	"wav":  true,
	"mp3":  true,
	"flac": true,
	"m4a":  true,
	"aac":  true,
	"opus": true,
	"oga":  true,
}

var jsonExtensions = map[string]bool{
	"json":   true,
	"mcmeta": true,
}

var mimeTypes = map[string]string{
	"png":    "image/png",
	"jpg":    "image/jpeg",
	"jpeg":   "image/jpeg",
	"gif":    "image/gif",
	"webp":   "image/webp",
	"bmp":    "image/bmp",
	"tif":    "image/tiff",
	"tiff":   "image/tiff",
	"ico":    "image/x-icon",
	"tga":    "image/x-tga",
	"ogg":    "audio/ogg",
	"oga":    "audio/ogg",
	"wav":    "audio/wav",
	"mp3":    "audio/mpeg",
	"flac":   "audio/flac",
	"opus":   "audio/opus",
	"m4a":    "audio/mp4",
	"aac":    "audio/aac",
	"json":   "application/json",
	"mcmeta": "application/json",
}

// IsImage reports whether the lowercased extension names a texture format.
func IsImage(extension string) bool {
	return imageExtensions[strings.ToLower(extension)]
}

// IsAudio reports whether the lowercased extension names a sound format.
func IsAudio(extension string) bool {
	return audioExtensions[strings.ToLower(extension)]
}

// IsJSON reports whether the extension names a JSON-like metadata format.
func IsJSON(extension string) bool {
	return jsonExtensions[strings.ToLower(extension)]
}

// MimeType returns the MIME type for an asset extension, falling back to
// application/octet-stream for unknown formats.
func MimeType(extension string) string {
	if mime, ok := mimeTypes[strings.ToLower(extension)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Extension returns the lowercased final extension of a slash-separated
// path, without the dot. Paths without a dot yield an empty string.
func Extension(path string) string {
	name := path
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}
