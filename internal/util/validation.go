package util

import (
	"strings"
)

// MediaKind classifies an upload by its MIME type
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
	MediaFile  MediaKind = "file"
)

// MediaKindFromMIME maps a Content-Type to image, video or audio;
// anything else is a generic file
func MediaKindFromMIME(contentType string) MediaKind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return MediaImage
	case strings.HasPrefix(ct, "video/"):
		return MediaVideo
	case strings.HasPrefix(ct, "audio/"):
		return MediaAudio
	default:
		return MediaFile
	}
}
