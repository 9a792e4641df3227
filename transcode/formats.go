package transcode

import (
	"path/filepath"
	"strings"
)

// supportedExtensions is the fixed allow-list of container/codec types
// accepted ahead of the pipeline. Anything else is rejected before decode.
var supportedExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".ogg":  true,
	".flac": true,
	".aac":  true,
	".m4a":  true,
	".mp4":  true,
	".mov":  true,
}

// IsSupportedFile reports whether the filename's extension is on the
// allow-list, case-insensitively
func IsSupportedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return supportedExtensions[ext]
}

// SupportedExtensions returns the allow-list in stable order
func SupportedExtensions() []string {
	return []string{".wav", ".mp3", ".ogg", ".flac", ".aac", ".m4a", ".mp4", ".mov"}
}
