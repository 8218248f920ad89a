package pages

import "strings"

var contentTypes = map[string]string{
	"css":  "text/css",
	"js":   "application/javascript",
	"json": "application/json",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"ico":  "image/x-icon",
	"txt":  "text/plain",
}

// ContentType returns the MIME type for a file extension (without the dot).
// The lookup is case-insensitive. ok is false for extensions outside the
// table, in which case no content type should be sent.
func ContentType(ext string) (contentType string, ok bool) {
	contentType, ok = contentTypes[strings.ToLower(ext)]
	return contentType, ok
}
