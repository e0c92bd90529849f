// Package mimetype resolves a file's content type from its extension using
// a static table rather than magic-number sniffing, matching the narrow
// set of content types a static file server actually emits.
package mimetype

import "strings"

// defaultTable is a reasonable static-file extension table.
var defaultTable = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".mjs":  "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",

	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".bmp":  "image/bmp",

	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".flac": "audio/flac",

	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",

	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",

	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".wasm": "application/wasm",
}

const fallback = "application/octet-stream"

// Detector maps file extensions to MIME types. The zero value uses the
// built-in default table.
type Detector struct {
	table map[string]string
}

// NewDefault returns a Detector backed by the built-in extension table.
func NewDefault() *Detector {
	return &Detector{table: defaultTable}
}

// New returns a Detector backed by a caller-supplied table. Entries must be
// keyed by lowercase extension including the leading dot (e.g. ".html").
// Unset entries fall back to the built-in default table.
func New(overrides map[string]string) *Detector {
	merged := make(map[string]string, len(defaultTable)+len(overrides))
	for k, v := range defaultTable {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return &Detector{table: merged}
}

// TypeForPath returns the MIME type for a file path based on its extension,
// falling back to application/octet-stream for unknown extensions.
func (d *Detector) TypeForPath(path string) string {
	table := d.table
	if table == nil {
		table = defaultTable
	}
	ext := extOf(path)
	if mt, ok := table[ext]; ok {
		return mt
	}
	return fallback
}

func extOf(path string) string {
	dot := strings.LastIndexByte(path, '.')
	slash := strings.LastIndexByte(path, '/')
	if dot == -1 || dot < slash {
		return ""
	}
	return strings.ToLower(path[dot:])
}

// IsText reports whether a MIME type is textual, for deciding whether to
// append a charset to the content-type header.
func IsText(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/")
}
