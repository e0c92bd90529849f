// Package respbuilder turns a connection in SENDING_HEADERS with a
// resolved request into an open body descriptor and a composed outgoing
// header buffer: the status line followed by a fixed header set, composed
// once into a single buffer from a plain os.File open/stat before any
// socket write happens.
package respbuilder

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/reactorhttp/internal/connection"
	"github.com/yourusername/reactorhttp/internal/mimetype"
	"github.com/yourusername/reactorhttp/internal/statusline"
)

// Config carries the values the builder needs from the server's static
// configuration; it never mutates these.
type Config struct {
	DocumentRoot       string
	ServerName         string
	KeepAliveTimeout   int // seconds, advertised in the keep-alive header
	CacheControl       string
}

// notFoundTemplate and errorTemplate are the fixed, required template
// paths every document root must provide.
const (
	notFoundTemplate = "error/404.html"
	errorTemplate    = "error/error.html"
)

// Build opens the connection's resolved body (substituting a template on
// failure), stats it, determines keep-alive, and composes the outgoing
// header buffer. rec must already be in SENDING_HEADERS with AbsolutePath,
// Target, ProtocolVersion and RequestConnToken set.
func Build(rec *connection.Record, cfg Config, detector *mimetype.Detector, now time.Time) error {
	file, status, err := openBody(cfg.DocumentRoot, rec.AbsolutePath)
	if err != nil {
		return err
	}
	rec.BodyFile = file
	rec.BodyFD = int(file.Fd())
	rec.RespStatusCode = status

	info, err := file.Stat()
	if err != nil {
		return err
	}
	rec.BodyLength = info.Size()
	rec.BodyOffset = 0

	mimeType := detector.TypeForPath(file.Name())
	if mimetype.IsText(mimeType) {
		mimeType += "; charset=UTF-8"
	}

	rec.KeepAlive = isKeepAlive(rec.RequestConnToken, rec.ProtocolVersion)

	rec.RespHeaderBuf = []byte(composeHeaders(rec, cfg, mimeType, info.ModTime(), now))
	rec.RespHeaderOffset = 0
	rec.RespHeaderLength = len(rec.RespHeaderBuf)
	return nil
}

// openBody opens absPath, resolving a bare directory target (one that
// reached here without a trailing slash, so the reader's own index.html
// substitution did not apply) to its index file, and falling back to the
// 404/error templates on failure.
func openBody(documentRoot, absPath string) (*os.File, int, error) {
	if st, statErr := os.Stat(absPath); statErr == nil && st.IsDir() {
		absPath = filepath.Join(absPath, "index.html")
	}
	file, err := os.Open(absPath)

	switch {
	case err == nil:
		return file, statusline.OK, nil
	case os.IsNotExist(err):
		f, tErr := os.Open(filepath.Join(documentRoot, notFoundTemplate))
		if tErr != nil {
			return nil, 0, fmt.Errorf("required 404 template missing: %w", tErr)
		}
		return f, statusline.NotFound, nil
	default:
		f, tErr := os.Open(filepath.Join(documentRoot, errorTemplate))
		if tErr != nil {
			return nil, 0, fmt.Errorf("required error template missing: %w", tErr)
		}
		return f, statusline.InternalServerError, nil
	}
}

// BuildError composes a response for a request that never reached a valid
// target — malformed (400) or an unsupported protocol version (505) — by
// substituting the fixed error template. These responses always close the
// connection rather than keep it alive.
func BuildError(rec *connection.Record, cfg Config, status int, now time.Time) error {
	file, err := os.Open(filepath.Join(cfg.DocumentRoot, errorTemplate))
	if err != nil {
		return fmt.Errorf("required error template missing: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		return err
	}
	rec.BodyFile = file
	rec.BodyFD = int(file.Fd())
	rec.RespStatusCode = status
	rec.BodyLength = info.Size()
	rec.BodyOffset = 0
	rec.KeepAlive = false
	rec.DoneForClose = true

	rec.RespHeaderBuf = []byte(composeHeaders(rec, cfg, "text/html; charset=UTF-8", info.ModTime(), now))
	rec.RespHeaderOffset = 0
	rec.RespHeaderLength = len(rec.RespHeaderBuf)
	rec.State = connection.StateSendingHeaders
	return nil
}

// isKeepAlive reports whether a request's Connection header value begins
// with 'k' (case-insensitive, already lowercased by the reader) on an
// HTTP/1.1 request.
func isKeepAlive(connToken, protocolVersion string) bool {
	return protocolVersion == "HTTP/1.1" && strings.HasPrefix(connToken, "k")
}

// composeHeaders builds the status line and header block in a fixed
// order, terminated by a blank line. The block uses "\n" throughout,
// matching statusline's pre-compiled lines.
func composeHeaders(rec *connection.Record, cfg Config, mimeType string, modTime, now time.Time) string {
	var b strings.Builder
	b.WriteString(statusline.Line(rec.RespStatusCode))

	if rec.KeepAlive {
		b.WriteString("connection: keep-alive\n")
		b.WriteString("keep-alive: timeout=" + strconv.Itoa(cfg.KeepAliveTimeout) + "\n")
	} else {
		b.WriteString("connection: close\n")
	}

	b.WriteString("content-length: " + strconv.FormatInt(rec.BodyLength, 10) + "\n")
	b.WriteString("content-type: " + mimeType + "\n")
	b.WriteString("date: " + now.UTC().Format(httpDateLayout) + "\n")
	b.WriteString("last-modified: " + modTime.UTC().Format(httpDateLayout) + "\n")
	b.WriteString("server: " + cfg.ServerName + "\n")
	if cfg.CacheControl != "" {
		b.WriteString("cache-control: " + cfg.CacheControl + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// httpDateLayout is RFC 1123 rendered in GMT, used for the "date" and
// "last-modified" headers.
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
