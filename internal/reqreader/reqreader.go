// Package reqreader drains the non-blocking socket into a connection's
// fixed request buffer and parses the request line and header block once
// the terminator has arrived.
//
// Accumulates into the buffer until a blank-line terminator appears, then
// parses the request line and headers in a single pass with no
// backtracking. Unlike a parser built over a blocking io.Reader, this
// reads non-blockingly until the kernel has nothing more ready (EAGAIN)
// and then reports back to the reactor so it can wait for readability and
// resume later — the request buffer carries across calls instead of being
// rebuilt by a pooled io.Reader loop.
package reqreader

import (
	"bytes"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/yourusername/reactorhttp/internal/connection"
	"github.com/yourusername/reactorhttp/internal/socktune"
)

// Outcome reports what happened to the request buffer after one read.
type Outcome int

const (
	// Incomplete means the read drained what the kernel had ready but no
	// full request has arrived yet; stay in READING_REQUEST.
	Incomplete Outcome = iota
	// Complete means a full, well-formed GET request line and header
	// block were parsed; move on to response building.
	Complete
	// BadRequest means the request line or a header line was malformed,
	// or the buffer filled without a terminator; schedule 400 and close.
	BadRequest
	// UnsupportedVersion means the request line named something other
	// than HTTP/1.0 or HTTP/1.1; schedule 505 and close.
	UnsupportedVersion
	// PeerClosed means the read returned 0 bytes or a hard error; drop
	// the connection without a response.
	PeerClosed
)

var httpVersions = map[string]bool{
	"HTTP/1.0": true,
	"HTTP/1.1": true,
}

// Read performs non-blocking reads into rec.ReqBuf until a full header
// block is present (then parses it), the buffer is full, the peer closes,
// or a read fails. EINTR is retried; EAGAIN/EWOULDBLOCK surfaces as
// Incomplete so the reactor can wait for the next readability event.
func Read(rec *connection.Record, tuning socktune.Config, documentRoot string) (Outcome, error) {
	for {
		if rec.ReqLen >= len(rec.ReqBuf) {
			if end, ok := findTerminator(rec.ReqBuf[:rec.ReqLen]); ok {
				return parse(rec, end, documentRoot)
			}
			return BadRequest, nil
		}

		n, err := syscall.Read(rec.ClientFD, rec.ReqBuf[rec.ReqLen:])
		if err == syscall.EINTR {
			continue
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			return Incomplete, nil
		}
		if err != nil {
			return PeerClosed, err
		}
		if n == 0 {
			return PeerClosed, nil
		}

		rec.ReqLen += n
		if tuning.QuickAck {
			_ = socktune.RefreshQuickAck(rec.ClientFD)
		}

		if end, ok := findTerminator(rec.ReqBuf[:rec.ReqLen]); ok {
			return parse(rec, end, documentRoot)
		}
		// Kept reading: a single readability event can carry more than
		// one socket buffer's worth of data on a busy sender.
	}
}

// findTerminator reports the index just past the first blank line in buf,
// accepting both "\r\n\r\n" and a bare "\n\n" as the header terminator
// (spec permits either line separator).
func findTerminator(buf []byte) (end int, ok bool) {
	for i := 0; i < len(buf); i++ {
		if buf[i] != '\n' {
			continue
		}
		j := i + 1
		if j < len(buf) && buf[j] == '\r' {
			j++
		}
		if j < len(buf) && buf[j] == '\n' {
			return j + 1, true
		}
	}
	return 0, false
}

// parse splits rec.ReqBuf[:headerEnd] into the request line and header
// lines and fills in rec's request fields.
func parse(rec *connection.Record, headerEnd int, documentRoot string) (Outcome, error) {
	block := rec.ReqBuf[:headerEnd]
	lines := splitLines(block)
	if len(lines) == 0 || len(lines[0]) == 0 {
		return BadRequest, nil
	}

	method, target, version, ok := splitRequestLine(lines[0])
	if !ok {
		return BadRequest, nil
	}
	if !httpVersions[string(version)] {
		rec.ProtocolVersion = string(version)
		return UnsupportedVersion, nil
	}
	if !bytes.Equal(method, []byte("GET")) {
		return BadRequest, nil
	}

	rec.Method = string(method)
	rec.Target = string(target)
	rec.ProtocolVersion = string(version)

	for _, line := range lines[1:] {
		if len(line) == 0 {
			continue // the trailing blank line that marks the terminator
		}
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			return BadRequest, nil
		}
		name := bytes.TrimSpace(line[:colon])
		value := bytes.TrimSpace(line[colon+1:])
		if len(name) == 0 {
			return BadRequest, nil
		}
		rec.Headers.Add(string(name), string(value))
		if bytes.EqualFold(name, []byte("Connection")) {
			rec.RequestConnToken = string(bytes.ToLower(value))
		}
	}

	rec.AbsolutePath = resolvePath(documentRoot, rec.Target)
	rec.State = connection.StateSendingHeaders
	return Complete, nil
}

// resolvePath joins target onto documentRoot, normalizing ".." segments so
// the result never escapes the root, and resolves a directory target to
// its index.html.
func resolvePath(documentRoot, target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}
	// path.Clean strips a trailing slash (except for "/" itself), so the
	// directory check must happen before cleaning.
	isDir := target == "" || strings.HasSuffix(target, "/")
	clean := path.Clean("/" + target) // leading slash makes Clean collapse ".." at the root
	full := filepath.Join(documentRoot, clean)
	if isDir {
		full = filepath.Join(full, "index.html")
	}
	return full
}

// splitLines splits buf on '\n', trimming a trailing '\r' from each line.
// The final, empty element produced by the trailing terminator is kept so
// callers can distinguish "no headers at all" from "parse error".
func splitLines(buf []byte) [][]byte {
	raw := bytes.Split(buf, []byte("\n"))
	lines := make([][]byte, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, bytes.TrimSuffix(l, []byte("\r")))
	}
	return lines
}

// splitRequestLine splits "METHOD target VERSION" on single spaces.
func splitRequestLine(line []byte) (method, target, version []byte, ok bool) {
	fields := bytes.Fields(line)
	if len(fields) != 3 {
		return nil, nil, nil, false
	}
	return fields[0], fields[1], fields[2], true
}
