// Package accesslog records one structured entry per completed request, as
// either a JSON or a plain-text line. The reactor has no handler chain to
// wrap a timer around, so it calls Log directly once a response finishes
// rather than through middleware.
package accesslog

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"
)

// Format selects the line format Log writes.
type Format int

const (
	JSON Format = iota
	Text
)

// Logger writes one access-log entry per completed request.
type Logger struct {
	out    io.Writer
	format Format
}

// New returns a Logger writing to out in the given format.
func New(out io.Writer, format Format) *Logger {
	return &Logger{out: out, format: format}
}

// Entry is one completed request's record.
type Entry struct {
	Time       string  `json:"time"`
	RemoteFD   int     `json:"remote_fd"`
	Method     string  `json:"method"`
	Target     string  `json:"target"`
	Status     int     `json:"status"`
	BytesSent  int64   `json:"bytes"`
	DurationMS float64 `json:"duration_ms"`
	KeepAlive  bool    `json:"keep_alive"`
}

// Log writes one entry. Encoding failures are logged through the
// standard logger and otherwise ignored — a broken access log must never
// take down the reactor.
func (l *Logger) Log(e Entry) {
	switch l.format {
	case Text:
		l.logText(e)
	default:
		l.logJSON(e)
	}
}

func (l *Logger) logJSON(e Entry) {
	enc := json.NewEncoder(l.out)
	if err := enc.Encode(e); err != nil {
		log.Printf("accesslog: write failed: %v", err)
	}
}

func (l *Logger) logText(e Entry) {
	line := fmt.Sprintf("fd=%d %s %s %d %dB %.2fms keepalive=%t\n",
		e.RemoteFD, e.Method, e.Target, e.Status, e.BytesSent, e.DurationMS, e.KeepAlive)
	if _, err := l.out.Write([]byte(line)); err != nil {
		log.Printf("accesslog: write failed: %v", err)
	}
}

// NewEntry builds an Entry from request timing, stamping Time with now.
func NewEntry(fd int, method, target string, status int, bytesSent int64, started, now time.Time, keepAlive bool) Entry {
	return Entry{
		Time:       now.UTC().Format(time.RFC3339),
		RemoteFD:   fd,
		Method:     method,
		Target:     target,
		Status:     status,
		BytesSent:  bytesSent,
		DurationMS: float64(now.Sub(started).Microseconds()) / 1000.0,
		KeepAlive:  keepAlive,
	}
}
