// Package connection defines the per-connection record: the state machine
// position and all buffers/offsets/descriptors a single client connection
// owns, mutated only by the reactor goroutine (single-writer, no locks).
//
// Models a keep-alive HTTP/1.1 connection as an explicit state enum plus
// last-activity bookkeeping, the same shape as a blocking per-connection
// handler's state tracking but without the atomics such a handler needs
// for cross-goroutine visibility — the reactor's single-writer discipline
// makes them unnecessary — and with a raw fd, fixed buffers, and explicit
// offsets in place of bufio.Reader/bufio.Writer, since nothing here may
// block the event loop.
package connection

import (
	"os"
	"time"

	"github.com/yourusername/reactorhttp/internal/header"
)

// State is one position in the connection's state machine.
type State int

const (
	// StateReadingRequest is the initial state after accept, and the state
	// entered again when a keep-alive connection's next request starts.
	StateReadingRequest State = iota
	StateSendingHeaders
	StateSendingBody
	StateDone
	StateKeepAliveIdle
)

func (s State) String() string {
	switch s {
	case StateReadingRequest:
		return "READING_REQUEST"
	case StateSendingHeaders:
		return "SENDING_HEADERS"
	case StateSendingBody:
		return "SENDING_BODY"
	case StateDone:
		return "DONE"
	case StateKeepAliveIdle:
		return "KEEP_ALIVE_IDLE"
	default:
		return "UNKNOWN"
	}
}

// Record is the per-connection state block. ClientFD doubles as the
// record's identity and its handle inside the priority queue.
type Record struct {
	ClientFD     int
	PriorityTime int64 // last-activity unix nanoseconds; mirrors the heap key
	State        State
	DoneForClose bool
	KeepAlive    bool

	// Request side (filled in by the request reader).
	ReqBuf           []byte // bounded request buffer, fixed capacity
	ReqLen           int    // bytes currently held in ReqBuf
	ProtocolVersion  string
	Method           string
	Target           string
	Headers          header.List
	AbsolutePath     string
	RequestConnToken string // raw "Connection:" header value, lowercased

	// Response side (filled in by the response builder and writer).
	RespStatusCode     int
	RespHeaderBuf      []byte
	RespHeaderOffset   int
	RespHeaderLength   int
	BodyFD             int
	BodyLength         int64
	BodyOffset         int64
	// BodyFile keeps the body's *os.File reachable for as long as BodyFD
	// is in use. Go finalizes an unreferenced *os.File by closing its fd,
	// so the raw int alone is not enough to keep the descriptor valid
	// across reactor iterations.
	BodyFile *os.File

	// StageBuf/StageOff/StageLen back the read/write staging fallback
	// the response writer uses on platforms without a kernel zero-copy
	// primitive. Unused (nil/0/0) on platforms that sendfile directly.
	StageBuf []byte
	StageOff int
	StageLen int

	// Ambient: when this connection was accepted.
	AcceptedAt time.Time
	// RequestStartedAt marks when the current request began being read,
	// used only for the access log's duration field.
	RequestStartedAt time.Time
}

// New creates a fresh record for an accepted fd, in READING_REQUEST with an
// empty request buffer of the configured capacity.
func New(fd int, requestBufferSize int, now time.Time) *Record {
	r := &Record{
		ClientFD:   fd,
		AcceptedAt: now,
		BodyFD:     -1,
	}
	r.ReqBuf = make([]byte, requestBufferSize)
	r.resetRequestFields()
	r.State = StateReadingRequest
	r.PriorityTime = now.UnixNano()
	r.RequestStartedAt = now
	return r
}

// resetRequestFields clears everything specific to one request/response
// cycle so the record can be reused for the next request on a keep-alive
// connection. A connection sitting in KEEP_ALIVE_IDLE must have no
// in-flight response left over from the previous request.
func (r *Record) resetRequestFields() {
	r.ReqLen = 0
	r.ProtocolVersion = ""
	r.Method = ""
	r.Target = ""
	r.Headers.Free()
	r.AbsolutePath = ""
	r.RequestConnToken = ""
	r.RespStatusCode = 0
	r.RespHeaderBuf = nil
	r.RespHeaderOffset = 0
	r.RespHeaderLength = 0
	r.CloseBody()
	r.BodyLength = 0
	r.BodyOffset = 0
}

// CloseBody closes the body file, if any, and resets BodyFD to -1. A
// KEEP_ALIVE_IDLE or closed record must never hold an open body fd.
func (r *Record) CloseBody() {
	if r.BodyFile != nil {
		_ = r.BodyFile.Close()
	}
	r.BodyFile = nil
	r.BodyFD = -1
	r.StageLen = 0
	r.StageOff = 0
}

// PrepareForNextRequest transitions a DONE, keep-alive-eligible record back
// to READING_REQUEST for the next request on the same connection, resetting
// the request buffer and all per-request fields.
func (r *Record) PrepareForNextRequest(now time.Time) {
	r.resetRequestFields()
	r.State = StateReadingRequest
	r.RequestStartedAt = now
}

// MarkIdle transitions into KEEP_ALIVE_IDLE once a response has finished
// and the connection is being kept open.
func (r *Record) MarkIdle() {
	r.State = StateKeepAliveIdle
}

// HeadersRemaining reports the unsent bytes of the outgoing header
// buffer. RespHeaderOffset never exceeds RespHeaderLength.
func (r *Record) HeadersRemaining() int {
	return r.RespHeaderLength - r.RespHeaderOffset
}

// BodyRemaining reports the unsent bytes of the response body.
func (r *Record) BodyRemaining() int64 {
	return r.BodyLength - r.BodyOffset
}
