// Package respwriter implements the non-blocking send of a composed header
// buffer followed by the zero-copy (where available) transfer of the
// response body.
//
// "Send via sendfile(2), fall back to a copy loop" is the shape of the
// body transfer, driven one non-blocking attempt at a time from the
// connection record's own offsets rather than looping to completion
// inside a single call — the reactor, not this package, owns suspending
// on EAGAIN and resuming on the next writability event.
package respwriter

import (
	"syscall"

	"github.com/yourusername/reactorhttp/internal/connection"
)

// Outcome reports what Advance did.
type Outcome int

const (
	// Suspended means a write returned EAGAIN/EWOULDBLOCK; stay
	// registered for writability and call Advance again later.
	Suspended Outcome = iota
	// Progressed means the header phase finished and rec.State is now
	// SENDING_BODY; keep calling Advance on writability to send the body.
	Progressed
	// Finished means the body finished sending; rec.State is now DONE.
	Finished
	// Closed means a hard error or a zero-byte send occurred; rec.DoneForClose is set.
	Closed
)

// stagingBufferSize bounds the read/write fallback's per-call chunk on
// platforms without a kernel zero-copy transfer.
const stagingBufferSize = 64 * 1024

// Advance performs one round of non-blocking I/O appropriate to rec's
// current state (SENDING_HEADERS or SENDING_BODY) and returns what
// happened. Callers must not call Advance on a record in any other state.
func Advance(rec *connection.Record) (Outcome, error) {
	switch rec.State {
	case connection.StateSendingHeaders:
		return advanceHeaders(rec)
	case connection.StateSendingBody:
		return advanceBody(rec)
	default:
		return Closed, nil
	}
}

// advanceHeaders writes from RespHeaderBuf[offset:length] until the kernel
// socket buffer is full (EAGAIN) or the whole buffer has been sent.
func advanceHeaders(rec *connection.Record) (Outcome, error) {
	for {
		if rec.HeadersRemaining() == 0 {
			rec.State = connection.StateSendingBody
			return Progressed, nil
		}

		n, err := syscall.Write(rec.ClientFD, rec.RespHeaderBuf[rec.RespHeaderOffset:rec.RespHeaderLength])
		if err == syscall.EINTR {
			continue
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			return Suspended, nil
		}
		if err != nil {
			rec.DoneForClose = true
			return Closed, err
		}
		if n == 0 {
			rec.DoneForClose = true
			return Closed, nil
		}
		rec.RespHeaderOffset += n
	}
}

// advanceBody transfers from BodyFile at BodyOffset to the client socket,
// preferring the platform's zero-copy primitive (transferBody).
func advanceBody(rec *connection.Record) (Outcome, error) {
	for {
		if rec.BodyRemaining() == 0 {
			rec.CloseBody()
			rec.State = connection.StateDone
			return Finished, nil
		}

		n, err := transferBody(rec)
		if err == syscall.EINTR {
			continue
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			return Suspended, nil
		}
		if err != nil {
			rec.DoneForClose = true
			return Closed, err
		}
		if n == 0 {
			rec.DoneForClose = true
			return Closed, nil
		}
		rec.BodyOffset += n
		if rec.BodyRemaining() == 0 {
			rec.CloseBody()
			rec.State = connection.StateDone
			return Finished, nil
		}
	}
}
