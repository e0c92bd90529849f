//go:build linux

package respwriter

import (
	"syscall"

	"github.com/yourusername/reactorhttp/internal/connection"
)

// maxSendfileChunk caps a single sendfile(2) call for transfers that could
// exceed what one syscall accepts.
const maxSendfileChunk = 1 << 30

// transferBody issues one sendfile(2) call moving up to maxSendfileChunk
// bytes directly from the body file to the client socket, with no
// userspace copy.
func transferBody(rec *connection.Record) (int64, error) {
	remaining := rec.BodyRemaining()
	chunk := remaining
	if chunk > maxSendfileChunk {
		chunk = maxSendfileChunk
	}
	off := rec.BodyOffset
	n, err := syscall.Sendfile(rec.ClientFD, int(rec.BodyFile.Fd()), &off, int(chunk))
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}
