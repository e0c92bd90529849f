//go:build !linux

package respwriter

import (
	"io"
	"syscall"

	"github.com/yourusername/reactorhttp/internal/connection"
)

// transferBody falls back to a read/write staging loop on platforms
// without a wired zero-copy primitive, leaving the state machine and
// offset semantics unchanged from the sendfile path. Darwin has its own
// sendfile(2) with a different calling convention; rather than hand-write
// untested raw syscall numbers for it, this uses the portable fallback
// there too (see DESIGN.md).
func transferBody(rec *connection.Record) (int64, error) {
	if rec.StageLen == 0 {
		if rec.StageBuf == nil {
			rec.StageBuf = make([]byte, stagingBufferSize)
		}
		remaining := rec.BodyRemaining()
		chunk := int64(len(rec.StageBuf))
		if remaining < chunk {
			chunk = remaining
		}
		n, err := rec.BodyFile.ReadAt(rec.StageBuf[:chunk], rec.BodyOffset)
		if err != nil && err != io.EOF {
			return 0, err
		}
		if n == 0 {
			return 0, nil
		}
		rec.StageLen = n
		rec.StageOff = 0
	}

	n, err := syscall.Write(rec.ClientFD, rec.StageBuf[rec.StageOff:rec.StageLen])
	if err != nil {
		return 0, err
	}
	rec.StageOff += n
	if rec.StageOff == rec.StageLen {
		rec.StageLen = 0
	}
	return int64(n), nil
}
