package respwriter

import (
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/yourusername/reactorhttp/internal/connection"
)

func socketpair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := syscall.Socketpair(syscall.AF_UNIX, syscall.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	for _, fd := range fds {
		if err := syscall.SetNonblock(fd, true); err != nil {
			t.Fatalf("setnonblock: %v", err)
		}
	}
	t.Cleanup(func() {
		syscall.Close(fds[0])
		syscall.Close(fds[1])
	})
	return fds[0], fds[1]
}

func bodyFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "body")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestAdvanceSendsHeadersThenBody(t *testing.T) {
	server, client := socketpair(t)

	rec := connection.New(server, 256, time.Now())
	rec.State = connection.StateSendingHeaders
	rec.RespHeaderBuf = []byte("HTTP/1.1 200 OK\ncontent-length: 5\n\n")
	rec.RespHeaderLength = len(rec.RespHeaderBuf)

	f := bodyFile(t, "hello")
	rec.BodyFile = f
	rec.BodyFD = int(f.Fd())
	rec.BodyLength = 5

	for rec.State != connection.StateDone {
		outcome, err := Advance(rec)
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if outcome == Suspended {
			t.Fatal("Advance suspended unexpectedly on a socketpair with ample buffer space")
		}
	}

	if rec.BodyFD != -1 {
		t.Errorf("BodyFD = %d, want -1 after completion", rec.BodyFD)
	}

	got := make([]byte, 64)
	n, err := syscall.Read(client, got)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "HTTP/1.1 200 OK\ncontent-length: 5\n\nhello"
	if string(got[:n]) != want {
		t.Errorf("wire bytes = %q, want %q", got[:n], want)
	}
}

func TestAdvanceClosedOnPeerGone(t *testing.T) {
	server, client := socketpair(t)
	syscall.Close(client)

	rec := connection.New(server, 256, time.Now())
	rec.State = connection.StateSendingHeaders
	rec.RespHeaderBuf = []byte("HTTP/1.1 200 OK\n\n")
	rec.RespHeaderLength = len(rec.RespHeaderBuf)

	outcome, err := Advance(rec)
	if outcome != Closed {
		t.Fatalf("outcome = %v, err = %v, want Closed", outcome, err)
	}
	if !rec.DoneForClose {
		t.Error("DoneForClose = false, want true")
	}
}
