package respbuilder

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/reactorhttp/internal/connection"
	"github.com/yourusername/reactorhttp/internal/mimetype"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(filepath.Join(dir, name)), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func testRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "hello.txt", "hello world")
	writeFile(t, dir, "error/404.html", "not found page")
	writeFile(t, dir, "error/error.html", "error page")
	return dir
}

func testRecord(target, protocol, connToken string) *connection.Record {
	rec := connection.New(3, 512, time.Now())
	rec.Method = "GET"
	rec.Target = target
	rec.ProtocolVersion = protocol
	rec.RequestConnToken = connToken
	rec.AbsolutePath = "" // each test below sets it before calling Build
	rec.State = connection.StateSendingHeaders
	return rec
}

func TestBuildServesExistingFileWithKeepAlive(t *testing.T) {
	root := testRoot(t)
	rec := testRecord("/hello.txt", "HTTP/1.1", "keep-alive")
	rec.AbsolutePath = filepath.Join(root, "hello.txt")

	cfg := Config{DocumentRoot: root, ServerName: "reactorhttp", KeepAliveTimeout: 60}
	if err := Build(rec, cfg, mimetype.NewDefault(), time.Now()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer rec.CloseBody()

	if rec.RespStatusCode != 200 {
		t.Errorf("status = %d, want 200", rec.RespStatusCode)
	}
	if !rec.KeepAlive {
		t.Error("KeepAlive = false, want true")
	}
	if rec.BodyLength != 11 {
		t.Errorf("BodyLength = %d, want 11", rec.BodyLength)
	}
	header := string(rec.RespHeaderBuf)
	if !strings.Contains(header, "HTTP/1.1 200 OK\n") {
		t.Errorf("header missing status line: %q", header)
	}
	if !strings.Contains(header, "connection: keep-alive\n") {
		t.Errorf("header missing keep-alive: %q", header)
	}
	if !strings.Contains(header, "content-length: 11\n") {
		t.Errorf("header missing content-length: %q", header)
	}
	if !strings.Contains(header, "content-type: text/plain; charset=UTF-8\n") {
		t.Errorf("header missing content-type: %q", header)
	}
	if strings.Contains(header, "\r") {
		t.Errorf("header contains CR, want bare LF terminators: %q", header)
	}
}

func TestBuildMissingFileFallsBackTo404(t *testing.T) {
	root := testRoot(t)
	rec := testRecord("/missing", "HTTP/1.1", "close")
	rec.AbsolutePath = filepath.Join(root, "missing")

	cfg := Config{DocumentRoot: root, ServerName: "reactorhttp", KeepAliveTimeout: 60}
	if err := Build(rec, cfg, mimetype.NewDefault(), time.Now()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer rec.CloseBody()

	if rec.RespStatusCode != 404 {
		t.Errorf("status = %d, want 404", rec.RespStatusCode)
	}
	if rec.BodyLength != int64(len("not found page")) {
		t.Errorf("BodyLength = %d, want %d", rec.BodyLength, len("not found page"))
	}
}

func TestBuildHTTP10NeverKeepsAlive(t *testing.T) {
	root := testRoot(t)
	rec := testRecord("/hello.txt", "HTTP/1.0", "keep-alive")
	rec.AbsolutePath = filepath.Join(root, "hello.txt")

	cfg := Config{DocumentRoot: root, ServerName: "reactorhttp", KeepAliveTimeout: 60}
	if err := Build(rec, cfg, mimetype.NewDefault(), time.Now()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer rec.CloseBody()

	if rec.KeepAlive {
		t.Error("KeepAlive = true for HTTP/1.0, want false")
	}
	if !strings.Contains(string(rec.RespHeaderBuf), "connection: close\n") {
		t.Errorf("header missing connection: close: %q", rec.RespHeaderBuf)
	}
}

func TestBuildErrorClosesConnection(t *testing.T) {
	root := testRoot(t)
	rec := testRecord("/x", "HTTP/2.0", "")

	cfg := Config{DocumentRoot: root, ServerName: "reactorhttp", KeepAliveTimeout: 60}
	if err := BuildError(rec, cfg, 505, time.Now()); err != nil {
		t.Fatalf("BuildError: %v", err)
	}
	defer rec.CloseBody()

	if !rec.DoneForClose {
		t.Error("DoneForClose = false, want true")
	}
	if rec.KeepAlive {
		t.Error("KeepAlive = true, want false")
	}
	if rec.RespStatusCode != 505 {
		t.Errorf("status = %d, want 505", rec.RespStatusCode)
	}
}
