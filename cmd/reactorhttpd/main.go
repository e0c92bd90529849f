// Command reactorhttpd runs the static-file reactor server.
//
// Flags layer over config.Default(); SIGINT/SIGTERM trigger a graceful
// Stop() from a dedicated signal-handling goroutine — the one
// cross-goroutine interaction the reactor allows, since Run() otherwise
// blocks the calling goroutine for as long as the server is up.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourusername/reactorhttp/internal/accesslog"
	"github.com/yourusername/reactorhttp/internal/config"
	"github.com/yourusername/reactorhttp/internal/reactor"
)

func main() {
	cfg := parseFlags()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("reactorhttpd: invalid configuration: %v", err)
	}

	logger := accesslog.New(os.Stdout, accesslog.JSON)

	r, err := reactor.New(cfg, logger)
	if err != nil {
		log.Fatalf("reactorhttpd: startup failed: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("reactorhttpd: shutting down")
		r.Stop()
	}()

	log.Printf("reactorhttpd: listening on %s, document root %s", cfg.ListenAddr, cfg.DocumentRoot)
	if err := r.Run(); err != nil {
		log.Fatalf("reactorhttpd: %v", err)
	}
}

// parseFlags builds a Config from command-line flags layered over
// config.Default().
func parseFlags() config.Config {
	defaults := config.Default()

	documentRoot := flag.String("document-root", defaults.DocumentRoot, "filesystem directory to serve")
	listenAddr := flag.String("listen-addr", defaults.ListenAddr, "address to listen on, e.g. :8080")
	maxConnections := flag.Int("max-connections", defaults.MaxConnections, "capacity of the keep-alive connection queue")
	idleTimeoutSeconds := flag.Int("idle-timeout-seconds", int(defaults.IdleTimeout/time.Second), "seconds before an idle keep-alive connection is closed")
	requestBufferSize := flag.Int("request-buffer-size", defaults.RequestBufferSize, "bytes reserved per connection for the incoming request")
	socketBufferBytes := flag.Int("socket-buffer-bytes", defaults.SocketBufferBytes, "SO_RCVBUF/SO_SNDBUF size for accepted connections")
	serverName := flag.String("server-name", defaults.ServerName, "value sent in the server response header")

	flag.Parse()

	cfg := defaults
	cfg.DocumentRoot = *documentRoot
	cfg.ListenAddr = *listenAddr
	cfg.MaxConnections = *maxConnections
	cfg.IdleTimeout = time.Duration(*idleTimeoutSeconds) * time.Second
	cfg.RequestBufferSize = *requestBufferSize
	cfg.SocketBufferBytes = *socketBufferBytes
	cfg.ServerName = *serverName
	cfg.KeepAliveAdvertisedTimeout = *idleTimeoutSeconds
	return cfg
}
