package reactor

import (
	"fmt"
	"log"
	"strconv"
	"syscall"
	"time"

	"github.com/yourusername/reactorhttp/internal/accesslog"
	"github.com/yourusername/reactorhttp/internal/config"
	"github.com/yourusername/reactorhttp/internal/connection"
	"github.com/yourusername/reactorhttp/internal/mimetype"
	"github.com/yourusername/reactorhttp/internal/pqueue"
	"github.com/yourusername/reactorhttp/internal/reqreader"
	"github.com/yourusername/reactorhttp/internal/respbuilder"
	"github.com/yourusername/reactorhttp/internal/respwriter"
	"github.com/yourusername/reactorhttp/internal/socktune"
	"github.com/yourusername/reactorhttp/internal/statusline"
)

// defaultWait bounds how long a single poll blocks when the queue is
// empty, so the reactor still notices a Stop() call promptly.
const defaultWait = 1 * time.Second

// Reactor owns the listener, the readiness multiplexer, the indexed
// priority queue and the full set of live connection records. It is the
// only goroutine that ever touches any of them.
type Reactor struct {
	cfg      config.Config
	respCfg  respbuilder.Config
	tuning   socktune.Config
	detector *mimetype.Detector
	logger   *accesslog.Logger

	listenFD int
	pfd      poller
	queue    *pqueue.Queue
	conns    map[int]*connection.Record

	shutdown chan struct{}
}

// New constructs a Reactor bound to a fresh listening socket. The listener
// is open and tuned but not yet accepting — that starts with Run.
func New(cfg config.Config, logger *accesslog.Logger) (*Reactor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	listenFD, err := newListener(cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("reactor: listen %s: %w", cfg.ListenAddr, err)
	}

	tuning := socktune.Default(cfg.SocketBufferBytes)
	if err := socktune.ApplyListener(listenFD, tuning); err != nil {
		log.Printf("reactor: listener tuning best-effort failed: %v", err)
	}

	pfd, err := newPoller()
	if err != nil {
		syscall.Close(listenFD)
		return nil, fmt.Errorf("reactor: %w", err)
	}
	if err := pfd.Add(listenFD, false); err != nil {
		pfd.Close()
		syscall.Close(listenFD)
		return nil, fmt.Errorf("reactor: register listener: %w", err)
	}

	return &Reactor{
		cfg: cfg,
		respCfg: respbuilder.Config{
			DocumentRoot:     cfg.DocumentRoot,
			ServerName:       cfg.ServerName,
			KeepAliveTimeout: cfg.KeepAliveAdvertisedTimeout,
			CacheControl:     "no-cache",
		},
		tuning:   tuning,
		detector: mimetype.NewDefault(),
		logger:   logger,
		listenFD: listenFD,
		pfd:      pfd,
		queue:    pqueue.New(cfg.MaxConnections),
		conns:    make(map[int]*connection.Record, cfg.MaxConnections),
		shutdown: make(chan struct{}),
	}, nil
}

// Stop requests the run loop to exit at its next iteration. Safe to call
// more than once or from another goroutine — the only permitted cross-
// goroutine interaction; everything else stays on the reactor goroutine.
func (r *Reactor) Stop() {
	select {
	case <-r.shutdown:
	default:
		close(r.shutdown)
	}
}

// Run is the reactor's single thread of control. It blocks until Stop is
// called or the poller reports a fatal error.
func (r *Reactor) Run() error {
	defer r.closeAll()

	for {
		select {
		case <-r.shutdown:
			return nil
		default:
		}

		timeout := r.nextTimeout(time.Now())
		events, err := r.pfd.Wait(timeout)
		if err != nil {
			return fmt.Errorf("reactor: poll: %w", err)
		}

		now := time.Now()
		for _, ev := range events {
			if ev.fd == r.listenFD {
				r.acceptLoop(now)
				continue
			}

			rec, ok := r.conns[ev.fd]
			if !ok {
				continue
			}
			if ev.errored {
				r.closeConnection(ev.fd)
				continue
			}
			if ev.readable {
				r.handleReadable(rec, now)
			}
			if _, stillOpen := r.conns[ev.fd]; stillOpen && ev.writable {
				r.handleWritable(rec, now)
			}
		}

		r.sweep(time.Now())
	}
}

// nextTimeout waits until the oldest connection would go idle, or a short
// default when the queue is empty.
func (r *Reactor) nextTimeout(now time.Time) time.Duration {
	_, priority, ok := r.queue.PeekMin()
	if !ok {
		return defaultWait
	}
	deadline := time.Unix(0, priority).Add(r.cfg.IdleTimeout)
	if d := deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// acceptLoop drains the listener's backlog: accept until EAGAIN.
func (r *Reactor) acceptLoop(now time.Time) {
	for {
		fd, _, err := syscall.Accept(r.listenFD)
		if err == syscall.EINTR {
			continue
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			return
		}
		if err != nil {
			log.Printf("reactor: accept: %v", err)
			return
		}
		r.acceptOne(fd, now)
	}
}

func (r *Reactor) acceptOne(fd int, now time.Time) {
	if err := syscall.SetNonblock(fd, true); err != nil {
		syscall.Close(fd)
		return
	}
	if err := socktune.Apply(fd, r.tuning); err != nil {
		log.Printf("reactor: connection tuning failed for fd %d: %v", fd, err)
	}

	if err := r.queue.Enqueue(fd, now.UnixNano()); err != nil {
		r.rejectQueueFull(fd)
		return
	}
	if err := r.pfd.Add(fd, false); err != nil {
		r.queue.Remove(fd)
		syscall.Close(fd)
		return
	}

	r.conns[fd] = connection.New(fd, r.cfg.RequestBufferSize, now)
}

// rejectQueueFull replies 429 inline, then closes, without ever entering
// the connection loop.
func (r *Reactor) rejectQueueFull(fd int) {
	body := []byte("server connection limit reached\n")
	head := statusline.Line(statusline.TooManyRequests) +
		"connection: close\n" +
		"content-length: " + strconv.Itoa(len(body)) + "\n" +
		"content-type: text/plain\n\n"

	_, _ = syscall.Write(fd, append([]byte(head), body...))
	syscall.Close(fd)
}

// handleReadable advances request reading (or, for a connection coming out
// of KEEP_ALIVE_IDLE, first re-enters READING_REQUEST) and hands a
// complete or rejected request to the response builder.
func (r *Reactor) handleReadable(rec *connection.Record, now time.Time) {
	if rec.State == connection.StateKeepAliveIdle {
		rec.PrepareForNextRequest(now)
	}
	if rec.State != connection.StateReadingRequest {
		return
	}

	outcome, _ := reqreader.Read(rec, r.tuning, r.cfg.DocumentRoot)
	switch outcome {
	case reqreader.Incomplete:
		r.touch(rec, now)

	case reqreader.Complete:
		if err := respbuilder.Build(rec, r.respCfg, r.detector, now); err != nil {
			log.Printf("reactor: build response for fd %d: %v", rec.ClientFD, err)
			r.closeConnection(rec.ClientFD)
			return
		}
		_ = r.pfd.ModifyWritable(rec.ClientFD, true)
		r.touch(rec, now)

	case reqreader.BadRequest:
		r.scheduleErrorResponse(rec, statusline.BadRequest, now)

	case reqreader.UnsupportedVersion:
		r.scheduleErrorResponse(rec, statusline.HTTPVersionNotSupported, now)

	case reqreader.PeerClosed:
		r.closeConnection(rec.ClientFD)
	}
}

func (r *Reactor) scheduleErrorResponse(rec *connection.Record, status int, now time.Time) {
	if err := respbuilder.BuildError(rec, r.respCfg, status, now); err != nil {
		log.Printf("reactor: build error response for fd %d: %v", rec.ClientFD, err)
		r.closeConnection(rec.ClientFD)
		return
	}
	_ = r.pfd.ModifyWritable(rec.ClientFD, true)
	r.touch(rec, now)
}

// handleWritable advances the response writer and, on completion, either
// recycles the connection into KEEP_ALIVE_IDLE or tears it down.
func (r *Reactor) handleWritable(rec *connection.Record, now time.Time) {
	outcome, err := respwriter.Advance(rec)
	switch outcome {
	case respwriter.Suspended, respwriter.Progressed:
		r.touch(rec, now)

	case respwriter.Finished:
		r.logAccess(rec, now)
		if rec.KeepAlive && !rec.DoneForClose {
			rec.PrepareForNextRequest(now)
			rec.MarkIdle()
			_ = r.pfd.ModifyWritable(rec.ClientFD, false)
			r.touch(rec, now)
		} else {
			r.closeConnection(rec.ClientFD)
		}

	case respwriter.Closed:
		if err != nil {
			log.Printf("reactor: write failed for fd %d: %v", rec.ClientFD, err)
		}
		r.closeConnection(rec.ClientFD)
	}
}

func (r *Reactor) logAccess(rec *connection.Record, now time.Time) {
	if r.logger == nil {
		return
	}
	r.logger.Log(accesslog.NewEntry(rec.ClientFD, rec.Method, rec.Target, rec.RespStatusCode,
		rec.BodyLength, rec.RequestStartedAt, now, rec.KeepAlive))
}

// touch marks activity on rec: updates both its own bookkeeping and its
// slot in the priority queue.
func (r *Reactor) touch(rec *connection.Record, now time.Time) {
	rec.PriorityTime = now.UnixNano()
	r.queue.Update(rec.ClientFD, rec.PriorityTime)
}

// closeConnection tears a connection down in a fixed order: unregister
// from the multiplexer, close the body fd, close the client fd, then
// remove it from the priority queue.
func (r *Reactor) closeConnection(fd int) {
	rec, ok := r.conns[fd]
	if !ok {
		return
	}
	_ = r.pfd.Remove(fd)
	rec.CloseBody()
	syscall.Close(fd)
	r.queue.Remove(fd)
	delete(r.conns, fd)
}

// sweep evicts every connection older than the configured idle timeout,
// regardless of its current state.
func (r *Reactor) sweep(now time.Time) {
	deadline := now.Add(-r.cfg.IdleTimeout).UnixNano()
	for {
		fd, priority, ok := r.queue.PeekMin()
		if !ok || priority >= deadline {
			return
		}
		r.queue.DequeueMin()
		if rec, ok := r.conns[fd]; ok {
			_ = r.pfd.Remove(fd)
			rec.CloseBody()
			syscall.Close(fd)
			delete(r.conns, fd)
		}
	}
}

// closeAll tears down every live connection and the listener itself, for
// a clean exit from Run.
func (r *Reactor) closeAll() {
	for fd := range r.conns {
		r.closeConnection(fd)
	}
	_ = r.pfd.Remove(r.listenFD)
	_ = r.pfd.Close()
	syscall.Close(r.listenFD)
}
