package backend

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
)

// Errors
var (
	ErrUnavailable = errors.New("backend unavailable")
	ErrTimeout     = errors.New("backend response timeout")
	ErrClosed      = errors.New("link closed")
	ErrLineTooLong = errors.New("backend line exceeds limit")
)

// Config holds Backend Link settings.
type Config struct {
	Addr            string        // host:port of the game server
	DialTimeout     time.Duration // TCP connect deadline
	ResponseTimeout time.Duration // ephemeral round-trip deadline
	MaxLineSize     int           // longest accepted backend line in bytes
}

// Link is a single newline-delimited connection to the game server.
type Link interface {
	// WriteLine serializes one message line. The trailing newline is
	// appended by the link.
	WriteLine(line []byte) error

	// ReadLine blocks until one full line arrives or the link closes.
	// A clean close by the peer returns io.EOF.
	ReadLine() ([]byte, error)

	// Close shuts the connection down. Safe to call more than once and
	// concurrently with a blocked ReadLine, which it unblocks.
	Close() error

	// RemoteAddr returns the backend address for logging.
	RemoteAddr() string
}

// link implements the Link interface.
type link struct {
	conn   net.Conn
	reader *bufio.Reader
	logger *slog.Logger

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

// Dialer opens Links to a fixed backend address.
type Dialer struct {
	cfg    Config
	logger *slog.Logger
}

// NewDialer creates a Dialer for the configured backend.
func NewDialer(cfg Config, logger *slog.Logger) *Dialer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dialer{cfg: cfg, logger: logger}
}

// Dial opens a new connection to the backend. Failure to connect wraps
// ErrUnavailable so callers can map it to their type-specific fallback.
func (d *Dialer) Dial(ctx context.Context) (Link, error) {
	return d.dial(ctx)
}

func (d *Dialer) dial(ctx context.Context) (*link, error) {
	dialer := net.Dialer{Timeout: d.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, d.cfg.Addr, err)
	}

	d.logger.Debug("backend link opened", "addr", d.cfg.Addr)

	return &link{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, d.cfg.MaxLineSize),
		logger: d.logger,
	}, nil
}

// Exchange performs one ephemeral round trip: dial, write req as a line,
// read one response line bounded by ResponseTimeout. The connection is
// closed on every exit path.
func (d *Dialer) Exchange(ctx context.Context, req []byte) ([]byte, error) {
	l, err := d.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := l.Close(); cerr != nil {
			d.logger.Debug("ephemeral link close", "error", cerr)
		}
	}()

	if err := l.WriteLine(req); err != nil {
		return nil, fmt.Errorf("%w: write request: %v", ErrUnavailable, err)
	}
	d.logger.Debug("backend request sent", "addr", d.cfg.Addr, "line", string(req))

	resp, err := l.readLineDeadline(time.Now().Add(d.cfg.ResponseTimeout))
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	d.logger.Debug("backend response received", "addr", d.cfg.Addr, "line", string(resp))

	return resp, nil
}

// WriteLine writes one line to the backend.
func (l *link) WriteLine(line []byte) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.mu.Unlock()

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	if _, err := l.conn.Write(buf); err != nil {
		return err
	}
	return nil
}

// ReadLine reads one line, blocking until data, EOF, or Close.
func (l *link) ReadLine() ([]byte, error) {
	return l.readLineDeadline(time.Time{})
}

// readLineDeadline reads one line with an optional absolute deadline.
func (l *link) readLineDeadline(deadline time.Time) ([]byte, error) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	l.mu.Unlock()

	if err := l.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	// ReadSlice keeps the line bounded by the reader's buffer size; the
	// returned slice aliases that buffer, so copy before handing it out.
	raw, err := l.reader.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return nil, ErrLineTooLong
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, ErrTimeout
		}
		if err == io.EOF && len(bytes.TrimSpace(raw)) > 0 {
			// Final line without trailing newline still counts.
			return append([]byte(nil), bytes.TrimSpace(raw)...), nil
		}
		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return nil, ErrClosed
		}
		return nil, err
	}

	return append([]byte(nil), bytes.TrimRight(raw, "\r\n")...), nil
}

// Close shuts the link down, waiting for the write side to flush before
// dropping the connection.
func (l *link) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	// Half-close the write side first so the backend sees a clean EOF.
	if tc, ok := l.conn.(*net.TCPConn); ok {
		if err := tc.CloseWrite(); err == nil {
			l.logger.Debug("backend link write side closed", "addr", l.RemoteAddr())
		}
	}

	return l.conn.Close()
}

// RemoteAddr returns the backend address.
func (l *link) RemoteAddr() string {
	return l.conn.RemoteAddr().String()
}
