package session

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/rickgao/gamebridge/internal/backend"
	"github.com/rickgao/gamebridge/internal/protocol"
)

// Sender delivers bridge-originated frames to one browser connection.
type Sender interface {
	Send(data []byte) error
}

// Relay is the concurrent unit forwarding backend lines to one browser
// connection.
type Relay struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartRelay spawns the relay goroutine for one session. onExit runs
// exactly once when the relay stops for any reason (end of stream, read
// error, or cancellation) and is where the owner hooks its teardown.
func StartRelay(ctx context.Context, link backend.Link, out Sender, logger *slog.Logger, onExit func()) *Relay {
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &Relay{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(r.done)
		defer onExit()
		run(ctx, link, out, logger)
	}()

	return r
}

// Stop requests cooperative cancellation. The owner is expected to close
// the link as well; a blocked read only returns once the link is closed.
func (r *Relay) Stop() {
	r.cancel()
}

// Done is closed when the relay goroutine has exited.
func (r *Relay) Done() <-chan struct{} {
	return r.done
}

// run is the relay loop.
func run(ctx context.Context, link backend.Link, out Sender, logger *slog.Logger) {
	for {
		line, err := link.ReadLine()
		if err != nil {
			switch {
			case err == io.EOF:
				logger.Info("backend closed relay link", "addr", link.RemoteAddr())
			case errors.Is(err, backend.ErrClosed), ctx.Err() != nil:
				logger.Debug("relay cancelled", "addr", link.RemoteAddr())
			default:
				logger.Warn("relay read error", "addr", link.RemoteAddr(), "error", err)
			}
			return
		}

		if len(line) == 0 {
			continue
		}

		// Do not write to a connection that is being torn down.
		if ctx.Err() != nil {
			return
		}

		logger.Debug("relaying backend line", "addr", link.RemoteAddr(), "line", string(line))

		// assignColor gets a human-readable notice ahead of the original
		// message. A line that does not decode is forwarded untouched.
		if color, ok := protocol.InspectColor(line); ok {
			if err := out.Send(protocol.ColorInfo(color)); err != nil {
				logger.Warn("relay notify failed", "error", err)
				return
			}
		}

		if err := out.Send(line); err != nil {
			logger.Warn("relay forward failed", "error", err)
			return
		}
	}
}
