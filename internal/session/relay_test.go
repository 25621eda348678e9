package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/gamebridge/internal/backend"
)

// fakeLink is an in-memory backend.Link fed by a channel of lines.
type fakeLink struct {
	lines chan []byte

	mu     sync.Mutex
	closed bool
	wrote  [][]byte
}

func newFakeLink() *fakeLink {
	return &fakeLink{lines: make(chan []byte, 16)}
}

func (f *fakeLink) WriteLine(line []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return backend.ErrClosed
	}
	f.wrote = append(f.wrote, append([]byte(nil), line...))
	return nil
}

func (f *fakeLink) ReadLine() ([]byte, error) {
	line, ok := <-f.lines
	if !ok {
		f.mu.Lock()
		closed := f.closed
		f.mu.Unlock()
		if closed {
			return nil, backend.ErrClosed
		}
		return nil, io.EOF
	}
	return line, nil
}

func (f *fakeLink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.lines)
	return nil
}

// eof simulates the backend closing its end.
func (f *fakeLink) eof() {
	close(f.lines)
}

func (f *fakeLink) RemoteAddr() string { return "fake:6000" }

// captureSender records frames sent to the browser.
type captureSender struct {
	mu     sync.Mutex
	frames []string
}

func (c *captureSender) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, string(data))
	return nil
}

func (c *captureSender) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.frames))
	copy(out, c.frames)
	return out
}

func waitDone(t *testing.T, r *Relay) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("relay did not terminate")
	}
}

func TestRelayForwardsVerbatim(t *testing.T) {
	link := newFakeLink()
	out := &captureSender{}
	r := StartRelay(context.Background(), link, out, nil, func() {})

	link.lines <- []byte(`{"type":"moveResult","ok":true}`)
	link.lines <- []byte(`{"type":"turn","player":2}`)
	link.eof()
	waitDone(t, r)

	frames := out.all()
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2: %v", len(frames), frames)
	}
	if frames[0] != `{"type":"moveResult","ok":true}` {
		t.Errorf("frame[0] = %s, want the original line", frames[0])
	}
	if frames[1] != `{"type":"turn","player":2}` {
		t.Errorf("frame[1] = %s, want the original line", frames[1])
	}
}

func TestRelayAssignColorOrdering(t *testing.T) {
	link := newFakeLink()
	out := &captureSender{}
	r := StartRelay(context.Background(), link, out, nil, func() {})

	link.lines <- []byte(`{"type":"assignColor","color":"red"}`)
	link.eof()
	waitDone(t, r)

	frames := out.all()
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want info + assignColor: %v", len(frames), frames)
	}
	if !strings.Contains(frames[0], `"info"`) || !strings.Contains(frames[0], "red") {
		t.Errorf("frame[0] = %s, want an info notice mentioning red", frames[0])
	}
	if frames[1] != `{"type":"assignColor","color":"red"}` {
		t.Errorf("frame[1] = %s, want the original assignColor line", frames[1])
	}
}

func TestRelayMalformedLinePassesThrough(t *testing.T) {
	link := newFakeLink()
	out := &captureSender{}
	r := StartRelay(context.Background(), link, out, nil, func() {})

	link.lines <- []byte(`garbage not json`)
	link.eof()
	waitDone(t, r)

	frames := out.all()
	if len(frames) != 1 || frames[0] != "garbage not json" {
		t.Errorf("frames = %v, want the malformed line forwarded unchanged", frames)
	}
}

func TestRelayExitRunsOnExitOnce(t *testing.T) {
	link := newFakeLink()
	exits := make(chan struct{}, 2)
	r := StartRelay(context.Background(), link, &captureSender{}, nil, func() {
		exits <- struct{}{}
	})

	link.eof()
	waitDone(t, r)

	if got := len(exits); got != 1 {
		t.Errorf("onExit ran %d times, want 1", got)
	}
}

func TestRelayStopAndCloseTerminates(t *testing.T) {
	link := newFakeLink()
	out := &captureSender{}
	r := StartRelay(context.Background(), link, out, nil, func() {})

	// Owner teardown order: cancel the relay, then close the link.
	r.Stop()
	link.Close()
	waitDone(t, r)

	if frames := out.all(); len(frames) != 0 {
		t.Errorf("frames after cancellation = %v, want none", frames)
	}
}

func TestManagerSingleSessionPerConn(t *testing.T) {
	m := NewManager(nil)
	conn := uuid.New()
	link := newFakeLink()

	s, err := m.Attach(conn, "42", link)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if s.RoomID != "42" {
		t.Errorf("RoomID = %q, want %q", s.RoomID, "42")
	}

	if _, err := m.Attach(conn, "43", newFakeLink()); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("second Attach error = %v, want ErrAlreadyJoined", err)
	}
	if got := m.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}

	removed, ok := m.Remove(conn)
	if !ok || removed != s {
		t.Fatalf("Remove = (%v, %v), want the attached session", removed, ok)
	}
	if _, ok := m.Get(conn); ok {
		t.Error("Get after Remove = true, want false")
	}
	if _, ok := m.Remove(conn); ok {
		t.Error("second Remove = true, want false")
	}
}

func TestSessionTeardownOnce(t *testing.T) {
	s := &Session{Conn: uuid.New()}
	count := 0
	s.TeardownOnce(func() { count++ })
	s.TeardownOnce(func() { count++ })
	if count != 1 {
		t.Errorf("teardown ran %d times, want 1", count)
	}
}
