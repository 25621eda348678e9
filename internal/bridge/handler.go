package bridge

import (
	"context"
	"log/slog"

	"github.com/rickgao/gamebridge/internal/backend"
	"github.com/rickgao/gamebridge/internal/protocol"
	"github.com/rickgao/gamebridge/internal/room"
	"github.com/rickgao/gamebridge/internal/session"
	"github.com/rickgao/gamebridge/internal/stats"
)

// connHandler is the control loop for one browser connection. It reads
// frames, routes them by type, and drives teardown when the connection
// ends. All handler methods run on the connection's read goroutine;
// only the relay runs concurrently with them.
type connHandler struct {
	client   *Client
	dialer   *backend.Dialer
	rooms    room.Registry
	sessions session.Manager
	stats    *stats.Collector
	logger   *slog.Logger
}

func newConnHandler(client *Client, dialer *backend.Dialer, rooms room.Registry, sessions session.Manager, st *stats.Collector, logger *slog.Logger) *connHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &connHandler{
		client:   client,
		dialer:   dialer,
		rooms:    rooms,
		sessions: sessions,
		stats:    st,
		logger:   logger,
	}
}

// run reads browser frames until the transport fails, then tears down.
func (h *connHandler) run(ctx context.Context) {
	defer h.teardown()

	for {
		raw, err := h.client.ReadMessage()
		if err != nil {
			h.logger.Info("browser disconnected", "conn_id", h.client.ID, "reason", err)
			return
		}
		h.handleMessage(ctx, raw)
	}
}

// handleMessage routes one inbound frame. Every failure path ends in an
// error reply; nothing propagates past this boundary.
func (h *connHandler) handleMessage(ctx context.Context, raw []byte) {
	h.logger.Debug("browser message", "conn_id", h.client.ID, "line", string(raw))

	env, err := protocol.Decode(raw)
	if err != nil {
		h.reply(protocol.Error(protocol.MsgInvalidJSON))
		return
	}

	switch env.Type {
	case protocol.TypeLogin, protocol.TypeRegister:
		h.handleAuth(ctx, env)
	case protocol.TypeGetFriends:
		h.handleGetFriends(ctx, env)
	case protocol.TypeJoin:
		h.handleJoin(ctx, env)
	case protocol.TypeMove:
		h.handleMove(env)
	default:
		h.reply(protocol.Error(protocol.MsgUnknownType))
	}
}

// handleAuth serves LOGIN and REGISTER over an ephemeral link. Any
// backend failure maps to the type-preserving failure envelope.
func (h *connHandler) handleAuth(ctx context.Context, env protocol.Envelope) {
	if env.Username == "" || env.Password == "" {
		h.reply(protocol.Error(protocol.MsgMissingCredentials))
		return
	}

	h.stats.EphemeralCall()
	resp, err := h.dialer.Exchange(ctx, protocol.AuthRequest(env.Type, env.Username, env.Password))
	if err != nil {
		h.logger.Warn("auth round trip failed",
			"conn_id", h.client.ID, "type", env.Type.String(), "error", err)
		h.reply(protocol.AuthFailure(env.Type))
		return
	}

	h.reply(resp)
}

// handleGetFriends serves GET_FRIENDS over an ephemeral link. Any backend
// failure maps to the empty-list envelope.
func (h *connHandler) handleGetFriends(ctx context.Context, env protocol.Envelope) {
	if !env.HasUserID() {
		h.reply(protocol.Error(protocol.MsgMissingUserID))
		return
	}

	h.stats.EphemeralCall()
	resp, err := h.dialer.Exchange(ctx, protocol.FriendsRequest(env.UserID))
	if err != nil {
		h.logger.Warn("friends round trip failed", "conn_id", h.client.ID, "error", err)
		h.reply(protocol.EmptyFriends())
		return
	}

	h.reply(resp)
}

// handleJoin reserves a room slot, opens the persistent link, and starts
// the relay. The slot reservation is rolled back on any later failure so
// membership never outlives its link.
func (h *connHandler) handleJoin(ctx context.Context, env protocol.Envelope) {
	if env.Room == "" {
		h.reply(protocol.Error(protocol.MsgMissingRoom))
		return
	}

	if _, ok := h.sessions.Get(h.client.ID); ok {
		h.reply(protocol.Error(protocol.MsgAlreadyJoined))
		return
	}

	if err := h.rooms.Join(env.Room, h.client.ID); err != nil {
		h.logger.Warn("room full", "room", env.Room, "conn_id", h.client.ID)
		h.reply(protocol.Error(protocol.MsgRoomFull))
		return
	}

	link, err := h.dialer.Dial(ctx)
	if err != nil {
		h.rooms.Leave(env.Room, h.client.ID)
		h.logger.Warn("backend dial failed on join",
			"room", env.Room, "conn_id", h.client.ID, "error", err)
		h.reply(protocol.Error(protocol.MsgBackendOffline))
		return
	}

	s, err := h.sessions.Attach(h.client.ID, env.Room, link)
	if err != nil {
		link.Close()
		h.rooms.Leave(env.Room, h.client.ID)
		h.reply(protocol.Error(protocol.MsgAlreadyJoined))
		return
	}

	if err := link.WriteLine(protocol.JoinNotice(env.Room)); err != nil {
		h.sessions.Remove(h.client.ID)
		link.Close()
		h.rooms.Leave(env.Room, h.client.ID)
		h.logger.Warn("join notice failed", "room", env.Room, "conn_id", h.client.ID, "error", err)
		h.reply(protocol.Error(protocol.MsgBackendOffline))
		return
	}

	s.Relay = session.StartRelay(ctx, link, h.relaySender(), h.logger.With("conn_id", h.client.ID), func() {
		h.cleanupSession(s)
	})

	h.logger.Info("joined room",
		"room", env.Room, "conn_id", h.client.ID, "backend", link.RemoteAddr())
}

// handleMove forwards the raw frame over the persistent link.
func (h *connHandler) handleMove(env protocol.Envelope) {
	s, ok := h.sessions.Get(h.client.ID)
	if !ok {
		h.reply(protocol.Error(protocol.MsgNotJoined))
		return
	}

	if err := s.Link.WriteLine(env.Raw); err != nil {
		h.logger.Warn("move forward failed", "conn_id", h.client.ID, "error", err)
		h.reply(protocol.Error(protocol.MsgSendFailed))
		return
	}

	h.logger.Debug("move forwarded", "conn_id", h.client.ID, "room", s.RoomID)
}

// teardown runs when the browser transport ends: cancel the relay, close
// the persistent link, leave the room, clear the session. Ordering
// matters; the relay is cancelled before the link closes so it never
// writes to a torn-down connection.
func (h *connHandler) teardown() {
	s, joined := h.sessions.Get(h.client.ID)
	if joined {
		if s.Relay != nil {
			s.Relay.Stop()
		}
		h.cleanupSession(s)
	}

	// Closing the client unblocks a relay stuck on a congested send
	// buffer, so this must happen before waiting for the relay to exit.
	h.client.Close()

	if joined && s.Relay != nil {
		<-s.Relay.Done()
	}
}

// cleanupSession releases everything a session owns. Shared between the
// disconnect path and the relay's own exit path; runs at most once.
func (h *connHandler) cleanupSession(s *session.Session) {
	s.TeardownOnce(func() {
		s.Link.Close()
		h.rooms.Leave(s.RoomID, s.Conn)
		h.sessions.Remove(s.Conn)
		h.logger.Info("session closed", "conn_id", s.Conn, "room", s.RoomID)
	})
}

// relaySender adapts the client for the relay with stats counting.
func (h *connHandler) relaySender() session.Sender {
	return senderFunc(func(data []byte) error {
		if err := h.client.Send(data); err != nil {
			return err
		}
		h.stats.RelayedLine()
		return nil
	})
}

type senderFunc func([]byte) error

func (f senderFunc) Send(data []byte) error { return f(data) }

// reply sends a bridge-originated frame, dropping it if the browser is
// already gone.
func (h *connHandler) reply(data []byte) {
	if err := h.client.Send(data); err != nil {
		h.stats.DroppedFrame()
		h.logger.Debug("reply dropped", "conn_id", h.client.ID, "error", err)
	}
}
