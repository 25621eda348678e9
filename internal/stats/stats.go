// Package stats collects bridge runtime counters for the health endpoint.
package stats

import "sync/atomic"

// Collector accumulates counters across all connections. All methods are
// safe for concurrent use.
type Collector struct {
	connected      atomic.Int64
	ephemeralCalls atomic.Int64
	relayedLines   atomic.Int64
	droppedFrames  atomic.Int64
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	Connected      int64 `json:"connected"`
	EphemeralCalls int64 `json:"ephemeral_calls"`
	RelayedLines   int64 `json:"relayed_lines"`
	DroppedFrames  int64 `json:"dropped_frames"`
}

// NewCollector creates a zeroed Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// ClientConnected records a new browser connection.
func (c *Collector) ClientConnected() { c.connected.Add(1) }

// ClientDisconnected records a browser disconnect.
func (c *Collector) ClientDisconnected() { c.connected.Add(-1) }

// EphemeralCall records one request/response backend round trip.
func (c *Collector) EphemeralCall() { c.ephemeralCalls.Add(1) }

// RelayedLine records one backend line forwarded to a browser.
func (c *Collector) RelayedLine() { c.relayedLines.Add(1) }

// DroppedFrame records an outbound frame dropped on a congested client.
func (c *Collector) DroppedFrame() { c.droppedFrames.Add(1) }

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Connected:      c.connected.Load(),
		EphemeralCalls: c.ephemeralCalls.Load(),
		RelayedLines:   c.relayedLines.Load(),
		DroppedFrames:  c.droppedFrames.Load(),
	}
}
