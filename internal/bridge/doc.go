// Package bridge implements the browser-facing side of the bridge: the
// WebSocket server, the per-connection handler loop, and the message
// router that dispatches inbound messages to ephemeral backend round
// trips, room joins, or move forwarding.
package bridge
