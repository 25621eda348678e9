// Package session owns per-connection bridge state.
//
// A Session pairs one browser connection with its persistent backend link
// and the relay task reading from it. The Manager enforces the invariant
// that a connection has at most one session at a time; the relay forwards
// backend lines to the browser until the link closes or the owner cancels
// it.
package session
