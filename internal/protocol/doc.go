// Package protocol defines the JSON message shapes spoken on both sides of
// the bridge.
//
// Browser and backend use the same encoding: a JSON object with a "type"
// discriminator. The browser side frames one object per WebSocket text
// message; the backend side frames one object per newline-terminated line.
// Fields beyond the ones required for dispatch pass through unexamined.
package protocol
