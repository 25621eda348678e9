// Package backend implements the Backend Link component.
//
// A Link is one TCP connection to the game server speaking the
// newline-delimited JSON protocol. Links come in two usage modes:
//   - Ephemeral: one request line out, one response line back under a
//     deadline, then closed (LOGIN/REGISTER/GET_FRIENDS). See Dialer.Exchange.
//   - Persistent: opened on room join, read continuously by the relay until
//     either end closes it.
package backend
