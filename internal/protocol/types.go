package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Errors
var (
	ErrInvalidJSON = errors.New("invalid json")
)

// Type is the closed set of message types the bridge recognizes.
type Type int

const (
	// TypeUnknown is the catch-all for unrecognized discriminators.
	TypeUnknown Type = iota
	TypeLogin
	TypeRegister
	TypeGetFriends
	TypeJoin
	TypeMove
	TypeAssignColor
	TypeError
	TypeInfo
)

// Wire discriminator strings. Casing follows the backend protocol: auth
// commands are upper-case, gameplay messages lower-case.
const (
	wireLogin       = "LOGIN"
	wireRegister    = "REGISTER"
	wireGetFriends  = "GET_FRIENDS"
	wireJoin        = "join"
	wireMove        = "move"
	wireAssignColor = "assignColor"
	wireError       = "error"
	wireInfo        = "info"
)

// ParseType maps a wire discriminator to a Type. Unrecognized strings map
// to TypeUnknown.
func ParseType(s string) Type {
	switch s {
	case wireLogin:
		return TypeLogin
	case wireRegister:
		return TypeRegister
	case wireGetFriends:
		return TypeGetFriends
	case wireJoin:
		return TypeJoin
	case wireMove:
		return TypeMove
	case wireAssignColor:
		return TypeAssignColor
	case wireError:
		return TypeError
	case wireInfo:
		return TypeInfo
	default:
		return TypeUnknown
	}
}

// String returns the wire discriminator for t.
func (t Type) String() string {
	switch t {
	case TypeLogin:
		return wireLogin
	case TypeRegister:
		return wireRegister
	case TypeGetFriends:
		return wireGetFriends
	case TypeJoin:
		return wireJoin
	case TypeMove:
		return wireMove
	case TypeAssignColor:
		return wireAssignColor
	case TypeError:
		return wireError
	case TypeInfo:
		return wireInfo
	default:
		return "unknown"
	}
}

// Envelope is one decoded inbound message. Raw holds the original bytes so
// pass-through paths (move forwarding, response relay) never re-encode.
type Envelope struct {
	Type Type
	Raw  []byte

	// Fields populated per type; zero-valued when absent.
	Username string
	Password string
	UserID   json.RawMessage
	Room     string
	Color    string
}

// HasUserID reports whether a usable user_id was supplied.
func (e Envelope) HasUserID() bool {
	trimmed := string(e.UserID)
	return trimmed != "" && trimmed != "null" && trimmed != `""`
}

// envelopeWire is the superset of fields the bridge ever inspects.
type envelopeWire struct {
	Type     string          `json:"type"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	UserID   json.RawMessage `json:"user_id"`
	Room     json.RawMessage `json:"room"`
	Color    string          `json:"color"`
}

// Decode parses raw bytes into an Envelope. A decode failure returns
// ErrInvalidJSON; unknown discriminators decode successfully with
// TypeUnknown.
func Decode(raw []byte) (Envelope, error) {
	var wire envelopeWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	return Envelope{
		Type:     ParseType(wire.Type),
		Raw:      raw,
		Username: wire.Username,
		Password: wire.Password,
		UserID:   wire.UserID,
		Room:     normalizeRoomID(wire.Room),
		Color:    wire.Color,
	}, nil
}

// normalizeRoomID accepts a string or number room field and returns its
// string form. Anything else (null, object, absent) normalizes to "".
func normalizeRoomID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
