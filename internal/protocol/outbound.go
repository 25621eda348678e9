package protocol

import (
	"encoding/json"
	"fmt"
)

// Bridge-originated reply texts. These are part of the wire contract with
// the frontend; changing them breaks existing clients.
const (
	MsgInvalidJSON        = "invalid json"
	MsgUnknownType        = "unknown message type"
	MsgMissingCredentials = "missing username/password"
	MsgMissingUserID      = "missing user_id"
	MsgMissingRoom        = "missing room"
	MsgRoomFull           = "Room full"
	MsgBackendOffline     = "C server offline"
	MsgNotJoined          = "not joined"
	MsgSendFailed         = "send failed"
	MsgAlreadyJoined      = "already joined"
)

type simpleMsg struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

// Error builds a bridge-originated error message.
func Error(msg string) []byte {
	b, _ := json.Marshal(simpleMsg{Type: wireError, Msg: msg})
	return b
}

// Info builds a bridge-originated info message.
func Info(msg string) []byte {
	b, _ := json.Marshal(simpleMsg{Type: wireInfo, Msg: msg})
	return b
}

// ColorInfo builds the notice sent to the browser ahead of an assignColor
// message.
func ColorInfo(color string) []byte {
	return Info(fmt.Sprintf("You have been assigned color %s", color))
}

// AuthFailure builds the fallback envelope for a LOGIN or REGISTER request
// that could not reach the backend. The type of the request is preserved.
func AuthFailure(t Type) []byte {
	b, _ := json.Marshal(struct {
		Type    string `json:"type"`
		Success bool   `json:"success"`
	}{Type: t.String(), Success: false})
	return b
}

// EmptyFriends builds the fallback envelope for a GET_FRIENDS request that
// could not reach the backend.
func EmptyFriends() []byte {
	b, _ := json.Marshal(struct {
		Type    string   `json:"type"`
		Friends []string `json:"friends"`
	}{Type: wireGetFriends, Friends: []string{}})
	return b
}

// AuthRequest builds the line sent to the backend for LOGIN/REGISTER.
func AuthRequest(t Type, username, password string) []byte {
	b, _ := json.Marshal(struct {
		Type     string `json:"type"`
		Username string `json:"username"`
		Password string `json:"password"`
	}{Type: t.String(), Username: username, Password: password})
	return b
}

// FriendsRequest builds the line sent to the backend for GET_FRIENDS. The
// user_id is embedded verbatim so numeric and string ids round-trip
// unchanged.
func FriendsRequest(userID json.RawMessage) []byte {
	b, _ := json.Marshal(struct {
		Type   string          `json:"type"`
		UserID json.RawMessage `json:"user_id"`
	}{Type: wireGetFriends, UserID: userID})
	return b
}

// JoinNotice builds the line announcing room membership to the backend.
func JoinNotice(roomID string) []byte {
	b, _ := json.Marshal(struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}{Type: wireJoin, Room: roomID})
	return b
}

// InspectColor reports whether line is an assignColor message and, if so,
// the assigned color. A parse failure is not an error condition for the
// caller; the line is simply not an assignColor message.
func InspectColor(line []byte) (color string, ok bool) {
	var wire struct {
		Type  string `json:"type"`
		Color string `json:"color"`
	}
	if err := json.Unmarshal(line, &wire); err != nil {
		return "", false
	}
	if wire.Type != wireAssignColor {
		return "", false
	}
	return wire.Color, true
}
