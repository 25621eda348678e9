package protocol

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"LOGIN", TypeLogin},
		{"REGISTER", TypeRegister},
		{"GET_FRIENDS", TypeGetFriends},
		{"join", TypeJoin},
		{"move", TypeMove},
		{"assignColor", TypeAssignColor},
		{"error", TypeError},
		{"info", TypeInfo},
		{"JOIN", TypeUnknown},
		{"login", TypeUnknown},
		{"", TypeUnknown},
		{"chat", TypeUnknown},
	}

	for _, tt := range tests {
		if got := ParseType(tt.in); got != tt.want {
			t.Errorf("ParseType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	raw := []byte(`{"type":"LOGIN","username":"alice","password":"x"}`)

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if env.Type != TypeLogin {
		t.Errorf("Type = %v, want TypeLogin", env.Type)
	}
	if env.Username != "alice" {
		t.Errorf("Username = %q, want %q", env.Username, "alice")
	}
	if env.Password != "x" {
		t.Errorf("Password = %q, want %q", env.Password, "x")
	}
	if string(env.Raw) != string(raw) {
		t.Errorf("Raw = %q, want original bytes", env.Raw)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	if err == nil {
		t.Fatal("Decode expected error for malformed input")
	}
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("error = %v, want ErrInvalidJSON", err)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	env, err := Decode([]byte(`{"type":"dance"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if env.Type != TypeUnknown {
		t.Errorf("Type = %v, want TypeUnknown", env.Type)
	}
}

func TestDecodeRoomID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string room", `{"type":"join","room":"42"}`, "42"},
		{"numeric room", `{"type":"join","room":42}`, "42"},
		{"missing room", `{"type":"join"}`, ""},
		{"null room", `{"type":"join","room":null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if env.Room != tt.want {
				t.Errorf("Room = %q, want %q", env.Room, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	got := Error(MsgRoomFull)
	want := `{"type":"error","msg":"Room full"}`
	if string(got) != want {
		t.Errorf("Error() = %s, want %s", got, want)
	}
}

func TestAuthFailurePreservesType(t *testing.T) {
	if got, want := string(AuthFailure(TypeLogin)), `{"type":"LOGIN","success":false}`; got != want {
		t.Errorf("AuthFailure(TypeLogin) = %s, want %s", got, want)
	}
	if got, want := string(AuthFailure(TypeRegister)), `{"type":"REGISTER","success":false}`; got != want {
		t.Errorf("AuthFailure(TypeRegister) = %s, want %s", got, want)
	}
}

func TestEmptyFriends(t *testing.T) {
	want := `{"type":"GET_FRIENDS","friends":[]}`
	if got := string(EmptyFriends()); got != want {
		t.Errorf("EmptyFriends() = %s, want %s", got, want)
	}
}

func TestFriendsRequest(t *testing.T) {
	got := FriendsRequest(json.RawMessage(`7`))
	want := `{"type":"GET_FRIENDS","user_id":7}`
	if string(got) != want {
		t.Errorf("FriendsRequest(7) = %s, want %s", got, want)
	}

	got = FriendsRequest(json.RawMessage(`"abc"`))
	want = `{"type":"GET_FRIENDS","user_id":"abc"}`
	if string(got) != want {
		t.Errorf("FriendsRequest(abc) = %s, want %s", got, want)
	}
}

func TestHasUserID(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`{"type":"GET_FRIENDS","user_id":7}`, true},
		{`{"type":"GET_FRIENDS","user_id":"7"}`, true},
		{`{"type":"GET_FRIENDS"}`, false},
		{`{"type":"GET_FRIENDS","user_id":null}`, false},
		{`{"type":"GET_FRIENDS","user_id":""}`, false},
	}

	for _, tt := range tests {
		env, err := Decode([]byte(tt.raw))
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", tt.raw, err)
		}
		if got := env.HasUserID(); got != tt.want {
			t.Errorf("HasUserID for %s = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestJoinNotice(t *testing.T) {
	want := `{"type":"join","room":"42"}`
	if got := string(JoinNotice("42")); got != want {
		t.Errorf("JoinNotice(42) = %s, want %s", got, want)
	}
}

func TestColorInfoMentionsColor(t *testing.T) {
	got := string(ColorInfo("red"))
	if !strings.Contains(got, "red") {
		t.Errorf("ColorInfo(red) = %s, does not mention the color", got)
	}
	var msg struct {
		Type string `json:"type"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal([]byte(got), &msg); err != nil {
		t.Fatalf("ColorInfo produced invalid JSON: %v", err)
	}
	if msg.Type != "info" {
		t.Errorf("ColorInfo type = %q, want %q", msg.Type, "info")
	}
}

func TestInspectColor(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantColor string
		wantOK    bool
	}{
		{"assignColor", `{"type":"assignColor","color":"red"}`, "red", true},
		{"other type", `{"type":"moveResult","color":"red"}`, "", false},
		{"malformed", `not json at all`, "", false},
		{"empty", ``, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color, ok := InspectColor([]byte(tt.line))
			if ok != tt.wantOK || color != tt.wantColor {
				t.Errorf("InspectColor(%q) = (%q, %v), want (%q, %v)",
					tt.line, color, ok, tt.wantColor, tt.wantOK)
			}
		})
	}
}
