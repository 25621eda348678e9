package room

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestJoinCreatesRoom(t *testing.T) {
	r := NewRegistry(2, nil)
	conn := uuid.New()

	if err := r.Join("42", conn); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if got := r.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}

	members := r.Members("42")
	if len(members) != 1 || members[0] != conn {
		t.Errorf("Members(42) = %v, want [%v]", members, conn)
	}
}

func TestJoinCapacity(t *testing.T) {
	r := NewRegistry(2, nil)
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	if err := r.Join("42", a); err != nil {
		t.Fatalf("first Join failed: %v", err)
	}
	if err := r.Join("42", b); err != nil {
		t.Fatalf("second Join failed: %v", err)
	}
	if err := r.Join("42", c); !errors.Is(err, ErrRoomFull) {
		t.Errorf("third Join error = %v, want ErrRoomFull", err)
	}

	// The rejected connection must not appear in the member list.
	members := r.Members("42")
	if len(members) != 2 || members[0] != a || members[1] != b {
		t.Errorf("Members(42) = %v, want [%v %v] in insertion order", members, a, b)
	}
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	r := NewRegistry(2, nil)
	a, b := uuid.New(), uuid.New()

	r.Join("42", a)
	r.Join("42", b)

	if !r.Leave("42", a) {
		t.Error("Leave(a) = false, want true")
	}
	if members := r.Members("42"); len(members) != 1 || members[0] != b {
		t.Errorf("Members(42) after first leave = %v, want [%v]", members, b)
	}

	if !r.Leave("42", b) {
		t.Error("Leave(b) = false, want true")
	}
	if r.Members("42") != nil {
		t.Error("Members(42) after last leave != nil, room should be deleted")
	}
	if got := r.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestLeaveNonMember(t *testing.T) {
	r := NewRegistry(2, nil)
	r.Join("42", uuid.New())

	if r.Leave("42", uuid.New()) {
		t.Error("Leave of a non-member = true, want false")
	}
	if r.Leave("missing", uuid.New()) {
		t.Error("Leave of a missing room = true, want false")
	}
}

func TestConcurrentJoinsOneSlot(t *testing.T) {
	// Two joins race for the last free slot; exactly one may win.
	for i := 0; i < 100; i++ {
		r := NewRegistry(2, nil)
		r.Join("42", uuid.New())

		var wg sync.WaitGroup
		results := make(chan error, 2)
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- r.Join("42", uuid.New())
			}()
		}
		wg.Wait()
		close(results)

		var wins, fulls int
		for err := range results {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrRoomFull):
				fulls++
			default:
				t.Fatalf("unexpected Join error: %v", err)
			}
		}
		if wins != 1 || fulls != 1 {
			t.Fatalf("concurrent joins: wins = %d, fulls = %d, want 1 and 1", wins, fulls)
		}
		if got := len(r.Members("42")); got != 2 {
			t.Fatalf("Members(42) has %d entries, want 2", got)
		}
	}
}
