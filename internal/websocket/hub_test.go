package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage("group", "created", "g1")
	if msg.Type != "group_created" || msg.Entity != "group" || msg.Action != "created" || msg.ID != "g1" {
		t.Errorf("message = %+v", msg)
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := testHub()
	c := NewClient(hub, nil)

	hub.Register(c)
	if hub.ClientCount() != 1 {
		t.Errorf("count = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(c)
	if hub.ClientCount() != 0 {
		t.Errorf("count = %d, want 0", hub.ClientCount())
	}

	// Unregistering twice must not panic on the closed channel.
	hub.Unregister(c)
}

func TestBroadcastDeliversToAllClients(t *testing.T) {
	hub := testHub()
	a := NewClient(hub, nil)
	b := NewClient(hub, nil)
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(NewMessage("group", "updated", "g1"))

	for name, c := range map[string]*Client{"a": a, "b": b} {
		select {
		case data := <-c.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("client %s: decode: %v", name, err)
			}
			if msg.Type != "group_updated" || msg.ID != "g1" {
				t.Errorf("client %s: message = %+v", name, msg)
			}
		default:
			t.Errorf("client %s received nothing", name)
		}
	}
}

func TestBroadcastSkipsFullClients(t *testing.T) {
	hub := testHub()
	c := NewClient(hub, nil)
	hub.Register(c)

	// Fill the send buffer; further broadcasts must drop, not block.
	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(NewMessage("group", "updated", "g1"))
	}
	done := make(chan struct{})
	go func() {
		hub.Broadcast(NewMessage("group", "updated", "g2"))
		close(done)
	}()
	<-done

	if len(c.send) != sendBufferSize {
		t.Errorf("buffered = %d, want %d", len(c.send), sendBufferSize)
	}
}

func TestBroadcastWithoutClients(t *testing.T) {
	hub := testHub()
	hub.Broadcast(NewMessage("dataset", "imported", ""))
}
