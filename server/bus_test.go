package server

import (
	"encoding/json"
	"testing"
)

type memSink struct {
	frames [][]byte
	closed bool
}

func (s *memSink) Enqueue(b []byte) { s.frames = append(s.frames, b) }
func (s *memSink) Close()           { s.closed = true }

func TestHubFanOut(t *testing.T) {
	hub := NewHub()
	a, b := &memSink{}, &memSink{}
	hub.Subscribe("a", a)
	hub.Subscribe("b", b)
	if hub.Sessions() != 2 {
		t.Fatalf("sessions = %d", hub.Sessions())
	}

	hub.Broadcast(Message{Type: MsgPlayerLeft, Data: map[string]any{"id": "x"}})
	hub.BroadcastExcept("a", Message{Type: MsgPlayerJoined})
	hub.Send("a", Message{Type: MsgState})
	hub.Send("missing", Message{Type: MsgState})

	if len(a.frames) != 2 || len(b.frames) != 2 {
		t.Fatalf("frames a=%d b=%d", len(a.frames), len(b.frames))
	}
	var m struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(a.frames[0], &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Type != MsgPlayerLeft || m.Data["id"] != "x" {
		t.Fatalf("unexpected frame %s", a.frames[0])
	}
	if err := json.Unmarshal(b.frames[1], &m); err != nil || m.Type != MsgPlayerJoined {
		t.Fatalf("b should receive playerJoined, got %s", b.frames[1])
	}

	hub.Unsubscribe("a")
	if !a.closed || hub.Sessions() != 1 {
		t.Fatalf("unsubscribe should close sink and drop count")
	}
	hub.Unsubscribe("a")
	if hub.Sessions() != 1 {
		t.Fatalf("double unsubscribe changed count")
	}
}

func TestHubResubscribeClosesOldSink(t *testing.T) {
	hub := NewHub()
	old, fresh := &memSink{}, &memSink{}
	hub.Subscribe("a", old)
	hub.Subscribe("a", fresh)
	if !old.closed || hub.Sessions() != 1 {
		t.Fatalf("old sink not replaced")
	}
}
