package server

import (
	"encoding/json"
	"sync/atomic"
)

// 出站事件名
const (
	MsgState            = "state"
	MsgTablesState      = "tablesState"
	MsgPlayerJoined     = "playerJoined"
	MsgPlayerLeft       = "playerLeft"
	MsgPlayerMoved      = "playerMoved"
	MsgRouletteUpdate   = "rouletteUpdate"
	MsgRouletteSpin     = "rouletteSpin"
	MsgChipsUpdate      = "chipsUpdate"
	MsgBlackjackUpdate  = "blackjackUpdate"
	MsgBlackjackCard    = "blackjackCard"
	MsgBlackjackResolve = "blackjackResolve"
)

// Message 出站消息信封
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Sink 单个会话的发送端，Enqueue 不得阻塞
type Sink interface {
	Enqueue(b []byte)
	Close()
}

// Publisher 房间向会话扇出状态变化的抽象，房间逻辑不关心具体传输
type Publisher interface {
	Subscribe(id PlayerID, s Sink)
	Unsubscribe(id PlayerID)
	Send(id PlayerID, m Message)
	Broadcast(m Message)
	BroadcastExcept(id PlayerID, m Message)
}

// Hub 基于 Sink 的 Publisher 实现。订阅表只在房间循环中读写。
type Hub struct {
	sinks map[PlayerID]Sink
	count atomic.Int64
}

func NewHub() *Hub {
	return &Hub{sinks: make(map[PlayerID]Sink)}
}

func (h *Hub) Subscribe(id PlayerID, s Sink) {
	if old, ok := h.sinks[id]; ok {
		old.Close()
	} else {
		h.count.Add(1)
	}
	h.sinks[id] = s
}

func (h *Hub) Unsubscribe(id PlayerID) {
	if s, ok := h.sinks[id]; ok {
		s.Close()
		delete(h.sinks, id)
		h.count.Add(-1)
	}
}

// Sessions 当前订阅数，可在任意协程读取
func (h *Hub) Sessions() int64 { return h.count.Load() }

func (h *Hub) Send(id PlayerID, m Message) {
	s, ok := h.sinks[id]
	if !ok {
		return
	}
	if b, ok := encode(m); ok {
		s.Enqueue(b)
	}
}

func (h *Hub) Broadcast(m Message) {
	h.BroadcastExcept("", m)
}

func (h *Hub) BroadcastExcept(skip PlayerID, m Message) {
	b, ok := encode(m)
	if !ok {
		return
	}
	for id, s := range h.sinks {
		if id == skip {
			continue
		}
		s.Enqueue(b)
	}
}

func encode(m Message) ([]byte, bool) {
	b, err := json.Marshal(m)
	if err != nil {
		Log.Errorf("marshal %s: %v", m.Type, err)
		return nil, false
	}
	return b, true
}
