package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	EventsHandled   int64 // 房间循环处理的事件数
	EventsDropped   int64 // 因队列满被丢弃的输入数
	IntentsRejected int64 // 校验未通过被静默丢弃的意图
	BetsAccepted    int64 // 受理的下注（轮盘 + 21 点）
	Spins           int64 // 轮盘开奖次数
	RoundsResolved  int64 // 21 点结算回合数
	ChipsPaid       int64 // 累计派彩
	TotalHandleNs   int64 // 事件处理累计耗时（纳秒）
}

func (m *RoomMetrics) IncDropped()        { atomic.AddInt64(&m.EventsDropped, 1) }
func (m *RoomMetrics) IncRejected()       { atomic.AddInt64(&m.IntentsRejected, 1) }
func (m *RoomMetrics) IncBetsAccepted()   { atomic.AddInt64(&m.BetsAccepted, 1) }
func (m *RoomMetrics) IncSpins()          { atomic.AddInt64(&m.Spins, 1) }
func (m *RoomMetrics) IncRoundsResolved() { atomic.AddInt64(&m.RoundsResolved, 1) }
func (m *RoomMetrics) AddChipsPaid(n int) { atomic.AddInt64(&m.ChipsPaid, int64(n)) }
func (m *RoomMetrics) AddHandled(ns int64) {
	atomic.AddInt64(&m.EventsHandled, 1)
	atomic.AddInt64(&m.TotalHandleNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	handled := atomic.LoadInt64(&m.EventsHandled)
	total := atomic.LoadInt64(&m.TotalHandleNs)
	var avgMs float64
	if handled > 0 {
		avgMs = float64(total) / float64(handled) / 1e6
	}
	return map[string]any{
		"events_handled":   handled,
		"events_dropped":   atomic.LoadInt64(&m.EventsDropped),
		"intents_rejected": atomic.LoadInt64(&m.IntentsRejected),
		"bets_accepted":    atomic.LoadInt64(&m.BetsAccepted),
		"spins":            atomic.LoadInt64(&m.Spins),
		"rounds_resolved":  atomic.LoadInt64(&m.RoundsResolved),
		"chips_paid":       atomic.LoadInt64(&m.ChipsPaid),
		"avg_handle_ms":    avgMs,
	}
}
