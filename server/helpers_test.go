package server

import (
	"testing"
	"time"

	"casinoarena/casino"
)

var testEpoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// manualScheduler 记录延迟回调，由测试决定何时执行
type manualScheduler struct{ pending []func() }

func (s *manualScheduler) After(_ time.Duration, fn func()) { s.pending = append(s.pending, fn) }

func (s *manualScheduler) RunAll() {
	for len(s.pending) > 0 {
		fn := s.pending[0]
		s.pending = s.pending[1:]
		fn()
	}
}

type sent struct {
	to  PlayerID // 空表示广播
	msg Message
}

// recordingPublisher 记录所有出站消息
type recordingPublisher struct {
	subs map[PlayerID]bool
	log  []sent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{subs: make(map[PlayerID]bool)}
}

func (p *recordingPublisher) Subscribe(id PlayerID, _ Sink) { p.subs[id] = true }
func (p *recordingPublisher) Unsubscribe(id PlayerID)       { delete(p.subs, id) }
func (p *recordingPublisher) Send(id PlayerID, m Message) {
	p.log = append(p.log, sent{to: id, msg: m})
}
func (p *recordingPublisher) Broadcast(m Message) { p.log = append(p.log, sent{msg: m}) }
func (p *recordingPublisher) BroadcastExcept(id PlayerID, m Message) {
	p.log = append(p.log, sent{to: "!" + id, msg: m})
}

func (p *recordingPublisher) ofType(typ string) []sent {
	var out []sent
	for _, s := range p.log {
		if s.msg.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

func (p *recordingPublisher) reset() { p.log = nil }

// constRand 对所有 IntN 调用返回固定值（取模）
type constRand int

func (c constRand) IntN(n int) int { return int(c) % n }

func (constRand) Float64() float64 { return 0.5 }

type testRoom struct {
	*Room
	clock *fakeClock
	sched *manualScheduler
	pub   *recordingPublisher
}

func newTestRoom(t *testing.T, rng casino.Rand) *testRoom {
	t.Helper()
	if rng == nil {
		rng = casino.NewRand(1)
	}
	clock := &fakeClock{now: testEpoch}
	sched := &manualScheduler{}
	pub := newRecordingPublisher()
	r := NewRoom(RoomOptions{
		SpinInterval:  30 * time.Second,
		BettingCutoff: 2 * time.Second,
		Rand:          rng,
		Clock:         clock,
		Scheduler:     sched,
		Publisher:     pub,
	})
	return &testRoom{Room: r, clock: clock, sched: sched, pub: pub}
}

// joinAt 加入玩家并放到指定位置
func (tr *testRoom) joinAt(id PlayerID, pos Point) *Player {
	p := tr.join(id, nopSink{})
	p.X, p.Y = pos.X, pos.Y
	return p
}

type nopSink struct{}

func (nopSink) Enqueue([]byte) {}
func (nopSink) Close()         {}

func f64(v float64) *float64 { return &v }
