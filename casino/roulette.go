package casino

import (
	"errors"
	"time"
)

var ErrBettingClosed = errors.New("roulette betting closed")

// Win 一条开奖中奖记录
type Win struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

// SpinResult 一次开奖的结果
type SpinResult struct {
	Result int   `json:"result"`
	Wins   []Win `json:"wins"`
}

// RouletteState 广播给客户端的轮盘快照
type RouletteState struct {
	Bets        []RouletteBet `json:"bets"`
	LastResult  *int          `json:"lastResult"`
	NextSpinAt  int64         `json:"nextSpinAt"`
	BettingOpen bool          `json:"bettingOpen"`
}

// RouletteTable 轮盘桌。没有显式的阶段字段：
// now < nextSpinAt-cutoff 时可下注，否则等待开奖。
type RouletteTable struct {
	bets         []RouletteBet
	lastResult   *int
	nextSpinAt   time.Time
	spinInterval time.Duration
	cutoff       time.Duration
}

func NewRouletteTable(now time.Time, spinInterval, cutoff time.Duration) *RouletteTable {
	return &RouletteTable{
		nextSpinAt:   now.Add(spinInterval),
		spinInterval: spinInterval,
		cutoff:       cutoff,
	}
}

// SetTiming 调整开奖间隔与截止时长，从下一轮开始生效
func (t *RouletteTable) SetTiming(spinInterval, cutoff time.Duration) {
	t.spinInterval = spinInterval
	t.cutoff = cutoff
}

func (t *RouletteTable) Timing() (spinInterval, cutoff time.Duration) {
	return t.spinInterval, t.cutoff
}

func (t *RouletteTable) BettingOpen(now time.Time) bool {
	return now.Before(t.nextSpinAt.Add(-t.cutoff))
}

func (t *RouletteTable) NextSpinAt() time.Time { return t.nextSpinAt }

// Due 是否到了开奖时间
func (t *RouletteTable) Due(now time.Time) bool { return !now.Before(t.nextSpinAt) }

// PlaceBet 受理一笔下注。余额与距离由调用方先行检查。
func (t *RouletteTable) PlaceBet(now time.Time, bet RouletteBet) error {
	if !t.BettingOpen(now) {
		return ErrBettingClosed
	}
	if bet.Bet == nil {
		return ErrInvalidBet
	}
	if bet.Amount < MinBet || bet.Amount > MaxBet {
		return ErrInvalidStake
	}
	t.bets = append(t.bets, bet)
	return nil
}

// Bets 返回当前下注副本
func (t *RouletteTable) Bets() []RouletteBet {
	out := make([]RouletteBet, len(t.bets))
	copy(out, t.bets)
	return out
}

// Spin 开奖：均匀抽取 0..36，逐笔结算。credit 返回 false 表示玩家已离开，
// 这笔中奖不入账也不记录。无论结果如何都清空下注并排定下一次开奖。
func (t *RouletteTable) Spin(now time.Time, rng Rand, credit func(playerID string, amount int) bool) SpinResult {
	result := rng.IntN(37)
	res := SpinResult{Result: result, Wins: []Win{}}
	for _, b := range t.bets {
		if !b.Bet.Covers(result) {
			continue
		}
		payout := b.Amount * b.Bet.Multiplier()
		if credit(b.PlayerID, payout) {
			res.Wins = append(res.Wins, Win{PlayerID: b.PlayerID, Amount: payout})
		}
	}
	t.bets = nil
	t.lastResult = &result
	t.nextSpinAt = now.Add(t.spinInterval)
	return res
}

func (t *RouletteTable) Snapshot(now time.Time) RouletteState {
	var last *int
	if t.lastResult != nil {
		v := *t.lastResult
		last = &v
	}
	return RouletteState{
		Bets:        t.Bets(),
		LastResult:  last,
		NextSpinAt:  t.nextSpinAt.UnixMilli(),
		BettingOpen: t.BettingOpen(now),
	}
}
