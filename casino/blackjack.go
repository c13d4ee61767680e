package casino

import "errors"

var (
	ErrWrongPhase    = errors.New("blackjack: action not allowed in current phase")
	ErrNoSeat        = errors.New("blackjack: player has no funded seat")
	ErrSeatFinished  = errors.New("blackjack: seat already finished")
	ErrNoFundedSeats = errors.New("blackjack: no funded seats")
)

// Phase 21 点牌桌的回合阶段
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDealing    Phase = "dealing"
	PhaseInProgress Phase = "in_progress"
	PhaseResolving  Phase = "resolving"
)

// DealerStandsOn 庄家在 17 点（含软 17）及以上停牌
const DealerStandsOn = 17

// Outcome 单个座位的结算结果
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomePush Outcome = "push"
)

// Seat 玩家在牌桌上的座位，跨回合保留
type Seat struct {
	PlayerID string `json:"id"`
	Bet      int    `json:"bet"`
	Hand     []Card `json:"hand"`
	Stood    bool   `json:"stood"`
	Busted   bool   `json:"busted"`
	Finished bool   `json:"finished"`
}

func (s *Seat) funded() bool { return s.Bet > 0 }

func (s *Seat) reset() {
	s.Bet = 0
	s.Hand = []Card{}
	s.Stood, s.Busted, s.Finished = false, false, false
}

// CardDeal 一次发牌事件。To 为 "player" 或 "dealer"。
type CardDeal struct {
	To       string `json:"to"`
	PlayerID string `json:"id,omitempty"`
	Card     Card   `json:"card"`
}

// SeatResult 单个座位的结算
type SeatResult struct {
	PlayerID string  `json:"id"`
	Outcome  Outcome `json:"outcome"`
	Bet      int     `json:"bet"`
	Payout   int     `json:"payout"`
	Value    int     `json:"value"`
}

// Resolution 一个回合的结算
type Resolution struct {
	Dealer      []Card       `json:"dealer"`
	DealerValue int          `json:"dealerValue"`
	Results     []SeatResult `json:"results"`
}

// SeatState 座位快照
type SeatState struct {
	Seat
	Value int `json:"value"`
}

// BlackjackState 广播给客户端的牌桌快照
type BlackjackState struct {
	Phase       Phase       `json:"phase"`
	RoundActive bool        `json:"roundActive"`
	Dealer      []Card      `json:"dealer"`
	DealerValue int         `json:"dealerValue"`
	Seats       []SeatState `json:"seats"`
	ShoeCount   int         `json:"shoeCount"`
}

// dealerSlot 在发牌队列中代表庄家
const dealerSlot = ""

// BlackjackTable 21 点牌桌：IDLE → DEALING → IN_PROGRESS → RESOLVING → IDLE
type BlackjackTable struct {
	shoe      *Shoe
	dealer    []Card
	seats     map[string]*Seat
	order     []string // 座位登记顺序
	phase     Phase
	dealQueue []string
}

func NewBlackjackTable(rng Rand) *BlackjackTable {
	return &BlackjackTable{
		shoe:   NewShoe(rng),
		dealer: []Card{},
		seats:  make(map[string]*Seat),
		phase:  PhaseIdle,
	}
}

func (t *BlackjackTable) Phase() Phase { return t.phase }

func (t *BlackjackTable) RoundActive() bool { return t.phase != PhaseIdle }

func (t *BlackjackTable) ShoeLen() int { return t.shoe.Len() }

// Seat 返回座位副本
func (t *BlackjackTable) Seat(playerID string) (Seat, bool) {
	s, ok := t.seats[playerID]
	if !ok {
		return Seat{}, false
	}
	cp := *s
	cp.Hand = append([]Card(nil), s.Hand...)
	return cp, true
}

// PlaceBet 仅在空闲阶段受理。座位已有下注时返回旧注额，调用方应退还。
func (t *BlackjackTable) PlaceBet(playerID string, amount int) (refund int, err error) {
	if t.phase != PhaseIdle {
		return 0, ErrWrongPhase
	}
	if amount < MinBet || amount > MaxBet {
		return 0, ErrInvalidStake
	}
	s, ok := t.seats[playerID]
	if !ok {
		s = &Seat{PlayerID: playerID}
		t.seats[playerID] = s
		t.order = append(t.order, playerID)
	}
	refund = s.Bet
	s.reset()
	s.Bet = amount
	return refund, nil
}

// StartDeal 进入发牌阶段并排好交错发牌顺序：
// 每个有注座位第一张，庄家第一张，每个座位第二张，庄家第二张。
func (t *BlackjackTable) StartDeal() error {
	if t.phase != PhaseIdle {
		return ErrWrongPhase
	}
	funded := t.fundedSeats()
	if len(funded) == 0 {
		return ErrNoFundedSeats
	}
	t.dealer = []Card{}
	t.dealQueue = t.dealQueue[:0]
	for round := 0; round < 2; round++ {
		for _, s := range funded {
			t.dealQueue = append(t.dealQueue, s.PlayerID)
		}
		t.dealQueue = append(t.dealQueue, dealerSlot)
	}
	t.phase = PhaseDealing
	return nil
}

// DealNext 发出队列中的下一张牌。最后一张发完后牌桌进入 IN_PROGRESS。
// 已离座的玩家会被跳过。
func (t *BlackjackTable) DealNext() (CardDeal, bool) {
	if t.phase != PhaseDealing {
		return CardDeal{}, false
	}
	for len(t.dealQueue) > 0 {
		target := t.dealQueue[0]
		t.dealQueue = t.dealQueue[1:]
		var deal CardDeal
		if target == dealerSlot {
			card := t.shoe.Draw()
			t.dealer = append(t.dealer, card)
			deal = CardDeal{To: "dealer", Card: card}
		} else {
			s, ok := t.seats[target]
			if !ok || !s.funded() {
				continue
			}
			card := t.shoe.Draw()
			s.Hand = append(s.Hand, card)
			deal = CardDeal{To: "player", PlayerID: target, Card: card}
		}
		if len(t.dealQueue) == 0 {
			t.finishDeal()
		}
		return deal, true
	}
	t.finishDeal()
	return CardDeal{}, false
}

// finishDeal 发牌结束：进入 IN_PROGRESS，牌靴补足到下限以上
func (t *BlackjackTable) finishDeal() {
	t.phase = PhaseInProgress
	t.shoe.TopUp()
}

// Dealing 是否还有未发的牌
func (t *BlackjackTable) Dealing() bool { return t.phase == PhaseDealing }

func (t *BlackjackTable) activeSeat(playerID string) (*Seat, error) {
	if t.phase != PhaseInProgress {
		return nil, ErrWrongPhase
	}
	s, ok := t.seats[playerID]
	if !ok || !s.funded() {
		return nil, ErrNoSeat
	}
	if s.Finished || s.Stood || s.Busted {
		return nil, ErrSeatFinished
	}
	return s, nil
}

// Hit 要牌；点数超过 21 时标记爆牌并结束该座位
func (t *BlackjackTable) Hit(playerID string) (Card, error) {
	s, err := t.activeSeat(playerID)
	if err != nil {
		return Card{}, err
	}
	card := t.shoe.Draw()
	s.Hand = append(s.Hand, card)
	if HandValue(s.Hand) > 21 {
		s.Busted = true
		s.Finished = true
	}
	t.shoe.TopUp()
	return card, nil
}

// Stand 停牌
func (t *BlackjackTable) Stand(playerID string) error {
	s, err := t.activeSeat(playerID)
	if err != nil {
		return err
	}
	s.Stood = true
	s.Finished = true
	return nil
}

// ReadyToResolve 回合进行中且所有有注座位都已结束
func (t *BlackjackTable) ReadyToResolve() bool {
	if t.phase != PhaseInProgress {
		return false
	}
	for _, s := range t.seats {
		if s.funded() && !s.Finished {
			return false
		}
	}
	return true
}

// Resolve 庄家补牌到 17 点及以上，逐座位结算，然后清空下注回到空闲阶段。
// 派彩由调用方按 Payout 入账。
func (t *BlackjackTable) Resolve() (Resolution, error) {
	if !t.ReadyToResolve() {
		return Resolution{}, ErrWrongPhase
	}
	t.phase = PhaseResolving
	for HandValue(t.dealer) < DealerStandsOn {
		t.dealer = append(t.dealer, t.shoe.Draw())
	}
	t.shoe.TopUp()
	dealerValue := HandValue(t.dealer)
	res := Resolution{
		Dealer:      append([]Card(nil), t.dealer...),
		DealerValue: dealerValue,
		Results:     []SeatResult{},
	}
	for _, id := range t.order {
		s := t.seats[id]
		if !s.funded() {
			continue
		}
		value := HandValue(s.Hand)
		outcome := settle(value, s.Busted, dealerValue)
		payout := 0
		switch outcome {
		case OutcomeWin:
			payout = 2 * s.Bet
		case OutcomePush:
			payout = s.Bet
		}
		res.Results = append(res.Results, SeatResult{
			PlayerID: id, Outcome: outcome, Bet: s.Bet, Payout: payout, Value: value,
		})
	}
	for _, s := range t.seats {
		s.reset()
	}
	t.phase = PhaseIdle
	return res, nil
}

func settle(value int, busted bool, dealerValue int) Outcome {
	switch {
	case busted:
		return OutcomeLose
	case dealerValue > 21 || value > dealerValue:
		return OutcomeWin
	case value < dealerValue:
		return OutcomeLose
	default:
		return OutcomePush
	}
}

// Leave 移除座位，返回是否存在
func (t *BlackjackTable) Leave(playerID string) bool {
	if _, ok := t.seats[playerID]; !ok {
		return false
	}
	delete(t.seats, playerID)
	for i, id := range t.order {
		if id == playerID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *BlackjackTable) fundedSeats() []*Seat {
	out := make([]*Seat, 0, len(t.order))
	for _, id := range t.order {
		if s := t.seats[id]; s.funded() {
			out = append(out, s)
		}
	}
	return out
}

func (t *BlackjackTable) Snapshot() BlackjackState {
	st := BlackjackState{
		Phase:       t.phase,
		RoundActive: t.RoundActive(),
		Dealer:      append([]Card{}, t.dealer...),
		DealerValue: HandValue(t.dealer),
		Seats:       make([]SeatState, 0, len(t.order)),
		ShoeCount:   t.shoe.Len(),
	}
	for _, id := range t.order {
		s := t.seats[id]
		cp := *s
		cp.Hand = append([]Card{}, s.Hand...)
		st.Seats = append(st.Seats, SeatState{Seat: cp, Value: HandValue(s.Hand)})
	}
	return st
}
