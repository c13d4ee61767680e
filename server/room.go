package server

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"casinoarena/casino"
)

var (
	ErrRoomClosed        = errors.New("room closed")
	ErrUnknownPlayer     = errors.New("unknown player")
	ErrTooFar            = errors.New("player not near table")
	ErrInsufficientFunds = errors.New("insufficient chips")
)

// RoomOptions 房间配置
type RoomOptions struct {
	World         World
	SpinInterval  time.Duration
	BettingCutoff time.Duration
	ResolveTick   time.Duration
	DealDelay     time.Duration
	StartingChips int

	Rand      casino.Rand
	Clock     Clock
	Scheduler Scheduler
	Publisher Publisher
}

func (o *RoomOptions) setDefaults() {
	if o.World == (World{}) {
		o.World = DefaultWorld
	}
	if o.SpinInterval <= 0 {
		o.SpinInterval = 30 * time.Second
	}
	// 0 表示使用默认截止时长
	if o.BettingCutoff <= 0 {
		o.BettingCutoff = 2 * time.Second
	}
	if o.BettingCutoff >= o.SpinInterval {
		o.BettingCutoff = o.SpinInterval / 2
	}
	if o.ResolveTick <= 0 {
		o.ResolveTick = 500 * time.Millisecond
	}
	if o.DealDelay <= 0 {
		o.DealDelay = 200 * time.Millisecond
	}
	if o.StartingChips <= 0 {
		o.StartingChips = StartingChips
	}
	if o.Rand == nil {
		o.Rand = casino.NewRand(0)
	}
	if o.Clock == nil {
		o.Clock = systemClock{}
	}
	if o.Publisher == nil {
		o.Publisher = NewHub()
	}
}

type eventKind int

const (
	evJoin eventKind = iota
	evLeave
	evIntent
	evCall
)

type event struct {
	kind   eventKind
	player PlayerID
	sink   Sink
	intent Intent
	call   func()
}

// Room 房间世界：会话表、两张牌桌，权威状态只由 Run 所在的协程修改
type Room struct {
	opts RoomOptions

	players   map[PlayerID]*Player
	roulette  *casino.RouletteTable
	blackjack *casino.BlackjackTable

	rng     casino.Rand
	clock   Clock
	sched   Scheduler
	bus     Publisher
	metrics *RoomMetrics

	events chan event
	timers chan func()
	done   chan struct{}
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(opts RoomOptions) *Room {
	opts.setDefaults()
	r := &Room{
		opts:    opts,
		players: make(map[PlayerID]*Player),
		rng:     opts.Rand,
		clock:   opts.Clock,
		bus:     opts.Publisher,
		metrics: &RoomMetrics{},
		events:  make(chan event, 256), // 足够缓冲，避免网络读阻塞影响循环
		timers:  make(chan func(), 64),
		done:    make(chan struct{}),
	}
	r.sched = opts.Scheduler
	if r.sched == nil {
		r.sched = loopScheduler{r: r}
	}
	r.roulette = casino.NewRouletteTable(r.clock.Now(), opts.SpinInterval, opts.BettingCutoff)
	r.blackjack = casino.NewBlackjackTable(r.rng)
	return r
}

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// RequestJoin 请求在循环中加入玩家；阻塞直到事件入队
func (r *Room) RequestJoin(ctx context.Context, id PlayerID, s Sink) error {
	return r.enqueue(ctx, event{kind: evJoin, player: id, sink: s})
}

// RequestLeave 请求在循环中移除玩家，保证移除一定生效
func (r *Room) RequestLeave(id PlayerID) {
	_ = r.enqueue(context.Background(), event{kind: evLeave, player: id})
}

// OnInput 入站意图，不阻塞：队列满时丢弃，保证循环准时
func (r *Room) OnInput(in Intent) {
	select {
	case r.events <- event{kind: evIntent, player: in.PlayerID, intent: in}:
	default:
		r.metrics.IncDropped()
	}
}

// Do 在房间循环中执行 fn 并等待其完成
func (r *Room) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := r.enqueue(ctx, event{kind: evCall, call: func() {
		defer close(finished)
		fn()
	}}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) enqueue(ctx context.Context, ev event) error {
	select {
	case r.events <- ev:
		return nil
	case <-r.done:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) handle(ev event) {
	switch ev.kind {
	case evJoin:
		r.join(ev.player, ev.sink)
	case evLeave:
		r.leave(ev.player)
	case evIntent:
		r.apply(ev.intent)
	case evCall:
		ev.call()
	}
}

// join 创建玩家：随机出生点与形象，新玩家收到完整快照，其他人收到加入通知
func (r *Room) join(id PlayerID, s Sink) *Player {
	if _, ok := r.players[id]; ok {
		r.leave(id)
	}
	w := r.opts.World
	p := &Player{
		ID:     id,
		X:      r.rng.Float64() * w.Width,
		Y:      r.rng.Float64() * w.Height,
		Sprite: Sprites[r.rng.IntN(len(Sprites))],
		Chips:  r.opts.StartingChips,
	}
	r.players[id] = p
	r.bus.Subscribe(id, s)
	r.bus.BroadcastExcept(id, Message{Type: MsgPlayerJoined, Data: *p})
	r.bus.Send(id, Message{Type: MsgState, Data: r.worldState(id)})
	r.bus.Send(id, Message{Type: MsgTablesState, Data: r.tablesState()})
	Log.Infof("player joined: id=%s sprite=%s pos=(%.0f,%.0f)", id, p.Sprite, p.X, p.Y)
	return p
}

// leave 将玩家移出房间；持有 21 点座位时一并移除并广播牌桌
func (r *Room) leave(id PlayerID) {
	if _, ok := r.players[id]; !ok {
		return
	}
	delete(r.players, id)
	r.bus.Unsubscribe(id)
	if r.blackjack.Leave(string(id)) {
		r.broadcastBlackjack()
	}
	r.bus.Broadcast(Message{Type: MsgPlayerLeft, Data: map[string]any{"id": id}})
	Log.Infof("player left: id=%s", id)
}

func (r *Room) apply(in Intent) {
	p, ok := r.players[in.PlayerID]
	if !ok {
		// 断开与在途输入竞争：静默忽略
		return
	}
	var err error
	switch in.Type {
	case IntentMove:
		r.move(p, in.Move)
	case IntentRouletteBet:
		err = r.placeRouletteBet(p, in.Roulette)
	case IntentBlackjackBet:
		err = r.placeBlackjackBet(p, in.Amount)
	case IntentBlackjackDeal:
		err = r.deal(p)
	case IntentBlackjackHit:
		err = r.hit(p)
	case IntentBlackjackStand:
		err = r.stand(p)
	default:
		err = ErrUnknownIntent
	}
	if err != nil {
		r.reject(p.ID, in.Type, err)
	}
}

// reject 非法输入与越权操作一律静默丢弃，只记录日志与计数
func (r *Room) reject(id PlayerID, action string, err error) {
	r.metrics.IncRejected()
	Log.Debugf("intent rejected: player=%s action=%s err=%v", id, action, err)
}

// move 裁剪速度与时间步，积分位置并限制在世界范围内
func (r *Room) move(p *Player, in MoveIntent) {
	vx := clamp(finite(in.VX), -1, 1)
	vy := clamp(finite(in.VY), -1, 1)
	dt := clamp(finite(in.DT), 0, MaxStep)
	p.X = clamp(p.X+vx*MoveSpeed*dt, 0, r.opts.World.Width)
	p.Y = clamp(p.Y+vy*MoveSpeed*dt, 0, r.opts.World.Height)
	r.bus.Broadcast(Message{Type: MsgPlayerMoved, Data: map[string]any{"id": p.ID, "x": p.X, "y": p.Y}})
}

func (r *Room) placeRouletteBet(p *Player, req casino.BetRequest) error {
	now := r.clock.Now()
	if !r.roulette.BettingOpen(now) {
		return casino.ErrBettingClosed
	}
	if !p.Near(RouletteTablePos, TableRadius) {
		return ErrTooFar
	}
	bet, amount, err := casino.ParseBet(req)
	if err != nil {
		return err
	}
	if p.Chips < amount {
		return ErrInsufficientFunds
	}
	rb := casino.RouletteBet{ID: uuid.NewString(), PlayerID: string(p.ID), Bet: bet, Amount: amount}
	if err := r.roulette.PlaceBet(now, rb); err != nil {
		return err
	}
	p.Chips -= amount
	r.metrics.IncBetsAccepted()
	r.broadcastRoulette(now)
	r.broadcastChips(p)
	return nil
}

func (r *Room) placeBlackjackBet(p *Player, raw float64) error {
	if r.blackjack.RoundActive() {
		return casino.ErrWrongPhase
	}
	if !p.Near(BlackjackTablePos, TableRadius) {
		return ErrTooFar
	}
	amount, err := casino.ClampStake(raw)
	if err != nil {
		return err
	}
	held := 0
	if seat, ok := r.blackjack.Seat(string(p.ID)); ok {
		held = seat.Bet
	}
	if p.Chips+held < amount {
		return ErrInsufficientFunds
	}
	refund, err := r.blackjack.PlaceBet(string(p.ID), amount)
	if err != nil {
		return err
	}
	p.Chips += refund - amount
	r.metrics.IncBetsAccepted()
	r.broadcastBlackjack()
	r.broadcastChips(p)
	return nil
}

// deal 开始发牌，每张牌间隔 DealDelay 发出，仅用于客户端动画节奏
func (r *Room) deal(p *Player) error {
	if !p.Near(BlackjackTablePos, TableRadius) {
		return ErrTooFar
	}
	if err := r.blackjack.StartDeal(); err != nil {
		return err
	}
	Log.Infof("blackjack deal started by %s", p.ID)
	r.broadcastBlackjack()
	r.sched.After(r.opts.DealDelay, r.dealStep)
	return nil
}

func (r *Room) dealStep() {
	card, ok := r.blackjack.DealNext()
	if ok {
		r.bus.Broadcast(Message{Type: MsgBlackjackCard, Data: card})
	}
	if r.blackjack.Dealing() {
		r.sched.After(r.opts.DealDelay, r.dealStep)
		return
	}
	r.broadcastBlackjack()
}

func (r *Room) hit(p *Player) error {
	if !p.Near(BlackjackTablePos, TableRadius) {
		return ErrTooFar
	}
	card, err := r.blackjack.Hit(string(p.ID))
	if err != nil {
		return err
	}
	r.bus.Broadcast(Message{Type: MsgBlackjackCard, Data: casino.CardDeal{To: "player", PlayerID: string(p.ID), Card: card}})
	r.broadcastBlackjack()
	return nil
}

func (r *Room) stand(p *Player) error {
	if err := r.blackjack.Stand(string(p.ID)); err != nil {
		return err
	}
	r.broadcastBlackjack()
	return nil
}

// Tick 周期性结算：到点开奖；所有座位结束后结算 21 点
func (r *Room) Tick(now time.Time) {
	if r.roulette.Due(now) {
		r.spin(now)
	}
	if r.blackjack.ReadyToResolve() {
		r.resolveBlackjack()
	}
}

func (r *Room) spin(now time.Time) {
	var paid []*Player
	res := r.roulette.Spin(now, r.rng, func(playerID string, amount int) bool {
		p, ok := r.players[PlayerID(playerID)]
		if !ok {
			return false
		}
		p.Chips += amount
		paid = append(paid, p)
		r.metrics.AddChipsPaid(amount)
		return true
	})
	r.metrics.IncSpins()
	Log.Infof("roulette spin: result=%d wins=%d", res.Result, len(res.Wins))
	r.bus.Broadcast(Message{Type: MsgRouletteSpin, Data: res})
	for _, p := range uniquePlayers(paid) {
		r.broadcastChips(p)
	}
	r.broadcastRoulette(now)
}

func (r *Room) resolveBlackjack() {
	res, err := r.blackjack.Resolve()
	if err != nil {
		return
	}
	var paid []*Player
	for _, sr := range res.Results {
		if sr.Payout == 0 {
			continue
		}
		if p, ok := r.players[PlayerID(sr.PlayerID)]; ok {
			p.Chips += sr.Payout
			paid = append(paid, p)
			r.metrics.AddChipsPaid(sr.Payout)
		}
	}
	r.metrics.IncRoundsResolved()
	Log.Infof("blackjack resolved: dealer=%d seats=%d", res.DealerValue, len(res.Results))
	r.bus.Broadcast(Message{Type: MsgBlackjackResolve, Data: res})
	for _, p := range paid {
		r.broadcastChips(p)
	}
	r.broadcastBlackjack()
}

func uniquePlayers(ps []*Player) []*Player {
	seen := make(map[PlayerID]bool, len(ps))
	out := ps[:0]
	for _, p := range ps {
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) broadcastRoulette(now time.Time) {
	r.bus.Broadcast(Message{Type: MsgRouletteUpdate, Data: r.roulette.Snapshot(now)})
}

func (r *Room) broadcastBlackjack() {
	r.bus.Broadcast(Message{Type: MsgBlackjackUpdate, Data: r.blackjack.Snapshot()})
}

func (r *Room) broadcastChips(p *Player) {
	r.bus.Broadcast(Message{Type: MsgChipsUpdate, Data: map[string]any{"id": p.ID, "chips": p.Chips}})
}

// TableInfo 牌桌的位置与可操作半径
type TableInfo struct {
	Point
	Radius float64 `json:"radius"`
}

// WorldState 新会话收到的完整世界快照
type WorldState struct {
	ID      PlayerID             `json:"id"`
	World   World                `json:"world"`
	Players []Player             `json:"players"`
	Tables  map[string]TableInfo `json:"tables"`
}

// TablesState 两张牌桌的完整快照
type TablesState struct {
	Roulette  casino.RouletteState  `json:"roulette"`
	Blackjack casino.BlackjackState `json:"blackjack"`
}

func (r *Room) worldState(self PlayerID) WorldState {
	players := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, *p)
	}
	return WorldState{
		ID:      self,
		World:   r.opts.World,
		Players: players,
		Tables: map[string]TableInfo{
			"roulette":  {Point: RouletteTablePos, Radius: TableRadius},
			"blackjack": {Point: BlackjackTablePos, Radius: TableRadius},
		},
	}
}

func (r *Room) tablesState() TablesState {
	return TablesState{
		Roulette:  r.roulette.Snapshot(r.clock.Now()),
		Blackjack: r.blackjack.Snapshot(),
	}
}
