package casino

import (
	"errors"
	"testing"
)

// stackShoe 把指定的牌放到牌靴头部
func stackShoe(table *BlackjackTable, top ...Card) {
	table.shoe.cards = append(append([]Card{}, top...), table.shoe.cards...)
}

func dealAll(t *testing.T, table *BlackjackTable) []CardDeal {
	t.Helper()
	var deals []CardDeal
	for table.Dealing() {
		d, ok := table.DealNext()
		if !ok {
			break
		}
		deals = append(deals, d)
	}
	return deals
}

func TestBlackjackDealIsInterleaved(t *testing.T) {
	table := NewBlackjackTable(NewRand(3))
	if _, err := table.PlaceBet("a", 10); err != nil {
		t.Fatalf("bet a: %v", err)
	}
	if _, err := table.PlaceBet("b", 20); err != nil {
		t.Fatalf("bet b: %v", err)
	}
	if err := table.StartDeal(); err != nil {
		t.Fatalf("start deal: %v", err)
	}
	if table.Phase() != PhaseDealing {
		t.Fatalf("phase = %s", table.Phase())
	}
	deals := dealAll(t, table)
	order := []string{"a", "b", "", "a", "b", ""}
	if len(deals) != len(order) {
		t.Fatalf("expected %d deals, got %d", len(order), len(deals))
	}
	for i, d := range deals {
		if order[i] == "" {
			if d.To != "dealer" {
				t.Fatalf("deal %d to %s, want dealer", i, d.To)
			}
			continue
		}
		if d.To != "player" || d.PlayerID != order[i] {
			t.Fatalf("deal %d = %+v, want player %s", i, d, order[i])
		}
	}
	if table.Phase() != PhaseInProgress {
		t.Fatalf("phase after deal = %s", table.Phase())
	}
}

func TestBlackjackStartDealRequiresFundedSeat(t *testing.T) {
	table := NewBlackjackTable(NewRand(3))
	if err := table.StartDeal(); !errors.Is(err, ErrNoFundedSeats) {
		t.Fatalf("err = %v", err)
	}
}

func TestBlackjackBetOnlyWhenIdle(t *testing.T) {
	table := NewBlackjackTable(NewRand(3))
	_, _ = table.PlaceBet("a", 10)
	_ = table.StartDeal()
	if _, err := table.PlaceBet("b", 10); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("bet during deal: err = %v", err)
	}
	if err := table.StartDeal(); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("second deal: err = %v", err)
	}
}

func TestBlackjackRebetRefundsPreviousStake(t *testing.T) {
	table := NewBlackjackTable(NewRand(3))
	_, _ = table.PlaceBet("a", 10)
	refund, err := table.PlaceBet("a", 25)
	if err != nil || refund != 10 {
		t.Fatalf("refund = %d, err = %v", refund, err)
	}
	seat, _ := table.Seat("a")
	if seat.Bet != 25 {
		t.Fatalf("bet = %d", seat.Bet)
	}
}

func TestBlackjackBustFinishesSeat(t *testing.T) {
	table := NewBlackjackTable(NewRand(3))
	_, _ = table.PlaceBet("a", 10)
	stackShoe(table, cards("10", "9", "9", "8", "5")...)
	_ = table.StartDeal()
	dealAll(t, table)

	seat, _ := table.Seat("a")
	if HandValue(seat.Hand) != 19 {
		t.Fatalf("hand = %v", seat.Hand)
	}
	if _, err := table.Hit("a"); err != nil {
		t.Fatalf("hit: %v", err)
	}
	seat, _ = table.Seat("a")
	if HandValue(seat.Hand) != 24 || !seat.Busted || !seat.Finished {
		t.Fatalf("seat after bust = %+v", seat)
	}
	if _, err := table.Hit("a"); !errors.Is(err, ErrSeatFinished) {
		t.Fatalf("hit after bust: err = %v", err)
	}
	if err := table.Stand("a"); !errors.Is(err, ErrSeatFinished) {
		t.Fatalf("stand after bust: err = %v", err)
	}
	if !table.ReadyToResolve() {
		t.Fatalf("table should be ready once all seats finished")
	}
}

func TestBlackjackDealerStandsOnHard17AndPlayerWins(t *testing.T) {
	table := NewBlackjackTable(NewRand(3))
	_, _ = table.PlaceBet("a", 100)
	// 发牌顺序：a, 庄, a, 庄
	stackShoe(table, Card{"10", Diamonds}, Card{"10", Spades}, Card{"9", Clubs}, Card{"7", Hearts})
	_ = table.StartDeal()
	dealAll(t, table)
	if err := table.Stand("a"); err != nil {
		t.Fatalf("stand: %v", err)
	}
	res, err := table.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Dealer) != 2 || res.DealerValue != 17 {
		t.Fatalf("dealer should stand on 17, got %v (%d)", res.Dealer, res.DealerValue)
	}
	if len(res.Results) != 1 || res.Results[0].Outcome != OutcomeWin || res.Results[0].Payout != 200 {
		t.Fatalf("results = %+v", res.Results)
	}
	seat, _ := table.Seat("a")
	if seat.Bet != 0 || len(seat.Hand) != 0 || seat.Finished {
		t.Fatalf("seat not reset: %+v", seat)
	}
	if table.Phase() != PhaseIdle || table.RoundActive() {
		t.Fatalf("table should be idle, phase = %s", table.Phase())
	}
}

func TestBlackjackDealerStandsOnSoft17(t *testing.T) {
	table := NewBlackjackTable(NewRand(3))
	_, _ = table.PlaceBet("a", 10)
	stackShoe(table, cards("10", "A", "7", "6")...)
	_ = table.StartDeal()
	dealAll(t, table)
	_ = table.Stand("a")
	res, _ := table.Resolve()
	if len(res.Dealer) != 2 || res.DealerValue != 17 {
		t.Fatalf("dealer must stand on soft 17, got %v", res.Dealer)
	}
	if res.Results[0].Outcome != OutcomePush || res.Results[0].Payout != 10 {
		t.Fatalf("expected push, got %+v", res.Results[0])
	}
}

func TestBlackjackOutcomes(t *testing.T) {
	cases := []struct {
		value, dealer int
		busted        bool
		want          Outcome
	}{
		{22, 18, true, OutcomeLose},
		{25, 23, true, OutcomeLose},
		{12, 23, false, OutcomeWin},
		{20, 19, false, OutcomeWin},
		{18, 19, false, OutcomeLose},
		{19, 19, false, OutcomePush},
	}
	for _, tc := range cases {
		if got := settle(tc.value, tc.busted, tc.dealer); got != tc.want {
			t.Fatalf("settle(%d, %v, %d) = %s, want %s", tc.value, tc.busted, tc.dealer, got, tc.want)
		}
	}
}

func TestBlackjackDealerAlwaysEndsAtLeast17(t *testing.T) {
	table := NewBlackjackTable(NewRand(11))
	for round := 0; round < 200; round++ {
		_, _ = table.PlaceBet("a", 10)
		if err := table.StartDeal(); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		dealAll(t, table)
		_ = table.Stand("a")
		res, err := table.Resolve()
		if err != nil {
			t.Fatalf("round %d resolve: %v", round, err)
		}
		if res.DealerValue < DealerStandsOn {
			t.Fatalf("round %d: dealer stopped at %d", round, res.DealerValue)
		}
		if HandValue(res.Dealer[:len(res.Dealer)-1]) >= DealerStandsOn && len(res.Dealer) > 2 {
			t.Fatalf("round %d: dealer drew on %v", round, res.Dealer)
		}
		if table.ShoeLen() < ShoeLowWater {
			t.Fatalf("shoe ran low: %d", table.ShoeLen())
		}
	}
}

func TestBlackjackDealRefillsLowShoe(t *testing.T) {
	table := NewBlackjackTable(NewRand(5))
	table.shoe.cards = table.shoe.cards[:8]
	_, _ = table.PlaceBet("a", 10)
	_ = table.StartDeal()
	dealAll(t, table)
	if table.ShoeLen() < ShoeLowWater {
		t.Fatalf("shoe len after deal = %d", table.ShoeLen())
	}
	if table.ShoeLen() != 8+ShoeSize-4 {
		t.Fatalf("expected one refill block, len = %d", table.ShoeLen())
	}
}

func TestBlackjackLeaveDuringDealSkipsSeat(t *testing.T) {
	table := NewBlackjackTable(NewRand(5))
	_, _ = table.PlaceBet("a", 10)
	_, _ = table.PlaceBet("b", 10)
	_ = table.StartDeal()
	_, _ = table.DealNext()
	table.Leave("b")
	deals := dealAll(t, table)
	for _, d := range deals {
		if d.PlayerID == "b" {
			t.Fatalf("departed seat dealt a card")
		}
	}
	if len(deals) != 3 {
		t.Fatalf("expected 3 remaining deals, got %d", len(deals))
	}
	if _, ok := table.Seat("b"); ok {
		t.Fatalf("seat b should be removed")
	}
}

func TestBlackjackSeatPersistsAcrossRounds(t *testing.T) {
	table := NewBlackjackTable(NewRand(5))
	_, _ = table.PlaceBet("a", 10)
	_ = table.StartDeal()
	dealAll(t, table)
	_ = table.Stand("a")
	if _, err := table.Resolve(); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	snap := table.Snapshot()
	if len(snap.Seats) != 1 || snap.Seats[0].PlayerID != "a" || snap.Seats[0].Bet != 0 {
		t.Fatalf("seat membership lost: %+v", snap.Seats)
	}
	if err := table.StartDeal(); !errors.Is(err, ErrNoFundedSeats) {
		t.Fatalf("unfunded seat must not deal: %v", err)
	}
}

func TestBlackjackDealLeavesShoeAboveLowWater(t *testing.T) {
	table := NewBlackjackTable(NewRand(5))
	table.shoe.cards = table.shoe.cards[:13]
	_, _ = table.PlaceBet("a", 10)
	_ = table.StartDeal()
	dealAll(t, table)
	if table.ShoeLen() != 9+ShoeSize {
		t.Fatalf("shoe after deal = %d, want %d", table.ShoeLen(), 9+ShoeSize)
	}

	table.shoe.cards = table.shoe.cards[:10]
	if _, err := table.Hit("a"); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if table.ShoeLen() < ShoeLowWater {
		t.Fatalf("shoe after hit = %d", table.ShoeLen())
	}
}
