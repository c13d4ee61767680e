package casino

// fixedRand 每次都返回同一个值（超出范围时取模），用于确定开奖号码
type fixedRand int

func (f fixedRand) IntN(n int) int { return int(f) % n }

func (fixedRand) Float64() float64 { return 0.5 }

func cards(ranks ...string) []Card {
	out := make([]Card, 0, len(ranks))
	for _, s := range ranks {
		out = append(out, Card{Rank: s, Suit: Spades})
	}
	return out
}

func f64(v float64) *float64 { return &v }
