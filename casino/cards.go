package casino

// Suit 花色，只用于展示，不影响结算
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

var suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

var ranks = [...]string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// Card 一张牌
type Card struct {
	Rank string `json:"rank"`
	Suit Suit   `json:"suit"`
}

// Value 单张牌面点数：A 记 11，J/Q/K 记 10
func (c Card) Value() int {
	switch c.Rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	}
	if len(c.Rank) == 1 && c.Rank[0] >= '2' && c.Rank[0] <= '9' {
		return int(c.Rank[0] - '0')
	}
	return 0
}

func (c Card) String() string { return c.Rank + string(c.Suit) }

// HandValue 计算手牌点数。A 先按 11 计，总点数超过 21 时逐张改按 1 计。
func HandValue(hand []Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		total += c.Value()
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

const (
	// DecksPerShoe 一个牌靴包含的整副牌数
	DecksPerShoe = 4
	// ShoeSize 一次补充的牌数
	ShoeSize = DecksPerShoe * 52
	// ShoeLowWater 发牌前牌靴至少保留的张数
	ShoeLowWater = 10
)

// Shoe 牌靴：从头部取牌，不足时在尾部追加一整块新洗好的牌。
// 已发出的牌不会回到牌靴。
type Shoe struct {
	cards []Card
	rng   Rand
}

// NewShoe 创建并洗好一个 208 张的牌靴
func NewShoe(rng Rand) *Shoe {
	s := &Shoe{rng: rng}
	s.refill()
	return s
}

// Len 剩余张数
func (s *Shoe) Len() int { return len(s.cards) }

// Draw 取一张牌，取之前保证至少有 ShoeLowWater 张
func (s *Shoe) Draw() Card {
	s.TopUp()
	c := s.cards[0]
	s.cards = s.cards[1:]
	return c
}

// TopUp 剩余不足 ShoeLowWater 张时追加一整块新牌
func (s *Shoe) TopUp() {
	if len(s.cards) < ShoeLowWater {
		s.refill()
	}
}

func (s *Shoe) refill() {
	block := make([]Card, 0, ShoeSize)
	for d := 0; d < DecksPerShoe; d++ {
		for _, suit := range suits {
			for _, rank := range ranks {
				block = append(block, Card{Rank: rank, Suit: suit})
			}
		}
	}
	// Fisher-Yates
	for i := len(block) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		block[i], block[j] = block[j], block[i]
	}
	remaining := make([]Card, 0, len(s.cards)+len(block))
	remaining = append(remaining, s.cards...)
	s.cards = append(remaining, block...)
}
