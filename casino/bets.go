package casino

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// BetKind 轮盘下注类型
type BetKind string

const (
	KindNumber  BetKind = "number"
	KindColor   BetKind = "color"
	KindOddEven BetKind = "odd_even"
	KindHighLow BetKind = "high_low"
	KindDozen   BetKind = "dozen"
	KindColumn  BetKind = "column"
	KindSplit   BetKind = "split"
	KindStreet  BetKind = "street"
	KindCorner  BetKind = "corner"
	KindSixLine BetKind = "six_line"
	KindBasket  BetKind = "basket"
)

const (
	MinBet = 1
	MaxBet = 1000
)

var (
	ErrInvalidBet   = errors.New("invalid bet")
	ErrInvalidStake = errors.New("stake out of range")
)

var validate = validator.New()

// Bet 是封闭的下注变体集合：每种变体只在边界处校验一次，
// 之后只回答“是否覆盖某个号码”和赔率。
type Bet interface {
	Kind() BetKind
	Covers(n int) bool
	// Multiplier 赔付倍数，含本金
	Multiplier() int
	sealed()
}

type NumberBet struct {
	Number int `json:"number" validate:"min=0,max=36"`
}

type ColorBet struct {
	Color string `json:"color" validate:"oneof=red black"`
}

type OddEvenBet struct {
	Parity string `json:"parity" validate:"oneof=odd even"`
}

type HighLowBet struct {
	Range string `json:"range" validate:"oneof=high low"`
}

type DozenBet struct {
	Dozen int `json:"dozen" validate:"min=1,max=3"`
}

type ColumnBet struct {
	Column int `json:"column" validate:"min=1,max=3"`
}

type SplitBet struct {
	Numbers []int `json:"numbers" validate:"len=2,unique,dive,min=0,max=36"`
}

type StreetBet struct {
	Base int `json:"base" validate:"min=1,max=34"`
}

type CornerBet struct {
	Numbers []int `json:"numbers" validate:"len=4,unique,dive,min=1,max=36"`
}

type SixLineBet struct {
	Base int `json:"base" validate:"min=1,max=31"`
}

type BasketBet struct{}

func (NumberBet) Kind() BetKind  { return KindNumber }
func (ColorBet) Kind() BetKind   { return KindColor }
func (OddEvenBet) Kind() BetKind { return KindOddEven }
func (HighLowBet) Kind() BetKind { return KindHighLow }
func (DozenBet) Kind() BetKind   { return KindDozen }
func (ColumnBet) Kind() BetKind  { return KindColumn }
func (SplitBet) Kind() BetKind   { return KindSplit }
func (StreetBet) Kind() BetKind  { return KindStreet }
func (CornerBet) Kind() BetKind  { return KindCorner }
func (SixLineBet) Kind() BetKind { return KindSixLine }
func (BasketBet) Kind() BetKind  { return KindBasket }

func (NumberBet) Multiplier() int  { return 36 }
func (ColorBet) Multiplier() int   { return 2 }
func (OddEvenBet) Multiplier() int { return 2 }
func (HighLowBet) Multiplier() int { return 2 }
func (DozenBet) Multiplier() int   { return 3 }
func (ColumnBet) Multiplier() int  { return 3 }
func (SplitBet) Multiplier() int   { return 18 }
func (StreetBet) Multiplier() int  { return 12 }
func (CornerBet) Multiplier() int  { return 9 }
func (SixLineBet) Multiplier() int { return 6 }
func (BasketBet) Multiplier() int  { return 9 }

func (NumberBet) sealed()  {}
func (ColorBet) sealed()   {}
func (OddEvenBet) sealed() {}
func (HighLowBet) sealed() {}
func (DozenBet) sealed()   {}
func (ColumnBet) sealed()  {}
func (SplitBet) sealed()   {}
func (StreetBet) sealed()  {}
func (CornerBet) sealed()  {}
func (SixLineBet) sealed() {}
func (BasketBet) sealed()  {}

func (b NumberBet) Covers(n int) bool { return n == b.Number }

func (b ColorBet) Covers(n int) bool { return n != 0 && ColorOf(n) == b.Color }

func (b OddEvenBet) Covers(n int) bool {
	if n == 0 {
		return false
	}
	if b.Parity == "odd" {
		return n%2 == 1
	}
	return n%2 == 0
}

func (b HighLowBet) Covers(n int) bool {
	if b.Range == "high" {
		return n >= 19 && n <= 36
	}
	return n >= 1 && n <= 18
}

func (b DozenBet) Covers(n int) bool {
	return n != 0 && (n-1)/12+1 == b.Dozen
}

func (b ColumnBet) Covers(n int) bool {
	return n != 0 && (n-1)%3+1 == b.Column
}

func (b SplitBet) Covers(n int) bool { return containsInt(b.Numbers, n) }

func (b StreetBet) Covers(n int) bool { return n >= b.Base && n <= b.Base+2 }

func (b CornerBet) Covers(n int) bool { return containsInt(b.Numbers, n) }

func (b SixLineBet) Covers(n int) bool { return n >= b.Base && n <= b.Base+5 }

func (BasketBet) Covers(n int) bool { return n >= 0 && n <= 3 }

func containsInt(xs []int, n int) bool {
	for _, x := range xs {
		if x == n {
			return true
		}
	}
	return false
}

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// ColorOf 欧式轮盘号码颜色：0 为 green
func ColorOf(n int) string {
	switch {
	case n == 0:
		return "green"
	case redNumbers[n]:
		return "red"
	default:
		return "black"
	}
}

// BetRequest 入站 roulette:bet 载荷。数值字段用 float64 接收，
// 以便拒绝非整数输入。
type BetRequest struct {
	Type    string    `json:"type"`
	Amount  float64   `json:"amount"`
	Number  *float64  `json:"number,omitempty"`
	Color   string    `json:"color,omitempty"`
	Parity  string    `json:"parity,omitempty"`
	Range   string    `json:"range,omitempty"`
	Dozen   *float64  `json:"dozen,omitempty"`
	Column  *float64  `json:"column,omitempty"`
	Numbers []float64 `json:"numbers,omitempty"`
	Base    *float64  `json:"base,omitempty"`
}

// ClampStake 将金额向下取整，并要求落在 [MinBet, MaxBet]
func ClampStake(amount float64) (int, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, ErrInvalidStake
	}
	a := math.Floor(amount)
	if a < MinBet || a > MaxBet {
		return 0, ErrInvalidStake
	}
	return int(a), nil
}

// ParseBet 把入站载荷转换为具体变体并校验，返回变体和取整后的金额
func ParseBet(req BetRequest) (Bet, int, error) {
	amount, err := ClampStake(req.Amount)
	if err != nil {
		return nil, 0, err
	}
	bet, err := parseVariant(req)
	if err != nil {
		return nil, 0, err
	}
	if err := validate.Struct(bet); err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", ErrInvalidBet, bet.Kind(), err)
	}
	switch b := bet.(type) {
	case StreetBet:
		if (b.Base-1)%3 != 0 {
			return nil, 0, fmt.Errorf("%w: street base %d", ErrInvalidBet, b.Base)
		}
	case SixLineBet:
		if (b.Base-1)%3 != 0 {
			return nil, 0, fmt.Errorf("%w: six_line base %d", ErrInvalidBet, b.Base)
		}
	}
	return bet, amount, nil
}

func parseVariant(req BetRequest) (Bet, error) {
	switch BetKind(req.Type) {
	case KindNumber:
		n, ok := intField(req.Number)
		if !ok {
			return nil, fmt.Errorf("%w: number", ErrInvalidBet)
		}
		return NumberBet{Number: n}, nil
	case KindColor:
		return ColorBet{Color: req.Color}, nil
	case KindOddEven:
		return OddEvenBet{Parity: req.Parity}, nil
	case KindHighLow:
		return HighLowBet{Range: req.Range}, nil
	case KindDozen:
		n, ok := intField(req.Dozen)
		if !ok {
			return nil, fmt.Errorf("%w: dozen", ErrInvalidBet)
		}
		return DozenBet{Dozen: n}, nil
	case KindColumn:
		n, ok := intField(req.Column)
		if !ok {
			return nil, fmt.Errorf("%w: column", ErrInvalidBet)
		}
		return ColumnBet{Column: n}, nil
	case KindSplit:
		ns, ok := intSlice(req.Numbers)
		if !ok {
			return nil, fmt.Errorf("%w: split", ErrInvalidBet)
		}
		return SplitBet{Numbers: ns}, nil
	case KindStreet:
		n, ok := intField(req.Base)
		if !ok {
			return nil, fmt.Errorf("%w: street", ErrInvalidBet)
		}
		return StreetBet{Base: n}, nil
	case KindCorner:
		ns, ok := intSlice(req.Numbers)
		if !ok {
			return nil, fmt.Errorf("%w: corner", ErrInvalidBet)
		}
		return CornerBet{Numbers: ns}, nil
	case KindSixLine:
		n, ok := intField(req.Base)
		if !ok {
			return nil, fmt.Errorf("%w: six_line", ErrInvalidBet)
		}
		return SixLineBet{Base: n}, nil
	case KindBasket:
		return BasketBet{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidBet, req.Type)
	}
}

func intField(f *float64) (int, bool) {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) || math.Trunc(*f) != *f {
		return 0, false
	}
	return int(*f), true
}

func intSlice(fs []float64) ([]int, bool) {
	out := make([]int, 0, len(fs))
	for i := range fs {
		n, ok := intField(&fs[i])
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

// RouletteBet 台面上的一笔已受理下注
type RouletteBet struct {
	ID       string
	PlayerID string
	Bet      Bet
	Amount   int
}

// MarshalJSON 扁平化输出：公共字段与变体字段位于同一层
func (b RouletteBet) MarshalJSON() ([]byte, error) {
	fields := map[string]any{}
	if b.Bet != nil {
		raw, err := json.Marshal(b.Bet)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		fields["type"] = b.Bet.Kind()
	}
	fields["id"] = b.ID
	fields["playerId"] = b.PlayerID
	fields["amount"] = b.Amount
	return json.Marshal(fields)
}
