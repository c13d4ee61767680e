package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"casinoarena/casino"
)

// 入站事件名
const (
	IntentMove           = "move"
	IntentRouletteBet    = "roulette:bet"
	IntentBlackjackBet   = "blackjack:bet"
	IntentBlackjackDeal  = "blackjack:deal"
	IntentBlackjackHit   = "blackjack:hit"
	IntentBlackjackStand = "blackjack:stand"
)

var ErrUnknownIntent = errors.New("unknown intent")

// InputMessage 入站 JSON 信封（WebSocket 文本消息）
// 示例：{"type":"move","data":{"vx":1,"vy":0,"dt":0.05}}
type InputMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MoveIntent 客户端的速度意图，服务端裁剪后积分
type MoveIntent struct {
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
	DT float64 `json:"dt"`
}

type stakeRequest struct {
	Amount float64 `json:"amount"`
}

// Intent 解码后的客户端意图，在读协程中解析，在房间循环中执行
type Intent struct {
	PlayerID PlayerID
	Type     string
	Move     MoveIntent
	Roulette casino.BetRequest
	Amount   float64
}

// ParseIntent 解析一帧入站消息
func ParseIntent(id PlayerID, payload []byte) (Intent, error) {
	var im InputMessage
	if err := json.Unmarshal(payload, &im); err != nil {
		return Intent{}, fmt.Errorf("decode envelope: %w", err)
	}
	in := Intent{PlayerID: id, Type: im.Type}
	switch im.Type {
	case IntentMove:
		if err := decodeData(im.Data, &in.Move); err != nil {
			return Intent{}, err
		}
	case IntentRouletteBet:
		if err := decodeData(im.Data, &in.Roulette); err != nil {
			return Intent{}, err
		}
	case IntentBlackjackBet:
		var req stakeRequest
		if err := decodeData(im.Data, &req); err != nil {
			return Intent{}, err
		}
		in.Amount = req.Amount
	case IntentBlackjackDeal, IntentBlackjackHit, IntentBlackjackStand:
	default:
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownIntent, im.Type)
	}
	return in, nil
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
