package casino

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Rand 是牌桌使用的随机源。洗牌与轮盘开奖都只经由它取随机数，
// 测试中用固定种子即可复现结果。
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand 以给定种子创建可复现的随机源；seed 为 0 时从 crypto/rand 取种子
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		var b [16]byte
		if _, err := crand.Read(b[:]); err == nil {
			return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])))
		}
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
