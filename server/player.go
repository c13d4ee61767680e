package server

import "math"

// PlayerID 表示玩家唯一标识（每个连接一个）
type PlayerID string

// Sprites 新玩家随机分配的形象
var Sprites = []string{"knight", "wizard", "rogue", "ranger", "cleric", "bard"}

const (
	// StartingChips 新会话的初始筹码
	StartingChips = 10000
	// MoveSpeed 每秒移动的世界单位
	MoveSpeed = 240.0
	// MaxStep 单次移动允许的最大时间步（秒），防止加速作弊
	MaxStep = 0.1
	// TableRadius 靠近牌桌才能操作的距离
	TableRadius = 150.0
)

// World 世界边界，进程生命周期内不变
type World struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultWorld 默认世界尺寸
var DefaultWorld = World{Width: 1600, Height: 1200}

// Point 世界坐标
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// 牌桌在世界中的固定位置
var (
	RouletteTablePos  = Point{X: 500, Y: 400}
	BlackjackTablePos = Point{X: 1100, Y: 400}
)

// Player 房间内的玩家实体（服务端权威状态），只由房间循环修改
type Player struct {
	ID     PlayerID `json:"id"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Sprite string   `json:"sprite"`
	Chips  int      `json:"chips"`
}

// Near 是否位于点 p 的 radius 范围内
func (pl *Player) Near(p Point, radius float64) bool {
	dx, dy := pl.X-p.X, pl.Y-p.Y
	return dx*dx+dy*dy <= radius*radius
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// finite 把 NaN/Inf 视为 0
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
