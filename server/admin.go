package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RoomConfig 可读取的房间配置（毫秒）
type RoomConfig struct {
	SpinIntervalMs  int64 `json:"spinIntervalMs"`
	BettingCutoffMs int64 `json:"bettingCutoffMs"`
	ResolveTickMs   int64 `json:"resolveTickMs"`
	DealDelayMs     int64 `json:"dealDelayMs"`
	StartingChips   int   `json:"startingChips"`
}

// ConfigUpdate 热更新载荷，只允许调整轮盘节奏
type ConfigUpdate struct {
	SpinIntervalMs  *int64 `json:"spinIntervalMs,omitempty" validate:"omitempty,min=1000,max=3600000"`
	BettingCutoffMs *int64 `json:"bettingCutoffMs,omitempty" validate:"omitempty,min=1"`
}

func (r *Room) config() RoomConfig {
	spin, cutoff := r.roulette.Timing()
	return RoomConfig{
		SpinIntervalMs:  spin.Milliseconds(),
		BettingCutoffMs: cutoff.Milliseconds(),
		ResolveTickMs:   r.opts.ResolveTick.Milliseconds(),
		DealDelayMs:     r.opts.DealDelay.Milliseconds(),
		StartingChips:   r.opts.StartingChips,
	}
}

// applyConfig 在房间循环中应用热更新；截止时长必须小于开奖间隔
func (r *Room) applyConfig(u ConfigUpdate) bool {
	spin, cutoff := r.roulette.Timing()
	if u.SpinIntervalMs != nil {
		spin = time.Duration(*u.SpinIntervalMs) * time.Millisecond
	}
	if u.BettingCutoffMs != nil {
		cutoff = time.Duration(*u.BettingCutoffMs) * time.Millisecond
	}
	if cutoff >= spin {
		return false
	}
	r.roulette.SetTiming(spin, cutoff)
	r.opts.SpinInterval, r.opts.BettingCutoff = spin, cutoff
	return true
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新轮盘节奏）
// GET  /admin/config  返回当前配置
// POST /admin/config  以 JSON 载荷更新部分字段
func HandleAdminConfig(room *Room) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet:
			var cur RoomConfig
			if err := room.Do(c.Request.Context(), func() { cur = room.config() }); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, cur)
		case http.MethodPost:
			var body ConfigUpdate
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
				return
			}
			if err := validate.Struct(body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var (
				ok  bool
				cur RoomConfig
			)
			if err := room.Do(c.Request.Context(), func() {
				ok = room.applyConfig(body)
				cur = room.config()
			}); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "bettingCutoffMs must be less than spinIntervalMs"})
				return
			}
			Log.Infof("config updated: spinInterval=%dms cutoff=%dms", cur.SpinIntervalMs, cur.BettingCutoffMs)
			c.JSON(http.StatusOK, gin.H{"ok": true, "config": cur})
		default:
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
		}
	}
}

// HandleMetrics 输出房间运行指标
// GET /metrics
func HandleMetrics(room *Room) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := gin.H{
			"metrics": room.metrics.Snapshot(),
		}
		if hub, ok := room.bus.(*Hub); ok {
			payload["sessions"] = hub.Sessions()
		}
		c.JSON(http.StatusOK, payload)
	}
}
