package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterOptions HTTP 层配置
type RouterOptions struct {
	StaticDir      string
	AllowedOrigins []string
}

// NewRouter 组装 HTTP 路由：WebSocket、健康检查、管理与监控接口、静态资源
func NewRouter(room *Room, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(opts.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", HandleWS(room))
	r.GET("/metrics", HandleMetrics(room))
	r.GET("/admin/config", HandleAdminConfig(room))
	r.POST("/admin/config", HandleAdminConfig(room))

	// 前后端分离：未匹配的路径映射到静态资源目录
	if opts.StaticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(opts.StaticDir))))
	}
	return r
}
