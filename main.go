package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"casinoarena/casino"
	"casinoarena/config"
	"casinoarena/server"
)

// 入口：加载配置，启动房间循环与 HTTP + WebSocket 服务
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	var addr string
	flag.StringVar(&addr, "addr", cfg.Addr(), "server listen address, e.g. :3000")
	flag.Parse()

	// 使用 zap 日志写入文件（带滚动）
	if err := server.InitLogger(server.LogOptions{
		FilePath: cfg.LogFile,
		Level:    cfg.LogLevel,
		Stdout:   cfg.LogStdout,
	}); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	room := server.NewRoom(server.RoomOptions{
		SpinInterval:  cfg.SpinInterval,
		BettingCutoff: cfg.BettingCutoff,
		ResolveTick:   cfg.ResolveTick,
		DealDelay:     cfg.DealDelay,
		StartingChips: cfg.StartingChips,
		Rand:          casino.NewRand(cfg.RNGSeed),
	})

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(room, server.RouterOptions{
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	srv := &http.Server{Addr: addr, Handler: router}

	// 优雅退出（Ctrl+C）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return room.Run(ctx)
	})
	g.Go(func() error {
		server.Log.Infof("casino arena listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		server.Log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		server.Log.Errorf("server stopped: %v", err)
		server.SyncLogger()
		os.Exit(1)
	}
}
