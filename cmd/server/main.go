package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "footstep/internal/domain/common"
	_ "footstep/internal/domain/moderation"
	_ "footstep/internal/domain/posting"
	_ "footstep/internal/domain/report"
	_ "footstep/internal/domain/user"
	"footstep/internal/pkg/config"
	"footstep/internal/pkg/middleware"
	"footstep/internal/pkg/notify"
	"footstep/internal/pkg/push"
	"footstep/internal/pkg/registry"
	"footstep/internal/pkg/session"
	"footstep/internal/pkg/uploader"
	"footstep/internal/pkg/worker"
	"footstep/pkg/cache"
	"footstep/pkg/database"
	"footstep/pkg/logger"
	"footstep/pkg/metrics"
	"footstep/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	config.LoadConfig()
	cfg := &config.GlobalConfig

	log := logger.InitLogger(cfg.App.Env, cfg.App.Debug)
	defer logger.Sync()

	db, err := database.InitDatabase()
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}
	rdb, err := database.InitRedis(context.Background())
	if err != nil {
		log.Fatal("redis init failed", zap.Error(err))
	}
	defer rdb.Close()

	collector := metrics.NewCollector(nil)

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, sqlDB, cfg.Database.DBName); err != nil {
		log.Fatal("register pool metrics failed", zap.Error(err))
	}
	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go database.NewPoolMonitor(sqlDB, 30*time.Second, log.Named("db")).Run(monitorCtx)

	// 通知：邮件必选，推送按配置启用
	senders := notify.MultiSender{notify.NewMailSender(cfg.Mail)}
	if pushClient, err := push.NewAliyunPushService(cfg.Push); err == nil {
		senders = append(senders, notify.NewPushSender(pushClient))
	} else if !errors.Is(err, push.ErrNotConfigured) {
		log.Fatal("push init failed", zap.Error(err))
	}
	notices := worker.NewNoticePool(senders, cfg.Moderation.NoticeWorkers, cfg.Moderation.NoticeQueueSize, log.Named("notice"), collector)
	notices.Start()
	defer notices.Stop()

	// 未配置 OSS 时保持 nil 接口，上传接口返回错误
	var images uploader.ImageStore
	if cfg.OSS.BucketName != "" {
		store, err := uploader.NewAliyunOSSUploader(cfg.OSS)
		if err != nil {
			log.Fatal("oss init failed", zap.Error(err))
		}
		images = store
	}

	tokens := utils.NewTokenIssuer(cfg.JWT.Secret,
		time.Duration(cfg.JWT.Expire)*time.Hour,
		time.Duration(cfg.JWT.RefreshExpire)*time.Hour)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(
		middleware.RequestIDMiddleware(),
		middleware.RecoveryMiddleware(log),
		middleware.LoggerMiddleware(log),
		middleware.MetricsMiddleware(collector),
		middleware.CORSMiddleware(cfg.Server.AllowOrigins),
		middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(rate.Limit(20), 40)),
		middleware.TimeoutMiddleware(cfg.Server.RequestTimeout),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(collector.Handler()))

	api := r.Group("/api/v1")
	authorized := api.Group("")
	authorized.Use(middleware.AuthMiddleware(tokens))

	moduleCtx := &registry.ModuleContext{
		Config:     cfg,
		DB:         db,
		Tx:         database.NewTransactor(db),
		Cache:      cache.NewRedisCache(rdb, cfg.App.Env),
		Sessions:   session.NewRedisStore(rdb),
		Tokens:     tokens,
		Images:     images,
		Notices:    notices,
		Metrics:    collector,
		Log:        log,
		Router:     api,
		AuthRouter: authorized,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		log.Fatal("module init failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}
