package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qingyun-game/qingyun/internal/dao"
	"github.com/qingyun-game/qingyun/internal/handler"
	"github.com/qingyun-game/qingyun/internal/manager"
	"github.com/qingyun-game/qingyun/internal/metrics"
	"github.com/qingyun-game/qingyun/internal/service"
	"github.com/qingyun-game/qingyun/internal/sweep"
	"github.com/qingyun-game/qingyun/pkg/config"
	"github.com/qingyun-game/qingyun/pkg/database/postgres"
	"github.com/qingyun-game/qingyun/pkg/database/redis"
	"github.com/qingyun-game/qingyun/pkg/idgen"
	"github.com/qingyun-game/qingyun/pkg/logger"
	"github.com/qingyun-game/qingyun/pkg/random"
)

// Config 游戏服务配置
type Config struct {
	Log logger.Config `mapstructure:"log"`

	// HTTP 服务配置
	HTTP HTTPConfig `mapstructure:"http"`

	// 存储配置
	Postgres postgres.Config `mapstructure:"postgres"`
	Redis    redis.Config    `mapstructure:"redis"`

	// 后台清理任务配置
	Sweep sweep.Config `mapstructure:"sweep"`

	// 指标命名空间
	MetricsNamespace string `mapstructure:"metrics_namespace"`

	// 雪花 ID 机器号（多实例部署时须唯一）
	MachineID uint16 `mapstructure:"machine_id"`
}

// HTTPConfig HTTP 监听配置
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func loadConfig(path string) (*Config, error) {
	loader := config.NewLoader("QINGYUN")
	loader.SetDefault("log.level", "info")
	loader.SetDefault("http.addr", ":8080")
	loader.SetDefault("http.read_timeout", "10s")
	loader.SetDefault("http.write_timeout", "10s")
	loader.SetDefault("http.shutdown_timeout", "15s")
	loader.SetDefault("metrics_namespace", "qingyun")
	loader.SetDefault("machine_id", 1)
	loader.SetDefault("sweep.challenge_spec", "@every 30s")
	loader.SetDefault("sweep.mission_spec", "@every 10m")
	loader.SetDefault("sweep.pool_size", 8)

	if err := loader.LoadFile(path); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	var cfg Config
	if err := loader.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// 1. 加载配置
	cfg, err := loadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	// 2. 初始化 Logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		panic(err)
	}
	defer l.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 连接 PostgreSQL
	pg, err := postgres.New(ctx, &cfg.Postgres)
	if err != nil {
		l.Error("failed to connect postgres", "error", err)
		return
	}
	defer pg.Close()

	// 4. 创建指标收集器
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	gameMetrics := metrics.New(cfg.MetricsNamespace, registry)

	// 5. 连接 Redis（可选，不可用时降级为两级缓存）
	var cacheDAO *dao.CacheDAO
	rdb, err := redis.New(&cfg.Redis)
	if err != nil {
		l.Error("failed to create redis client", "error", err)
		return
	}
	if err := rdb.Ping(ctx); err != nil {
		l.Warn("redis unavailable, running without cache layer", "error", err)
		rdb.Close()
	} else {
		defer rdb.Close()
		cacheDAO = dao.NewCacheDAO(rdb, l, gameMetrics)
	}

	// 6. 存储层
	playerDAO := dao.NewPlayerDAO(pg, l, gameMetrics)
	var store *manager.PlayerManager
	if cacheDAO != nil {
		store = manager.NewPlayerManager(l, playerDAO, cacheDAO, gameMetrics)
	} else {
		store = manager.NewPlayerManager(l, playerDAO, nil, gameMetrics)
	}

	// 7. 业务服务
	idGen, err := idgen.NewSonyflake(cfg.MachineID)
	if err != nil {
		l.Error("failed to create id generator", "error", err)
		return
	}

	rng := random.NewFromTime()
	challengeRegistry := service.NewChallengeRegistry()
	simulator := service.NewBattleSimulator(rng)
	missionSvc := service.NewMissionService(l, store, rng, gameMetrics)
	cultivationSvc := service.NewCultivationService(l, store, missionSvc, rng, gameMetrics)
	pvpSvc := service.NewPvPService(l, store, challengeRegistry, simulator, missionSvc, idGen, gameMetrics)

	// 8. 后台清理任务
	sweeper, err := sweep.New(l, &cfg.Sweep, challengeRegistry, store, missionSvc)
	if err != nil {
		l.Error("failed to create sweeper", "error", err)
		return
	}
	if err := sweeper.Start(); err != nil {
		l.Error("failed to start sweeper", "error", err)
		return
	}
	defer sweeper.Stop()

	// 9. HTTP 路由
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	gameHandler := handler.NewGameHandler(l, cultivationSvc, pvpSvc, missionSvc)
	gameHandler.Register(router)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		if err := pg.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	// 10. 运行并监听退出信号
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		l.Info("received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			l.Error("http server shutdown error", "error", err)
		}
		cancel()
	}()

	l.Info("starting game server", "addr", cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		l.Error("server exited with error", "error", err)
	}

	l.Info("game server stopped")
}
