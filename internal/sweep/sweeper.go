// Package sweep 承载请求路径之外的周期性后台任务
package sweep

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"

	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/internal/service"
	"github.com/qingyun-game/qingyun/pkg/logger"
)

// Config 后台清扫配置
type Config struct {
	ChallengeSpec string `mapstructure:"challenge_spec" json:"challenge_spec" yaml:"challenge_spec"` // 挑战过期清扫周期
	MissionSpec   string `mapstructure:"mission_spec" json:"mission_spec" yaml:"mission_spec"`       // 任务重置清扫周期
	PoolSize      int    `mapstructure:"pool_size" json:"pool_size" yaml:"pool_size"`                // 任务重置并发度
}

// DefaultConfig 返回默认配置
// 任务清扫每 10 分钟跑一轮：重置判定基于日期比较而非整点触发，
// 错过某一轮不会丢失重置，下一轮自愈
func DefaultConfig() *Config {
	return &Config{
		ChallengeSpec: "@every 30s",
		MissionSpec:   "@every 10m",
		PoolSize:      8,
	}
}

// Sweeper 后台清扫器：挑战过期兜底清理 + 任务周期全量重置
type Sweeper struct {
	logger     logger.Logger
	cfg        *Config
	registry   *service.ChallengeRegistry
	store      service.PlayerStore
	missionSvc *service.MissionService

	cron *cron.Cron
	pool *ants.Pool
}

// New 创建后台清扫器
func New(
	l logger.Logger,
	cfg *Config,
	registry *service.ChallengeRegistry,
	store service.PlayerStore,
	missionSvc *service.MissionService,
) (*Sweeper, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, err
	}

	return &Sweeper{
		logger:     l.Named("sweep"),
		cfg:        cfg,
		registry:   registry,
		store:      store,
		missionSvc: missionSvc,
		cron:       cron.New(),
		pool:       pool,
	}, nil
}

// Start 注册并启动所有清扫任务
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.ChallengeSpec, s.sweepChallenges); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.MissionSpec, s.sweepMissions); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("sweeper started",
		"challenge_spec", s.cfg.ChallengeSpec,
		"mission_spec", s.cfg.MissionSpec,
	)
	return nil
}

// Stop 停止调度并等待在途任务结束
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.pool.Release()
	s.logger.Info("sweeper stopped")
}

// sweepChallenges 清理过期挑战
// 挑战读取路径本身惰性剔除过期条目，这里兜底清理无人再访问的条目
func (s *Sweeper) sweepChallenges() {
	removed := s.registry.Prune(time.Now().UTC())
	if removed > 0 {
		s.logger.Debug("pruned expired challenges", "removed", removed)
	}
}

// sweepMissions 对所有玩家做任务周期重置
// 与请求路径共用同一重置判定，逐玩家在各自互斥区内检出重置
func (s *Sweeper) sweepMissions() {
	ctx := context.Background()

	ids, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("failed to list players for mission sweep", "error", err)
		return
	}

	now := time.Now().UTC()
	for _, id := range ids {
		playerID := id
		err := s.pool.Submit(func() {
			err := s.store.WithPlayer(ctx, playerID, func(p *model.Player) (bool, error) {
				return s.missionSvc.RefreshIfDue(p, now), nil
			})
			if err != nil {
				s.logger.Warn("mission sweep failed for player",
					"player_id", playerID,
					"error", err,
				)
			}
		})
		if err != nil {
			s.logger.Warn("failed to submit mission sweep task",
				"player_id", playerID,
				"error", err,
			)
		}
	}
}
