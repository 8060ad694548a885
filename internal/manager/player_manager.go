package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/qingyun-game/qingyun/internal/metrics"
	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/pkg/database/postgres"
	"github.com/qingyun-game/qingyun/pkg/logger"
)

// playerDAO 玩家持久化的最小依赖面
type playerDAO interface {
	GetByID(ctx context.Context, playerID int64) (*model.Player, error)
	Upsert(ctx context.Context, p *model.Player) error
	ListIDs(ctx context.Context) ([]int64, error)
}

// playerCache 玩家缓存的最小依赖面，可为 nil（无 Redis 部署）
type playerCache interface {
	GetPlayer(ctx context.Context, playerID int64) (*model.Player, error)
	SetPlayer(ctx context.Context, p *model.Player) error
}

// PlayerManager 玩家存储管理器
// 实现 service.PlayerStore 契约：加载走 内存 -> Redis -> PostgreSQL，
// 写回落库并回填缓存。每个玩家 ID 持有独立互斥锁，保证同一玩家上的
// 读改写串行执行；所有对外返回的记录均为深拷贝
type PlayerManager struct {
	logger  logger.Logger
	dao     playerDAO
	cache   playerCache
	metrics *metrics.GameMetrics

	// 内存缓存（第一级）
	mu      sync.RWMutex
	players map[int64]*model.Player

	// 玩家级互斥锁表
	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// NewPlayerManager 创建玩家存储管理器
func NewPlayerManager(l logger.Logger, dao playerDAO, cache playerCache, m *metrics.GameMetrics) *PlayerManager {
	return &PlayerManager{
		logger:  l.Named("manager.player"),
		dao:     dao,
		cache:   cache,
		metrics: m,
		players: make(map[int64]*model.Player),
		locks:   make(map[int64]*sync.Mutex),
	}
}

// lockFor 获取指定玩家的互斥锁（懒创建，进程生命周期内不回收）
func (m *PlayerManager) lockFor(playerID int64) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l, ok := m.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[playerID] = l
	}
	return l
}

// load 按三级缓存加载玩家（调用方保证互斥）
func (m *PlayerManager) load(ctx context.Context, playerID int64) (*model.Player, error) {
	m.mu.RLock()
	if p, ok := m.players[playerID]; ok {
		m.mu.RUnlock()
		m.metrics.RecordCacheHit("memory")
		return p, nil
	}
	m.mu.RUnlock()
	m.metrics.RecordCacheMiss("memory")

	if m.cache != nil {
		p, err := m.cache.GetPlayer(ctx, playerID)
		if err != nil {
			m.logger.Warn("failed to get player from redis",
				"player_id", playerID,
				"error", err,
			)
			// 降级走数据库
		}
		if p != nil {
			m.mu.Lock()
			m.players[playerID] = p
			m.mu.Unlock()
			return p, nil
		}
	}

	p, err := m.dao.GetByID(ctx, playerID)
	if err != nil {
		// 不存在即按存储层策略创建默认记录
		if !errors.Is(err, postgres.ErrNoRows) {
			return nil, fmt.Errorf("failed to load player from db: %w", err)
		}
		p = model.NewPlayer(playerID, fmt.Sprintf("Cultivator-%d", playerID))
		if err := m.dao.Upsert(ctx, p); err != nil {
			return nil, fmt.Errorf("failed to create default player: %w", err)
		}
		m.logger.Info("created default player record", "player_id", playerID)
	}

	m.mu.Lock()
	m.players[playerID] = p
	m.mu.Unlock()

	return p, nil
}

// persist 写回玩家：落库、更新内存缓存并回填 Redis
func (m *PlayerManager) persist(ctx context.Context, p *model.Player) error {
	if err := m.dao.Upsert(ctx, p); err != nil {
		return fmt.Errorf("failed to save player: %w", err)
	}

	m.mu.Lock()
	m.players[p.ID] = p
	m.mu.Unlock()

	if m.cache != nil {
		if err := m.cache.SetPlayer(ctx, p); err != nil {
			m.logger.Warn("failed to update player cache",
				"player_id", p.ID,
				"error", err,
			)
			// 数据库已写入，缓存失败不上抛
		}
	}

	return nil
}

// Get 读取玩家快照（副本）
func (m *PlayerManager) Get(ctx context.Context, playerID int64) (*model.Player, error) {
	lock := m.lockFor(playerID)
	lock.Lock()
	defer lock.Unlock()

	p, err := m.load(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Save 写回玩家记录
func (m *PlayerManager) Save(ctx context.Context, p *model.Player) error {
	lock := m.lockFor(p.ID)
	lock.Lock()
	defer lock.Unlock()

	return m.persist(ctx, p.Clone())
}

// List 列出所有玩家 ID
func (m *PlayerManager) List(ctx context.Context) ([]int64, error) {
	return m.dao.ListIDs(ctx)
}

// WithPlayer 在单玩家互斥区内执行读改写
func (m *PlayerManager) WithPlayer(ctx context.Context, playerID int64, fn func(p *model.Player) (bool, error)) error {
	lock := m.lockFor(playerID)
	lock.Lock()
	defer lock.Unlock()

	stored, err := m.load(ctx, playerID)
	if err != nil {
		return err
	}

	p := stored.Clone()
	save, err := fn(p)
	if err != nil {
		return err
	}
	if !save {
		return nil
	}

	return m.persist(ctx, p)
}

// WithPlayers 在两名玩家的互斥区内执行读改写
// 按 ID 升序加锁避免交叉死锁
func (m *PlayerManager) WithPlayers(ctx context.Context, a, b int64, fn func(pa, pb *model.Player) (bool, error)) error {
	if a == b {
		return fmt.Errorf("cannot checkout the same player twice: %d", a)
	}

	first, second := a, b
	if first > second {
		first, second = second, first
	}

	firstLock := m.lockFor(first)
	secondLock := m.lockFor(second)
	firstLock.Lock()
	defer firstLock.Unlock()
	secondLock.Lock()
	defer secondLock.Unlock()

	storedA, err := m.load(ctx, a)
	if err != nil {
		return err
	}
	storedB, err := m.load(ctx, b)
	if err != nil {
		return err
	}

	pa, pb := storedA.Clone(), storedB.Clone()
	save, err := fn(pa, pb)
	if err != nil {
		return err
	}
	if !save {
		return nil
	}

	if err := m.persist(ctx, pa); err != nil {
		return err
	}
	return m.persist(ctx, pb)
}
