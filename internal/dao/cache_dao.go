package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qingyun-game/qingyun/internal/metrics"
	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/pkg/database/redis"
	"github.com/qingyun-game/qingyun/pkg/logger"
)

const (
	playerKeyPrefix = "cache:player:"
	playerCacheTTL  = 30 * time.Minute
)

// CacheDAO 玩家缓存数据访问对象
type CacheDAO struct {
	redis   *redis.Client
	logger  logger.Logger
	metrics *metrics.GameMetrics
}

// NewCacheDAO 创建缓存 DAO
func NewCacheDAO(rdb *redis.Client, l logger.Logger, m *metrics.GameMetrics) *CacheDAO {
	return &CacheDAO{
		redis:   rdb,
		logger:  l.Named("dao.cache"),
		metrics: m,
	}
}

// GetPlayer 从缓存读取玩家，未命中返回 (nil, nil)
func (d *CacheDAO) GetPlayer(ctx context.Context, playerID int64) (*model.Player, error) {
	key := fmt.Sprintf("%s%d", playerKeyPrefix, playerID)

	data, err := d.redis.Get(ctx, key)
	if err != nil {
		if err == redis.ErrNil {
			d.metrics.RecordCacheMiss("redis")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player from cache: %w", err)
	}

	d.metrics.RecordCacheHit("redis")

	var p model.Player
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		d.logger.Error("failed to unmarshal cached player",
			"player_id", playerID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to unmarshal cached player: %w", err)
	}

	return &p, nil
}

// SetPlayer 写入玩家缓存
func (d *CacheDAO) SetPlayer(ctx context.Context, p *model.Player) error {
	key := fmt.Sprintf("%s%d", playerKeyPrefix, p.ID)

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	if err := d.redis.Set(ctx, key, data, playerCacheTTL); err != nil {
		return fmt.Errorf("failed to set player cache: %w", err)
	}
	return nil
}

// DeletePlayer 删除玩家缓存
func (d *CacheDAO) DeletePlayer(ctx context.Context, playerID int64) error {
	key := fmt.Sprintf("%s%d", playerKeyPrefix, playerID)
	return d.redis.Del(ctx, key)
}
