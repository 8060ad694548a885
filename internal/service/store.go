package service

import (
	"context"

	"github.com/qingyun-game/qingyun/internal/model"
)

// PlayerStore 玩家存储契约
// 实现方必须保证同一玩家 ID 上的读改写互斥（见 manager.PlayerManager）；
// 各引擎按副本检出、修改、写回，不跨调用持有记录引用
type PlayerStore interface {
	// Get 读取玩家快照（副本）
	Get(ctx context.Context, id int64) (*model.Player, error)
	// Save 写回玩家记录
	Save(ctx context.Context, p *model.Player) error
	// List 列出所有玩家 ID（仅后台清扫使用）
	List(ctx context.Context) ([]int64, error)

	// WithPlayer 在单玩家互斥区内执行读改写
	// fn 返回 true 时写回修改后的记录
	WithPlayer(ctx context.Context, id int64, fn func(p *model.Player) (save bool, err error)) error
	// WithPlayers 在两名玩家的互斥区内执行读改写（按 ID 排序加锁避免死锁）
	WithPlayers(ctx context.Context, a, b int64, fn func(pa, pb *model.Player) (save bool, err error)) error
}
