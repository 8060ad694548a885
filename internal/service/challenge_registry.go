package service

import (
	"sync"
	"time"

	"github.com/qingyun-game/qingyun/internal/model"
)

// ChallengeRegistry 挑战与冷却登记表
// 纯内存、进程生命周期内有效，重启即清空（在途挑战与冷却随之丢弃）。
// 过期挑战在读取时惰性剔除，后台清扫周期性兜底
type ChallengeRegistry struct {
	mu         sync.Mutex
	challenges map[int64]*model.Challenge
	cooldowns  map[int64]time.Time // 玩家 ID -> 冷却截止时间
}

// NewChallengeRegistry 创建挑战登记表
func NewChallengeRegistry() *ChallengeRegistry {
	return &ChallengeRegistry{
		challenges: make(map[int64]*model.Challenge),
		cooldowns:  make(map[int64]time.Time),
	}
}

// Put 登记挑战
func (r *ChallengeRegistry) Put(c *model.Challenge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.challenges[c.ID] = c
}

// Get 读取挑战副本，已过期的挑战现场删除并报告过期
func (r *ChallengeRegistry) Get(id int64, now time.Time) (*model.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if c.IsExpired(now) {
		delete(r.challenges, id)
		return nil, ErrChallengeExpired
	}

	cp := *c
	return &cp, nil
}

// Take 原子取走一个已接受的挑战用于结算
// 取走即出表，并发结算同一挑战时只有一方成功，
// 其余调用方得到 ErrChallengeNotFound
func (r *ChallengeRegistry) Take(id int64, now time.Time) (*model.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.challenges[id]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	if c.IsExpired(now) {
		delete(r.challenges, id)
		return nil, ErrChallengeExpired
	}
	if c.Status != model.ChallengeAccepted {
		return nil, ErrChallengeNotAccepted
	}

	delete(r.challenges, id)
	cp := *c
	return &cp, nil
}

// SetStatus 更新挑战状态
func (r *ChallengeRegistry) SetStatus(id int64, status model.ChallengeStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.challenges[id]; ok {
		c.Status = status
	}
}

// Remove 移除挑战，返回是否存在
func (r *ChallengeRegistry) Remove(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.challenges[id]
	delete(r.challenges, id)
	return ok
}

// HasPendingAgainst 判断两名玩家之间是否已有未过期的在途挑战
func (r *ChallengeRegistry) HasPendingAgainst(challengerID, targetID int64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.challenges {
		if c.IsExpired(now) {
			continue
		}
		if c.ChallengerID == challengerID && c.TargetID == targetID {
			return true
		}
	}
	return false
}

// Prune 清理所有已过期挑战，返回清理数量
func (r *ChallengeRegistry) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, c := range r.challenges {
		if c.IsExpired(now) {
			delete(r.challenges, id)
			removed++
		}
	}
	return removed
}

// SetCooldown 设置玩家的 PvP 冷却截止时间
func (r *ChallengeRegistry) SetCooldown(playerID int64, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cooldowns[playerID] = until
}

// CooldownRemaining 查询玩家剩余冷却时长，不在冷却中返回 0
func (r *ChallengeRegistry) CooldownRemaining(playerID int64, now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.cooldowns[playerID]
	if !ok {
		return 0
	}
	if !now.Before(until) {
		delete(r.cooldowns, playerID)
		return 0
	}
	return until.Sub(now)
}

// Size 当前登记的挑战数量
func (r *ChallengeRegistry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.challenges)
}
