// Package random 提供可注入的随机数能力
// 业务代码不直接使用全局 math/rand，方便在测试中替换为确定性实现
package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source 随机数来源接口
type Source interface {
	// Intn 返回 [0, n) 区间的均匀随机整数，n 必须大于 0
	Intn(n int) int
	// Int64n 返回 [0, n) 区间的均匀随机 int64
	Int64n(n int64) int64
	// Float64 返回 [0.0, 1.0) 区间的均匀随机浮点数
	Float64() float64
	// Between 返回 [min, max] 闭区间的均匀随机整数
	Between(min, max int) int
	// Chance 以概率 p 返回 true，p 取值 [0.0, 1.0]
	Chance(p float64) bool
	// WeightedIndex 按权重随机选择一个下标，总权重为 0 时返回 -1
	WeightedIndex(weights []int) int
	// Shuffle 对 n 个元素洗牌
	Shuffle(n int, swap func(i, j int))
}

// 确保 lockedSource 实现了 Source 接口
var _ Source = (*lockedSource)(nil)

// lockedSource 基于 math/rand 的实现，带互斥锁保证并发安全
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New 创建指定种子的随机源
func New(seed int64) Source {
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

// NewFromTime 创建以当前时间为种子的随机源
func NewFromTime() Source {
	return New(time.Now().UnixNano())
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

func (s *lockedSource) Int64n(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Int63n(n)
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *lockedSource) Between(min, max int) int {
	if max <= min {
		return min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return min + s.r.Intn(max-min+1)
}

func (s *lockedSource) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64() < p
}

func (s *lockedSource) WeightedIndex(weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	s.mu.Lock()
	roll := s.r.Intn(total)
	s.mu.Unlock()

	current := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		current += w
		if roll < current {
			return i
		}
	}
	return len(weights) - 1
}

func (s *lockedSource) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Shuffle(n, swap)
}
