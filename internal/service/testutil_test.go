package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qingyun-game/qingyun/internal/metrics"
	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/pkg/logger"
	"github.com/qingyun-game/qingyun/pkg/random"
)

// fakeStore 纯内存的 PlayerStore 实现，检出语义与 manager.PlayerManager 一致
type fakeStore struct {
	mu      sync.Mutex
	players map[int64]*model.Player
}

func newFakeStore(players ...*model.Player) *fakeStore {
	s := &fakeStore{players: make(map[int64]*model.Player)}
	for _, p := range players {
		s.players[p.ID] = p.Clone()
	}
	return s
}

func (s *fakeStore) Get(ctx context.Context, id int64) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[id]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p.Clone(), nil
}

func (s *fakeStore) Save(ctx context.Context, p *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p.Clone()
	return nil
}

func (s *fakeStore) List(ctx context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.players))
	for id := range s.players {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *fakeStore) WithPlayer(ctx context.Context, id int64, fn func(p *model.Player) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.players[id]
	if !ok {
		return ErrPlayerNotFound
	}
	p := stored.Clone()
	save, err := fn(p)
	if err != nil {
		return err
	}
	if save {
		s.players[id] = p
	}
	return nil
}

func (s *fakeStore) WithPlayers(ctx context.Context, a, b int64, fn func(pa, pb *model.Player) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	storedA, ok := s.players[a]
	if !ok {
		return ErrPlayerNotFound
	}
	storedB, ok := s.players[b]
	if !ok {
		return ErrPlayerNotFound
	}
	pa, pb := storedA.Clone(), storedB.Clone()
	save, err := fn(pa, pb)
	if err != nil {
		return err
	}
	if save {
		s.players[a] = pa
		s.players[b] = pb
	}
	return nil
}

// mustGet 直接读取存储内的玩家记录副本
func (s *fakeStore) mustGet(id int64) *model.Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players[id].Clone()
}

// stubSource 脚本化随机源：各通道按队列出值，耗尽后回退到固定默认值
type stubSource struct {
	chances   []bool
	floats    []float64
	weighted  []int
	betweens  []int
	int64s    []int64
	noShuffle bool
}

var _ random.Source = (*stubSource)(nil)

func (s *stubSource) Intn(n int) int { return 0 }

func (s *stubSource) Int64n(n int64) int64 {
	if len(s.int64s) > 0 {
		v := s.int64s[0]
		s.int64s = s.int64s[1:]
		return v
	}
	return 0
}

func (s *stubSource) Float64() float64 {
	if len(s.floats) > 0 {
		v := s.floats[0]
		s.floats = s.floats[1:]
		return v
	}
	return 0.5
}

func (s *stubSource) Between(min, max int) int {
	if len(s.betweens) > 0 {
		v := s.betweens[0]
		s.betweens = s.betweens[1:]
		return v
	}
	return min
}

func (s *stubSource) Chance(p float64) bool {
	if len(s.chances) > 0 {
		v := s.chances[0]
		s.chances = s.chances[1:]
		return v
	}
	return false
}

func (s *stubSource) WeightedIndex(weights []int) int {
	if len(s.weighted) > 0 {
		v := s.weighted[0]
		s.weighted = s.weighted[1:]
		return v
	}
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return -1
	}
	return 0
}

func (s *stubSource) Shuffle(n int, swap func(i, j int)) {
	// 保持原序，便于断言生成结果
}

func testMetrics() *metrics.GameMetrics {
	return metrics.New("test", prometheus.NewRegistry())
}

// testPlayer 构造一个处于指定境界的测试玩家
func testPlayer(id int64, realmIndex int) *model.Player {
	p := model.NewPlayer(id, fmt.Sprintf("player-%d", id))
	p.RealmIndex = realmIndex
	return p
}

func newTestMissionService(store PlayerStore, rng random.Source) *MissionService {
	return NewMissionService(logger.Noop(), store, rng, testMetrics())
}

func newTestCultivationService(store PlayerStore, rng random.Source, now time.Time) *CultivationService {
	missionSvc := newTestMissionService(store, rng)
	missionSvc.now = func() time.Time { return now }
	svc := NewCultivationService(logger.Noop(), store, missionSvc, rng, testMetrics())
	svc.now = func() time.Time { return now }
	return svc
}
