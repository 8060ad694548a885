package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/pkg/logger"
	"github.com/qingyun-game/qingyun/pkg/random"
)

// stubIDGen 递增发号器
type stubIDGen struct {
	next int64
}

func (g *stubIDGen) NextID() (int64, error) {
	g.next++
	return g.next, nil
}

func newTestPvPService(store PlayerStore, rng random.Source, now time.Time) (*PvPService, *ChallengeRegistry) {
	registry := NewChallengeRegistry()
	missionSvc := newTestMissionService(store, rng)
	missionSvc.now = func() time.Time { return now }
	svc := NewPvPService(logger.Noop(), store, registry, NewBattleSimulator(rng), missionSvc, &stubIDGen{}, testMetrics())
	svc.now = func() time.Time { return now }
	return svc, registry
}

func TestCreateChallenge_Success(t *testing.T) {
	store := newFakeStore(testPlayer(1, 2), testPlayer(2, 3))
	svc, registry := newTestPvPService(store, &stubSource{}, testNow)

	result, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Challenge)

	assert.Equal(t, int64(1), result.Challenge.ChallengerID)
	assert.Equal(t, int64(2), result.Challenge.TargetID)
	assert.Equal(t, model.ChallengePending, result.Challenge.Status)
	assert.Equal(t, testNow.Add(ChallengeTTL), result.Challenge.ExpiresAt)
	assert.Equal(t, 1, registry.Size())
}

func TestCreateChallenge_SelfRejected(t *testing.T) {
	store := newFakeStore(testPlayer(1, 0))
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	result, err := svc.CreateChallenge(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "cannot challenge yourself", result.Reason)
}

func TestCreateChallenge_RealmGapTooLarge(t *testing.T) {
	store := newFakeStore(testPlayer(1, 0), testPlayer(2, 4))
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	result, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "realm gap too large", result.Reason)
}

func TestCreateChallenge_GapBoundaryAllowed(t *testing.T) {
	store := newFakeStore(testPlayer(1, 0), testPlayer(2, 3))
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	result, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestCreateChallenge_LowHealthRejected(t *testing.T) {
	wounded := testPlayer(2, 0)
	wounded.HP = 29 // 低于 30% 上限血量
	store := newFakeStore(testPlayer(1, 0), wounded)
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	result, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "target health too low", result.Reason)
}

func TestCreateChallenge_CultivatingRejected(t *testing.T) {
	busy := testPlayer(1, 0)
	busy.Cultivating = true
	store := newFakeStore(busy, testPlayer(2, 0))
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	result, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "challenger is cultivating", result.Reason)
}

func TestCreateChallenge_OnCooldown(t *testing.T) {
	store := newFakeStore(testPlayer(1, 0), testPlayer(2, 0))
	svc, registry := newTestPvPService(store, &stubSource{}, testNow)
	registry.SetCooldown(1, testNow.Add(3*time.Minute))

	result, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Reason, "on cooldown")
}

func TestCreateChallenge_DuplicatePending(t *testing.T) {
	store := newFakeStore(testPlayer(1, 0), testPlayer(2, 0))
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	first, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, "challenge already pending", second.Reason)
}

func TestAcceptChallenge(t *testing.T) {
	store := newFakeStore(testPlayer(1, 0), testPlayer(2, 0))
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	created, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	id := created.Challenge.ID

	// 非目标方不能接受
	_, err = svc.AcceptChallenge(context.Background(), id, 1)
	assert.ErrorIs(t, err, ErrWrongParty)

	c, err := svc.AcceptChallenge(context.Background(), id, 2)
	require.NoError(t, err)
	assert.Equal(t, model.ChallengeAccepted, c.Status)

	// 重复接受视为已处理
	_, err = svc.AcceptChallenge(context.Background(), id, 2)
	assert.ErrorIs(t, err, ErrChallengeResolved)
}

func TestAcceptChallenge_Expired(t *testing.T) {
	store := newFakeStore(testPlayer(1, 0), testPlayer(2, 0))
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	created, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)

	svc.now = func() time.Time { return testNow.Add(ChallengeTTL + time.Second) }
	_, err = svc.AcceptChallenge(context.Background(), created.Challenge.ID, 2)
	assert.ErrorIs(t, err, ErrChallengeExpired)

	// 过期挑战现场剔除，再次访问直接 NotFound
	_, err = svc.AcceptChallenge(context.Background(), created.Challenge.ID, 2)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestDeclineChallenge(t *testing.T) {
	store := newFakeStore(testPlayer(1, 0), testPlayer(2, 0))
	svc, registry := newTestPvPService(store, &stubSource{}, testNow)

	created, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)

	err = svc.DeclineChallenge(context.Background(), created.Challenge.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, registry.Size())

	// 拒绝不产生冷却
	assert.Zero(t, registry.CooldownRemaining(1, testNow))
	assert.Zero(t, registry.CooldownRemaining(2, testNow))
}

func TestExecuteBattle_RequiresAccepted(t *testing.T) {
	store := newFakeStore(testPlayer(1, 0), testPlayer(2, 0))
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	created, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)

	_, err = svc.ExecuteBattle(context.Background(), created.Challenge.ID)
	assert.ErrorIs(t, err, ErrChallengeNotAccepted)
}

func TestExecuteBattle_FullSettlement(t *testing.T) {
	challenger := testPlayer(1, 0)
	challenger.Attack = 1
	challenger.Defense = 0

	// 守方一击致胜，结果确定
	target := testPlayer(2, 0)
	target.Attack = 1000
	target.Speed = 20

	store := newFakeStore(challenger, target)
	svc, registry := newTestPvPService(store, &stubSource{}, testNow)

	created, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	id := created.Challenge.ID

	_, err = svc.AcceptChallenge(context.Background(), id, 2)
	require.NoError(t, err)

	result, err := svc.ExecuteBattle(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, id, result.ChallengeID)
	assert.Equal(t, target.ID, result.WinnerID)
	assert.Equal(t, challenger.ID, result.LoserID)
	assert.False(t, result.WinnerReward.IsEmpty())

	winner := store.mustGet(2)
	loser := store.mustGet(1)

	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 1, winner.WinStreak)
	assert.Equal(t, 110, winner.PvPRank) // floor(1*10 + 1.0*100)
	assert.Equal(t, result.WinnerReward.Exp, winner.Exp)
	assert.Equal(t, int64(100)+result.WinnerReward.Gold, winner.Gold)
	require.NotNil(t, winner.LastBattleAt)

	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 0, loser.WinStreak)
	assert.GreaterOrEqual(t, loser.Exp, int64(0))
	assert.GreaterOrEqual(t, loser.Gold, int64(0))

	require.Len(t, winner.BattleHistory, 1)
	assert.True(t, winner.BattleHistory[0].Won)
	assert.Equal(t, challenger.ID, winner.BattleHistory[0].OpponentID)
	require.Len(t, loser.BattleHistory, 1)
	assert.False(t, loser.BattleHistory[0].Won)

	// 双方进入冷却，挑战随结算出表
	assert.Equal(t, BattleCooldown, registry.CooldownRemaining(1, testNow))
	assert.Equal(t, BattleCooldown, registry.CooldownRemaining(2, testNow))
	_, err = svc.ExecuteBattle(context.Background(), id)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestExecuteBattle_WinnerMissionProgress(t *testing.T) {
	challenger := testPlayer(1, 0)
	challenger.Attack = 1

	target := testPlayer(2, 0)
	target.Attack = 1000
	target.Speed = 20

	store := newFakeStore(challenger, target)
	// 双方各生成 6 个每日任务，确保 pvp 指标模板在列
	rng := &stubSource{betweens: []int{6, 6}}
	svc, _ := newTestPvPService(store, rng, testNow)

	created, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	_, err = svc.AcceptChallenge(context.Background(), created.Challenge.ID, 2)
	require.NoError(t, err)
	_, err = svc.ExecuteBattle(context.Background(), created.Challenge.ID)
	require.NoError(t, err)

	winner := store.mustGet(2)
	loser := store.mustGet(1)

	var winBattles, winWins, loseBattles, loseWins int64 = -1, -1, -1, -1
	for _, inst := range winner.DailyMissions {
		switch {
		case inst.TemplateID == "d_pvp_1":
			winBattles = inst.Progress
		case inst.Metric == model.MetricPvPWins:
			winWins = inst.Progress
		}
	}
	for _, inst := range loser.DailyMissions {
		switch {
		case inst.TemplateID == "d_pvp_1":
			loseBattles = inst.Progress
		case inst.Metric == model.MetricPvPWins:
			loseWins = inst.Progress
		}
	}

	assert.Equal(t, int64(1), winBattles)
	assert.Equal(t, int64(1), winWins)
	assert.Equal(t, int64(1), loseBattles)
	// 胜场指标只进胜方
	assert.Equal(t, int64(0), loseWins)
}

func TestExecuteBattle_ConcurrentSettlesOnce(t *testing.T) {
	challenger := testPlayer(1, 0)
	challenger.Attack = 1

	target := testPlayer(2, 0)
	target.Attack = 1000
	target.Speed = 20

	store := newFakeStore(challenger, target)
	svc, _ := newTestPvPService(store, &stubSource{}, testNow)

	created, err := svc.CreateChallenge(context.Background(), 1, 2)
	require.NoError(t, err)
	id := created.Challenge.ID
	_, err = svc.AcceptChallenge(context.Background(), id, 2)
	require.NoError(t, err)

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.ExecuteBattle(context.Background(), id)
		}(i)
	}
	wg.Wait()

	// 同一挑战并发结算只有一次成功，其余拿不到挑战
	settled := 0
	for _, err := range errs {
		if err == nil {
			settled++
			continue
		}
		assert.ErrorIs(t, err, ErrChallengeNotFound)
	}
	assert.Equal(t, 1, settled)

	winner := store.mustGet(2)
	loser := store.mustGet(1)
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 1, winner.WinStreak)
	assert.Equal(t, 1, loser.Losses)
	require.Len(t, winner.BattleHistory, 1)
	require.Len(t, loser.BattleHistory, 1)
}
