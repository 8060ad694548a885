package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingyun-game/qingyun/internal/gamedata"
	"github.com/qingyun-game/qingyun/internal/model"
)

// seedMissions 给玩家装入手工构造的当期任务，并把重置时间钉在当天，
// 防止测试路径上触发惰性刷新
func seedMissions(p *model.Player, now time.Time, daily ...*model.MissionInstance) {
	p.DailyMissions = make(map[string]*model.MissionInstance)
	for _, inst := range daily {
		p.DailyMissions[inst.ID] = inst
	}
	p.WeeklyMissions = make(map[string]*model.MissionInstance)
	p.LastDailyReset = now
	p.LastWeeklyReset = now
}

func missionFixture(id string, completed, claimed bool) *model.MissionInstance {
	return &model.MissionInstance{
		ID:         id,
		TemplateID: "d_cultivate_1",
		Name:       "Morning Meditation",
		Cadence:    model.CadenceDaily,
		Metric:     model.MetricCultivationSessions,
		Target:     1,
		Progress:   1,
		Completed:  completed,
		Claimed:    claimed,
		Reward:     model.RewardBundle{Exp: 300, Gold: 100},
	}
}

func TestRefreshIfDue_GeneratesBothCadences(t *testing.T) {
	p := testPlayer(1, 0)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{betweens: []int{5}})

	snapshot := store.mustGet(1)
	changed := svc.RefreshIfDue(snapshot, testNow)

	assert.True(t, changed)
	assert.Len(t, snapshot.DailyMissions, 5)
	assert.Len(t, snapshot.WeeklyMissions, 3) // 境界 10 以下每周 3 个
	assert.Equal(t, testNow, snapshot.LastDailyReset)
	assert.Equal(t, testNow, snapshot.LastWeeklyReset)

	// 同一天再跑一次不重复刷新
	assert.False(t, svc.RefreshIfDue(snapshot, testNow.Add(time.Hour)))
}

func TestRefreshIfDue_WeeklyCountByRealm(t *testing.T) {
	p := testPlayer(1, 10)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})

	snapshot := store.mustGet(1)
	svc.RefreshIfDue(snapshot, testNow)

	assert.Len(t, snapshot.WeeklyMissions, 4)
}

func TestRefreshIfDue_ScalesTargetAndReward(t *testing.T) {
	p := testPlayer(1, 5)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{betweens: []int{4}})

	snapshot := store.mustGet(1)
	svc.RefreshIfDue(snapshot, testNow)

	// 洗牌为空操作，前 4 个模板按表序入选
	var meditation *model.MissionInstance
	for _, inst := range snapshot.DailyMissions {
		if inst.TemplateID == "d_cultivate_1" {
			meditation = inst
		}
	}
	require.NotNil(t, meditation)

	// 目标 ceil(1 * 1.5)，奖励逐字段 floor(x * 1.75)
	assert.Equal(t, int64(2), meditation.Target)
	assert.Equal(t, int64(525), meditation.Reward.Exp)
	assert.Equal(t, int64(175), meditation.Reward.Gold)
}

func TestRefreshIfDue_ItemQuantityRoundsUp(t *testing.T) {
	p := testPlayer(1, 5)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{betweens: []int{6}})

	snapshot := store.mustGet(1)
	svc.RefreshIfDue(snapshot, testNow)

	var firstBlood *model.MissionInstance
	for _, inst := range snapshot.DailyMissions {
		if inst.TemplateID == "d_pvp_win_1" {
			firstBlood = inst
		}
	}
	require.NotNil(t, firstBlood)
	require.Len(t, firstBlood.Reward.Items, 1)
	assert.Equal(t, 2, firstBlood.Reward.Items[0].Quantity) // ceil(1 * 1.75)
}

func TestApplyProgress_CapsAtTarget(t *testing.T) {
	p := testPlayer(1, 0)
	inst := missionFixture("m1", false, false)
	inst.Target = 3
	inst.Progress = 0
	seedMissions(p, testNow, inst)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})

	snapshot := store.mustGet(1)
	changed := svc.ApplyProgress(snapshot, model.MetricCultivationSessions, 10, testNow)

	assert.True(t, changed)
	got := snapshot.DailyMissions["m1"]
	assert.Equal(t, int64(3), got.Progress)
	assert.True(t, got.Completed)
}

func TestApplyProgress_IgnoresNonPositiveAmount(t *testing.T) {
	p := testPlayer(1, 0)
	seedMissions(p, testNow, missionFixture("m1", false, false))
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})

	snapshot := store.mustGet(1)
	assert.False(t, svc.ApplyProgress(snapshot, model.MetricCultivationSessions, 0, testNow))
	assert.False(t, svc.ApplyProgress(snapshot, model.MetricCultivationSessions, -5, testNow))
}

func TestApplyProgress_SkipsCompletedAndOtherMetrics(t *testing.T) {
	p := testPlayer(1, 0)
	done := missionFixture("m1", true, false)
	other := missionFixture("m2", false, false)
	other.Metric = model.MetricPvPBattles
	other.Target = 5
	other.Progress = 0
	seedMissions(p, testNow, done, other)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})

	snapshot := store.mustGet(1)
	svc.ApplyProgress(snapshot, model.MetricCultivationSessions, 2, testNow)

	assert.Equal(t, int64(1), snapshot.DailyMissions["m1"].Progress) // 已完成不再推进
	assert.Equal(t, int64(0), snapshot.DailyMissions["m2"].Progress) // 指标不匹配
}

func TestListMissions_RefreshesLazily(t *testing.T) {
	p := testPlayer(1, 0)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{betweens: []int{4}})
	svc.now = func() time.Time { return testNow }

	missions, err := svc.ListMissions(context.Background(), 1, model.CadenceDaily)
	require.NoError(t, err)
	assert.Len(t, missions, 4)

	// 刷新结果已写回存储
	assert.Len(t, store.mustGet(1).DailyMissions, 4)
}

func TestClaim_Success(t *testing.T) {
	p := testPlayer(1, 0)
	seedMissions(p, testNow, missionFixture("m1", true, false))
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})
	svc.now = func() time.Time { return testNow }

	result, err := svc.Claim(context.Background(), 1, "m1")
	require.NoError(t, err)

	assert.Equal(t, "m1", result.MissionID)
	assert.Equal(t, model.CadenceDaily, result.Cadence)
	assert.Equal(t, int64(300), result.Reward.Exp)

	stored := store.mustGet(1)
	assert.Equal(t, int64(300), stored.Exp)
	assert.Equal(t, int64(100+100), stored.Gold) // 初始 100 + 奖励 100
	assert.True(t, stored.DailyMissions["m1"].Claimed)
	require.Len(t, stored.CompletedMissions, 1)
	assert.Equal(t, "m1", stored.CompletedMissions[0].InstanceID)
}

func TestClaim_Errors(t *testing.T) {
	p := testPlayer(1, 0)
	incomplete := missionFixture("m1", false, false)
	incomplete.Progress = 0
	claimed := missionFixture("m2", true, true)
	seedMissions(p, testNow, incomplete, claimed)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})
	svc.now = func() time.Time { return testNow }

	_, err := svc.Claim(context.Background(), 1, "missing")
	assert.ErrorIs(t, err, ErrMissionNotFound)

	_, err = svc.Claim(context.Background(), 1, "m1")
	assert.ErrorIs(t, err, ErrMissionNotCompleted)

	_, err = svc.Claim(context.Background(), 1, "m2")
	assert.ErrorIs(t, err, ErrMissionAlreadyClaimed)

	// 错误路径不动账
	assert.Equal(t, int64(0), store.mustGet(1).Exp)
}

func TestClaim_ResolvesPlaceholderItems(t *testing.T) {
	p := testPlayer(1, 0)
	inst := missionFixture("m1", true, false)
	inst.Reward = model.RewardBundle{
		Gold:  100,
		Items: []model.ItemGrant{{Category: gamedata.CategoryRare, Quantity: 2}},
	}
	seedMissions(p, testNow, inst)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{weighted: []int{1}})
	svc.now = func() time.Time { return testNow }

	result, err := svc.Claim(context.Background(), 1, "m1")
	require.NoError(t, err)

	pool := gamedata.ItemPool(gamedata.CategoryRare)
	require.Len(t, result.Items, 1)
	assert.Equal(t, pool[1].ItemID, result.Items[0].ItemID)
	assert.Equal(t, pool[1].Name, result.Items[0].Name)
	assert.Equal(t, 2, result.Items[0].Quantity)
}

func TestClaimAll_NothingClaimable(t *testing.T) {
	p := testPlayer(1, 0)
	incomplete := missionFixture("m1", false, false)
	incomplete.Progress = 0
	seedMissions(p, testNow, incomplete)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})
	svc.now = func() time.Time { return testNow }

	result, err := svc.ClaimAll(context.Background(), 1, model.CadenceDaily)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "no claimable missions", result.Message)
}

func TestClaimAll_PartialNoBonus(t *testing.T) {
	p := testPlayer(1, 0)
	done := missionFixture("m1", true, false)
	pending := missionFixture("m2", false, false)
	pending.Progress = 0
	seedMissions(p, testNow, done, pending)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})
	svc.now = func() time.Time { return testNow }

	result, err := svc.ClaimAll(context.Background(), 1, model.CadenceDaily)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Len(t, result.Claimed, 1)
	assert.True(t, result.Bonus.IsEmpty())
}

func TestClaimAll_FullCompletionBonus(t *testing.T) {
	p := testPlayer(1, 0)
	m1 := missionFixture("m1", true, false)
	m2 := missionFixture("m2", true, false)
	seedMissions(p, testNow, m1, m2)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})
	svc.now = func() time.Time { return testNow }

	result, err := svc.ClaimAll(context.Background(), 1, model.CadenceDaily)
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Len(t, result.Claimed, 2)

	bonus := gamedata.ClaimAllBonus(model.CadenceDaily)
	assert.Equal(t, bonus.Exp, result.Bonus.Exp)
	assert.Equal(t, bonus.Gold, result.Bonus.Gold)

	stored := store.mustGet(1)
	wantExp := int64(300)*2 + bonus.Exp
	assert.Equal(t, wantExp, stored.Exp)
}

func TestClaimAll_AlreadyClaimedStillGrantsBonus(t *testing.T) {
	// 全部完成但部分已单独领取：剩余的照领，加成照发
	p := testPlayer(1, 0)
	claimed := missionFixture("m1", true, true)
	fresh := missionFixture("m2", true, false)
	seedMissions(p, testNow, claimed, fresh)
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})
	svc.now = func() time.Time { return testNow }

	result, err := svc.ClaimAll(context.Background(), 1, model.CadenceDaily)
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Len(t, result.Claimed, 1)
	assert.False(t, result.Bonus.IsEmpty())
}

func TestClaimAll_BonusOnlyOncePerPeriod(t *testing.T) {
	p := testPlayer(1, 0)
	seedMissions(p, testNow, missionFixture("m1", true, false), missionFixture("m2", true, false))
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{})
	svc.now = func() time.Time { return testNow }

	first, err := svc.ClaimAll(context.Background(), 1, model.CadenceDaily)
	require.NoError(t, err)
	require.True(t, first.Success)
	require.False(t, first.Bonus.IsEmpty())

	afterFirst := store.mustGet(1)
	require.True(t, afterFirst.DailyBonusClaimed)
	expAfterFirst := afterFirst.Exp
	goldAfterFirst := afterFirst.Gold

	// 全部领完后重复调用：加成不再发放，账面不动
	for i := 0; i < 3; i++ {
		repeat, err := svc.ClaimAll(context.Background(), 1, model.CadenceDaily)
		require.NoError(t, err)
		assert.False(t, repeat.Success)
		assert.Equal(t, "no claimable missions", repeat.Message)
		assert.Empty(t, repeat.Claimed)
		assert.True(t, repeat.Bonus.IsEmpty())
	}

	stored := store.mustGet(1)
	assert.Equal(t, expAfterFirst, stored.Exp)
	assert.Equal(t, goldAfterFirst, stored.Gold)
}

func TestClaimAll_BonusFlagResetsNextPeriod(t *testing.T) {
	p := testPlayer(1, 0)
	seedMissions(p, testNow, missionFixture("m1", true, false))
	store := newFakeStore(p)
	svc := newTestMissionService(store, &stubSource{betweens: []int{4}})
	svc.now = func() time.Time { return testNow }

	first, err := svc.ClaimAll(context.Background(), 1, model.CadenceDaily)
	require.NoError(t, err)
	require.False(t, first.Bonus.IsEmpty())

	// 次日惰性刷新换期，加成标记随之复位
	svc.now = func() time.Time { return testNow.Add(24 * time.Hour) }
	_, err = svc.ListMissions(context.Background(), 1, model.CadenceDaily)
	require.NoError(t, err)

	stored := store.mustGet(1)
	assert.False(t, stored.DailyBonusClaimed)
}
