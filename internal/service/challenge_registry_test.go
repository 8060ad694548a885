package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qingyun-game/qingyun/internal/model"
)

func registryChallenge(id int64, expiresAt time.Time) *model.Challenge {
	return &model.Challenge{
		ID:           id,
		ChallengerID: 100,
		TargetID:     200,
		Status:       model.ChallengePending,
		CreatedAt:    expiresAt.Add(-ChallengeTTL),
		ExpiresAt:    expiresAt,
	}
}

func TestChallengeRegistry_GetReturnsCopy(t *testing.T) {
	r := NewChallengeRegistry()
	r.Put(registryChallenge(1, testNow.Add(time.Minute)))

	c, err := r.Get(1, testNow)
	require.NoError(t, err)

	// 修改副本不影响登记表内的状态
	c.Status = model.ChallengeAccepted
	again, err := r.Get(1, testNow)
	require.NoError(t, err)
	assert.Equal(t, model.ChallengePending, again.Status)
}

func TestChallengeRegistry_LazyExpiry(t *testing.T) {
	r := NewChallengeRegistry()
	r.Put(registryChallenge(1, testNow))

	_, err := r.Get(1, testNow.Add(time.Second))
	assert.ErrorIs(t, err, ErrChallengeExpired)

	// 过期读取即剔除
	_, err = r.Get(1, testNow.Add(time.Second))
	assert.ErrorIs(t, err, ErrChallengeNotFound)
	assert.Equal(t, 0, r.Size())
}

func TestChallengeRegistry_Prune(t *testing.T) {
	r := NewChallengeRegistry()
	r.Put(registryChallenge(1, testNow.Add(-time.Minute)))
	r.Put(registryChallenge(2, testNow.Add(-time.Second)))
	r.Put(registryChallenge(3, testNow.Add(time.Minute)))

	removed := r.Prune(testNow)

	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, r.Size())
	_, err := r.Get(3, testNow)
	assert.NoError(t, err)
}

func TestChallengeRegistry_HasPendingAgainst(t *testing.T) {
	r := NewChallengeRegistry()
	r.Put(registryChallenge(1, testNow.Add(time.Minute)))

	assert.True(t, r.HasPendingAgainst(100, 200, testNow))
	// 反方向不算在途
	assert.False(t, r.HasPendingAgainst(200, 100, testNow))
	// 过期的不算在途
	assert.False(t, r.HasPendingAgainst(100, 200, testNow.Add(2*time.Minute)))
}

func TestChallengeRegistry_Cooldown(t *testing.T) {
	r := NewChallengeRegistry()
	until := testNow.Add(BattleCooldown)
	r.SetCooldown(7, until)

	assert.Equal(t, BattleCooldown, r.CooldownRemaining(7, testNow))
	assert.Equal(t, time.Minute, r.CooldownRemaining(7, until.Add(-time.Minute)))

	// 到期后清除，不留陈旧条目
	assert.Zero(t, r.CooldownRemaining(7, until))
	assert.Zero(t, r.CooldownRemaining(7, testNow))
}

func TestChallengeRegistry_Take(t *testing.T) {
	r := NewChallengeRegistry()
	c := registryChallenge(1, testNow.Add(time.Minute))
	c.Status = model.ChallengeAccepted
	r.Put(c)

	taken, err := r.Take(1, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), taken.ID)

	// 取走即出表，后续取用一律 NotFound
	_, err = r.Take(1, testNow)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
	assert.Equal(t, 0, r.Size())
}

func TestChallengeRegistry_TakeRejectsPendingAndExpired(t *testing.T) {
	r := NewChallengeRegistry()
	r.Put(registryChallenge(1, testNow.Add(time.Minute)))

	// 未接受的挑战不可结算，也不出表
	_, err := r.Take(1, testNow)
	assert.ErrorIs(t, err, ErrChallengeNotAccepted)
	assert.Equal(t, 1, r.Size())

	accepted := registryChallenge(2, testNow)
	accepted.Status = model.ChallengeAccepted
	r.Put(accepted)

	_, err = r.Take(2, testNow.Add(time.Second))
	assert.ErrorIs(t, err, ErrChallengeExpired)
	_, err = r.Take(2, testNow.Add(time.Second))
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestChallengeRegistry_Remove(t *testing.T) {
	r := NewChallengeRegistry()
	r.Put(registryChallenge(1, testNow.Add(time.Minute)))

	assert.True(t, r.Remove(1))
	assert.False(t, r.Remove(1))
}
