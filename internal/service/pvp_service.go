package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/qingyun-game/qingyun/internal/metrics"
	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/pkg/idgen"
	"github.com/qingyun-game/qingyun/pkg/logger"
)

const (
	// ChallengeTTL 挑战等待接受的有效期
	ChallengeTTL = 2 * time.Minute
	// BattleCooldown 战斗结算后双方的 PvP 冷却
	BattleCooldown = 5 * time.Minute

	// maxRealmGap 允许发起挑战的最大境界差
	maxRealmGap = 3
	// minHealthRatio 发起或接受挑战要求的最低气血比例
	minHealthRatio = 0.3
)

// CreateChallengeResult 发起挑战的结果
type CreateChallengeResult struct {
	Success   bool             `json:"success"`
	Reason    string           `json:"reason,omitempty"`
	Challenge *model.Challenge `json:"challenge,omitempty"`
}

// PvPService 玩家对战服务：挑战状态机与战斗结算
type PvPService struct {
	logger     logger.Logger
	store      PlayerStore
	registry   *ChallengeRegistry
	simulator  *BattleSimulator
	missionSvc *MissionService
	idgen      idgen.Generator
	metrics    *metrics.GameMetrics
	now        func() time.Time
}

// NewPvPService 创建对战服务
func NewPvPService(
	l logger.Logger,
	store PlayerStore,
	registry *ChallengeRegistry,
	simulator *BattleSimulator,
	missionSvc *MissionService,
	gen idgen.Generator,
	m *metrics.GameMetrics,
) *PvPService {
	return &PvPService{
		logger:     l.Named("service.pvp"),
		store:      store,
		registry:   registry,
		simulator:  simulator,
		missionSvc: missionSvc,
		idgen:      gen,
		metrics:    m,
		now:        time.Now,
	}
}

// CreateChallenge 发起挑战
// 任一方封禁或修炼中、境界差超过 3、任一方气血低于 30% 或发起方仍在
// 冷却中时，返回带原因的失败结果
func (s *PvPService) CreateChallenge(ctx context.Context, challengerID, targetID int64) (*CreateChallengeResult, error) {
	result := &CreateChallengeResult{}
	now := s.now().UTC()

	if challengerID == targetID {
		result.Reason = "cannot challenge yourself"
		s.metrics.ChallengesCreated.WithLabelValues("rejected").Inc()
		return result, nil
	}

	if remaining := s.registry.CooldownRemaining(challengerID, now); remaining > 0 {
		result.Reason = fmt.Sprintf("on cooldown for %s", remaining.Round(time.Second))
		s.metrics.ChallengesCreated.WithLabelValues("rejected").Inc()
		return result, nil
	}

	if s.registry.HasPendingAgainst(challengerID, targetID, now) {
		result.Reason = "challenge already pending"
		s.metrics.ChallengesCreated.WithLabelValues("rejected").Inc()
		return result, nil
	}

	challenger, err := s.store.Get(ctx, challengerID)
	if err != nil {
		return nil, err
	}
	target, err := s.store.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if reason := challengeEligibility(challenger, target); reason != "" {
		result.Reason = reason
		s.metrics.ChallengesCreated.WithLabelValues("rejected").Inc()
		return result, nil
	}

	id, err := s.idgen.NextID()
	if err != nil {
		return nil, err
	}

	challenge := &model.Challenge{
		ID:           id,
		ChallengerID: challengerID,
		TargetID:     targetID,
		Status:       model.ChallengePending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ChallengeTTL),
	}
	s.registry.Put(challenge)

	s.metrics.ChallengesCreated.WithLabelValues("ok").Inc()
	s.logger.Info("challenge created",
		"challenge_id", id,
		"challenger_id", challengerID,
		"target_id", targetID,
	)

	result.Success = true
	cp := *challenge
	result.Challenge = &cp
	return result, nil
}

// challengeEligibility 校验双方是否满足开战条件，返回空串表示通过
func challengeEligibility(challenger, target *model.Player) string {
	switch {
	case challenger.Banned:
		return "challenger is banned"
	case target.Banned:
		return "target is banned"
	case challenger.Cultivating:
		return "challenger is cultivating"
	case target.Cultivating:
		return "target is cultivating"
	}

	if gap := challenger.RealmIndex - target.RealmIndex; gap > maxRealmGap || gap < -maxRealmGap {
		return "realm gap too large"
	}

	if challenger.MaxHP > 0 && float64(challenger.HP) < float64(challenger.MaxHP)*minHealthRatio {
		return "challenger health too low"
	}
	if target.MaxHP > 0 && float64(target.HP) < float64(target.MaxHP)*minHealthRatio {
		return "target health too low"
	}

	return ""
}

// AcceptChallenge 接受挑战
// 不存在返回 ErrChallengeNotFound，非目标方返回 ErrWrongParty，
// 已处理返回 ErrChallengeResolved，已过期删除并返回 ErrChallengeExpired
func (s *PvPService) AcceptChallenge(ctx context.Context, challengeID, accepterID int64) (*model.Challenge, error) {
	now := s.now().UTC()

	c, err := s.registry.Get(challengeID, now)
	if err != nil {
		return nil, err
	}
	if c.TargetID != accepterID {
		return nil, ErrWrongParty
	}
	if c.Status != model.ChallengePending {
		return nil, ErrChallengeResolved
	}

	s.registry.SetStatus(challengeID, model.ChallengeAccepted)
	c.Status = model.ChallengeAccepted

	s.logger.Info("challenge accepted",
		"challenge_id", challengeID,
		"accepter_id", accepterID,
	)
	return c, nil
}

// DeclineChallenge 拒绝挑战并移除，无任何奖励副作用
func (s *PvPService) DeclineChallenge(ctx context.Context, challengeID, declinerID int64) error {
	now := s.now().UTC()

	c, err := s.registry.Get(challengeID, now)
	if err != nil {
		return err
	}
	if c.TargetID != declinerID {
		return ErrWrongParty
	}

	s.registry.Remove(challengeID)
	s.logger.Info("challenge declined",
		"challenge_id", challengeID,
		"decliner_id", declinerID,
	)
	return nil
}

// ExecuteBattle 执行已接受的挑战
// 先原子取走挑战再取出双方快照模拟战斗并结算：奖惩入账、胜负与段位
// 更新、双方进入冷却、战斗历史入环形缓冲、任务进度推进。挑战在结算前
// 出表，同一 ID 的并发或重复调用只有一次结算，其余返回 ErrChallengeNotFound
func (s *PvPService) ExecuteBattle(ctx context.Context, challengeID int64) (*model.BattleResult, error) {
	now := s.now().UTC()

	c, err := s.registry.Take(challengeID, now)
	if err != nil {
		return nil, err
	}

	var result *model.BattleResult
	err = s.store.WithPlayers(ctx, c.ChallengerID, c.TargetID, func(challenger, target *model.Player) (bool, error) {
		result = s.simulator.Simulate(challenger, target)
		result.ChallengeID = challengeID

		winner, loser := challenger, target
		if result.WinnerID == target.ID {
			winner, loser = target, challenger
		}

		// 连胜在结算前推进，本场胜利计入乘数
		winner.WinStreak++
		loser.WinStreak = 0

		reward, penalty := CalculateRewards(winner, loser)
		result.WinnerReward = reward
		result.LoserPenalty = penalty

		winner.Exp += reward.Exp
		winner.TotalExp += reward.Exp
		winner.Gold += reward.Gold
		loser.Exp -= penalty.ExpLoss
		loser.Gold -= penalty.GoldLoss

		winner.Wins++
		loser.Losses++
		winner.PvPRank = pvpRank(winner)
		loser.PvPRank = pvpRank(loser)

		winner.LastBattleAt = &now
		loser.LastBattleAt = &now

		rec := model.BattleRecord{ChallengeID: challengeID, Rounds: result.Rounds, At: now}
		winRec := rec
		winRec.OpponentID = loser.ID
		winRec.Won = true
		winner.AppendBattleRecord(winRec)

		loseRec := rec
		loseRec.OpponentID = winner.ID
		loser.AppendBattleRecord(loseRec)

		// 任务进度：双方记一场，胜方另记一胜
		s.missionSvc.ApplyProgress(winner, model.MetricPvPBattles, 1, now)
		s.missionSvc.ApplyProgress(loser, model.MetricPvPBattles, 1, now)
		s.missionSvc.ApplyProgress(winner, model.MetricPvPWins, 1, now)
		if reward.Gold > 0 {
			s.missionSvc.ApplyProgress(winner, model.MetricGoldEarned, reward.Gold, now)
		}

		return true, nil
	})
	if err != nil {
		return nil, err
	}

	// 结算完成后双方进入冷却
	cooldownUntil := now.Add(BattleCooldown)
	s.registry.SetCooldown(c.ChallengerID, cooldownUntil)
	s.registry.SetCooldown(c.TargetID, cooldownUntil)

	s.metrics.BattlesTotal.Inc()
	s.metrics.BattleRounds.Observe(float64(result.Rounds))
	s.logger.Info("battle resolved",
		"challenge_id", challengeID,
		"winner_id", result.WinnerID,
		"loser_id", result.LoserID,
		"rounds", result.Rounds,
	)

	return result, nil
}

// pvpRank 重新计算段位：floor(胜场*10 + 胜率*100)
func pvpRank(p *model.Player) int {
	return int(math.Floor(float64(p.Wins)*10 + p.WinRate()*100))
}
