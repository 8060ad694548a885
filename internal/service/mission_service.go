package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/qingyun-game/qingyun/internal/gamedata"
	"github.com/qingyun-game/qingyun/internal/metrics"
	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/pkg/logger"
	"github.com/qingyun-game/qingyun/pkg/random"
)

const (
	// 每日任务生成数量区间
	dailyMissionMin = 4
	dailyMissionMax = 6

	// 每周任务数量：境界 10 以下 3 个，10 及以上 4 个
	weeklyMissionLow      = 3
	weeklyMissionHigh     = 4
	weeklyMissionRealmCut = 10

	// 实例缩放系数
	targetScalePerRealm = 0.1
	rewardScalePerRealm = 0.15
)

// ResolvedItem 领取时解析出的具体物品
type ResolvedItem struct {
	ItemID   int32  `json:"item_id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ClaimResult 单个任务领取结果
type ClaimResult struct {
	MissionID   string             `json:"mission_id"`
	MissionName string             `json:"mission_name"`
	Cadence     model.Cadence      `json:"cadence"`
	Reward      model.RewardBundle `json:"reward"`
	Items       []ResolvedItem     `json:"items,omitempty"`
}

// ClaimAllResult 一键领取结果
type ClaimAllResult struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Claimed    []ClaimResult      `json:"claimed,omitempty"`
	Bonus      model.RewardBundle `json:"bonus,omitempty"` // 全完成加成，未触发时为空
	BonusItems []ResolvedItem     `json:"bonus_items,omitempty"`
}

// MissionService 任务服务：模板实例化、进度推进与奖励领取
type MissionService struct {
	logger  logger.Logger
	store   PlayerStore
	rng     random.Source
	metrics *metrics.GameMetrics
	now     func() time.Time
}

// NewMissionService 创建任务服务
func NewMissionService(l logger.Logger, store PlayerStore, rng random.Source, m *metrics.GameMetrics) *MissionService {
	return &MissionService{
		logger:  l.Named("service.mission"),
		store:   store,
		rng:     rng,
		metrics: m,
		now:     time.Now,
	}
}

// RefreshIfDue 惰性刷新：周期已翻转时重新生成任务
// 请求路径与后台清扫共用，重置判定统一走 ShouldReset
func (s *MissionService) RefreshIfDue(p *model.Player, now time.Time) bool {
	changed := false
	for _, cadence := range []model.Cadence{model.CadenceDaily, model.CadenceWeekly} {
		var lastReset time.Time
		if cadence == model.CadenceWeekly {
			lastReset = p.LastWeeklyReset
		} else {
			lastReset = p.LastDailyReset
		}

		if !ShouldReset(cadence, lastReset, now) {
			continue
		}

		p.SetMissions(cadence, s.generateInstances(p, cadence, now), now)
		s.metrics.MissionResets.WithLabelValues(string(cadence)).Inc()
		changed = true
	}
	return changed
}

// generateInstances 按玩家境界生成一期任务实例
// 数量：每日 4-6 随机；每周按境界 3 或 4。模板洗牌后取前缀，
// 目标向上取整缩放，奖励逐字段缩放
func (s *MissionService) generateInstances(p *model.Player, cadence model.Cadence, now time.Time) map[string]*model.MissionInstance {
	templates := gamedata.MissionTemplates(cadence)

	var count int
	if cadence == model.CadenceWeekly {
		if p.RealmIndex >= weeklyMissionRealmCut {
			count = weeklyMissionHigh
		} else {
			count = weeklyMissionLow
		}
	} else {
		count = s.rng.Between(dailyMissionMin, dailyMissionMax)
	}
	if count > len(templates) {
		count = len(templates)
	}

	shuffled := make([]gamedata.MissionTemplate, len(templates))
	copy(shuffled, templates)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	targetScale := 1 + targetScalePerRealm*float64(p.RealmIndex)
	rewardScale := 1 + rewardScalePerRealm*float64(p.RealmIndex)

	instances := make(map[string]*model.MissionInstance, count)
	for _, tpl := range shuffled[:count] {
		inst := &model.MissionInstance{
			ID:          uuid.NewString(),
			TemplateID:  tpl.ID,
			Name:        tpl.Name,
			Description: tpl.Description,
			Cadence:     cadence,
			Metric:      tpl.Metric,
			Target:      int64(math.Ceil(float64(tpl.BaseTarget) * targetScale)),
			Reward:      scaleReward(tpl.Reward, rewardScale),
			CreatedAt:   now,
		}
		instances[inst.ID] = inst
	}

	return instances
}

// scaleReward 按境界缩放奖励：货币与修为向下取整，物品数量向上取整
func scaleReward(r model.RewardBundle, scale float64) model.RewardBundle {
	scaled := model.RewardBundle{
		Exp:    int64(float64(r.Exp) * scale),
		Gold:   int64(float64(r.Gold) * scale),
		Stones: int64(float64(r.Stones) * scale),
	}
	for _, item := range r.Items {
		it := item
		it.Quantity = int(math.Ceil(float64(item.Quantity) * scale))
		scaled.Items = append(scaled.Items, it)
	}
	return scaled
}

// ApplyProgress 在已检出的玩家快照上推进任务进度
// 两个周期中所有匹配指标且未完成的实例都推进，进度封顶于目标值；
// 推进前先做惰性刷新。返回是否有修改
func (s *MissionService) ApplyProgress(p *model.Player, metric model.Metric, amount int64, now time.Time) bool {
	if amount <= 0 {
		return false
	}

	changed := s.RefreshIfDue(p, now)

	for _, cadence := range []model.Cadence{model.CadenceDaily, model.CadenceWeekly} {
		for _, inst := range p.Missions(cadence) {
			if inst.Metric != metric || inst.Completed {
				continue
			}
			inst.Progress += amount
			if inst.Progress >= inst.Target {
				inst.Progress = inst.Target
				inst.Completed = true
			}
			changed = true
		}
	}

	return changed
}

// UpdateProgress 推进任务进度（独立操作入口）
func (s *MissionService) UpdateProgress(ctx context.Context, playerID int64, metric model.Metric, amount int64) error {
	return s.store.WithPlayer(ctx, playerID, func(p *model.Player) (bool, error) {
		return s.ApplyProgress(p, metric, amount, s.now().UTC()), nil
	})
}

// ListMissions 获取玩家当期任务（必要时先刷新）
func (s *MissionService) ListMissions(ctx context.Context, playerID int64, cadence model.Cadence) ([]*model.MissionInstance, error) {
	var missions []*model.MissionInstance

	err := s.store.WithPlayer(ctx, playerID, func(p *model.Player) (bool, error) {
		changed := s.RefreshIfDue(p, s.now().UTC())
		for _, inst := range p.Missions(cadence) {
			missions = append(missions, inst)
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	return missions, nil
}

// Claim 领取单个任务奖励
// 未完成返回 ErrMissionNotCompleted，重复领取返回 ErrMissionAlreadyClaimed
func (s *MissionService) Claim(ctx context.Context, playerID int64, instanceID string) (*ClaimResult, error) {
	var result *ClaimResult

	err := s.store.WithPlayer(ctx, playerID, func(p *model.Player) (bool, error) {
		now := s.now().UTC()
		changed := s.RefreshIfDue(p, now)

		inst := findMission(p, instanceID)
		if inst == nil {
			return changed, ErrMissionNotFound
		}
		if !inst.Completed {
			return changed, ErrMissionNotCompleted
		}
		if inst.Claimed {
			return changed, ErrMissionAlreadyClaimed
		}

		claim := s.settleClaim(p, inst, now)
		result = &claim
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.MissionClaims.WithLabelValues(string(result.Cadence)).Inc()
	s.logger.Info("mission reward claimed",
		"player_id", playerID,
		"mission_id", instanceID,
	)

	return result, nil
}

// ClaimAll 一键领取指定周期的所有已完成任务
// 当期所有实例都完成时额外发放一次加成奖励，发放后置位玩家标记，
// 重复调用不再发放，标记随周期刷新复位
func (s *MissionService) ClaimAll(ctx context.Context, playerID int64, cadence model.Cadence) (*ClaimAllResult, error) {
	result := &ClaimAllResult{}

	err := s.store.WithPlayer(ctx, playerID, func(p *model.Player) (bool, error) {
		now := s.now().UTC()
		changed := s.RefreshIfDue(p, now)

		missions := p.Missions(cadence)
		allCompleted := len(missions) > 0

		for _, inst := range missions {
			if !inst.Completed {
				allCompleted = false
				continue
			}
			if inst.Claimed {
				continue
			}
			claim := s.settleClaim(p, inst, now)
			result.Claimed = append(result.Claimed, claim)
			changed = true
		}

		bonusDue := allCompleted && !p.BonusClaimed(cadence)

		if len(result.Claimed) == 0 && !bonusDue {
			result.Message = "no claimable missions"
			return changed, nil
		}

		if bonusDue {
			bonus := gamedata.ClaimAllBonus(cadence)
			result.Bonus = bonus
			result.BonusItems = s.applyReward(p, bonus)
			p.SetBonusClaimed(cadence)
			changed = true
		}

		result.Success = true
		result.Message = "rewards claimed"
		return changed, nil
	})
	if err != nil {
		return nil, err
	}

	for range result.Claimed {
		s.metrics.MissionClaims.WithLabelValues(string(cadence)).Inc()
	}

	return result, nil
}

// settleClaim 结算单个任务奖励：入账、留档、标记已领取
func (s *MissionService) settleClaim(p *model.Player, inst *model.MissionInstance, now time.Time) ClaimResult {
	items := s.applyReward(p, inst.Reward)
	inst.Claimed = true

	p.CompletedMissions = append(p.CompletedMissions, model.CompletedMission{
		InstanceID: inst.ID,
		TemplateID: inst.TemplateID,
		Name:       inst.Name,
		Cadence:    inst.Cadence,
		ClaimedAt:  now,
	})

	return ClaimResult{
		MissionID:   inst.ID,
		MissionName: inst.Name,
		Cadence:     inst.Cadence,
		Reward:      inst.Reward.Clone(),
		Items:       items,
	}
}

// applyReward 将奖励包入账，并解析占位物品
// 物品不入玩家记录（背包归外部系统），以解析结果返回给调用方
func (s *MissionService) applyReward(p *model.Player, r model.RewardBundle) []ResolvedItem {
	p.Exp += r.Exp
	p.TotalExp += r.Exp
	p.Gold += r.Gold
	p.Stones += r.Stones

	var resolved []ResolvedItem
	for _, grant := range r.Items {
		item := ResolvedItem{ItemID: grant.ItemID, Name: grant.Name, Quantity: grant.Quantity}
		if grant.Category != "" {
			pool := gamedata.ItemPool(grant.Category)
			if idx := s.rng.WeightedIndex(gamedata.ItemPoolWeights(grant.Category)); idx >= 0 {
				item.ItemID = pool[idx].ItemID
				item.Name = pool[idx].Name
			}
		}
		if item.ItemID != 0 {
			resolved = append(resolved, item)
		}
	}
	return resolved
}

// findMission 在两个周期的任务集合中查找实例
func findMission(p *model.Player, instanceID string) *model.MissionInstance {
	if inst, ok := p.DailyMissions[instanceID]; ok {
		return inst
	}
	if inst, ok := p.WeeklyMissions[instanceID]; ok {
		return inst
	}
	return nil
}
