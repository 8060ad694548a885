package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/qingyun-game/qingyun/internal/gamedata"
	"github.com/qingyun-game/qingyun/internal/metrics"
	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/pkg/logger"
	"github.com/qingyun-game/qingyun/pkg/random"
)

const (
	// SessionDuration 单次修炼时长
	SessionDuration = 30 * time.Minute
	// MaxDailySessions 每日修炼次数上限
	MaxDailySessions = 5

	// baseExpPerSecond 修炼基础修为速率
	baseExpPerSecond = 1
	// eventChance 修炼随机事件触发概率
	eventChance = 0.3
)

// StartCultivationResult 开始修炼的结果
type StartCultivationResult struct {
	Success       bool      `json:"success"`
	Reason        string    `json:"reason,omitempty"`
	StartTime     time.Time `json:"start_time,omitempty"`
	EndTime       time.Time `json:"end_time,omitempty"`
	SessionNumber int       `json:"session_number,omitempty"`
}

// TriggeredEvent 结算时触发的修炼事件
type TriggeredEvent struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	BonusExp int64  `json:"bonus_exp"`
}

// CompleteCultivationResult 结算修炼的结果
type CompleteCultivationResult struct {
	Success   bool          `json:"success"`
	Reason    string        `json:"reason,omitempty"`
	Remaining time.Duration `json:"remaining,omitempty"` // 未到期时的剩余时长

	BaseExp    int64 `json:"base_exp,omitempty"`
	EventBonus int64 `json:"event_bonus,omitempty"`
	RealmBonus int64 `json:"realm_bonus,omitempty"`
	EquipBonus int64 `json:"equip_bonus,omitempty"`
	TotalExp   int64 `json:"total_exp,omitempty"`

	Events        []TriggeredEvent   `json:"events,omitempty"`
	Breakthroughs []BreakthroughStep `json:"breakthroughs,omitempty"`
	OldRealm      string             `json:"old_realm,omitempty"`
	NewRealm      string             `json:"new_realm,omitempty"`
}

// CultivationService 修炼服务，管理修炼会话的生命周期与结算
type CultivationService struct {
	logger     logger.Logger
	store      PlayerStore
	missionSvc *MissionService
	rng        random.Source
	metrics    *metrics.GameMetrics
	now        func() time.Time
}

// NewCultivationService 创建修炼服务
func NewCultivationService(
	l logger.Logger,
	store PlayerStore,
	missionSvc *MissionService,
	rng random.Source,
	m *metrics.GameMetrics,
) *CultivationService {
	return &CultivationService{
		logger:     l.Named("service.cultivation"),
		store:      store,
		missionSvc: missionSvc,
		rng:        rng,
		metrics:    m,
		now:        time.Now,
	}
}

// StartSession 开始修炼
// 封禁、修炼中或当日次数用尽时返回失败结果，不产生副作用
func (s *CultivationService) StartSession(ctx context.Context, playerID int64) (*StartCultivationResult, error) {
	result := &StartCultivationResult{}

	err := s.store.WithPlayer(ctx, playerID, func(p *model.Player) (bool, error) {
		now := s.now().UTC()

		if p.Banned {
			result.Reason = "player is banned"
			return false, nil
		}
		if p.Cultivating {
			result.Reason = "already cultivating"
			return false, nil
		}

		// 跨日后先清零当日计数
		counterReset := false
		if !sameUTCDay(p.LastSessionReset, now) {
			p.DailySessions = 0
			p.LastSessionReset = now
			counterReset = true
		}
		if p.DailySessions >= MaxDailySessions {
			result.Reason = "daily session limit reached"
			// 本次开始失败，但计数清零仍需落库
			return counterReset, nil
		}

		end := now.Add(SessionDuration)
		p.Cultivating = true
		p.SessionStart = &now
		p.SessionEnd = &end
		p.DailySessions++

		result.Success = true
		result.StartTime = now
		result.EndTime = end
		result.SessionNumber = p.DailySessions
		return true, nil
	})
	if err != nil {
		s.metrics.SessionsStarted.WithLabelValues("error").Inc()
		return nil, err
	}

	if result.Success {
		s.metrics.SessionsStarted.WithLabelValues("ok").Inc()
		s.logger.Info("cultivation session started",
			"player_id", playerID,
			"session_number", result.SessionNumber,
		)
	} else {
		s.metrics.SessionsStarted.WithLabelValues("rejected").Inc()
		s.logger.Debug("cultivation session rejected",
			"player_id", playerID,
			"reason", result.Reason,
		)
	}

	return result, nil
}

// CompleteSession 结算修炼
// 未在修炼或会话未到期时返回失败结果且不做任何修改
func (s *CultivationService) CompleteSession(ctx context.Context, playerID int64) (*CompleteCultivationResult, error) {
	result := &CompleteCultivationResult{}

	err := s.store.WithPlayer(ctx, playerID, func(p *model.Player) (bool, error) {
		now := s.now().UTC()

		if !p.Cultivating || p.SessionEnd == nil {
			result.Reason = "not cultivating"
			return false, nil
		}
		if now.Before(*p.SessionEnd) {
			result.Reason = "session not finished"
			result.Remaining = p.SessionEnd.Sub(now)
			return false, nil
		}

		result.OldRealm = gamedata.RealmName(p.RealmIndex)
		result.BaseExp = int64(SessionDuration.Seconds()) * baseExpPerSecond

		// 随机事件：0.3 概率按权重抽取一条
		if s.rng.Chance(eventChance) {
			events := gamedata.CultivationEvents()
			if idx := s.rng.WeightedIndex(gamedata.CultivationEventWeights()); idx >= 0 {
				ev := events[idx]
				bonus := ev.BonusMin + s.rng.Int64n(ev.BonusMax-ev.BonusMin+1)
				result.EventBonus += bonus
				result.Events = append(result.Events, TriggeredEvent{
					Kind:     ev.Kind,
					Name:     ev.Name,
					BonusExp: bonus,
				})
			}
		}

		result.RealmBonus = int64(float64(p.RealmIndex) * 0.1 * float64(result.BaseExp))
		result.EquipBonus = equipmentCultivationBonus(p)
		result.TotalExp = result.BaseExp + result.EventBonus + result.RealmBonus + result.EquipBonus

		p.Exp += result.TotalExp
		p.TotalExp += result.TotalExp

		// 清除会话状态
		p.Cultivating = false
		p.SessionStart = nil
		p.SessionEnd = nil

		// 突破循环跑到稳定
		result.Breakthroughs = ResolveBreakthroughs(p, now)
		result.NewRealm = gamedata.RealmName(p.RealmIndex)

		// 任务进度在同一次检出内推进
		s.missionSvc.ApplyProgress(p, model.MetricCultivationSessions, 1, now)
		s.missionSvc.ApplyProgress(p, model.MetricExpGained, result.TotalExp, now)
		if n := len(result.Breakthroughs); n > 0 {
			s.missionSvc.ApplyProgress(p, model.MetricBreakthroughs, int64(n), now)
		}

		result.Success = true
		return true, nil
	})
	if err != nil {
		s.metrics.SessionsSettled.WithLabelValues("error").Inc()
		return nil, err
	}

	if result.Success {
		s.metrics.SessionsSettled.WithLabelValues("ok").Inc()
		for range result.Breakthroughs {
			s.metrics.Breakthroughs.Inc()
		}
		s.logger.Info("cultivation session settled",
			"player_id", playerID,
			"total_exp", result.TotalExp,
			"breakthroughs", len(result.Breakthroughs),
		)
	} else {
		s.metrics.SessionsSettled.WithLabelValues("rejected").Inc()
	}

	return result, nil
}

// equipmentCultivationBonus 统计装备词条里的修炼加成
// 扫描每件装备的自由文本词条，包含 "cultivation" 或 "meditation" 的词条
// 取其中出现的第一个整数累加
func equipmentCultivationBonus(p *model.Player) int64 {
	var total int64
	for _, item := range p.Equipment {
		if item == nil {
			continue
		}
		for _, prop := range item.Properties {
			lowered := strings.ToLower(prop)
			if !strings.Contains(lowered, "cultivation") && !strings.Contains(lowered, "meditation") {
				continue
			}
			if n, ok := firstEmbeddedInt(prop); ok {
				total += n
			}
		}
	}
	return total
}

// firstEmbeddedInt 提取字符串中出现的第一个整数
func firstEmbeddedInt(s string) (int64, bool) {
	var (
		value int64
		found bool
	)
	for _, r := range s {
		if unicode.IsDigit(r) {
			value = value*10 + int64(r-'0')
			found = true
			continue
		}
		if found {
			break
		}
	}
	return value, found
}
