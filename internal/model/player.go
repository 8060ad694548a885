package model

import (
	"time"
)

// 装备槽位
const (
	SlotWeapon    = "weapon"
	SlotArmor     = "armor"
	SlotAccessory = "accessory"
)

// EquippedItem 已装备的物品
// Properties 为自由文本词条，例如 "cultivation speed +120"
type EquippedItem struct {
	ItemID     int32    `json:"item_id"`
	Name       string   `json:"name"`
	Properties []string `json:"properties,omitempty"`
}

// BreakthroughRecord 突破历史记录，仅追加不修改
type BreakthroughRecord struct {
	FromRealm int       `json:"from_realm"`
	ToRealm   int       `json:"to_realm"`
	ExpUsed   int64     `json:"exp_used"`
	At        time.Time `json:"at"`
}

// BattleRecord 战斗历史记录（环形缓冲，最多保留 MaxBattleHistory 条）
type BattleRecord struct {
	ChallengeID int64     `json:"challenge_id"`
	OpponentID  int64     `json:"opponent_id"`
	Won         bool      `json:"won"`
	Rounds      int       `json:"rounds"`
	At          time.Time `json:"at"`
}

// MaxBattleHistory 每个玩家保留的战斗历史上限
const MaxBattleHistory = 50

// CompletedMission 已领取任务的留档记录
type CompletedMission struct {
	InstanceID string    `json:"instance_id"`
	TemplateID string    `json:"template_id"`
	Name       string    `json:"name"`
	Cadence    Cadence   `json:"cadence"`
	ClaimedAt  time.Time `json:"claimed_at"`
}

// Player 玩家记录，持久化归属于存储层
// 各引擎每次操作取出副本、修改后写回，不跨调用持有引用
type Player struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Banned   bool   `json:"banned"`

	// 境界与修为
	RealmIndex int   `json:"realm_index"`
	Exp        int64 `json:"exp"`
	TotalExp   int64 `json:"total_exp"`

	// 货币
	Gold   int64 `json:"gold"`
	Stones int64 `json:"stones"`

	// 战斗属性
	HP         int     `json:"hp"`
	MaxHP      int     `json:"max_hp"`
	MP         int     `json:"mp"`
	MaxMP      int     `json:"max_mp"`
	Attack     int     `json:"attack"`
	Defense    int     `json:"defense"`
	Speed      int     `json:"speed"`
	Spirit     int     `json:"spirit"`
	Power      int64   `json:"power"`
	CritChance float64 `json:"crit_chance"` // 百分比，如 15 表示 15%
	CritDamage float64 `json:"crit_damage"` // 百分比，如 150 表示 1.5 倍

	// 装备（槽位 -> 物品）
	Equipment map[string]*EquippedItem `json:"equipment,omitempty"`

	// 修炼状态
	Cultivating      bool       `json:"cultivating"`
	SessionStart     *time.Time `json:"session_start,omitempty"`
	SessionEnd       *time.Time `json:"session_end,omitempty"`
	DailySessions    int        `json:"daily_sessions"`
	LastSessionReset time.Time  `json:"last_session_reset"`

	// PvP 状态
	Wins         int        `json:"wins"`
	Losses       int        `json:"losses"`
	WinStreak    int        `json:"win_streak"`
	PvPRank      int        `json:"pvp_rank"`
	LastBattleAt *time.Time `json:"last_battle_at,omitempty"`

	// 突破历史
	BreakthroughLog []BreakthroughRecord `json:"breakthrough_log,omitempty"`

	// 任务
	DailyMissions   map[string]*MissionInstance `json:"daily_missions,omitempty"`
	WeeklyMissions  map[string]*MissionInstance `json:"weekly_missions,omitempty"`
	LastDailyReset  time.Time                   `json:"last_daily_reset"`
	LastWeeklyReset time.Time                   `json:"last_weekly_reset"`

	// 全完成加成每期只发放一次，周期刷新时复位
	DailyBonusClaimed  bool `json:"daily_bonus_claimed,omitempty"`
	WeeklyBonusClaimed bool `json:"weekly_bonus_claimed,omitempty"`

	// 任务留档与战斗历史
	CompletedMissions []CompletedMission `json:"completed_missions,omitempty"`
	BattleHistory     []BattleRecord     `json:"battle_history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPlayer 创建初始玩家
func NewPlayer(id int64, nickname string) *Player {
	now := time.Now().UTC()
	return &Player{
		ID:         id,
		Nickname:   nickname,
		RealmIndex: 0,
		HP:         100,
		MaxHP:      100,
		MP:         50,
		MaxMP:      50,
		Attack:     10,
		Defense:    5,
		Speed:      10,
		Spirit:     10,
		Power:      100,
		CritChance: 5,
		CritDamage: 150,
		Gold:       100,
		Equipment:  make(map[string]*EquippedItem),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// WinRate 胜率，取值 [0.0, 1.0]
func (p *Player) WinRate() float64 {
	total := p.Wins + p.Losses
	if total == 0 {
		return 0
	}
	return float64(p.Wins) / float64(total)
}

// Missions 返回指定周期的任务集合
func (p *Player) Missions(cadence Cadence) map[string]*MissionInstance {
	if cadence == CadenceWeekly {
		return p.WeeklyMissions
	}
	return p.DailyMissions
}

// SetMissions 设置指定周期的任务集合及重置时间，并复位该周期的加成标记
func (p *Player) SetMissions(cadence Cadence, missions map[string]*MissionInstance, resetAt time.Time) {
	if cadence == CadenceWeekly {
		p.WeeklyMissions = missions
		p.LastWeeklyReset = resetAt
		p.WeeklyBonusClaimed = false
		return
	}
	p.DailyMissions = missions
	p.LastDailyReset = resetAt
	p.DailyBonusClaimed = false
}

// BonusClaimed 指定周期的全完成加成是否已发放
func (p *Player) BonusClaimed(cadence Cadence) bool {
	if cadence == CadenceWeekly {
		return p.WeeklyBonusClaimed
	}
	return p.DailyBonusClaimed
}

// SetBonusClaimed 标记指定周期的全完成加成已发放
func (p *Player) SetBonusClaimed(cadence Cadence) {
	if cadence == CadenceWeekly {
		p.WeeklyBonusClaimed = true
		return
	}
	p.DailyBonusClaimed = true
}

// AppendBattleRecord 追加战斗历史，超出上限时淘汰最旧的记录
func (p *Player) AppendBattleRecord(rec BattleRecord) {
	p.BattleHistory = append(p.BattleHistory, rec)
	if len(p.BattleHistory) > MaxBattleHistory {
		p.BattleHistory = p.BattleHistory[len(p.BattleHistory)-MaxBattleHistory:]
	}
}

// Clone 深拷贝玩家记录
// 存储层按副本检出，保证引擎之间不共享可变状态
func (p *Player) Clone() *Player {
	cp := *p

	if p.SessionStart != nil {
		t := *p.SessionStart
		cp.SessionStart = &t
	}
	if p.SessionEnd != nil {
		t := *p.SessionEnd
		cp.SessionEnd = &t
	}
	if p.LastBattleAt != nil {
		t := *p.LastBattleAt
		cp.LastBattleAt = &t
	}

	if p.Equipment != nil {
		cp.Equipment = make(map[string]*EquippedItem, len(p.Equipment))
		for slot, item := range p.Equipment {
			if item == nil {
				continue
			}
			it := *item
			it.Properties = append([]string(nil), item.Properties...)
			cp.Equipment[slot] = &it
		}
	}

	cp.BreakthroughLog = append([]BreakthroughRecord(nil), p.BreakthroughLog...)
	cp.CompletedMissions = append([]CompletedMission(nil), p.CompletedMissions...)
	cp.BattleHistory = append([]BattleRecord(nil), p.BattleHistory...)

	cp.DailyMissions = cloneMissions(p.DailyMissions)
	cp.WeeklyMissions = cloneMissions(p.WeeklyMissions)

	return &cp
}

func cloneMissions(src map[string]*MissionInstance) map[string]*MissionInstance {
	if src == nil {
		return nil
	}
	dst := make(map[string]*MissionInstance, len(src))
	for id, m := range src {
		cp := *m
		cp.Reward = m.Reward.Clone()
		dst[id] = &cp
	}
	return dst
}
