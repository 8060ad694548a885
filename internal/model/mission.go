package model

import "time"

// Cadence 任务刷新周期
type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

// Metric 任务进度指标
type Metric string

const (
	MetricCultivationSessions Metric = "cultivation_sessions"
	MetricExpGained           Metric = "exp_gained"
	MetricBreakthroughs       Metric = "breakthroughs"
	MetricPvPBattles          Metric = "pvp_battles"
	MetricPvPWins             Metric = "pvp_wins"
	MetricGoldEarned          Metric = "gold_earned"
)

// ItemGrant 物品奖励
// Category 非空时表示占位奖励（如 "random_rare"），在领取时从对应奖池解析
type ItemGrant struct {
	ItemID   int32  `json:"item_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category,omitempty"`
	Quantity int    `json:"quantity"`
}

// RewardBundle 奖励包
type RewardBundle struct {
	Exp    int64       `json:"exp,omitempty"`
	Gold   int64       `json:"gold,omitempty"`
	Stones int64       `json:"stones,omitempty"`
	Items  []ItemGrant `json:"items,omitempty"`
}

// Clone 深拷贝奖励包
func (r RewardBundle) Clone() RewardBundle {
	cp := r
	cp.Items = append([]ItemGrant(nil), r.Items...)
	return cp
}

// IsEmpty 判断奖励包是否为空
func (r RewardBundle) IsEmpty() bool {
	return r.Exp == 0 && r.Gold == 0 && r.Stones == 0 && len(r.Items) == 0
}

// MissionInstance 按玩家生成的任务实例
type MissionInstance struct {
	ID          string       `json:"id"`
	TemplateID  string       `json:"template_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Cadence     Cadence      `json:"cadence"`
	Metric      Metric       `json:"metric"`
	Target      int64        `json:"target"`
	Progress    int64        `json:"progress"`
	Completed   bool         `json:"completed"`
	Claimed     bool         `json:"claimed"`
	Reward      RewardBundle `json:"reward"`
	CreatedAt   time.Time    `json:"created_at"`
}
