package model

// CombatStats 参战时的有效属性（基础属性 + 装备 + 境界加成）
type CombatStats struct {
	HP         int     `json:"hp"`
	Attack     int     `json:"attack"`
	Defense    int     `json:"defense"`
	Speed      int     `json:"speed"`
	CritChance float64 `json:"crit_chance"`
	CritDamage float64 `json:"crit_damage"`
}

// BattlePenalty 败者扣减（实际生效值，已按当前持有量截断）
type BattlePenalty struct {
	ExpLoss  int64 `json:"exp_loss"`
	GoldLoss int64 `json:"gold_loss"`
}

// BattleResult 战斗结算结果
type BattleResult struct {
	ChallengeID int64    `json:"challenge_id"`
	WinnerID    int64    `json:"winner_id"`
	LoserID     int64    `json:"loser_id"`
	Rounds      int      `json:"rounds"`
	Log         []string `json:"log"`

	// 双方战后剩余 HP（相对有效属性，可能为 0）
	ChallengerHP int `json:"challenger_hp"`
	TargetHP     int `json:"target_hp"`

	WinnerReward RewardBundle  `json:"winner_reward"`
	LoserPenalty BattlePenalty `json:"loser_penalty"`
}
