package gamedata

import "github.com/qingyun-game/qingyun/internal/model"

// MissionTemplate 任务模板
// 目标与奖励为基础值，按玩家境界生成实例时缩放
type MissionTemplate struct {
	ID          string
	Cadence     model.Cadence
	Name        string
	Description string
	Metric      model.Metric
	BaseTarget  int64
	Reward      model.RewardBundle
}

// dailyTemplates 每日任务模板表
var dailyTemplates = []MissionTemplate{
	{
		ID: "d_cultivate_1", Cadence: model.CadenceDaily,
		Name: "Morning Meditation", Description: "Complete 1 cultivation session",
		Metric: model.MetricCultivationSessions, BaseTarget: 1,
		Reward: model.RewardBundle{Exp: 300, Gold: 100},
	},
	{
		ID: "d_cultivate_3", Cadence: model.CadenceDaily,
		Name: "Devoted Cultivator", Description: "Complete 3 cultivation sessions",
		Metric: model.MetricCultivationSessions, BaseTarget: 3,
		Reward: model.RewardBundle{Exp: 900, Gold: 250, Stones: 1},
	},
	{
		ID: "d_exp_2000", Cadence: model.CadenceDaily,
		Name: "Gathering Qi", Description: "Gain 2000 experience",
		Metric: model.MetricExpGained, BaseTarget: 2000,
		Reward: model.RewardBundle{Gold: 200, Stones: 1},
	},
	{
		ID: "d_pvp_1", Cadence: model.CadenceDaily,
		Name: "Test of Arms", Description: "Fight 1 PvP battle",
		Metric: model.MetricPvPBattles, BaseTarget: 1,
		Reward: model.RewardBundle{Exp: 200, Gold: 150},
	},
	{
		ID: "d_pvp_win_1", Cadence: model.CadenceDaily,
		Name: "First Blood", Description: "Win 1 PvP battle",
		Metric: model.MetricPvPWins, BaseTarget: 1,
		Reward: model.RewardBundle{Exp: 400, Gold: 200, Items: []model.ItemGrant{{Category: CategoryRare, Quantity: 1}}},
	},
	{
		ID: "d_pvp_3", Cadence: model.CadenceDaily,
		Name: "Arena Regular", Description: "Fight 3 PvP battles",
		Metric: model.MetricPvPBattles, BaseTarget: 3,
		Reward: model.RewardBundle{Exp: 600, Gold: 300},
	},
	{
		ID: "d_gold_500", Cadence: model.CadenceDaily,
		Name: "Pocket Change", Description: "Earn 500 gold",
		Metric: model.MetricGoldEarned, BaseTarget: 500,
		Reward: model.RewardBundle{Exp: 250, Stones: 1},
	},
	{
		ID: "d_exp_5000", Cadence: model.CadenceDaily,
		Name: "Relentless Pursuit", Description: "Gain 5000 experience",
		Metric: model.MetricExpGained, BaseTarget: 5000,
		Reward: model.RewardBundle{Gold: 400, Stones: 2},
	},
}

// weeklyTemplates 每周任务模板表
var weeklyTemplates = []MissionTemplate{
	{
		ID: "w_cultivate_15", Cadence: model.CadenceWeekly,
		Name: "Week of Discipline", Description: "Complete 15 cultivation sessions",
		Metric: model.MetricCultivationSessions, BaseTarget: 15,
		Reward: model.RewardBundle{Exp: 5000, Gold: 1500, Stones: 5},
	},
	{
		ID: "w_exp_20000", Cadence: model.CadenceWeekly,
		Name: "Sea of Qi", Description: "Gain 20000 experience",
		Metric: model.MetricExpGained, BaseTarget: 20000,
		Reward: model.RewardBundle{Gold: 2000, Stones: 8},
	},
	{
		ID: "w_breakthrough_1", Cadence: model.CadenceWeekly,
		Name: "Shattered Ceiling", Description: "Achieve 1 breakthrough",
		Metric: model.MetricBreakthroughs, BaseTarget: 1,
		Reward: model.RewardBundle{Gold: 1000, Stones: 10, Items: []model.ItemGrant{{Category: CategoryEpic, Quantity: 1}}},
	},
	{
		ID: "w_pvp_10", Cadence: model.CadenceWeekly,
		Name: "Week of War", Description: "Fight 10 PvP battles",
		Metric: model.MetricPvPBattles, BaseTarget: 10,
		Reward: model.RewardBundle{Exp: 3000, Gold: 1200, Stones: 4},
	},
	{
		ID: "w_pvp_win_5", Cadence: model.CadenceWeekly,
		Name: "Rising Champion", Description: "Win 5 PvP battles",
		Metric: model.MetricPvPWins, BaseTarget: 5,
		Reward: model.RewardBundle{Exp: 4000, Gold: 1500, Items: []model.ItemGrant{{Category: CategoryRare, Quantity: 2}}},
	},
	{
		ID: "w_gold_5000", Cadence: model.CadenceWeekly,
		Name: "Merchant of Dao", Description: "Earn 5000 gold",
		Metric: model.MetricGoldEarned, BaseTarget: 5000,
		Reward: model.RewardBundle{Exp: 2500, Stones: 6},
	},
}

// MissionTemplates 获取指定周期的任务模板表
func MissionTemplates(cadence model.Cadence) []MissionTemplate {
	if cadence == model.CadenceWeekly {
		return weeklyTemplates
	}
	return dailyTemplates
}

// claimAllBonus 一键领取的全完成加成奖励
var claimAllBonus = map[model.Cadence]model.RewardBundle{
	model.CadenceDaily:  {Exp: 500, Gold: 300, Stones: 2},
	model.CadenceWeekly: {Exp: 3000, Gold: 2000, Stones: 10, Items: []model.ItemGrant{{Category: CategoryEpic, Quantity: 1}}},
}

// ClaimAllBonus 获取指定周期的全完成加成奖励
func ClaimAllBonus(cadence model.Cadence) model.RewardBundle {
	return claimAllBonus[cadence].Clone()
}
