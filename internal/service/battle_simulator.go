package service

import (
	"fmt"

	"github.com/qingyun-game/qingyun/internal/gamedata"
	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/pkg/random"
)

const (
	// MaxBattleRounds 战斗回合上限
	MaxBattleRounds = 20

	// 境界对有效属性的乘数增幅
	realmAttackScale  = 0.10
	realmDefenseScale = 0.08
	realmHPScale      = 0.12
)

// combatant 模拟过程中的参战方
type combatant struct {
	id    int64
	name  string
	stats model.CombatStats
	hp    int
}

// BattleSimulator 回合制战斗模拟器
// 只依赖注入的随机源，本身无状态，可并发使用
type BattleSimulator struct {
	rng random.Source
}

// NewBattleSimulator 创建战斗模拟器
func NewBattleSimulator(rng random.Source) *BattleSimulator {
	return &BattleSimulator{rng: rng}
}

// EffectiveStats 计算参战有效属性
// 基础属性 + 装备表加成，再乘境界增幅（攻 1.10/级、防 1.08/级、血 1.12/级），逐项向下取整
func EffectiveStats(p *model.Player) model.CombatStats {
	stats := model.CombatStats{
		HP:         p.MaxHP,
		Attack:     p.Attack,
		Defense:    p.Defense,
		Speed:      p.Speed,
		CritChance: p.CritChance,
		CritDamage: p.CritDamage,
	}

	for _, item := range p.Equipment {
		if item == nil {
			continue
		}
		if bonus, ok := gamedata.EquipmentByID(item.ItemID); ok {
			stats.Attack += bonus.Attack
			stats.Defense += bonus.Defense
			stats.HP += bonus.HP
			stats.Speed += bonus.Speed
			stats.CritChance += bonus.CritChance
		}
	}

	realm := float64(p.RealmIndex)
	stats.Attack = int(float64(stats.Attack) * (1 + realmAttackScale*realm))
	stats.Defense = int(float64(stats.Defense) * (1 + realmDefenseScale*realm))
	stats.HP = int(float64(stats.HP) * (1 + realmHPScale*realm))

	return stats
}

// Simulate 模拟一场战斗
// challenger 为攻方，target 为守方。每回合按有效速度决定先手（同速掷硬币），
// 先手击倒对方时该回合立即结束，不再反击。双方同回合倒地或打满 20 回合
// 均判守方获胜（主场优势，不设平局）
func (s *BattleSimulator) Simulate(challenger, target *model.Player) *model.BattleResult {
	atk := &combatant{id: challenger.ID, name: challenger.Nickname, stats: EffectiveStats(challenger)}
	def := &combatant{id: target.ID, name: target.Nickname, stats: EffectiveStats(target)}
	atk.hp = atk.stats.HP
	def.hp = def.stats.HP

	result := &model.BattleResult{}
	result.Log = append(result.Log, fmt.Sprintf("%s challenges %s!", atk.name, def.name))

	rounds := 0
	for rounds < MaxBattleRounds && atk.hp > 0 && def.hp > 0 {
		rounds++

		first, second := s.turnOrder(atk, def)
		result.Log = append(result.Log, fmt.Sprintf("-- Round %d --", rounds))

		s.attack(first, second, result)
		if second.hp <= 0 {
			// 先手击倒，不发生反击
			break
		}

		s.attack(second, first, result)
		if first.hp <= 0 {
			break
		}
	}

	result.Rounds = rounds
	result.ChallengerHP = maxInt(atk.hp, 0)
	result.TargetHP = maxInt(def.hp, 0)

	// 守方主场优势：攻方未能独活即守方胜（含超时与同归于尽）
	if def.hp > 0 || atk.hp <= 0 {
		result.WinnerID = target.ID
		result.LoserID = challenger.ID
		result.Log = append(result.Log, fmt.Sprintf("%s stands victorious!", def.name))
	} else {
		result.WinnerID = challenger.ID
		result.LoserID = target.ID
		result.Log = append(result.Log, fmt.Sprintf("%s stands victorious!", atk.name))
	}

	return result
}

// turnOrder 决定回合先后手：速度高者先动，同速公平掷硬币
func (s *BattleSimulator) turnOrder(a, b *combatant) (*combatant, *combatant) {
	switch {
	case a.stats.Speed > b.stats.Speed:
		return a, b
	case a.stats.Speed < b.stats.Speed:
		return b, a
	default:
		if s.rng.Chance(0.5) {
			return a, b
		}
		return b, a
	}
}

// attack 结算一次出手
// 伤害 = floor(命中系数 * 暴击系数 * 浮动系数 * max(1, 攻 - 防*0.7))
// 浮动系数取 [0.8, 1.2]；命中系数为攻守速度比，截断到 [0.8, 1.2]
func (s *BattleSimulator) attack(attacker, defender *combatant, result *model.BattleResult) {
	base := float64(attacker.stats.Attack) - float64(defender.stats.Defense)*0.7
	if base < 1 {
		base = 1
	}

	damage := base * (0.8 + s.rng.Float64()*0.4)

	crit := s.rng.Chance(attacker.stats.CritChance / 100)
	if crit {
		damage *= attacker.stats.CritDamage / 100
	}

	accuracy := 1.0
	if defender.stats.Speed > 0 {
		accuracy = float64(attacker.stats.Speed) / float64(defender.stats.Speed)
	}
	accuracy = clampFloat(accuracy, 0.8, 1.2)
	damage *= accuracy

	dealt := int(damage)
	defender.hp -= dealt

	line := fmt.Sprintf("%s hits %s for %d damage", attacker.name, defender.name, dealt)
	if crit {
		line += " (critical!)"
	}
	if defender.hp <= 0 {
		line += fmt.Sprintf(" - %s falls!", defender.name)
	}
	result.Log = append(result.Log, line)
}

// CalculateRewards 计算胜方奖励与败方扣减
// 奖励随败方境界与战力增长；以下克上时按境界差额外加成；
// 连胜乘数每场 +10%，上限 +50%。败方扣减按当前持有量截断，不会扣成负数
func CalculateRewards(winner, loser *model.Player) (reward model.RewardBundle, penalty model.BattlePenalty) {
	exp := 100 + float64(loser.RealmIndex)*50 + float64(loser.Power)*0.001
	gold := 50 + float64(loser.RealmIndex)*25 + float64(loser.Power)*0.0005

	if gap := loser.RealmIndex - winner.RealmIndex; gap > 0 {
		exp *= 1 + 0.2*float64(gap)
		gold *= 1 + 0.15*float64(gap)
	}

	streakBonus := 0.1 * float64(winner.WinStreak)
	if streakBonus > 0.5 {
		streakBonus = 0.5
	}
	exp *= 1 + streakBonus
	gold *= 1 + streakBonus

	reward = model.RewardBundle{
		Exp:  int64(exp),
		Gold: int64(gold),
	}

	penalty = model.BattlePenalty{
		ExpLoss:  int64(0.3 * float64(reward.Exp)),
		GoldLoss: int64(0.2 * float64(reward.Gold)),
	}
	if penalty.ExpLoss > loser.Exp {
		penalty.ExpLoss = loser.Exp
	}
	if penalty.GoldLoss > loser.Gold {
		penalty.GoldLoss = loser.Gold
	}

	return reward, penalty
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
