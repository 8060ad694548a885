package service

import (
	"time"

	"github.com/qingyun-game/qingyun/internal/gamedata"
	"github.com/qingyun-game/qingyun/internal/model"
)

// BreakthroughStep 单次突破的成长明细
type BreakthroughStep struct {
	FromRealm     int    `json:"from_realm"`
	ToRealm       int    `json:"to_realm"`
	FromRealmName string `json:"from_realm_name"`
	ToRealmName   string `json:"to_realm_name"`
	ExpUsed       int64  `json:"exp_used"`
	HPGain        int    `json:"hp_gain"`
	MPGain        int    `json:"mp_gain"`
	AttackGain    int    `json:"attack_gain"`
	DefenseGain   int    `json:"defense_gain"`
	SpeedGain     int    `json:"speed_gain"`
	SpiritGain    int    `json:"spirit_gain"`
	PowerGain     int64  `json:"power_gain"`
}

// ResolveBreakthroughs 对玩家快照执行突破循环直到稳定
// 纯状态变换：修为足够且未达最高境界时反复突破，每次突破扣除阈值修为、
// 按新境界缩放属性成长并回满气血法力。阈值非正的境界视为配置错误，
// 直接终止循环以防死循环
func ResolveBreakthroughs(p *model.Player, now time.Time) []BreakthroughStep {
	var steps []BreakthroughStep

	for p.RealmIndex < gamedata.RealmCount()-1 {
		realm, ok := gamedata.RealmByIndex(p.RealmIndex)
		if !ok || realm.ExpRequired <= 0 {
			break
		}
		if p.Exp < realm.ExpRequired {
			break
		}

		from := p.RealmIndex
		p.Exp -= realm.ExpRequired
		p.RealmIndex++

		g := gamedata.Growth()
		scale := 1 + 0.1*float64(p.RealmIndex)
		step := BreakthroughStep{
			FromRealm:     from,
			ToRealm:       p.RealmIndex,
			FromRealmName: gamedata.RealmName(from),
			ToRealmName:   gamedata.RealmName(p.RealmIndex),
			ExpUsed:       realm.ExpRequired,
			HPGain:        int(float64(g.HP) * scale),
			MPGain:        int(float64(g.MP) * scale),
			AttackGain:    int(float64(g.Attack) * scale),
			DefenseGain:   int(float64(g.Defense) * scale),
			SpeedGain:     int(float64(g.Speed) * scale),
			SpiritGain:    int(float64(g.Spirit) * scale),
			PowerGain:     int64(float64(g.Power) * scale),
		}

		p.MaxHP += step.HPGain
		p.MaxMP += step.MPGain
		p.Attack += step.AttackGain
		p.Defense += step.DefenseGain
		p.Speed += step.SpeedGain
		p.Spirit += step.SpiritGain
		p.Power += step.PowerGain

		// 突破后完全恢复
		p.HP = p.MaxHP
		p.MP = p.MaxMP

		p.BreakthroughLog = append(p.BreakthroughLog, model.BreakthroughRecord{
			FromRealm: from,
			ToRealm:   p.RealmIndex,
			ExpUsed:   realm.ExpRequired,
			At:        now,
		})

		steps = append(steps, step)
	}

	return steps
}
