package gamedata

// CultivationEvent 修炼随机事件
// 结算时以 0.3 的概率按权重抽取一条，额外修为在 [BonusMin, BonusMax] 内随机
type CultivationEvent struct {
	Kind     string
	Name     string
	Weight   int
	BonusMin int64
	BonusMax int64
}

// cultivationEvents 修炼事件表（五种）
var cultivationEvents = []CultivationEvent{
	{Kind: "epiphany", Name: "Sudden Epiphany", Weight: 10, BonusMin: 500, BonusMax: 1200},
	{Kind: "spirit_rain", Name: "Spirit Rain", Weight: 25, BonusMin: 200, BonusMax: 600},
	{Kind: "qi_surge", Name: "Qi Surge", Weight: 30, BonusMin: 100, BonusMax: 400},
	{Kind: "ancient_echo", Name: "Ancient Echo", Weight: 20, BonusMin: 300, BonusMax: 800},
	{Kind: "inner_calm", Name: "Inner Calm", Weight: 15, BonusMin: 150, BonusMax: 500},
}

// CultivationEvents 获取修炼事件表
func CultivationEvents() []CultivationEvent {
	return cultivationEvents
}

// CultivationEventWeights 获取修炼事件权重序列，与 CultivationEvents 下标对应
func CultivationEventWeights() []int {
	weights := make([]int, len(cultivationEvents))
	for i, ev := range cultivationEvents {
		weights[i] = ev.Weight
	}
	return weights
}
