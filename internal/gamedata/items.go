package gamedata

// 占位奖励类别
const (
	CategoryRare = "random_rare"
	CategoryEpic = "random_epic"
)

// PoolEntry 奖池条目
type PoolEntry struct {
	ItemID int32
	Name   string
	Weight int
}

// itemPools 按类别划分的加权奖池
// 任务奖励中的占位物品在领取时从对应奖池抽取
var itemPools = map[string][]PoolEntry{
	CategoryRare: {
		{ItemID: 1002, Name: "Azure Edge Sword", Weight: 25},
		{ItemID: 2002, Name: "Ironbark Robe", Weight: 25},
		{ItemID: 3002, Name: "Windstep Charm", Weight: 20},
		{ItemID: 3003, Name: "Jade Guard Pendant", Weight: 20},
		{ItemID: 1003, Name: "Cloudpiercer Spear", Weight: 10},
	},
	CategoryEpic: {
		{ItemID: 1004, Name: "Starfall Blade", Weight: 30},
		{ItemID: 2004, Name: "Dragonscale Mail", Weight: 30},
		{ItemID: 3004, Name: "Phoenix Feather Ring", Weight: 25},
		{ItemID: 1005, Name: "Heavenfire Halberd", Weight: 10},
		{ItemID: 3005, Name: "Nine Heavens Talisman", Weight: 5},
	},
}

// ItemPool 按类别获取奖池，未知类别返回 nil
func ItemPool(category string) []PoolEntry {
	return itemPools[category]
}

// ItemPoolWeights 获取奖池权重序列，与 ItemPool 下标对应
func ItemPoolWeights(category string) []int {
	pool := itemPools[category]
	weights := make([]int, len(pool))
	for i, e := range pool {
		weights[i] = e.Weight
	}
	return weights
}
