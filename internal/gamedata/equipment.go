package gamedata

// EquipmentStats 装备静态属性加成（按物品 ID 查表）
type EquipmentStats struct {
	Attack     int
	Defense    int
	HP         int
	Speed      int
	CritChance float64
}

// equipmentTable 装备属性表
// key 为物品 ID，与任务奖池、商店共用同一套 ID 空间
var equipmentTable = map[int32]EquipmentStats{
	// 武器 1xxx
	1001: {Attack: 12},
	1002: {Attack: 25, CritChance: 2},
	1003: {Attack: 48, Speed: 5},
	1004: {Attack: 90, CritChance: 5},
	1005: {Attack: 160, Speed: 12, CritChance: 8},

	// 防具 2xxx
	2001: {Defense: 10, HP: 40},
	2002: {Defense: 22, HP: 100},
	2003: {Defense: 45, HP: 260},
	2004: {Defense: 80, HP: 520},
	2005: {Defense: 150, HP: 1100},

	// 饰品 3xxx
	3001: {Speed: 6},
	3002: {Speed: 10, CritChance: 3},
	3003: {HP: 150, Defense: 12},
	3004: {Attack: 30, CritChance: 6},
	3005: {Speed: 20, Attack: 45, CritChance: 10},
}

// EquipmentByID 按物品 ID 查询装备加成，未登记的物品无加成
func EquipmentByID(itemID int32) (EquipmentStats, bool) {
	stats, ok := equipmentTable[itemID]
	return stats, ok
}
