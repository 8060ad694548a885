// Package gamedata 存放静态平衡数据表
// 表内数据只读，进程启动后不再变化
package gamedata

// Realm 境界定义
type Realm struct {
	Index       int
	Name        string
	ExpRequired int64 // 突破到下一境界所需修为，最高境界该值无效
}

// realms 境界表，按 Index 升序排列
// 修为阈值必须大于 0，突破解析器依赖该约束保证循环可终止
var realms = []Realm{
	{Index: 0, Name: "Qi Refining", ExpRequired: 1000},
	{Index: 1, Name: "Foundation Establishment", ExpRequired: 3000},
	{Index: 2, Name: "Core Formation", ExpRequired: 8000},
	{Index: 3, Name: "Golden Core", ExpRequired: 20000},
	{Index: 4, Name: "Nascent Soul", ExpRequired: 50000},
	{Index: 5, Name: "Soul Transformation", ExpRequired: 120000},
	{Index: 6, Name: "Spirit Severing", ExpRequired: 280000},
	{Index: 7, Name: "Void Refinement", ExpRequired: 620000},
	{Index: 8, Name: "Body Integration", ExpRequired: 1350000},
	{Index: 9, Name: "Grand Ascension", ExpRequired: 2900000},
	{Index: 10, Name: "Tribulation Transcendence", ExpRequired: 6200000},
	{Index: 11, Name: "True Immortal", ExpRequired: 0},
}

// RealmCount 境界总数
func RealmCount() int {
	return len(realms)
}

// RealmByIndex 按下标获取境界，越界时返回 false
func RealmByIndex(index int) (Realm, bool) {
	if index < 0 || index >= len(realms) {
		return Realm{}, false
	}
	return realms[index], true
}

// RealmName 按下标获取境界名称，越界时返回 "Unknown"
func RealmName(index int) string {
	r, ok := RealmByIndex(index)
	if !ok {
		return "Unknown"
	}
	return r.Name
}

// BreakthroughGrowth 每次突破的基础属性成长
// 实际成长 = floor(基础值 * (1 + 0.1 * 新境界下标))
type BreakthroughGrowth struct {
	HP      int
	MP      int
	Attack  int
	Defense int
	Speed   int
	Spirit  int
	Power   int64
}

// growth 突破成长基础值
var growth = BreakthroughGrowth{
	HP:      50,
	MP:      30,
	Attack:  8,
	Defense: 5,
	Speed:   3,
	Spirit:  6,
	Power:   200,
}

// Growth 获取突破成长基础值
func Growth() BreakthroughGrowth {
	return growth
}
