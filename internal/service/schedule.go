package service

import (
	"time"

	"github.com/qingyun-game/qingyun/internal/model"
)

// ShouldReset 判断指定周期是否需要重置
// 懒惰刷新路径与后台清扫路径共用该函数，避免两套判定逻辑漂移；
// 所有边界统一按 UTC 计算：日界为 UTC 自然日，周界为 UTC ISO 周
func ShouldReset(cadence model.Cadence, lastReset, now time.Time) bool {
	if lastReset.IsZero() {
		return true
	}

	last := lastReset.UTC()
	cur := now.UTC()

	switch cadence {
	case model.CadenceWeekly:
		lastYear, lastWeek := last.ISOWeek()
		curYear, curWeek := cur.ISOWeek()
		return lastYear != curYear || lastWeek != curWeek
	default:
		return last.Year() != cur.Year() || last.YearDay() != cur.YearDay()
	}
}

// sameUTCDay 判断两个时间是否落在同一 UTC 自然日
func sameUTCDay(a, b time.Time) bool {
	au, bu := a.UTC(), b.UTC()
	return au.Year() == bu.Year() && au.YearDay() == bu.YearDay()
}
