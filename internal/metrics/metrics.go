package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GameMetrics 游戏服务指标
type GameMetrics struct {
	// 修炼指标
	SessionsStarted *prometheus.CounterVec // 修炼开始数（按结果）
	SessionsSettled *prometheus.CounterVec // 修炼结算数（按结果）
	Breakthroughs   prometheus.Counter     // 突破总数

	// PvP 指标
	ChallengesCreated *prometheus.CounterVec // 挑战创建数（按结果）
	BattlesTotal      prometheus.Counter     // 战斗总数
	BattleRounds      prometheus.Histogram   // 战斗回合数分布

	// 任务指标
	MissionClaims *prometheus.CounterVec // 任务领取数（按周期）
	MissionResets *prometheus.CounterVec // 任务重置数（按周期）

	// 数据库指标
	DBQueryDuration *prometheus.HistogramVec // 数据库查询延迟（按操作）

	// 缓存指标
	CacheHitTotal  *prometheus.CounterVec // 缓存命中（按层级）
	CacheMissTotal *prometheus.CounterVec // 缓存未命中（按层级）
}

// New 创建并注册游戏指标
// 测试中传入独立的 prometheus.NewRegistry 避免重复注册
func New(namespace string, reg prometheus.Registerer) *GameMetrics {
	m := &GameMetrics{
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cultivation_sessions_started_total",
			Help:      "Number of cultivation session starts by result.",
		}, []string{"result"}),
		SessionsSettled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cultivation_sessions_settled_total",
			Help:      "Number of cultivation session settlements by result.",
		}, []string{"result"}),
		Breakthroughs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breakthroughs_total",
			Help:      "Number of realm breakthroughs.",
		}),
		ChallengesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pvp_challenges_created_total",
			Help:      "Number of PvP challenge creations by result.",
		}, []string{"result"}),
		BattlesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pvp_battles_total",
			Help:      "Number of resolved PvP battles.",
		}),
		BattleRounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pvp_battle_rounds",
			Help:      "Distribution of PvP battle round counts.",
			Buckets:   []float64{1, 3, 5, 8, 12, 16, 20},
		}),
		MissionClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mission_claims_total",
			Help:      "Number of mission reward claims by cadence.",
		}, []string{"cadence"}),
		MissionResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mission_resets_total",
			Help:      "Number of mission period resets by cadence.",
		}, []string{"cadence"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database query latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		CacheHitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Cache hits by layer.",
		}, []string{"layer"}),
		CacheMissTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Cache misses by layer.",
		}, []string{"layer"}),
	}

	reg.MustRegister(
		m.SessionsStarted,
		m.SessionsSettled,
		m.Breakthroughs,
		m.ChallengesCreated,
		m.BattlesTotal,
		m.BattleRounds,
		m.MissionClaims,
		m.MissionResets,
		m.DBQueryDuration,
		m.CacheHitTotal,
		m.CacheMissTotal,
	)

	return m
}

// RecordDBQuery 记录数据库查询耗时
func (m *GameMetrics) RecordDBQuery(op string, seconds float64) {
	m.DBQueryDuration.WithLabelValues(op).Observe(seconds)
}

// RecordCacheHit 记录缓存命中
func (m *GameMetrics) RecordCacheHit(layer string) {
	m.CacheHitTotal.WithLabelValues(layer).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *GameMetrics) RecordCacheMiss(layer string) {
	m.CacheMissTotal.WithLabelValues(layer).Inc()
}
