package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/qingyun-game/qingyun/internal/metrics"
	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/pkg/database/postgres"
	"github.com/qingyun-game/qingyun/pkg/logger"
)

// playerColumns players 表的列，与 scanPlayer 的顺序一一对应
var playerColumns = []string{
	"id", "nickname", "banned",
	"realm_index", "exp", "total_exp",
	"gold", "stones",
	"hp", "max_hp", "mp", "max_mp",
	"attack", "defense", "speed", "spirit", "power",
	"crit_chance", "crit_damage",
	"equipment",
	"cultivating", "session_start", "session_end", "daily_sessions", "last_session_reset",
	"wins", "losses", "win_streak", "pvp_rank", "last_battle_at",
	"breakthrough_log",
	"daily_missions", "weekly_missions", "last_daily_reset", "last_weekly_reset",
	"daily_bonus_claimed", "weekly_bonus_claimed",
	"completed_missions", "battle_history",
	"created_at", "updated_at",
}

// PlayerDAO 玩家数据访问对象
type PlayerDAO struct {
	db      *postgres.Client
	logger  logger.Logger
	metrics *metrics.GameMetrics
}

// NewPlayerDAO 创建玩家 DAO
func NewPlayerDAO(db *postgres.Client, l logger.Logger, m *metrics.GameMetrics) *PlayerDAO {
	return &PlayerDAO{
		db:      db,
		logger:  l.Named("dao.player"),
		metrics: m,
	}
}

// GetByID 按 ID 读取玩家，不存在时返回 postgres.ErrNoRows
func (d *PlayerDAO) GetByID(ctx context.Context, playerID int64) (*model.Player, error) {
	start := time.Now()
	defer func() {
		d.metrics.RecordDBQuery("select", time.Since(start).Seconds())
	}()

	query, args, err := squirrel.
		Select(playerColumns...).
		From("players").
		Where(squirrel.Eq{"id": playerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	p, err := scanPlayer(d.db.QueryRow(ctx, query, args...))
	if err != nil {
		if err == postgres.ErrNoRows {
			return nil, err
		}
		d.logger.Error("failed to get player by id",
			"player_id", playerID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return p, nil
}

// Upsert 写入玩家记录（存在则整行覆盖）
func (d *PlayerDAO) Upsert(ctx context.Context, p *model.Player) error {
	start := time.Now()
	defer func() {
		d.metrics.RecordDBQuery("upsert", time.Since(start).Seconds())
	}()

	p.UpdatedAt = time.Now().UTC()

	equipment, err := json.Marshal(p.Equipment)
	if err != nil {
		return fmt.Errorf("failed to marshal equipment: %w", err)
	}
	breakthroughLog, err := json.Marshal(p.BreakthroughLog)
	if err != nil {
		return fmt.Errorf("failed to marshal breakthrough log: %w", err)
	}
	dailyMissions, err := json.Marshal(p.DailyMissions)
	if err != nil {
		return fmt.Errorf("failed to marshal daily missions: %w", err)
	}
	weeklyMissions, err := json.Marshal(p.WeeklyMissions)
	if err != nil {
		return fmt.Errorf("failed to marshal weekly missions: %w", err)
	}
	completedMissions, err := json.Marshal(p.CompletedMissions)
	if err != nil {
		return fmt.Errorf("failed to marshal completed missions: %w", err)
	}
	battleHistory, err := json.Marshal(p.BattleHistory)
	if err != nil {
		return fmt.Errorf("failed to marshal battle history: %w", err)
	}

	builder := squirrel.
		Insert("players").
		Columns(playerColumns...).
		Values(
			p.ID, p.Nickname, p.Banned,
			p.RealmIndex, p.Exp, p.TotalExp,
			p.Gold, p.Stones,
			p.HP, p.MaxHP, p.MP, p.MaxMP,
			p.Attack, p.Defense, p.Speed, p.Spirit, p.Power,
			p.CritChance, p.CritDamage,
			equipment,
			p.Cultivating, p.SessionStart, p.SessionEnd, p.DailySessions, p.LastSessionReset,
			p.Wins, p.Losses, p.WinStreak, p.PvPRank, p.LastBattleAt,
			breakthroughLog,
			dailyMissions, weeklyMissions, p.LastDailyReset, p.LastWeeklyReset,
			p.DailyBonusClaimed, p.WeeklyBonusClaimed,
			completedMissions, battleHistory,
			p.CreatedAt, p.UpdatedAt,
		).
		Suffix(upsertSuffix())

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert: %w", err)
	}

	if _, err := d.db.Exec(ctx, query, args...); err != nil {
		d.logger.Error("failed to upsert player",
			"player_id", p.ID,
			"error", err,
		)
		return fmt.Errorf("failed to upsert player: %w", err)
	}

	return nil
}

// ListIDs 列出所有玩家 ID（后台清扫使用）
func (d *PlayerDAO) ListIDs(ctx context.Context) ([]int64, error) {
	start := time.Now()
	defer func() {
		d.metrics.RecordDBQuery("list", time.Since(start).Seconds())
	}()

	query, _, err := squirrel.Select("id").From("players").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := d.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan player id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %w", err)
	}

	return ids, nil
}

// upsertSuffix 生成 ON CONFLICT 覆盖子句（除 id 与 created_at 外全量更新）
func upsertSuffix() string {
	suffix := "ON CONFLICT (id) DO UPDATE SET "
	first := true
	for _, col := range playerColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		if !first {
			suffix += ", "
		}
		suffix += col + " = EXCLUDED." + col
		first = false
	}
	return suffix
}

// rowScanner 兼容 pgx.Row 的最小扫描接口
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPlayer 按 playerColumns 顺序扫描一行玩家记录
func scanPlayer(row rowScanner) (*model.Player, error) {
	var (
		p                 model.Player
		equipment         []byte
		breakthroughLog   []byte
		dailyMissions     []byte
		weeklyMissions    []byte
		completedMissions []byte
		battleHistory     []byte
	)

	if err := row.Scan(
		&p.ID, &p.Nickname, &p.Banned,
		&p.RealmIndex, &p.Exp, &p.TotalExp,
		&p.Gold, &p.Stones,
		&p.HP, &p.MaxHP, &p.MP, &p.MaxMP,
		&p.Attack, &p.Defense, &p.Speed, &p.Spirit, &p.Power,
		&p.CritChance, &p.CritDamage,
		&equipment,
		&p.Cultivating, &p.SessionStart, &p.SessionEnd, &p.DailySessions, &p.LastSessionReset,
		&p.Wins, &p.Losses, &p.WinStreak, &p.PvPRank, &p.LastBattleAt,
		&breakthroughLog,
		&dailyMissions, &weeklyMissions, &p.LastDailyReset, &p.LastWeeklyReset,
		&p.DailyBonusClaimed, &p.WeeklyBonusClaimed,
		&completedMissions, &battleHistory,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := unmarshalField(equipment, &p.Equipment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal equipment: %w", err)
	}
	if err := unmarshalField(breakthroughLog, &p.BreakthroughLog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breakthrough log: %w", err)
	}
	if err := unmarshalField(dailyMissions, &p.DailyMissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal daily missions: %w", err)
	}
	if err := unmarshalField(weeklyMissions, &p.WeeklyMissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weekly missions: %w", err)
	}
	if err := unmarshalField(completedMissions, &p.CompletedMissions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal completed missions: %w", err)
	}
	if err := unmarshalField(battleHistory, &p.BattleHistory); err != nil {
		return nil, fmt.Errorf("failed to unmarshal battle history: %w", err)
	}

	return &p, nil
}

func unmarshalField(data []byte, out any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
