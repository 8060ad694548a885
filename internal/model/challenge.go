package model

import "time"

// ChallengeStatus 挑战状态
type ChallengeStatus string

const (
	ChallengePending  ChallengeStatus = "pending"
	ChallengeAccepted ChallengeStatus = "accepted"
	ChallengeDeclined ChallengeStatus = "declined"
	ChallengeExpired  ChallengeStatus = "expired"
)

// Challenge PvP 挑战
// 仅存在于内存，生命周期归属 ChallengeRegistry，进程重启即清空
type Challenge struct {
	ID           int64           `json:"id"`
	ChallengerID int64           `json:"challenger_id"`
	TargetID     int64           `json:"target_id"`
	Status       ChallengeStatus `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// IsExpired 判断挑战是否已过期
func (c *Challenge) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
