package service

import "github.com/cockroachdb/errors"

// 业务硬错误
// 预期内的校验失败（状态不符、次数用尽等）以结果值返回，不走 error；
// 以下哨兵错误用于调用方必须区分处理的场景，存储层 I/O 错误原样向上传递
var (
	// ErrChallengeNotFound 挑战不存在（未创建或已被结算/清理）
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrChallengeExpired 挑战已过期
	ErrChallengeExpired = errors.New("challenge expired")
	// ErrWrongParty 操作者不是挑战的目标方
	ErrWrongParty = errors.New("not the challenged party")
	// ErrChallengeResolved 挑战已不在待处理状态
	ErrChallengeResolved = errors.New("challenge already resolved")
	// ErrChallengeNotAccepted 挑战尚未被接受，不能开战
	ErrChallengeNotAccepted = errors.New("challenge not accepted")

	// ErrMissionNotFound 任务实例不存在
	ErrMissionNotFound = errors.New("mission not found")
	// ErrMissionNotCompleted 任务未完成，不能领取
	ErrMissionNotCompleted = errors.New("mission not completed")
	// ErrMissionAlreadyClaimed 任务奖励已领取
	ErrMissionAlreadyClaimed = errors.New("mission already claimed")

	// ErrPlayerNotFound 玩家不存在
	ErrPlayerNotFound = errors.New("player not found")
)
