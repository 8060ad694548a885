package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qingyun-game/qingyun/internal/model"
	"github.com/qingyun-game/qingyun/internal/service"
	"github.com/qingyun-game/qingyun/pkg/logger"
)

// 业务错误码
const (
	codeInvalidRequest = 400
	codeForbidden      = 403
	codeNotFound       = 404
	codeConflict       = 409
	codeInternal       = 500
)

// GameHandler HTTP 绑定层
// 只做参数解析与结果转写，不承载任何游戏逻辑
type GameHandler struct {
	logger         logger.Logger
	cultivationSvc *service.CultivationService
	pvpSvc         *service.PvPService
	missionSvc     *service.MissionService
}

// NewGameHandler 创建 HTTP 处理器
func NewGameHandler(
	l logger.Logger,
	cultivationSvc *service.CultivationService,
	pvpSvc *service.PvPService,
	missionSvc *service.MissionService,
) *GameHandler {
	return &GameHandler{
		logger:         l.Named("handler.game"),
		cultivationSvc: cultivationSvc,
		pvpSvc:         pvpSvc,
		missionSvc:     missionSvc,
	}
}

// Register 注册路由
func (h *GameHandler) Register(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.POST("/cultivation/start", h.StartCultivation)
		api.POST("/cultivation/complete", h.CompleteCultivation)

		api.POST("/pvp/challenges", h.CreateChallenge)
		api.POST("/pvp/challenges/:id/accept", h.AcceptChallenge)
		api.POST("/pvp/challenges/:id/decline", h.DeclineChallenge)
		api.POST("/pvp/challenges/:id/battle", h.ExecuteBattle)

		api.GET("/players/:id/missions/:cadence", h.ListMissions)
		api.POST("/missions/claim", h.ClaimMission)
		api.POST("/missions/claim-all", h.ClaimAllMissions)
	}
}

// PlayerRequest 携带玩家 ID 的通用请求体
type PlayerRequest struct {
	PlayerID int64 `json:"player_id" binding:"required"`
}

// StartCultivation 开始修炼
func (h *GameHandler) StartCultivation(c *gin.Context) {
	var req PlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.cultivationSvc.StartSession(c.Request.Context(), req.PlayerID)
	if err != nil {
		h.internalError(c, "start cultivation", err)
		return
	}
	respondOK(c, result)
}

// CompleteCultivation 结算修炼
func (h *GameHandler) CompleteCultivation(c *gin.Context) {
	var req PlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.cultivationSvc.CompleteSession(c.Request.Context(), req.PlayerID)
	if err != nil {
		h.internalError(c, "complete cultivation", err)
		return
	}
	respondOK(c, result)
}

// CreateChallengeRequest 发起挑战请求
type CreateChallengeRequest struct {
	ChallengerID int64 `json:"challenger_id" binding:"required"`
	TargetID     int64 `json:"target_id" binding:"required"`
}

// CreateChallenge 发起挑战
func (h *GameHandler) CreateChallenge(c *gin.Context) {
	var req CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.pvpSvc.CreateChallenge(c.Request.Context(), req.ChallengerID, req.TargetID)
	if err != nil {
		h.internalError(c, "create challenge", err)
		return
	}
	respondOK(c, result)
}

// AcceptChallenge 接受挑战
func (h *GameHandler) AcceptChallenge(c *gin.Context) {
	challengeID, req, ok := h.challengeArgs(c)
	if !ok {
		return
	}

	challenge, err := h.pvpSvc.AcceptChallenge(c.Request.Context(), challengeID, req.PlayerID)
	if err != nil {
		h.challengeError(c, "accept challenge", err)
		return
	}
	respondOK(c, challenge)
}

// DeclineChallenge 拒绝挑战
func (h *GameHandler) DeclineChallenge(c *gin.Context) {
	challengeID, req, ok := h.challengeArgs(c)
	if !ok {
		return
	}

	if err := h.pvpSvc.DeclineChallenge(c.Request.Context(), challengeID, req.PlayerID); err != nil {
		h.challengeError(c, "decline challenge", err)
		return
	}
	respondOK(c, nil)
}

// ExecuteBattle 执行已接受的挑战
func (h *GameHandler) ExecuteBattle(c *gin.Context) {
	challengeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid challenge id")
		return
	}

	result, err := h.pvpSvc.ExecuteBattle(c.Request.Context(), challengeID)
	if err != nil {
		h.challengeError(c, "execute battle", err)
		return
	}
	respondOK(c, result)
}

// ListMissions 获取当期任务
func (h *GameHandler) ListMissions(c *gin.Context) {
	playerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid player id")
		return
	}

	cadence := model.Cadence(c.Param("cadence"))
	if cadence != model.CadenceDaily && cadence != model.CadenceWeekly {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "cadence must be daily or weekly")
		return
	}

	missions, err := h.missionSvc.ListMissions(c.Request.Context(), playerID, cadence)
	if err != nil {
		h.internalError(c, "list missions", err)
		return
	}
	respondOK(c, missions)
}

// ClaimMissionRequest 领取单个任务请求
type ClaimMissionRequest struct {
	PlayerID  int64  `json:"player_id" binding:"required"`
	MissionID string `json:"mission_id" binding:"required"`
}

// ClaimMission 领取单个任务奖励
func (h *GameHandler) ClaimMission(c *gin.Context) {
	var req ClaimMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request: "+err.Error())
		return
	}

	result, err := h.missionSvc.Claim(c.Request.Context(), req.PlayerID, req.MissionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissionNotFound):
			respondError(c, http.StatusNotFound, codeNotFound, "mission not found")
		case errors.Is(err, service.ErrMissionNotCompleted):
			respondError(c, http.StatusConflict, codeConflict, "mission not completed")
		case errors.Is(err, service.ErrMissionAlreadyClaimed):
			respondError(c, http.StatusConflict, codeConflict, "mission already claimed")
		default:
			h.internalError(c, "claim mission", err)
		}
		return
	}
	respondOK(c, result)
}

// ClaimAllRequest 一键领取请求
type ClaimAllRequest struct {
	PlayerID int64         `json:"player_id" binding:"required"`
	Cadence  model.Cadence `json:"cadence" binding:"required"`
}

// ClaimAllMissions 一键领取指定周期的任务奖励
func (h *GameHandler) ClaimAllMissions(c *gin.Context) {
	var req ClaimAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request: "+err.Error())
		return
	}
	if req.Cadence != model.CadenceDaily && req.Cadence != model.CadenceWeekly {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "cadence must be daily or weekly")
		return
	}

	result, err := h.missionSvc.ClaimAll(c.Request.Context(), req.PlayerID, req.Cadence)
	if err != nil {
		h.internalError(c, "claim all missions", err)
		return
	}
	respondOK(c, result)
}

// challengeArgs 解析挑战路径参数与请求体
func (h *GameHandler) challengeArgs(c *gin.Context) (int64, *PlayerRequest, bool) {
	challengeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid challenge id")
		return 0, nil, false
	}

	var req PlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, codeInvalidRequest, "invalid request: "+err.Error())
		return 0, nil, false
	}
	return challengeID, &req, true
}

// challengeError 将挑战状态机错误映射为响应
func (h *GameHandler) challengeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrChallengeNotFound):
		respondError(c, http.StatusNotFound, codeNotFound, "challenge not found")
	case errors.Is(err, service.ErrChallengeExpired):
		respondError(c, http.StatusConflict, codeConflict, "challenge expired")
	case errors.Is(err, service.ErrWrongParty):
		respondError(c, http.StatusForbidden, codeForbidden, "not the challenged party")
	case errors.Is(err, service.ErrChallengeResolved):
		respondError(c, http.StatusConflict, codeConflict, "challenge already resolved")
	case errors.Is(err, service.ErrChallengeNotAccepted):
		respondError(c, http.StatusConflict, codeConflict, "challenge not accepted")
	default:
		h.internalError(c, op, err)
	}
}

// internalError 存储层等硬错误统一按 500 返回
func (h *GameHandler) internalError(c *gin.Context, op string, err error) {
	h.logger.Error("request failed",
		"op", op,
		"error", err,
	)
	respondError(c, http.StatusInternalServerError, codeInternal, "internal error")
}
