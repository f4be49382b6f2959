package controller

import (
	"errors"
	"history_quiz_backend/internal/quiz"
	"history_quiz_backend/internal/service"
	"history_quiz_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	Service   *service.QuizService
	Histories *service.HistoryService
}

func NewQuizController(svc *service.QuizService, history *service.HistoryService) *QuizController {
	return &QuizController{Service: svc, Histories: history}
}

type indexReq struct {
	Index *int `json:"index" binding:"required"`
}

// respondError 将业务错误映射为 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrGenerationInProgress):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrGenerationFailed):
		util.BadGateway(ctx, "题目生成失败，请重试")
	case errors.Is(err, util.ErrNoActiveSession), errors.Is(err, util.ErrNoSavedSession):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrPersistenceFailed):
		util.Error(ctx, http.StatusInternalServerError, "保存失败，请重试")
	case errors.Is(err, util.ErrEmptyTopic), errors.Is(err, util.ErrInvalidCount),
		errors.Is(err, util.ErrInvalidMode), errors.Is(err, util.ErrInvalidAnswer):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, quiz.ErrNoStatements):
		util.Unprocessable(ctx, err.Error())
	case errors.Is(err, quiz.ErrIndexOutOfRange), errors.Is(err, quiz.ErrOptionOutOfRange),
		errors.Is(err, quiz.ErrWrongQuestionType):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, quiz.ErrAnswerLocked), errors.Is(err, quiz.ErrSessionSubmitted),
		errors.Is(err, quiz.ErrExamNotStarted), errors.Is(err, quiz.ErrNotPlaying),
		errors.Is(err, quiz.ErrNotAnswered):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// @Summary 生成练习题并开始练习
// @Tags 答题模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.PracticeRequest true "主题/数量/题型"
// @Success 201 {object} util.Response
// @Failure 409 {object} util.Response "正在生成中"
// @Failure 502 {object} util.Response "生成失败"
// @Router /api/quiz/practice [post]
func (c *QuizController) StartPractice(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.PracticeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.StartPractice(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// @Summary 生成模拟考试试卷
// @Tags 答题模块
// @Produce json
// @Security BearerAuth
// @Success 201 {object} util.Response
// @Router /api/quiz/exam [post]
func (c *QuizController) StartExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.StartExam(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// @Summary 当前会话
// @Tags 答题模块
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/session [get]
func (c *QuizController) GetSession(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.View(user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 作答
// @Description 单选题传 option；判断题传 statement + value
// @Tags 答题模块
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.AnswerInput true "答案"
// @Success 200 {object} util.Response
// @Router /api/quiz/session/answer [post]
func (c *QuizController) Answer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var in service.AnswerInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := c.Service.Answer(user.UserID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 下一题
// @Tags 答题模块
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/session/next [post]
func (c *QuizController) Next(ctx *gin.Context) {
	c.navigate(ctx, c.Service.Next)
}

// @Summary 上一题
// @Tags 答题模块
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/session/prev [post]
func (c *QuizController) Prev(ctx *gin.Context) {
	c.navigate(ctx, c.Service.Prev)
}

func (c *QuizController) navigate(ctx *gin.Context, op func(uint) (*service.SessionView, error)) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := op(user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 跳转到指定题目
// @Tags 答题模块
// @Accept json
// @Security BearerAuth
// @Param body body indexReq true "题目下标"
// @Success 200 {object} util.Response
// @Router /api/quiz/session/jump [post]
func (c *QuizController) Jump(ctx *gin.Context) {
	c.withIndex(ctx, c.Service.JumpTo)
}

// @Summary 标记/取消标记题目
// @Tags 答题模块
// @Accept json
// @Security BearerAuth
// @Param body body indexReq true "题目下标"
// @Success 200 {object} util.Response
// @Router /api/quiz/session/mark [post]
func (c *QuizController) Mark(ctx *gin.Context) {
	c.withIndex(ctx, c.Service.ToggleMark)
}

func (c *QuizController) withIndex(ctx *gin.Context, op func(uint, int) (*service.SessionView, error)) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req indexReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	view, err := op(user.UserID, *req.Index)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 交卷
// @Tags 答题模块
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/session/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	c.navigate(ctx, c.Service.Submit)
}

// @Summary 保存并退出
// @Tags 答题模块
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/session/save [post]
func (c *QuizController) SaveAndExit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	saved, err := c.Service.SaveAndExit(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	// 已交卷的会话不会保存，saved 为 false
	util.Success(ctx, gin.H{"saved": saved})
}

// @Summary 退出（不保存）
// @Tags 答题模块
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/session/exit [post]
func (c *QuizController) Exit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	c.Service.Exit(user.UserID)
	util.Success(ctx, nil)
}

// @Summary 是否有可继续的会话
// @Tags 答题模块
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/saved [get]
func (c *QuizController) CheckSaved(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	summary := c.Service.CheckSaved(ctx.Request.Context(), user.UserID)
	util.Success(ctx, gin.H{"hasSaved": summary != nil, "saved": summary})
}

// @Summary 继续已保存的会话
// @Tags 答题模块
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/saved/resume [post]
func (c *QuizController) Resume(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.Service.Resume(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 放弃已保存的会话
// @Tags 答题模块
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/quiz/saved [delete]
func (c *QuizController) Discard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.Service.Discard(ctx.Request.Context(), user.UserID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 历史成绩
// @Tags 答题模块
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/quiz/history [get]
func (c *QuizController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := util.Pagination(ctx.Query("page"), ctx.Query("limit"))
	history, err := c.Histories.History(ctx.Request.Context(), user.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, history)
}
