package controller

import (
	"edu_assess_backend/internal/engine"
	"edu_assess_backend/internal/model"
	"edu_assess_backend/internal/service"
	"edu_assess_backend/internal/util"
	"edu_assess_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

// StartAttempt godoc
// @Summary 开始测评作答
// @Description 创建一条进行中的作答记录，测评必须已发布且学生已选课
// @Tags 测评作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 201 {object} util.Response{data=service.StartAttemptResponse}
// @Failure 403 {object} util.Response "未发布或未选课"
// @Failure 404 {object} util.Response "测评不存在"
// @Router /api/assessments/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))
	if assessmentID == 0 {
		util.BadRequest(ctx, "invalid assessment id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	resp, err := c.Service.StartAttempt(claims.UserID, assessmentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	monitoring.AttemptCounter.WithLabelValues("started").Inc()
	util.Created(ctx, resp)
}

type SubmitBatchRequest struct {
	Answers []service.AnswerSubmission `json:"answers"`
}

// SubmitBatch godoc
// @Summary 整卷提交
// @Description 一次性提交全部答案并结束作答，未作答的题目按零分计
// @Tags 测评作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "作答ID"
// @Param body body SubmitBatchRequest true "答案列表"
// @Success 200 {object} util.Response{data=service.SubmitBatchResponse}
// @Failure 400 {object} util.Response "答案不合法"
// @Failure 409 {object} util.Response "作答已结束"
// @Router /api/attempts/{attemptId}/submit [post]
func (c *AttemptController) SubmitBatch(ctx *gin.Context) {
	attemptID := ctx.Param("attemptId")
	if attemptID == "" {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	var req SubmitBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	resp, err := c.Service.SubmitBatch(claims.UserID, attemptID, req.Answers)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	monitoring.AttemptCounter.WithLabelValues("completed").Inc()
	util.Success(ctx, resp)
}

// SubmitAnswer godoc
// @Summary 提交单题答案并获取下一题
// @Description 自适应模式：判分后根据对错调整难度抽取下一题，题库耗尽时结束作答
// @Tags 测评作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "作答ID"
// @Param body body service.SubmitAnswerRequest true "答案及筛选条件"
// @Success 200 {object} util.Response{data=service.SubmitAnswerResponse}
// @Failure 409 {object} util.Response "作答已结束"
// @Router /api/attempts/{attemptId}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	attemptID := ctx.Param("attemptId")
	if attemptID == "" {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	var req service.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	resp, err := c.Service.SubmitOneAndAdvance(claims.UserID, attemptID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	if resp.Completed {
		monitoring.AttemptCounter.WithLabelValues("completed").Inc()
	}
	util.Success(ctx, resp)
}

// NextQuestion godoc
// @Summary 获取下一题
// @Description 首次抽题或断线重连时使用，题库耗尽返回空
// @Tags 测评作答
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "作答ID"
// @Param type query string false "题型筛选"
// @Param topicId query int false "主题筛选"
// @Param subtopicId query int false "子主题筛选"
// @Success 200 {object} util.Response{data=service.StudentQuestion}
// @Router /api/attempts/{attemptId}/next [get]
func (c *AttemptController) NextQuestion(ctx *gin.Context) {
	attemptID := ctx.Param("attemptId")
	if attemptID == "" {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	filters := engine.Filters{
		Type:       model.QuestionType(ctx.Query("type")),
		TopicID:    util.MustParseUint(ctx.Query("topicId")),
		SubtopicID: util.MustParseUint(ctx.Query("subtopicId")),
	}

	claims := util.GetUserFromContext(ctx)
	q, err := c.Service.NextQuestion(claims.UserID, attemptID, filters)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	if q == nil {
		util.Success(ctx, gin.H{"exhausted": true})
		return
	}
	util.Success(ctx, q)
}

// GetAttempt godoc
// @Summary 获取作答详情
// @Description 仅本人可查看，包含答案和题目
// @Tags 测评作答
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "作答ID"
// @Success 200 {object} util.Response{data=service.AttemptDetailResponse}
// @Failure 403 {object} util.Response "无权查看"
// @Router /api/attempts/{attemptId} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	attemptID := ctx.Param("attemptId")
	if attemptID == "" {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	resp, err := c.Service.GetAttempt(claims.UserID, attemptID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

// ListAssessmentAttempts godoc
// @Summary 获取测评的全部作答记录
// @Description 教师查看本人测评下所有学生的作答
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/instructor/assessments/{id}/attempts [get]
func (c *AttemptController) ListAssessmentAttempts(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))
	if assessmentID == 0 {
		util.BadRequest(ctx, "invalid assessment id")
		return
	}
	page, limit := util.PageParams(ctx)

	claims := util.GetUserFromContext(ctx)
	attempts, total, err := c.Service.ListAssessmentAttempts(claims.UserID, assessmentID, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.SuccessPage(ctx, attempts, total, page, limit)
}
