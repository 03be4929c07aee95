package controller

import (
	"edu_assess_backend/internal/model"
	"edu_assess_backend/internal/service"
	"edu_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	Service *service.AssessmentService
}

func NewAssessmentController(svc *service.AssessmentService) *AssessmentController {
	return &AssessmentController{Service: svc}
}

// CreateAssessment godoc
// @Summary 创建测评
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Param body body service.AssessmentRequest true "测评信息"
// @Success 201 {object} util.Response{data=model.Assessment}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/instructor/courses/{courseId}/assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	req.CourseID = courseID

	claims := util.GetUserFromContext(ctx)
	assessment, err := c.Service.CreateAssessment(claims.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, assessment)
}

// GetAssessment godoc
// @Summary 获取测评详情
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Failure 404 {object} util.Response "测评不存在"
// @Router /api/assessments/{id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	assessment, err := c.Service.GetAssessment(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, assessment)
}

// UpdateAssessment godoc
// @Summary 更新测评信息
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param body body service.AssessmentRequest true "测评信息"
// @Success 200 {object} util.Response{data=model.Assessment}
// @Router /api/instructor/assessments/{id} [put]
func (c *AssessmentController) UpdateAssessment(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	assessment, err := c.Service.UpdateAssessment(claims.UserID, id, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, assessment)
}

type PublishRequest struct {
	Published bool `json:"published"`
}

// SetPublished godoc
// @Summary 发布/下线测评
// @Description 发布后学生可以开始作答，下线后不再接受新的作答
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param body body PublishRequest true "发布状态"
// @Success 200 {object} util.Response
// @Router /api/instructor/assessments/{id}/publish [put]
func (c *AssessmentController) SetPublished(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req PublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.Service.SetPublished(claims.UserID, id, req.Published); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"published": req.Published})
}

// ListCourseAssessments godoc
// @Summary 获取课程测评列表
// @Description 学生只能看到已发布的测评
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Assessment}
// @Router /api/courses/{id}/assessments [get]
func (c *AssessmentController) ListCourseAssessments(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	publishedOnly := claims == nil || claims.Role == model.Student

	assessments, err := c.Service.ListCourseAssessments(courseID, publishedOnly)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, assessments)
}

// CreateQuestion godoc
// @Summary 创建测评题目
// @Tags 测评管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response "题目不合法"
// @Router /api/instructor/assessments/{id}/questions [post]
func (c *AssessmentController) CreateQuestion(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))
	if assessmentID == 0 {
		util.BadRequest(ctx, "invalid assessment id")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	q, err := c.Service.CreateQuestion(claims.UserID, assessmentID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, q)
}

// ListQuestions godoc
// @Summary 获取测评题目列表（含答案）
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /api/instructor/assessments/{id}/questions [get]
func (c *AssessmentController) ListQuestions(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))
	if assessmentID == 0 {
		util.BadRequest(ctx, "invalid assessment id")
		return
	}

	qs, err := c.Service.ListQuestions(assessmentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, qs)
}

// DeleteQuestion godoc
// @Summary 删除测评题目
// @Tags 测评管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Param questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/assessments/{id}/questions/{questionId} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))
	questionID := util.MustParseUint(ctx.Param("questionId"))
	if assessmentID == 0 || questionID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.Service.DeleteQuestion(claims.UserID, assessmentID, questionID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// StudentQuestions godoc
// @Summary 获取测评题目（学生视图）
// @Description 不包含正确答案和解析
// @Tags 测评作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "测评ID"
// @Success 200 {object} util.Response{data=[]service.StudentQuestion}
// @Failure 403 {object} util.Response "测评未发布"
// @Router /api/assessments/{id}/questions [get]
func (c *AssessmentController) StudentQuestions(ctx *gin.Context) {
	assessmentID := util.MustParseUint(ctx.Param("id"))
	if assessmentID == 0 {
		util.BadRequest(ctx, "invalid assessment id")
		return
	}

	qs, err := c.Service.StudentQuestions(assessmentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, qs)
}

// CreateBankEntry godoc
// @Summary 创建题库题目
// @Description 题库题目不属于任何测评，供自适应选题使用
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 201 {object} util.Response{data=model.Question}
// @Router /api/instructor/courses/{courseId}/bank [post]
func (c *AssessmentController) CreateBankEntry(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	q, err := c.Service.CreateBankEntry(claims.UserID, courseID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, q)
}

// UpdateBankEntry godoc
// @Summary 更新题库题目
// @Tags 题库
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Param questionId path int true "题目ID"
// @Param body body service.QuestionRequest true "题目信息"
// @Success 200 {object} util.Response{data=model.Question}
// @Router /api/instructor/courses/{courseId}/bank/{questionId} [put]
func (c *AssessmentController) UpdateBankEntry(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	questionID := util.MustParseUint(ctx.Param("questionId"))
	if courseID == 0 || questionID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	q, err := c.Service.UpdateBankEntry(claims.UserID, courseID, questionID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, q)
}

// ListBank godoc
// @Summary 获取题库列表
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/instructor/courses/{courseId}/bank [get]
func (c *AssessmentController) ListBank(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	page, limit := util.PageParams(ctx)

	qs, total, err := c.Service.ListBank(courseID, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.SuccessPage(ctx, qs, total, page, limit)
}

// DeleteBankEntry godoc
// @Summary 删除题库题目
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Param questionId path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{courseId}/bank/{questionId} [delete]
func (c *AssessmentController) DeleteBankEntry(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	questionID := util.MustParseUint(ctx.Param("questionId"))
	if courseID == 0 || questionID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	if err := c.Service.DeleteBankEntry(claims.UserID, courseID, questionID); err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
