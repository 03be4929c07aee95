package controller

import (
	"edu_assess_backend/internal/service"
	"edu_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	Service *service.CourseService
}

func NewCourseController(svc *service.CourseService) *CourseController {
	return &CourseController{Service: svc}
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/instructor/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.Service.CreateCourse(claims.UserID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, course)
}

// GetCourse godoc
// @Summary 获取课程详情
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	course, err := c.Service.GetCourse(id)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// ListCourses godoc
// @Summary 获取课程列表
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, limit := util.PageParams(ctx)

	courses, total, err := c.Service.ListCourses(page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.SuccessPage(ctx, courses, total, page, limit)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Param body body service.CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response "无权操作该课程"
// @Router /api/instructor/courses/{courseId} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.Service.UpdateCourse(claims.UserID, courseID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, course)
}

// MyEnrollments godoc
// @Summary 获取我的选课记录
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments [get]
func (c *CourseController) MyEnrollments(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	enrollments, err := c.Service.ListMyEnrollments(claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, enrollments)
}

// Enroll godoc
// @Summary 选课
// @Description 当前学生加入课程，重复选课返回已有记录
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{id}/enroll [post]
func (c *CourseController) Enroll(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	enrollment, err := c.Service.Enroll(claims.UserID, courseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, enrollment)
}

// CreateTopic godoc
// @Summary 创建主题
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param courseId path int true "课程ID"
// @Param body body service.TopicRequest true "主题信息"
// @Success 201 {object} util.Response{data=model.Topic}
// @Router /api/instructor/courses/{courseId}/topics [post]
func (c *CourseController) CreateTopic(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	var req service.TopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	topic, err := c.Service.CreateTopic(claims.UserID, courseID, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, topic)
}

// ListTopics godoc
// @Summary 获取课程主题列表
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Topic}
// @Router /api/courses/{id}/topics [get]
func (c *CourseController) ListTopics(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}

	topics, err := c.Service.ListTopics(courseID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, topics)
}

type SubtopicRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateSubtopic godoc
// @Summary 创建子主题
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param topicId path int true "主题ID"
// @Param body body SubtopicRequest true "子主题信息"
// @Success 201 {object} util.Response{data=model.Subtopic}
// @Router /api/instructor/topics/{topicId}/subtopics [post]
func (c *CourseController) CreateSubtopic(ctx *gin.Context) {
	topicID := util.MustParseUint(ctx.Param("topicId"))
	if topicID == 0 {
		util.BadRequest(ctx, "invalid topic id")
		return
	}

	var req SubtopicRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	subtopic, err := c.Service.CreateSubtopic(claims.UserID, topicID, req.Name)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, subtopic)
}

// ListSubtopics godoc
// @Summary 获取子主题列表
// @Tags 课程
// @Produce json
// @Security BearerAuth
// @Param topicId path int true "主题ID"
// @Success 200 {object} util.Response{data=[]model.Subtopic}
// @Router /api/topics/{topicId}/subtopics [get]
func (c *CourseController) ListSubtopics(ctx *gin.Context) {
	topicID := util.MustParseUint(ctx.Param("topicId"))
	if topicID == 0 {
		util.BadRequest(ctx, "invalid topic id")
		return
	}

	subtopics, err := c.Service.ListSubtopics(topicID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, subtopics)
}
