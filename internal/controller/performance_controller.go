package controller

import (
	"edu_assess_backend/internal/service"
	"edu_assess_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PerformanceController struct {
	Service *service.PerformanceService
}

func NewPerformanceController(svc *service.PerformanceService) *PerformanceController {
	return &PerformanceController{Service: svc}
}

// MyPerformance godoc
// @Summary 获取我的主题掌握情况
// @Description 按主题/子主题统计答题次数和正确率
// @Tags 学习表现
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.TopicAccuracy}
// @Router /api/performance [get]
func (c *PerformanceController) MyPerformance(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	perf, err := c.Service.StudentPerformance(claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, perf)
}

// StudentPerformance godoc
// @Summary 获取指定学生的主题掌握情况
// @Description 教师/管理员查看学生表现
// @Tags 学习表现
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "学生ID"
// @Success 200 {object} util.Response{data=[]service.TopicAccuracy}
// @Failure 403 {object} util.Response "该学生不在您的课程中"
// @Router /api/instructor/students/{studentId}/performance [get]
func (c *PerformanceController) StudentPerformance(ctx *gin.Context) {
	studentID := util.MustParseUint(ctx.Param("studentId"))
	if studentID == 0 {
		util.BadRequest(ctx, "invalid student id")
		return
	}

	claims := util.GetUserFromContext(ctx)
	perf, err := c.Service.InstructorView(claims.UserID, claims.Role, studentID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, perf)
}
