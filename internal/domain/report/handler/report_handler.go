package handler

import (
	"errors"
	"net/http"

	"footstep/internal/domain/report/service"
	"footstep/internal/pkg/middleware"
	"footstep/pkg/apperr"
	"footstep/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports service.ReportService
}

func NewReportHandler(reports service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// FileReport 举报足迹或评论
// @Summary 举报
// @Description 举报后内容立即对举报者隐藏；作者累计被不同用户举报达到阈值时封禁
// @Tags Report
// @Accept json
// @Produce json
// @Param input body service.ReportInput true "Report Info"
// @Success 200 {object} response.Response{data=model.Report}
// @Router /reports [post]
func (h *ReportHandler) FileReport(c *gin.Context) {
	var input service.ReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	report, err := h.reports.FileReport(c.Request.Context(), middleware.Caller(c), input)
	if err != nil {
		var pf *apperr.PartialFailure
		if report != nil && errors.As(err, &pf) {
			// 举报已生效，只是级联中有失败项
			c.JSON(http.StatusOK, response.Response{
				Code:    response.ErrCascadePartial,
				Message: pf.Error(),
				Data:    report,
			})
			return
		}
		response.FromError(c, err)
		return
	}
	response.Success(c, report)
}
