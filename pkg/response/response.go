package response

import (
	"context"
	"errors"
	"net/http"

	"footstep/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// Fail 业务失败响应 (HTTP 200, 业务码非 0)
func Fail(c *gin.Context, errCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 根据业务错误分类选择 HTTP 状态码
func FromError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		Error(c, http.StatusRequestTimeout, ErrRequestTimeout, "request timeout")
		return
	}

	var pf *apperr.PartialFailure
	if errors.As(err, &pf) {
		// 主操作已提交，只是级联中有失败项
		Fail(c, ErrCascadePartial, pf.Error())
		return
	}

	var e *apperr.Error
	if !errors.As(err, &e) {
		Error(c, http.StatusInternalServerError, ErrServerInternal, err.Error())
		return
	}

	code := e.Code
	if code == 0 {
		code = CodeError
	}
	Error(c, StatusOf(e.Kind), code, e.Message)
}

// StatusOf 错误分类到 HTTP 状态码
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
