package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"fundtrack/middleware"
	"fundtrack/models"
	"fundtrack/service"

	"github.com/gin-gonic/gin"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorData 业务错误详情
type ErrorData struct {
	Error     string      `json:"error"`
	Available json.Number `json:"available,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: message,
		Data:    data,
	})
}

// Created 201 响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Forbidden 403 错误响应
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// errorMessages 业务错误的提示信息
var errorMessages = map[error]string{
	models.ErrInvalidAmount:     "金额无效，必须为大于 0 且最多两位小数的数字",
	models.ErrInvalidDate:       "日期格式错误，应为: 2006-01-02",
	models.ErrInvalidExpenseID:  "消费记录 ID 无效",
	models.ErrInvalidID:         "owner 无效",
	models.ErrInvalidCategory:   "类别不能为空",
	models.ErrNotFound:          "记录不存在",
	models.ErrNoFundsAllocated:  "尚未分配资金",
	models.ErrInsufficientFunds: "余额不足",
}

// DomainError 把业务错误映射为 HTTP 响应
// 校验类错误 400，NotFound 404，存储不可用 503，其余 500
func DomainError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, middleware.ErrOwnerMismatch):
		Forbidden(c, "无权访问该 owner 的数据")
		return
	case errors.Is(err, service.ErrLockTimeout):
		c.JSON(http.StatusServiceUnavailable, Response{
			Code:    http.StatusServiceUnavailable,
			Message: "请求繁忙，请稍后重试",
			Data:    ErrorData{Error: models.ErrStoreUnavailable.Error()},
		})
		return
	}

	code := models.ErrorCode(err)
	data := ErrorData{Error: code}
	status := http.StatusBadRequest
	message := ""

	for target, msg := range errorMessages {
		if errors.Is(err, target) {
			message = msg
			break
		}
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
		message = SafeErrorMessage(err, fallback)
	case message == "":
		status = http.StatusInternalServerError
		message = SafeErrorMessage(err, fallback)
	}

	var ife *models.InsufficientFundsError
	if errors.As(err, &ife) {
		data.Available = models.AmountNumber(ife.Available)
	}

	if data.Error == "" {
		Error(c, status, message)
		return
	}
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

// reconcileWarning 变更已保存但对账失败时的提示
func reconcileWarning(err error) string {
	return "已保存，但资金汇总更新失败，请稍后执行对账: " + SafeErrorMessage(err, models.ErrReconcileFailed.Error())
}

// isReconcileFailure 变更已提交、仅对账失败
func isReconcileFailure(err error) bool {
	return errors.Is(err, models.ErrReconcileFailed)
}
