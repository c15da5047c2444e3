package api

import (
	"encoding/json"

	"fundtrack/middleware"
	"fundtrack/models"
	"fundtrack/service"

	"github.com/gin-gonic/gin"
)

// FundsHandler 资金分配处理器
type FundsHandler struct {
	funds *service.FundsService
}

// NewFundsHandler 创建资金分配处理器
func NewFundsHandler(funds *service.FundsService) *FundsHandler {
	return &FundsHandler{funds: funds}
}

// AllocateRequest 追加分配请求
type AllocateRequest struct {
	Owner  string          `json:"owner" example:"alice@example.com"`
	Amount json.RawMessage `json:"amount" swaggertype:"number" example:"100"`
}

// SetTotalRequest 重设总额请求
type SetTotalRequest struct {
	Owner      string          `json:"owner" example:"alice@example.com"`
	TotalFunds json.RawMessage `json:"total_funds" swaggertype:"number" example:"500"`
}

// ReconcileRequest 强制对账请求
type ReconcileRequest struct {
	Owner string `json:"owner" example:"alice@example.com"`
}

// Allocate 追加分配资金
// @Summary 追加分配资金
// @Description 在现有总额上累加，没有记录时以该金额创建
// @Tags 资金
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AllocateRequest true "分配信息"
// @Success 200 {object} Response{data=models.FundsView} "分配成功"
// @Failure 400 {object} Response{data=ErrorData} "InvalidAmount / InvalidId"
// @Router /funds/allocate [post]
func (h *FundsHandler) Allocate(c *gin.Context) {
	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	owner, err := middleware.ResolveOwner(c, req.Owner)
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}
	amount, err := models.ParseAmount(string(req.Amount))
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	view, err := h.funds.Allocate(c.Request.Context(), owner, amount)
	h.respondView(c, view, err, "分配成功", "分配资金失败")
}

// Update 重设分配总额
// @Summary 重设分配总额
// @Description 直接覆盖总额（非累加）；已有花费超出新总额时 spent 截断为总额
// @Tags 资金
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetTotalRequest true "新的总额"
// @Success 200 {object} Response{data=models.FundsView} "更新成功"
// @Failure 400 {object} Response{data=ErrorData} "InvalidAmount"
// @Failure 404 {object} Response{data=ErrorData} "尚无资金记录"
// @Router /funds/update [put]
func (h *FundsHandler) Update(c *gin.Context) {
	var req SetTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	owner, err := middleware.ResolveOwner(c, req.Owner)
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}
	total, err := models.ParseAmount(string(req.TotalFunds))
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	view, err := h.funds.SetTotal(c.Request.Context(), owner, total)
	h.respondView(c, view, err, "更新成功", "更新资金失败")
}

// Get 查询资金汇总
// @Summary 查询资金汇总
// @Description 没有记录时返回全 0 的汇总，不会创建记录
// @Tags 资金
// @Produce json
// @Security BearerAuth
// @Param owner query string true "用户"
// @Success 200 {object} Response{data=models.FundsView} "获取成功"
// @Router /funds [get]
func (h *FundsHandler) Get(c *gin.Context) {
	owner, err := middleware.ResolveOwner(c, c.Query("owner"))
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	view, err := h.funds.Get(c.Request.Context(), owner)
	if err != nil {
		DomainError(c, err, "查询资金失败")
		return
	}
	Success(c, view)
}

// Reset 清零资金
// @Summary 清零资金
// @Description 把总额、花费、余额全部置 0，消费记录保留
// @Tags 资金
// @Produce json
// @Security BearerAuth
// @Param owner path string true "用户"
// @Success 200 {object} Response "已清零"
// @Failure 404 {object} Response{data=ErrorData} "尚无资金记录"
// @Router /funds/{owner} [delete]
func (h *FundsHandler) Reset(c *gin.Context) {
	owner, err := middleware.ResolveOwner(c, c.Param("owner"))
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	if err := h.funds.Reset(c.Request.Context(), owner); err != nil {
		DomainError(c, err, "清零资金失败")
		return
	}
	SuccessWithMessage(c, "已清零", nil)
}

// Reconcile 强制对账
// @Summary 强制对账
// @Description 从消费流水重新计算 spent 与 balance，用于对账失败后的修复
// @Tags 资金
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ReconcileRequest true "用户"
// @Success 200 {object} Response{data=models.FundsView} "对账完成"
// @Failure 503 {object} Response{data=ErrorData} "存储不可用"
// @Router /funds/reconcile [post]
func (h *FundsHandler) Reconcile(c *gin.Context) {
	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	owner, err := middleware.ResolveOwner(c, req.Owner)
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	view, err := h.funds.Reconcile(c.Request.Context(), owner)
	if err != nil {
		DomainError(c, err, "对账失败")
		return
	}
	SuccessWithMessage(c, "对账完成", view)
}

func (h *FundsHandler) respondView(c *gin.Context, view models.FundsView, err error, ok, fallback string) {
	switch {
	case err == nil:
		SuccessWithMessage(c, ok, view)
	case isReconcileFailure(err):
		SuccessWithMessage(c, reconcileWarning(err), view)
	default:
		DomainError(c, err, fallback)
	}
}
