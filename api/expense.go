package api

import (
	"encoding/json"

	"fundtrack/middleware"
	"fundtrack/models"
	"fundtrack/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ExpenseHandler 消费记录处理器
type ExpenseHandler struct {
	expenses *service.ExpenseService
}

// NewExpenseHandler 创建消费记录处理器
func NewExpenseHandler(expenses *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// CreateExpenseRequest 创建消费记录请求
type CreateExpenseRequest struct {
	Amount      json.RawMessage `json:"amount" swaggertype:"number" example:"99.99"`
	Category    string          `json:"category" example:"Food"`
	Date        string          `json:"date" example:"2024-01-15"`
	Description string          `json:"description" example:"午餐"`
}

// UpdateExpenseRequest 更新消费记录请求，未提供的字段保持不变
type UpdateExpenseRequest struct {
	Amount      json.RawMessage `json:"amount" swaggertype:"number" example:"99.99"`
	Category    *string         `json:"category" example:"Food"`
	Date        *string         `json:"date" example:"2024-01-15"`
	Description *string         `json:"description" example:"午餐"`
}

// ExpenseListRequest 消费记录列表请求
type ExpenseListRequest struct {
	Owner    string `form:"owner" example:"alice@example.com"`
	Start    string `form:"start" example:"2024-01-01"`
	End      string `form:"end" example:"2024-12-31"`
	Category string `form:"category" example:"Food"`
}

// CreateExpenseResponse 创建结果
type CreateExpenseResponse struct {
	ID string `json:"id"`
}

// Create 创建消费记录
// @Summary 创建消费记录
// @Description 校验余额后创建消费记录，并重新计算资金汇总
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param owner query string true "用户"
// @Param request body CreateExpenseRequest true "消费记录信息"
// @Success 201 {object} Response{data=CreateExpenseResponse} "创建成功"
// @Failure 400 {object} Response{data=ErrorData} "InvalidAmount / InsufficientFunds / NoFundsAllocated"
// @Failure 403 {object} Response "owner 与 token 不一致"
// @Router /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	owner, err := middleware.ResolveOwner(c, c.Query("owner"))
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	amount, err := models.ParseAmount(string(req.Amount))
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	id, err := h.expenses.Create(c.Request.Context(), owner, service.NewExpense{
		Amount:      amount,
		Category:    req.Category,
		Date:        req.Date,
		Description: req.Description,
	})
	switch {
	case err == nil:
		Created(c, "创建成功", CreateExpenseResponse{ID: id})
	case isReconcileFailure(err):
		Created(c, reconcileWarning(err), CreateExpenseResponse{ID: id})
	default:
		DomainError(c, err, "创建消费记录失败")
	}
}

// List 获取消费记录列表
// @Summary 获取消费记录列表
// @Description 按日期区间和类别筛选消费记录，同时返回实时计算的资金汇总
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param owner query string true "用户"
// @Param start query string false "开始日期 (2024-01-01)"
// @Param end query string false "结束日期 (2024-12-31)"
// @Param category query string false "类别筛选"
// @Success 200 {object} Response{data=service.ExpenseList} "获取成功"
// @Failure 400 {object} Response{data=ErrorData} "InvalidDate / InvalidId"
// @Router /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	owner, err := middleware.ResolveOwner(c, req.Owner)
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	list, err := h.expenses.List(c.Request.Context(), owner, service.ListQuery{
		Start:    req.Start,
		End:      req.End,
		Category: req.Category,
	})
	if err != nil {
		DomainError(c, err, "查询失败")
		return
	}
	Success(c, list)
}

// Update 更新消费记录
// @Summary 更新消费记录
// @Description 部分更新消费记录；修改金额时排除本条重新校验余额
// @Tags 消费记录
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "消费记录ID"
// @Param owner query string true "用户"
// @Param request body UpdateExpenseRequest true "需要修改的字段"
// @Success 200 {object} Response{data=models.ExpenseView} "更新成功"
// @Failure 400 {object} Response{data=ErrorData} "InvalidExpenseId / InvalidAmount / InvalidDate / InsufficientFunds"
// @Failure 404 {object} Response{data=ErrorData} "记录不存在"
// @Router /expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	owner, err := middleware.ResolveOwner(c, c.Query("owner"))
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	amount, err := parseOptionalAmount(req.Amount)
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	updated, err := h.expenses.Update(c.Request.Context(), c.Param("id"), owner, service.ExpenseUpdate{
		Amount:      amount,
		Category:    req.Category,
		Date:        req.Date,
		Description: req.Description,
	})
	switch {
	case err == nil:
		SuccessWithMessage(c, "更新成功", updated.View())
	case isReconcileFailure(err) && updated != nil:
		SuccessWithMessage(c, reconcileWarning(err), updated.View())
	default:
		DomainError(c, err, "更新消费记录失败")
	}
}

// Delete 删除消费记录
// @Summary 删除消费记录
// @Description 删除消费记录并重新计算资金汇总
// @Tags 消费记录
// @Produce json
// @Security BearerAuth
// @Param id path string true "消费记录ID"
// @Param owner query string true "用户"
// @Success 200 {object} Response "删除成功"
// @Failure 400 {object} Response{data=ErrorData} "InvalidExpenseId"
// @Failure 404 {object} Response{data=ErrorData} "记录不存在"
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	owner, err := middleware.ResolveOwner(c, c.Query("owner"))
	if err != nil {
		DomainError(c, err, "参数错误")
		return
	}

	err = h.expenses.Delete(c.Request.Context(), c.Param("id"), owner)
	switch {
	case err == nil:
		SuccessWithMessage(c, "删除成功", nil)
	case isReconcileFailure(err):
		SuccessWithMessage(c, reconcileWarning(err), nil)
	default:
		DomainError(c, err, "删除消费记录失败")
	}
}

// parseOptionalAmount 解析可选金额，缺省或 null 返回 nil
func parseOptionalAmount(raw json.RawMessage) (*decimal.Decimal, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	amount, err := models.ParseAmount(string(raw))
	if err != nil {
		return nil, err
	}
	return &amount, nil
}
