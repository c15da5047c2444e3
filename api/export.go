package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"fundtrack/middleware"
	"fundtrack/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct {
	expenses *service.ExpenseService
}

// NewExportHandler 创建导出处理器
func NewExportHandler(expenses *service.ExpenseService) *ExportHandler {
	return &ExportHandler{expenses: expenses}
}

// load 按列表接口的同一组筛选条件读取流水
func (h *ExportHandler) load(c *gin.Context) (*service.ExpenseList, bool) {
	var req ExpenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return nil, false
	}
	owner, err := middleware.ResolveOwner(c, req.Owner)
	if err != nil {
		DomainError(c, err, "参数错误")
		return nil, false
	}
	list, err := h.expenses.List(c.Request.Context(), owner, service.ListQuery{
		Start:    req.Start,
		End:      req.End,
		Category: req.Category,
	})
	if err != nil {
		DomainError(c, err, "查询数据失败")
		return nil, false
	}
	return list, true
}

// ExportCSV 导出消费记录为 CSV
// @Summary 导出消费记录
// @Description 按列表接口的筛选条件导出消费记录为 CSV 文件
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param owner query string true "用户"
// @Param start query string false "开始日期 (2024-01-01)"
// @Param end query string false "结束日期 (2024-12-31)"
// @Param category query string false "类别筛选"
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response{data=ErrorData} "InvalidDate / InvalidId"
// @Router /expenses/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	list, ok := h.load(c)
	if !ok {
		return
	}

	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)
	_ = writer.Write([]string{"ID", "金额", "类别", "描述", "消费日期", "创建时间"})
	for _, e := range list.Expenses {
		_ = writer.Write([]string{
			e.ID,
			e.Amount.StringFixed(2),
			e.Category,
			e.Description,
			e.Date,
			e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	c.Header("Content-Disposition", attachment(fmt.Sprintf("expenses_%s.csv", list.Funds.Owner)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出消费记录为 Excel
// @Summary 导出消费记录为 Excel
// @Description 按列表接口的筛选条件导出 xlsx，末尾附资金汇总
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param owner query string true "用户"
// @Param start query string false "开始日期 (2024-01-01)"
// @Param end query string false "结束日期 (2024-12-31)"
// @Param category query string false "类别筛选"
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response{data=ErrorData} "InvalidDate / InvalidId"
// @Router /expenses/export/xlsx [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	list, ok := h.load(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "消费记录"
	f.SetSheetName("Sheet1", sheetName)

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})

	f.SetColWidth(sheetName, "A", "A", 38)
	f.SetColWidth(sheetName, "B", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 30)
	f.SetColWidth(sheetName, "F", "F", 20)

	headers := []string{"ID", "金额", "类别", "消费日期", "描述", "创建时间"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, e := range list.Expenses {
		row := i + 2
		amount, _ := e.Amount.Float64()
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), amount)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), e.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), e.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), e.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), e.CreatedAt.Format("2006-01-02 15:04:05"))
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), dataStyle)
	}

	// 汇总行：分配总额 / 已花费 / 余额
	summaryRow := len(list.Expenses) + 2
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(list.Expenses)))
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryRow), "总额 "+list.Funds.TotalAllocated.StringFixed(2))
	f.SetCellValue(sheetName, fmt.Sprintf("C%d", summaryRow), "已花费 "+list.Funds.Spent.StringFixed(2))
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", summaryRow), "余额 "+list.Funds.Balance.StringFixed(2))
	f.MergeCell(sheetName, fmt.Sprintf("E%d", summaryRow), fmt.Sprintf("F%d", summaryRow))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("F%d", summaryRow), summaryStyle)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", attachment(fmt.Sprintf("expenses_%s.xlsx", list.Funds.Owner)))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}

// attachment 生成下载头，文件名按 RFC 5987 百分号编码（owner 含 @ 等字符）
func attachment(filename string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(filename), "+", "%20")
	return fmt.Sprintf("attachment; filename*=UTF-8''%s", encoded)
}
