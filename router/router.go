package router

import (
	"net/http"

	"fundtrack/api"
	"fundtrack/config"
	_ "fundtrack/docs"
	"fundtrack/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Expense *api.ExpenseHandler
	Funds   *api.FundsHandler
	Export  *api.ExportHandler
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	// 设置运行模式
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	authorized := r.Group("")
	authorized.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))
	authorized.Use(middleware.WriteRateLimit(cfg.RateLimit.MaxWrites, cfg.RateLimit.Window))
	if cfg.JWT.Enabled {
		authorized.Use(middleware.JWTAuth())
	}

	// 消费记录
	expenses := authorized.Group("/expenses")
	{
		expenses.POST("", h.Expense.Create)
		expenses.GET("", h.Expense.List)
		expenses.PUT("/:id", h.Expense.Update)
		expenses.DELETE("/:id", h.Expense.Delete)
		expenses.GET("/export/csv", h.Export.ExportCSV)
		expenses.GET("/export/xlsx", h.Export.ExportExcel)
	}

	// 资金
	funds := authorized.Group("/funds")
	{
		funds.GET("", h.Funds.Get)
		funds.POST("/allocate", h.Funds.Allocate)
		funds.PUT("/update", h.Funds.Update)
		funds.POST("/reconcile", h.Funds.Reconcile)
		funds.DELETE("/:owner", h.Funds.Reset)
	}

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
