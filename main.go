package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fundtrack/api"
	"fundtrack/config"
	"fundtrack/database"
	"fundtrack/middleware"
	"fundtrack/router"
	"fundtrack/service"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// @title 资金账本 API
// @version 1.0
// @description 个人记账的资金一致性服务：消费记录、资金分配与对账
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
	reconcile   string
	tokenFor    string
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
	flag.StringVar(&reconcile, "reconcile", "", "强制对账后退出：owner 或 all")
	flag.StringVar(&tokenFor, "token", "", "为指定 owner 签发 30 天有效的访问 token 后退出")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("资金账本 v1.0.0")
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}
	if !strings.HasPrefix(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	// 初始化 JWT
	middleware.InitJWT(cfg)
	if tokenFor != "" {
		token, err := middleware.GenerateToken(tokenFor, 30*24*time.Hour)
		if err != nil {
			log.Fatalf("签发 token 失败: %v", err)
		}
		fmt.Println(token)
		return
	}

	// 打印配置信息
	config.PrintConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("服务退出", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// 初始化存储，进程退出时关闭
	store, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("关闭数据库失败", "error", err)
		}
	}()

	locker, rdb, err := newLocker(ctx, cfg)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	notifier := service.NewMailNotifier(&cfg.Email, logger)
	reconciler := service.NewReconciler(store, notifier, logger)
	expenses := service.NewExpenseService(store, reconciler, locker, notifier, logger)
	funds := service.NewFundsService(store, reconciler, locker, notifier, logger)

	if reconcile != "" {
		return runReconcile(ctx, funds, reconcile, logger)
	}

	r := router.SetupRouter(cfg, router.Handlers{
		Expense: api.NewExpenseHandler(expenses),
		Funds:   api.NewFundsHandler(funds),
		Export:  api.NewExportHandler(expenses),
	})
	return serve(ctx, cfg, r, logger)
}

// newLocker 按配置创建 owner 锁；redis 后端同时返回需要关闭的客户端
func newLocker(ctx context.Context, cfg *config.Config) (service.Locker, *redis.Client, error) {
	if cfg.Lock.Backend != "redis" {
		return service.NewMemoryLocker(), nil, nil
	}
	rdb, err := database.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return service.NewRedisLocker(rdb, cfg.Lock.TTL, cfg.Lock.Retry), rdb, nil
}

// runReconcile 运维修复：对单个 owner 或全部 owner 强制对账
func runReconcile(ctx context.Context, funds *service.FundsService, target string, logger *slog.Logger) error {
	if target == "all" {
		n, err := funds.ReconcileAll(ctx)
		logger.Info("对账完成", "ok", n)
		return err
	}
	view, err := funds.Reconcile(ctx, target)
	if err != nil {
		return err
	}
	logger.Info("对账完成", "owner", view.Owner,
		"total_funds", view.TotalAllocated.String(), "spent", view.Spent.String(), "balance", view.Balance.String())
	return nil
}

// serve 启动 HTTP 服务，收到退出信号后优雅关闭
func serve(ctx context.Context, cfg *config.Config, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("==========================================")
		log.Printf("  💰 资金账本已启动")
		log.Printf("==========================================")
		log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
		log.Printf("  健康检查: http://localhost%s/health", cfg.Server.Port)
		log.Printf("==========================================")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("正在关闭服务")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newLogger 按配置的级别创建文本日志
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
