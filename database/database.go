package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"fundtrack/config"
	"fundtrack/models"
	"fundtrack/repository"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 按配置打开存储：mysql 使用 gorm 并自动迁移，memory 使用进程内存储
func Open(cfg *config.Config) (repository.Store, error) {
	switch cfg.Database.Driver {
	case "memory":
		log.Println("使用内存存储，重启后数据丢失")
		return repository.NewMemoryStore(), nil
	case "mysql":
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Database.Driver)
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.Server.Mode)),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	log.Println("数据库初始化成功")
	return repository.NewGormStore(db), nil
}

// Migrate 自动迁移消费流水与资金汇总表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Expense{},
		&models.FundsSummary{},
	)
}

// OpenRedis 连接 Redis 并检查连通性，供多实例部署的 owner 锁使用
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}

	log.Printf("已连接 Redis: %s", cfg.Addr)
	return rdb, nil
}

// logLevel release 模式只记录警告，其余模式打印 SQL
func logLevel(mode string) logger.LogLevel {
	if mode == "release" {
		return logger.Warn
	}
	return logger.Info
}
