// Package repository 持久化家族成员文档。
//
// 整个成员列表作为一个 JSON 文档保存在键 heritage_people 下，
// 各存储后端只负责这一个键的读写。
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"heritage_tree/internal/model"
)

// DocumentKey 成员文档的存储键
const DocumentKey = "heritage_people"

// Persistence 持久化接口。Load 返回 false 表示文档不存在，调用方应使用示例数据
type Persistence interface {
	Load(ctx context.Context) ([]model.Person, bool, error)
	Save(ctx context.Context, people []model.Person) error
	Close() error
}

// 存储驱动
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverRedis    = "redis"
	DriverBadger   = "badger"
)

// Options 存储配置
type Options struct {
	Driver        string // 驱动类型
	Path          string // 文件 / sqlite / badger 路径
	DSN           string // postgres / mysql 连接串
	RedisAddr     string // Redis 地址
	RedisPassword string // Redis 密码
	RedisDB       int    // Redis 库号
	Debug         bool   // 输出 SQL 日志
}

// Open 按驱动创建持久化实例
func Open(opts Options) (Persistence, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile, "":
		return NewFileStore(opts.Path)
	case DriverSQLite, DriverPostgres, DriverMySQL:
		return NewDatabase(opts)
	case DriverRedis:
		return NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB), nil
	case DriverBadger:
		cfg := DefaultBadgerConfig()
		cfg.Path = opts.Path
		return NewBadgerStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", opts.Driver)
	}
}

func encode(people []model.Person) ([]byte, error) {
	if people == nil {
		people = []model.Person{}
	}
	data, err := json.Marshal(people)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal people: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]model.Person, error) {
	var people []model.Person
	if err := json.Unmarshal(data, &people); err != nil {
		return nil, fmt.Errorf("failed to unmarshal people: %w", err)
	}
	return people, nil
}
