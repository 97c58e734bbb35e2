package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"heritage_tree/internal/model"
)

// BadgerConfig BadgerDB 配置
type BadgerConfig struct {
	Path       string       // 数据目录，InMemory 时忽略
	InMemory   bool         // 纯内存模式，用于测试
	SyncWrites bool         // 同步写
	Logger     *slog.Logger // 为空时关闭 badger 内部日志
}

// DefaultBadgerConfig 默认配置
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		Path:       "data/badger",
		SyncWrites: true,
	}
}

type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// BadgerStore 嵌入式 KV 存储
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore 打开 BadgerDB
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Load 读取
func (s *BadgerStore) Load(ctx context.Context) ([]model.Person, bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(DocumentKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read document: %w", err)
	}
	people, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return people, true, nil
}

// Save 写入
func (s *BadgerStore) Save(ctx context.Context, people []model.Person) error {
	data, err := encode(people)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(DocumentKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Close 关闭
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
