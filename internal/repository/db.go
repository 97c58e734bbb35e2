package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"heritage_tree/internal/model"
)

// Document 文档表
type Document struct {
	Name      string `gorm:"primaryKey;size:100"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (Document) TableName() string {
	return "documents"
}

// DB 数据库连接实例
type DB struct {
	*gorm.DB
}

// NewDatabase 初始化数据库连接
func NewDatabase(opts Options) (*DB, error) {
	level := logger.Warn
	if opts.Debug {
		level = logger.Info
	}
	config := &gorm.Config{
		Logger: logger.Default.LogMode(level),
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverSQLite:
		path := opts.Path
		if path == "" {
			path = "heritage.db"
		}
		dialector = sqlite.Open(path)
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverMySQL:
		dialector = mysql.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", opts.Driver)
	}

	gormDB, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := gormDB.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DB{gormDB}, nil
}

// Load 读取
func (d *DB) Load(ctx context.Context) ([]model.Person, bool, error) {
	var doc Document
	err := d.WithContext(ctx).First(&doc, "name = ?", DocumentKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load document: %w", err)
	}
	people, err := decode([]byte(doc.Value))
	if err != nil {
		return nil, false, err
	}
	return people, true, nil
}

// Save 写入（存在则覆盖）
func (d *DB) Save(ctx context.Context, people []model.Person) error {
	data, err := encode(people)
	if err != nil {
		return err
	}
	doc := Document{Name: DocumentKey, Value: string(data), UpdatedAt: time.Now()}
	err = d.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&doc).Error
	if err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
