package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"heritage_tree/internal/model"
)

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储实例
func NewRedisStore(addr, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStore{
		client: client,
	}
}

// Load 读取
func (s *RedisStore) Load(ctx context.Context) ([]model.Person, bool, error) {
	data, err := s.client.Get(ctx, DocumentKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get value: %w", err)
	}
	people, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return people, true, nil
}

// Save 写入，不设置过期时间
func (s *RedisStore) Save(ctx context.Context, people []model.Person) error {
	data, err := encode(people)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, DocumentKey, data, 0).Err()
}

// Close 关闭连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
