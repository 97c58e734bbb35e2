package repository

import (
	"context"
	"sync"

	"heritage_tree/internal/model"
)

// MemoryStore 内存存储
type MemoryStore struct {
	mu    sync.RWMutex
	data  []byte
	saves int
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load 读取
func (s *MemoryStore) Load(ctx context.Context) ([]model.Person, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, false, nil
	}
	people, err := decode(s.data)
	if err != nil {
		return nil, false, err
	}
	return people, true, nil
}

// Save 写入
func (s *MemoryStore) Save(ctx context.Context, people []model.Person) error {
	data, err := encode(people)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.saves++
	s.mu.Unlock()
	return nil
}

// Saves 写入次数
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Close 关闭
func (s *MemoryStore) Close() error {
	return nil
}
