package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"heritage_tree/internal/model"
)

// FileStore 本地 JSON 文件存储
type FileStore struct {
	path string
}

// NewFileStore 创建文件存储，目录不存在时自动创建
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		path = filepath.Join("data", DocumentKey+".json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path 文件路径
func (s *FileStore) Path() string {
	return s.path
}

// Load 读取
func (s *FileStore) Load(ctx context.Context) ([]model.Person, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	people, err := decode(data)
	if err != nil {
		return nil, false, err
	}
	return people, true, nil
}

// Save 先写临时文件再重命名，避免写到一半的文档
func (s *FileStore) Save(ctx context.Context, people []model.Person) error {
	data, err := encode(people)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".heritage-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Close 关闭
func (s *FileStore) Close() error {
	return nil
}
