package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedPhotoExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadService 头像上传服务
type UploadService struct {
	uploadDir string
	maxSize   int64
}

// NewUploadService 创建上传服务实例
func NewUploadService(uploadDir string, maxSize int64) (*UploadService, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %v", err)
	}
	return &UploadService{uploadDir: uploadDir, maxSize: maxSize}, nil
}

// Dir 上传目录
func (s *UploadService) Dir() string {
	return s.uploadDir
}

// UploadPhoto 保存头像，返回可直接写入 photoUrl 的地址
func (s *UploadService) UploadPhoto(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedPhotoExts[ext] {
		return "", NewError(ErrValidation, "unsupported photo type "+ext, nil)
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", NewError(ErrValidation, fmt.Sprintf("photo exceeds %d bytes", s.maxSize), nil)
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.uploadDir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %v", err)
	}
	defer dst.Close()

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %v", err)
	}
	defer src.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to copy file: %v", err)
	}

	return s.GetFileURL(filename), nil
}

// DeleteFile 删除文件
func (s *UploadService) DeleteFile(url string) error {
	filename := filepath.Base(url)
	return os.Remove(filepath.Join(s.uploadDir, filename))
}

// GetFileURL 获取文件URL
func (s *UploadService) GetFileURL(filename string) string {
	return fmt.Sprintf("/uploads/%s", filename)
}
