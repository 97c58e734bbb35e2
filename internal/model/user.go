package model

import (
	"golang.org/x/crypto/bcrypt"
)

// 角色
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// User 当前请求的操作者
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin 是否具备管理员权限
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// HashKey 加密管理密钥
func HashKey(key string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckKey 检查管理密钥是否正确
func CheckKey(hash, key string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
	return err == nil
}
