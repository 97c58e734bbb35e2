package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"heritage_tree/internal/model"
)

// AuthConfig 认证配置
type AuthConfig struct {
	SecretKey     string        // JWT密钥
	TokenDuration time.Duration // Token有效期
	AdminKey      string        // 管理密钥（明文，启动时加密保存）
}

// Claims JWT声明
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// User 声明对应的操作者
func (c *Claims) User() *model.User {
	return &model.User{Username: c.Username, Role: c.Role}
}

// Auth 认证服务
type Auth struct {
	config  *AuthConfig
	keyHash string
	logger  *Logger
}

// NewAuth 创建认证服务实例
func NewAuth(config *AuthConfig, logger *Logger) (*Auth, error) {
	if config.SecretKey == "" {
		return nil, NewError(ErrConfig, "jwt secret is not set", nil)
	}
	if config.TokenDuration <= 0 {
		config.TokenDuration = 24 * time.Hour
	}
	a := &Auth{config: config, logger: logger}
	if config.AdminKey != "" {
		hash, err := model.HashKey(config.AdminKey)
		if err != nil {
			return nil, NewError(ErrConfig, "failed to hash admin key", err)
		}
		a.keyHash = hash
	} else {
		logger.Warn("Admin key not set, admin login is disabled")
	}
	return a, nil
}

// GenerateToken 生成JWT令牌
func (a *Auth) GenerateToken(username, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.SecretKey))
}

// ValidateToken 验证JWT令牌
func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	})
	if err != nil {
		return nil, NewError(ErrAuthentication, "invalid token", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, NewError(ErrAuthentication, "invalid token", errors.New("token claims rejected"))
}

// Login 管理员登录，密钥正确时签发管理员令牌
func (a *Auth) Login(key string) (string, error) {
	if a.keyHash == "" || !model.CheckKey(a.keyHash, key) {
		a.logger.Warn("Rejected admin login")
		return "", NewError(ErrAuthentication, "invalid admin key", nil)
	}
	return a.GenerateToken(model.RoleAdmin, model.RoleAdmin)
}

// RefreshToken 刷新令牌
func (a *Auth) RefreshToken(tokenString string) (string, error) {
	claims, err := a.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	return a.GenerateToken(claims.Username, claims.Role)
}
