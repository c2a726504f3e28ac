// Package auth 负责签发和校验HS256身份令牌
// 令牌的 sub 声明即用户身份标识
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer 令牌签发方
const Issuer = "pdftoolkit"

// Claims 令牌声明，只使用标准字段
type Claims struct {
	jwt.RegisteredClaims
}

// Principal 返回用户身份
func (c *Claims) Principal() string {
	return c.Subject
}

// GenerateToken 为指定身份签发令牌
func GenerateToken(principal string, secretKey []byte, ttl time.Duration) (string, error) {
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return "", fmt.Errorf("principal must not be empty")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(secretKey)
}

// ParseToken 校验签名和有效期，返回令牌中的身份
func ParseToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Principal() == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Principal(), nil
}
