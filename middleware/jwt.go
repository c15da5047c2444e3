package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"fundtrack/config"
	"fundtrack/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextOwnerKey JWTAuth 写入上下文的 owner 键
const ContextOwnerKey = "owner"

// ErrOwnerMismatch 请求的 owner 与 token 不一致
var ErrOwnerMismatch = errors.New("owner does not match token subject")

var jwtSecret []byte

// Claims token 声明，Subject 为 owner
type Claims struct {
	jwt.RegisteredClaims
}

// InitJWT 初始化 JWT 密钥
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.JWT.Secret)
}

// GenerateToken 签发 owner 的访问 token（运维命令行使用）
func GenerateToken(owner string, expire time.Duration) (string, error) {
	owner, err := models.NormalizeOwner(owner)
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   owner,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
			Issuer:    "fundtrack",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ParseToken 解析并校验 token
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// JWTAuth 校验 Bearer token，并把 subject 作为 owner 写入上下文
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "未提供认证信息"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "认证格式错误"})
			c.Abort()
			return
		}

		claims, err := ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "token 无效或已过期"})
			c.Abort()
			return
		}

		owner, err := models.NormalizeOwner(claims.Subject)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": 401, "message": "token 无效或已过期"})
			c.Abort()
			return
		}
		c.Set(ContextOwnerKey, owner)
		c.Next()
	}
}

// GetCurrentOwner 获取 token 中的 owner，未认证时返回空字符串
func GetCurrentOwner(c *gin.Context) string {
	owner, _ := c.Get(ContextOwnerKey)
	if s, ok := owner.(string); ok {
		return s
	}
	return ""
}

// ResolveOwner 确定本次请求操作的 owner
// 已认证时 requested 为空则使用 token 的 owner，不为空则必须与之一致
func ResolveOwner(c *gin.Context, requested string) (string, error) {
	current := GetCurrentOwner(c)
	if current == "" {
		return requested, nil
	}
	if strings.TrimSpace(requested) == "" {
		return current, nil
	}
	owner, err := models.NormalizeOwner(requested)
	if err != nil {
		return "", err
	}
	if owner != current {
		return "", ErrOwnerMismatch
	}
	return owner, nil
}
