package jwt

import (
	"strings"

	"paperly/pkg/logger"
	"paperly/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUsernameKey 用户名（Subject）在gin.Context中的键名
	ContextUsernameKey = "username"
	// ContextClaimsKey JWT声明在gin.Context中的键名
	ContextClaimsKey = "jwt_claims"
)

// bearerToken 从 Authorization 头提取 token
func bearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "缺少Authorization请求头"
	}
	const prefix = "Bearer "
	if len(authHeader) < len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", "Authorization格式错误，应为Bearer <token>"
	}
	tokenString := strings.TrimSpace(authHeader[len(prefix):])
	if tokenString == "" {
		return "", "token不能为空"
	}
	return tokenString, ""
}

// AuthMiddleware JWT认证中间件
// 从请求头中提取Authorization: Bearer <token>
// 验证token并将用户信息存入gin.Context
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := bearerToken(c)
		if problem != "" {
			c.Header("WWW-Authenticate", "Bearer")
			response.Unauthorized(c, problem)
			c.Abort()
			return
		}

		claims, err := s.ValidateToken(tokenString)
		if err != nil {
			logger.Warn("JWT验证失败",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			c.Header("WWW-Authenticate", "Bearer")
			response.Unauthorized(c, "could not validate credentials")
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware 可选认证：token 有效则写入用户信息，否则按匿名继续
func (s *JWTService) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, problem := bearerToken(c); problem == "" {
			if claims, err := s.ValidateToken(tokenString); err == nil {
				setClaims(c, claims)
			} else {
				logger.Debug("可选认证token无效，按匿名处理", zap.Error(err))
			}
		}
		c.Next()
	}
}

func setClaims(c *gin.Context, claims *CustomClaims) {
	c.Set(ContextUsernameKey, claims.Subject)
	c.Set(ContextClaimsKey, claims)
}

// GetUsername 从gin.Context中获取用户名，未认证时返回空串
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsernameKey); exists {
		if name, ok := username.(string); ok {
			return name
		}
	}
	return ""
}

// GetClaims 从gin.Context中获取JWT声明
func GetClaims(c *gin.Context) *CustomClaims {
	if claims, exists := c.Get(ContextClaimsKey); exists {
		if c, ok := claims.(*CustomClaims); ok {
			return c
		}
	}
	return nil
}
