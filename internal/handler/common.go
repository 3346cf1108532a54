package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"paperly/internal/service"
	"paperly/pkg/logger"
	"paperly/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultLimit = 10
	maxLimit     = 100
	// minQueryLen 搜索词去掉首尾空白后的最小长度
	minQueryLen = 2
)

// writeError 将业务错误映射为HTTP响应
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		response.Unauthorized(c, "incorrect username or password")
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	default:
		logger.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "internal server error", err)
	}
}

// queryInt 读取整数查询参数，缺省时返回 def
func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.BadRequest(c, "invalid integer parameter: "+key)
		return 0, false
	}
	return v, true
}

// pageParams 读取偏移与数量；数量限制在 [1, 100]，偏移不小于 0
func pageParams(c *gin.Context, offsetKey string) (offset, limit int, ok bool) {
	if offset, ok = queryInt(c, offsetKey, 0); !ok {
		return 0, 0, false
	}
	if limit, ok = queryInt(c, "limit", defaultLimit); !ok {
		return 0, 0, false
	}
	return clampOffset(offset), clampLimit(limit), true
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// searchTerm 校验搜索词
func searchTerm(c *gin.Context, raw string) (string, bool) {
	q := strings.TrimSpace(raw)
	if len([]rune(q)) < minQueryLen {
		response.BadRequest(c, "search term must be at least 2 characters")
		return "", false
	}
	return q, true
}

// pathID 解析路径中的数字ID
func pathID(c *gin.Context, key string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+key)
		return 0, false
	}
	return uint(id), true
}
