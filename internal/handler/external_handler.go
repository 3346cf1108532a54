package handler

import (
	"paperly/internal/external"
	"paperly/pkg/response"

	"github.com/gin-gonic/gin"
)

const defaultSourceLimit = 5

// ExternalHandler 外部论文库（模拟）处理器
type ExternalHandler struct {
	mock    *external.Mock
	enabled bool
}

func NewExternalHandler(mock *external.Mock, enabled bool) *ExternalHandler {
	return &ExternalHandler{mock: mock, enabled: enabled}
}

func (h *ExternalHandler) available(c *gin.Context) bool {
	if !h.enabled || h.mock == nil {
		response.ServiceUnavailable(c, "external repository mock is disabled")
		return false
	}
	return true
}

// SearchAll 查询全部来源
func (h *ExternalHandler) SearchAll(c *gin.Context) {
	if !h.available(c) {
		return
	}
	q, ok := searchTerm(c, c.DefaultQuery("q", "machine learning"))
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit_per_source", 3)
	if !ok {
		return
	}
	results, err := h.mock.SearchAll(q, clampLimit(limit))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, results)
}

// Source 返回查询单个来源的处理函数
func (h *ExternalHandler) Source(source external.Source, defaultQuery string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.available(c) {
			return
		}
		q, ok := searchTerm(c, c.DefaultQuery("q", defaultQuery))
		if !ok {
			return
		}
		limit, ok := queryInt(c, "limit", defaultSourceLimit)
		if !ok {
			return
		}
		result, err := h.mock.Search(source, q, clampLimit(limit))
		if err != nil {
			writeError(c, err)
			return
		}
		response.Success(c, result)
	}
}
