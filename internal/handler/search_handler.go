package handler

import (
	"context"
	"encoding/json"

	"paperly/internal/service"
	"paperly/pkg/jwt"
	"paperly/pkg/response"

	"github.com/gin-gonic/gin"
)

// SearchHandler 搜索处理器
type SearchHandler struct {
	search *service.SearchService
	users  *service.UserService
}

func NewSearchHandler(search *service.SearchService, users *service.UserService) *SearchHandler {
	return &SearchHandler{search: search, users: users}
}

type searchFn func(ctx context.Context, query string, limit, offset int, userID *uint) (json.RawMessage, error)

// Papers 按标题搜索
func (h *SearchHandler) Papers(c *gin.Context) {
	h.run(c, h.search.SearchPapers)
}

// Authors 按作者搜索
func (h *SearchHandler) Authors(c *gin.Context) {
	h.run(c, h.search.SearchAuthors)
}

func (h *SearchHandler) run(c *gin.Context, fn searchFn) {
	q, ok := searchTerm(c, c.Query("q"))
	if !ok {
		return
	}
	offset, limit, ok := pageParams(c, "offset")
	if !ok {
		return
	}
	userID := h.users.ResolveUserID(c.Request.Context(), jwt.GetUsername(c))

	payload, err := fn(c.Request.Context(), q, limit, offset, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, payload)
}

// Suggestions 搜索建议
func (h *SearchHandler) Suggestions(c *gin.Context) {
	response.Success(c, h.search.Suggestions(c.Query("q")))
}

// ClearCache 清空搜索缓存（需要JWT认证）
func (h *SearchHandler) ClearCache(c *gin.Context) {
	if err := h.search.ClearCache(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "search cache cleared", nil)
}
