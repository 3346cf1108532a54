package handler

import (
	"paperly/internal/service"
	"paperly/pkg/jwt"
	"paperly/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaperHandler 论文处理器
type PaperHandler struct {
	papers *service.PaperService
	users  *service.UserService
}

// NewPaperHandler 创建PaperHandler实例
func NewPaperHandler(papers *service.PaperService, users *service.UserService) *PaperHandler {
	return &PaperHandler{papers: papers, users: users}
}

type createPaperRequest struct {
	Title           string   `json:"title" binding:"required"`
	Abstract        *string  `json:"abstract"`
	Authors         []string `json:"authors"`
	PublicationYear *int     `json:"publication_year"`
	DOI             *string  `json:"doi"`
	PDFURL          *string  `json:"pdf_url"`
	Keywords        []string `json:"keywords"`
}

type updatePaperRequest struct {
	Title           *string   `json:"title"`
	Abstract        *string   `json:"abstract"`
	Authors         *[]string `json:"authors"`
	PublicationYear *int      `json:"publication_year"`
	DOI             *string   `json:"doi"`
	PDFURL          *string   `json:"pdf_url"`
	Keywords        *[]string `json:"keywords"`
}

// actorID 当前请求者的用户ID，匿名时为 nil
func (h *PaperHandler) actorID(c *gin.Context) *uint {
	return h.users.ResolveUserID(c.Request.Context(), jwt.GetUsername(c))
}

// List 分页获取论文列表
func (h *PaperHandler) List(c *gin.Context) {
	skip, limit, ok := pageParams(c, "skip")
	if !ok {
		return
	}
	papers, err := h.papers.List(c.Request.Context(), skip, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, papers)
}

// Popular 热门论文
func (h *PaperHandler) Popular(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultLimit)
	if !ok {
		return
	}
	papers, err := h.papers.Popular(c.Request.Context(), clampLimit(limit))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, papers)
}

// Get 获取单篇论文
func (h *PaperHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	paper, err := h.papers.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, paper)
}

// Create 新建论文，登录用户记为创建者
func (h *PaperHandler) Create(c *gin.Context) {
	var r createPaperRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	paper, err := h.papers.Create(c.Request.Context(), service.PaperDraft{
		Title:           r.Title,
		Abstract:        r.Abstract,
		Authors:         r.Authors,
		PublicationYear: r.PublicationYear,
		DOI:             r.DOI,
		PDFURL:          r.PDFURL,
		Keywords:        r.Keywords,
	}, h.actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, paper)
}

// Update 部分更新论文
func (h *PaperHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var r updatePaperRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	paper, err := h.papers.Update(c.Request.Context(), id, service.PaperPatch{
		Title:           r.Title,
		Abstract:        r.Abstract,
		Authors:         r.Authors,
		PublicationYear: r.PublicationYear,
		DOI:             r.DOI,
		PDFURL:          r.PDFURL,
		Keywords:        r.Keywords,
	}, h.actorID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, paper)
}

// Delete 删除论文
func (h *PaperHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.papers.Delete(c.Request.Context(), id, h.actorID(c)); err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "paper deleted successfully", nil)
}
