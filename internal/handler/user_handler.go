package handler

import (
	"paperly/internal/service"
	"paperly/pkg/jwt"
	"paperly/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

type credentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		FullName string `json:"full_name"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, err := h.service.Register(c.Request.Context(), service.RegisterInput{
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
		Password: r.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, response.FilterUserInfo(user))
}

// Login 表单登录（username/password）
func (h *UserHandler) Login(c *gin.Context) {
	var r credentials
	if err := c.ShouldBindWith(&r, binding.Form); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.login(c, r)
}

// LoginJSON JSON 登录
func (h *UserHandler) LoginJSON(c *gin.Context) {
	var r credentials
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	h.login(c, r)
}

func (h *UserHandler) login(c *gin.Context, r credentials) {
	res, err := h.service.Login(c.Request.Context(), r.Username, r.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "login successful", &response.TokenResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		ExpiresIn:   res.ExpiresIn,
	})
}

// Profile 当前用户资料（需要JWT认证）
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.service.FindByUsername(c.Request.Context(), jwt.GetUsername(c))
	if err != nil {
		// 令牌有效但用户已不存在，按未认证处理
		c.Header("WWW-Authenticate", "Bearer")
		response.Unauthorized(c, "could not validate credentials")
		return
	}
	response.Success(c, response.FilterUserInfo(user))
}

// Verify 校验令牌（需要JWT认证）
func (h *UserHandler) Verify(c *gin.Context) {
	username := jwt.GetUsername(c)
	if _, err := h.service.FindByUsername(c.Request.Context(), username); err != nil {
		c.Header("WWW-Authenticate", "Bearer")
		response.Unauthorized(c, "could not validate credentials")
		return
	}
	response.SuccessWithMessage(c, "token valid for user: "+username, gin.H{"username": username})
}
