package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"paperly/internal/model"
	"paperly/internal/repository"
	"paperly/pkg/jwt"
	"paperly/pkg/password"
)

type UserService struct {
	repo       *repository.UserRepository
	hasher     password.Hasher
	jwtService *jwt.JWTService
}

func NewUserService(repo *repository.UserRepository, hasher password.Hasher, jwtService *jwt.JWTService) *UserService {
	return &UserService{repo: repo, hasher: hasher, jwtService: jwtService}
}

// RegisterInput 注册参数
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// LoginResult 登录结果
type LoginResult struct {
	User      *model.User
	Token     string
	ExpiresIn int64 // 秒
}

// FindByUsername 不存在时返回 ErrNotFound
func (s *UserService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.find(s.repo.GetByUsername(ctx, username))
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.find(s.repo.GetByEmail(ctx, email))
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*model.User, error) {
	return s.find(s.repo.GetByID(ctx, id))
}

func (s *UserService) find(u *model.User, err error) (*model.User, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// Register 注册
// 先检查用户名、邮箱是否已占用以给出明确提示；并发注册时以唯一约束为准
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	if _, err := s.FindByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := s.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// 密码哈希
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, s.conflictFor(ctx, in.Username)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// conflictFor 插入冲突后判断是哪个字段被占用
func (s *UserService) conflictFor(ctx context.Context, username string) error {
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

func validateRegistration(in RegisterInput) error {
	switch {
	case in.Username == "":
		return validationError("username is required")
	case utf8.RuneCountInString(in.Username) > 50:
		return validationError("username must be at most 50 characters")
	case in.Password == "":
		return validationError("password is required")
	case utf8.RuneCountInString(in.Email) > 100:
		return validationError("email must be at most 100 characters")
	case utf8.RuneCountInString(in.FullName) > 100:
		return validationError("full name must be at most 100 characters")
	}
	// 只接受裸地址，带显示名的写法会绕过唯一性检查
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Address != in.Email || addr.Name != "" {
		return validationError("invalid email address")
	}
	return nil
}

// Authenticate 校验用户名与密码；用户不存在、已停用或密码错误都返回 ErrInvalidCredentials
func (s *UserService) Authenticate(ctx context.Context, username, plainPassword string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || plainPassword == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := s.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(plainPassword, u.PasswordHash) || !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login 登录并签发访问令牌，Subject 为用户名
func (s *UserService) Login(ctx context.Context, username, plainPassword string) (*LoginResult, error) {
	u, err := s.Authenticate(ctx, username, plainPassword)
	if err != nil {
		return nil, err
	}
	token, err := s.jwtService.GenerateToken(u.Username, map[string]interface{}{"user_id": u.ID})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{
		User:      u,
		Token:     token,
		ExpiresIn: int64(s.jwtService.ExpireAfter().Seconds()),
	}, nil
}

// ResolveUserID 根据令牌中的用户名查找用户ID；匿名或用户不存在时返回 nil
func (s *UserService) ResolveUserID(ctx context.Context, username string) *uint {
	if username == "" {
		return nil
	}
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil
	}
	return &u.ID
}
