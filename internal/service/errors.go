package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")
	// ErrConflict 唯一性冲突
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden 无权操作
	ErrForbidden = errors.New("forbidden")
	// ErrValidation 输入不合法
	ErrValidation = errors.New("validation failed")

	ErrUsernameTaken = fmt.Errorf("%w: username already registered", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrDOITaken      = fmt.Errorf("%w: a paper with this DOI already exists", ErrConflict)
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
