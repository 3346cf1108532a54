package password

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

// Scheme 密码哈希方案
type Scheme string

const (
	SchemeBcrypt Scheme = "bcrypt"
	SchemePBKDF2 Scheme = "pbkdf2"
)

const (
	// bcryptMaxBytes bcrypt 只使用前72字节
	bcryptMaxBytes = 72
	// DefaultIterations pbkdf2 默认迭代次数
	DefaultIterations = 100000
	pbkdf2KeyLen      = 32
)

// Hasher 密码哈希器
// 方案在启动时选定一次；Verify 按存量哈希的格式选择校验方式，永不返回错误
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	Scheme() Scheme
}

// Options 创建 Hasher 的参数
type Options struct {
	Scheme     Scheme
	Cost       int    // bcrypt cost
	Secret     string // pbkdf2 盐（服务端密钥）
	Iterations int    // pbkdf2 迭代次数
	// OnForeignScheme 非当前方案的哈希校验通过时回调（用于告警）
	OnForeignScheme func(Scheme)
}

// New 根据配置创建 Hasher
func New(opts Options) (Hasher, error) {
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}
	switch opts.Scheme {
	case "", SchemeBcrypt:
		if opts.Cost < bcrypt.MinCost || opts.Cost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range", opts.Cost)
		}
		opts.Scheme = SchemeBcrypt
	case SchemePBKDF2:
		if opts.Secret == "" {
			return nil, errors.New("pbkdf2 scheme requires a secret")
		}
	default:
		return nil, fmt.Errorf("unknown password scheme %q", opts.Scheme)
	}
	return &hasher{opts: opts}, nil
}

type hasher struct {
	opts Options
}

func (h *hasher) Scheme() Scheme { return h.opts.Scheme }

// Hash 生成密码哈希
func (h *hasher) Hash(plain string) (string, error) {
	switch h.opts.Scheme {
	case SchemePBKDF2:
		return h.pbkdf2Hash(plain), nil
	default:
		bytes, err := bcrypt.GenerateFromPassword(truncate(plain), h.opts.Cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hash failed: %w", err)
		}
		return string(bytes), nil
	}
}

// Verify 校验密码
func (h *hasher) Verify(plain, hash string) bool {
	scheme, ok := Detect(hash)
	if !ok {
		return false
	}
	var matched bool
	switch scheme {
	case SchemeBcrypt:
		matched = bcrypt.CompareHashAndPassword([]byte(hash), truncate(plain)) == nil
	case SchemePBKDF2:
		if h.opts.Secret == "" {
			return false
		}
		matched = hmac.Equal([]byte(h.pbkdf2Hash(plain)), []byte(strings.ToLower(hash)))
	}
	if matched && scheme != h.opts.Scheme && h.opts.OnForeignScheme != nil {
		h.opts.OnForeignScheme(scheme)
	}
	return matched
}

func (h *hasher) pbkdf2Hash(plain string) string {
	key := pbkdf2.Key([]byte(plain), []byte(h.opts.Secret), h.opts.Iterations, pbkdf2KeyLen, sha256.New)
	return hex.EncodeToString(key)
}

// Detect 根据存量哈希的格式判断其方案
func Detect(hash string) (Scheme, bool) {
	switch {
	case strings.HasPrefix(hash, "$2a$"), strings.HasPrefix(hash, "$2b$"), strings.HasPrefix(hash, "$2y$"):
		return SchemeBcrypt, true
	case len(hash) == pbkdf2KeyLen*2 && isHex(hash):
		return SchemePBKDF2, true
	default:
		return "", false
	}
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}

// truncate 超过72字节的密码按rune边界截断
func truncate(plain string) []byte {
	b := []byte(plain)
	if len(b) <= bcryptMaxBytes {
		return b
	}
	b = b[:bcryptMaxBytes]
	for len(b) > 0 && !utf8.Valid(b) {
		b = b[:len(b)-1]
	}
	return b
}
