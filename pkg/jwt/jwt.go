package jwt

import (
	"errors"
	"fmt"
	"time"

	"paperly/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// JWTService 提供 JWT 生成与校验能力
// 对称密钥，算法由配置决定（HS256/HS384/HS512）
// Subject 存放用户名，其他非敏感信息可放入 Data
// 令牌无服务端状态，不支持吊销

type JWTService struct {
	secretKey   []byte              // 对称密钥
	method      jwtv5.SigningMethod // 签名算法
	issuer      string              // 签发者
	expireAfter time.Duration       // 默认过期时间
	now         func() time.Time
}

// CustomClaims 自定义声明载荷
// Data 用于扩展非敏感业务字段

type CustomClaims struct {
	Data map[string]interface{} `json:"data,omitempty"`
	jwtv5.RegisteredClaims
}

// NewJWTService 创建 JWT 服务
func NewJWTService(cfg config.JWTConfig) (*JWTService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwtv5.SigningMethodHS256.Alg()
	}
	method, ok := jwtv5.GetSigningMethod(alg).(*jwtv5.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", alg)
	}
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		method:      method,
		issuer:      cfg.Issuer,
		expireAfter: cfg.ExpireTime,
		now:         time.Now,
	}, nil
}

// ExpireAfter 默认有效期
func (s *JWTService) ExpireAfter() time.Duration {
	return s.expireAfter
}

// GenerateToken 使用默认有效期生成访问令牌
func (s *JWTService) GenerateToken(subject string, extraData map[string]interface{}) (string, error) {
	return s.GenerateTokenWithTTL(subject, extraData, s.expireAfter)
}

// GenerateTokenWithTTL 生成访问令牌，过期时间为 now + ttl
// subject 作为 Subject 存入标准声明
// extraData 将写入 Data 字段（仅存放非敏感信息）
func (s *JWTService) GenerateTokenWithTTL(subject string, extraData map[string]interface{}, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}

	now := s.now()
	claims := &CustomClaims{
		Data: extraData,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwtv5.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token failed: %w", err)
	}
	return signed, nil
}

// ValidateToken 校验并解析令牌
// 返回解析出的自定义声明（包含 Subject 和 Data）
func (s *JWTService) ValidateToken(tokenString string) (*CustomClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token is empty")
	}
	claims := &CustomClaims{}
	parsedToken, err := jwtv5.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwtv5.Token) (interface{}, error) {
			// 只接受配置的算法，防止算法替换
			if token.Method.Alg() != s.method.Alg() {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}
	if !parsedToken.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// VerifySubject 校验令牌并返回 Subject
// 任何失败都返回 ("", false)，调用方视为未认证
func (s *JWTService) VerifySubject(tokenString string) (string, bool) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}
