package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 是校验通过后交给业务层的身份信息。
// 只暴露业务关心的字段，JWT 的注册声明不外泄。
type Claims struct {
	UserID string
	Role   string
}

// jwtClaims 是 token 里的实际载荷：标准注册声明 + 自定义 role。
type jwtClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService 签发和校验访问令牌。
// 接口化是为了测试时可以换假实现，handler 不依赖具体算法。
type TokenService interface {
	Sign(userID string, role string) (string, error)
	Verify(token string) (Claims, error)
}

// NewHS256Service 创建 HS256 对称签名的 TokenService。
// 三个参数都必填：空密钥/空签发者/非正 TTL 直接拒绝，配置错误要在启动时暴露。
func NewHS256Service(secret, issuer string, ttl time.Duration) (TokenService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if issuer == "" {
		return nil, errors.New("jwt issuer is empty")
	}
	if ttl <= 0 {
		return nil, errors.New("jwt ttl must be > 0")
	}
	return &hs256Service{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}, nil
}
