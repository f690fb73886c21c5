package auth

import "context"

// Identity 是挂在请求上下文里的已认证身份。
type Identity struct {
	UserID string
	Role   string
}

// identityKey 未导出：只有本包的 WithIdentity/GetIdentity 能读写，
// 其它包拿不到键就伪造不了身份。
type identityKey struct{}

// WithIdentity 把身份写进上下文（认证中间件在校验通过后调用）。
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// GetIdentity 取出请求身份；未认证的请求返回 false。
func GetIdentity(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey{})
	id, ok := v.(Identity)
	return id, ok
}
