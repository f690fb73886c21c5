package shortlink

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// NormalizeURL 校验并规范化用户输入的长链接。
//
// 规则：
// - 必须能解析为绝对 URL
// - scheme 必须是 http/https
// - host 不能为空
//
// 设计原因（为什么放在领域层）：
// - 指纹必须基于规范化后的 URL 计算，否则同一链接会产生多条记录
// - HTTP handler、engine、repo 各写一遍规则会很快失控
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidURL
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", ErrInvalidURL
	}
	return u.String(), nil
}

// Fingerprint 返回规范化 URL 的 SHA-256 十六进制摘要（64 字符）。
//
// 必须跨进程、跨平台稳定：不加盐、不依赖任何进程内状态，
// 字节相同的输入永远得到相同的输出（去重查找依赖这一点）。
func Fingerprint(normalizedURL string) string {
	sum := sha256.Sum256([]byte(normalizedURL))
	return hex.EncodeToString(sum[:])
}
