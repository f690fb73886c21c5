package shortlink

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"time"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultCodeLength 是随机短码的默认长度（62^6 ≈ 5.6e10 个组合）。
const DefaultCodeLength = 6

// Generator 产生候选短码。
//
// 设计原因：
// - 引擎只依赖接口：测试里可以注入“永远碰撞”的生成器来验证重试上限
// - 生成器只保证高熵（碰撞概率极低），全局唯一性由存储层唯一约束兜底
type Generator interface {
	Generate(length int) string
}

// EntropyGenerator 用 当前时间 + 密码学随机字节 组合出 base62 短码。
//
// 编码方式：毫秒时间戳左移 64 位，再拼上 64 位随机数，整体做 base62 编码，
// 取低位的 length 个符号；不足 length 位时用字母表的零符号 '0' 左填充。
// 纯计算、不阻塞、无 I/O。
type EntropyGenerator struct{}

var base62 = big.NewInt(62)

func (EntropyGenerator) Generate(length int) string {
	if length <= 0 {
		length = DefaultCodeLength
	}

	var rnd [8]byte
	_, _ = rand.Read(rnd[:])

	n := big.NewInt(time.Now().UnixMilli())
	n.Lsh(n, 64)
	n.Or(n, new(big.Int).SetBytes(rnd[:]))

	buf := make([]byte, length)
	i := length
	mod := new(big.Int)
	for n.Sign() > 0 && i > 0 {
		i--
		n.DivMod(n, base62, mod)
		buf[i] = alphabet[mod.Int64()]
	}
	// 左填充零符号，保证输出恰好 length 个字符
	for i > 0 {
		i--
		buf[i] = alphabet[0]
	}
	return string(buf)
}

var codeRe = regexp.MustCompile(`^[0-9A-Za-z]{4,12}$`)

// ValidateCode 校验用户自定义短码：仅字母/数字，长度 4~12。
func ValidateCode(code string) error {
	if !codeRe.MatchString(code) {
		return ErrInvalidCode
	}
	return nil
}
