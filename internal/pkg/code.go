package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strings"
)

const alphanum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// RandDigits 生成 n 位纯数字验证码（允许前导 0，长度精确为 n）
func RandDigits(n int) (string, error) {
	var b strings.Builder
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + x.Int64()))
	}
	return b.String(), nil
}

// RandAlphanum 生成 n 位数字+大写字母验证码
func RandAlphanum(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(alphanum)))
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphanum[x.Int64()])
	}
	return b.String(), nil
}
