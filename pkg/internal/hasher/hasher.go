// Package hasher 计算文件内容指纹，用于上传去重.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Sum 以流式方式读取 r 并返回小写十六进制 SHA-256 摘要.
// 读取中途失败时返回错误，不返回部分结果.
func Sum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// SumFile 计算本地文件的指纹.
func SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Sum(f)
}
