package bench

import (
	"fmt"
	"math/rand"
	"strings"

	"valkey-bench/internal/logger"
)

// GeneratePayload は指定サイズ（MB）の合成ペイロードを生成する
// 圧縮が効きすぎないよう乱数入りのブロックパターンを繰り返す
func GeneratePayload(sizeMB int) string {
	logger.Info("bench", "Generating a %dMB test object...", sizeMB)

	sizeBytes := sizeMB * 1024 * 1024

	var b strings.Builder
	for i := 0; i < 1000; i++ {
		fmt.Fprintf(&b, "data-block-%d-%d-", i, 1000+rand.Intn(9000))
	}
	base := b.String()

	repeats := sizeBytes/len(base) + 1
	payload := strings.Repeat(base, repeats)[:sizeBytes]

	logger.Info("bench", "Generated object of size: %.2fMB", float64(len(payload))/1024/1024)
	return payload
}
