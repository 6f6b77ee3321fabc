package session

import (
	"context"

	"valkey-bench/internal/logger"
	"valkey-bench/internal/store"
)

// cleanupPageSize はSCAN1ページあたりのキー数
const cleanupPageSize = 1000

// Cleanup は予約プレフィックス配下の全キーを削除して削除数を返す
//
// 主戦略はSCANページごとのパイプライン一括削除。主戦略が失敗した場合のみ
// 代替戦略（全キーを列挙してから1件ずつ削除）に切り替える。
// クリーンアップはベストエフォートであり、この境界からエラーは漏れない。
// 代替戦略も失敗した場合はログに記録し、それまでの削除数を返す
func Cleanup(ctx context.Context, st store.Store, prefix string) int {
	logger.Info("cleanup", "Cleaning up test keys...")

	deleted, err := cleanupPipelined(ctx, st, prefix)
	if err == nil {
		logger.Info("cleanup", "Cleanup complete. Deleted %d keys.", deleted)
		return deleted
	}

	logger.Error("cleanup", "Error during cleanup: %v", err)
	logger.Info("cleanup", "Attempting alternative cleanup method...")

	more, err := cleanupIndividual(ctx, st, prefix)
	deleted += more
	if err != nil {
		logger.Error("cleanup", "Alternative cleanup also failed: %v", err)
		return deleted
	}

	logger.Info("cleanup", "Alternative cleanup complete. Deleted %d keys.", deleted)
	return deleted
}

// cleanupPipelined はSCANページごとに1往復のパイプラインDELを発行する
// カーソルが番兵値0に戻ったら走査完了
func cleanupPipelined(ctx context.Context, st store.Store, prefix string) (int, error) {
	match := prefix + "*"
	var cursor uint64
	deleted := 0

	for {
		keys, next, err := st.Scan(ctx, cursor, match, cleanupPageSize)
		if err != nil {
			return deleted, err
		}

		if len(keys) > 0 {
			pipe := st.Pipeline()
			for _, key := range keys {
				pipe.Del(key)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}

		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}

// cleanupIndividual は全キーを先に列挙してから1件ずつ削除する
// スループットと引き換えにバッチ部分失敗への耐性を得る
func cleanupIndividual(ctx context.Context, st store.Store, prefix string) (int, error) {
	match := prefix + "*"
	var all []string
	var cursor uint64

	for {
		keys, next, err := st.Scan(ctx, cursor, match, cleanupPageSize)
		if err != nil {
			return 0, err
		}
		all = append(all, keys...)
		if next == 0 {
			break
		}
		cursor = next
	}

	deleted := 0
	for _, key := range all {
		if err := st.Del(ctx, key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
