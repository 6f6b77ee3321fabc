// Package main is the entry point for valkey-bench.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"valkey-bench/internal/config"
	"valkey-bench/internal/logger"
	"valkey-bench/internal/session"
)

var (
	version = "dev"
)

func main() {
	fmt.Printf("valkey-bench %s - Valkey Cluster Benchmark\n", version)
	fmt.Println("==========================================")

	// 設定はコンパイル時デフォルト + 固定パスのYAML（存在時のみ）
	cfg, err := config.Load()
	if err != nil {
		logger.Error("", "Config error: %v", err)
		os.Exit(1)
	}

	fmt.Printf("Seeds: %v\n", cfg.SeedAddrs)
	fmt.Printf("Ops: %d single / %d pipelined (batch %d)\n", cfg.SmallOps, cfg.MediumOps, cfg.BatchSize)
	fmt.Printf("Large object: %dMB in %d chunks\n", cfg.PayloadMB, cfg.Chunks)
	fmt.Println("==========================================")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nInterrupt received, stopping benchmark...")
		cancel()
	}()

	logger.Info("", "Starting Valkey cluster benchmarks...")

	runner := session.NewRunner(cfg)
	result, err := runner.Run(ctx)
	if err != nil {
		// 接続確立の期限超過だけが実行を中断する
		logger.Error("", "Benchmark failed: %v", err)
		os.Exit(1)
	}

	fmt.Println(result.Report())
	logger.Info("", "All benchmark results saved to '%s/' directory", cfg.OutputDir)
}
