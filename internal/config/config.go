package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFilePath は設定ファイルの固定パス
// 存在する場合のみ読み込まれる（CLIフラグは持たない）
const DefaultFilePath = "valkey-bench.yaml"

// Config はベンチマーク実行の全設定
type Config struct {
	// クラスタ接続設定
	SeedAddrs           []string      // シードノードのアドレス
	PoolSize            int           // コネクションプールサイズ
	SocketTimeout       time.Duration // ソケットタイムアウト
	HealthCheckInterval time.Duration // アイドル接続のヘルスチェック間隔

	// 接続リトライ設定
	RetryInitialBackoff time.Duration // 初回バックオフ
	RetryMaxBackoff     time.Duration // バックオフ上限
	RetryDeadline       time.Duration // 初回試行からの総期限

	// ワークロード設定
	SmallOps     int           // 単発操作の回数
	MediumOps    int           // パイプライン操作の回数
	BatchSize    int           // パイプラインのバッチサイズ
	PayloadMB    int           // ラージオブジェクトのサイズ（MB）
	Chunks       int           // ラージオブジェクトの分割数
	KeyPrefix    string        // テストキーの予約プレフィックス
	KeyTTL       time.Duration // 書き込むキーのTTL
	ShowProgress bool          // プログレスバー表示

	// 出力設定
	OutputDir string // 結果の出力ディレクトリ
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() Config {
	addrs := make([]string, 0, 6)
	for port := 6000; port < 6006; port++ {
		addrs = append(addrs, fmt.Sprintf("127.0.0.1:%d", port))
	}

	return Config{
		SeedAddrs:           addrs,
		PoolSize:            100,
		SocketTimeout:       5 * time.Second,
		HealthCheckInterval: 15 * time.Second,
		RetryInitialBackoff: 1 * time.Second,
		RetryMaxBackoff:     10 * time.Second,
		RetryDeadline:       30 * time.Second,
		SmallOps:            1000,
		MediumOps:           5000,
		BatchSize:           100,
		PayloadMB:           50,
		Chunks:              5,
		KeyPrefix:           "benchmark:test:",
		KeyTTL:              5 * time.Minute,
		ShowProgress:        true,
		OutputDir:           "benchmarks",
	}
}

// FileConfig は設定ファイルの構造
type FileConfig struct {
	Cluster   ClusterConfig   `yaml:"cluster"`
	Retry     RetryConfig     `yaml:"retry"`
	Benchmark BenchmarkConfig `yaml:"benchmark"`
	Output    OutputConfig    `yaml:"output"`
}

// ClusterConfig はクラスタ接続設定
type ClusterConfig struct {
	SeedAddrs           []string `yaml:"seed_addrs"`
	PoolSize            int      `yaml:"pool_size"`
	SocketTimeout       string   `yaml:"socket_timeout"`
	HealthCheckInterval string   `yaml:"health_check_interval"`
}

// RetryConfig は接続リトライ設定
type RetryConfig struct {
	InitialBackoff string `yaml:"initial_backoff"`
	MaxBackoff     string `yaml:"max_backoff"`
	Deadline       string `yaml:"deadline"`
}

// BenchmarkConfig はワークロード設定
type BenchmarkConfig struct {
	SmallOps     int    `yaml:"small_ops"`
	MediumOps    int    `yaml:"medium_ops"`
	BatchSize    int    `yaml:"batch_size"`
	PayloadMB    int    `yaml:"payload_mb"`
	Chunks       int    `yaml:"chunks"`
	KeyPrefix    string `yaml:"key_prefix"`
	KeyTTL       string `yaml:"key_ttl"`
	ShowProgress *bool  `yaml:"show_progress"`
}

// OutputConfig は出力設定
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LoadFile は設定ファイルを読み込む
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &config, nil
}

// Load はデフォルト設定を返し、固定パスの設定ファイルが存在すれば上書きする
func Load() (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(DefaultFilePath); err != nil {
		return cfg, nil
	}

	fileConfig, err := LoadFile(DefaultFilePath)
	if err != nil {
		return cfg, err
	}
	cfg, err = fileConfig.Apply(cfg)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Apply はファイル設定をベース設定に上書き適用する
func (f *FileConfig) Apply(base Config) (Config, error) {
	cfg := base

	if len(f.Cluster.SeedAddrs) > 0 {
		cfg.SeedAddrs = f.Cluster.SeedAddrs
	}
	if f.Cluster.PoolSize > 0 {
		cfg.PoolSize = f.Cluster.PoolSize
	}
	if f.Cluster.SocketTimeout != "" {
		d, err := time.ParseDuration(f.Cluster.SocketTimeout)
		if err != nil {
			return cfg, fmt.Errorf("invalid socket_timeout: %w", err)
		}
		cfg.SocketTimeout = d
	}
	if f.Cluster.HealthCheckInterval != "" {
		d, err := time.ParseDuration(f.Cluster.HealthCheckInterval)
		if err != nil {
			return cfg, fmt.Errorf("invalid health_check_interval: %w", err)
		}
		cfg.HealthCheckInterval = d
	}

	if f.Retry.InitialBackoff != "" {
		d, err := time.ParseDuration(f.Retry.InitialBackoff)
		if err != nil {
			return cfg, fmt.Errorf("invalid initial_backoff: %w", err)
		}
		cfg.RetryInitialBackoff = d
	}
	if f.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(f.Retry.MaxBackoff)
		if err != nil {
			return cfg, fmt.Errorf("invalid max_backoff: %w", err)
		}
		cfg.RetryMaxBackoff = d
	}
	if f.Retry.Deadline != "" {
		d, err := time.ParseDuration(f.Retry.Deadline)
		if err != nil {
			return cfg, fmt.Errorf("invalid deadline: %w", err)
		}
		cfg.RetryDeadline = d
	}

	if f.Benchmark.SmallOps > 0 {
		cfg.SmallOps = f.Benchmark.SmallOps
	}
	if f.Benchmark.MediumOps > 0 {
		cfg.MediumOps = f.Benchmark.MediumOps
	}
	if f.Benchmark.BatchSize > 0 {
		cfg.BatchSize = f.Benchmark.BatchSize
	}
	if f.Benchmark.PayloadMB > 0 {
		cfg.PayloadMB = f.Benchmark.PayloadMB
	}
	if f.Benchmark.Chunks > 0 {
		cfg.Chunks = f.Benchmark.Chunks
	}
	if f.Benchmark.KeyPrefix != "" {
		cfg.KeyPrefix = f.Benchmark.KeyPrefix
	}
	if f.Benchmark.KeyTTL != "" {
		d, err := time.ParseDuration(f.Benchmark.KeyTTL)
		if err != nil {
			return cfg, fmt.Errorf("invalid key_ttl: %w", err)
		}
		cfg.KeyTTL = d
	}
	if f.Benchmark.ShowProgress != nil {
		cfg.ShowProgress = *f.Benchmark.ShowProgress
	}

	if f.Output.Dir != "" {
		cfg.OutputDir = f.Output.Dir
	}

	return cfg, nil
}

// Validate は設定を検証する
func (c Config) Validate() error {
	if len(c.SeedAddrs) == 0 {
		return fmt.Errorf("seed_addrs must not be empty")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive")
	}
	if c.SmallOps <= 0 || c.MediumOps <= 0 {
		return fmt.Errorf("operation counts must be positive")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.PayloadMB <= 0 {
		return fmt.Errorf("payload_mb must be positive")
	}
	if c.Chunks <= 0 {
		return fmt.Errorf("chunks must be positive")
	}
	if c.KeyPrefix == "" {
		return fmt.Errorf("key_prefix must not be empty")
	}
	if c.RetryDeadline <= 0 {
		return fmt.Errorf("retry deadline must be positive")
	}
	if c.RetryInitialBackoff <= 0 || c.RetryMaxBackoff < c.RetryInitialBackoff {
		return fmt.Errorf("invalid retry backoff bounds")
	}
	return nil
}
