package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClusterConfig はクラスタクライアントの構築設定
type ClusterConfig struct {
	Addrs           []string      // シードノードのアドレス
	PoolSize        int           // コネクションプールサイズ
	SocketTimeout   time.Duration // 読み書きのタイムアウト
	ConnMaxIdleTime time.Duration // アイドル接続の保持時間
}

// Cluster はgo-redisのClusterClientをStoreとして包む
type Cluster struct {
	rdb *redis.ClusterClient
}

// Open はシードノードに対してクラスタクライアントを構築する
// 構築時点ではスロットカバレッジを要求しない（ヘルスチェックは呼び出し側の責務）
func Open(cfg ClusterConfig) *Cluster {
	rdb := redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:           cfg.Addrs,
		PoolSize:        cfg.PoolSize,
		DialTimeout:     cfg.SocketTimeout,
		ReadTimeout:     cfg.SocketTimeout,
		WriteTimeout:    cfg.SocketTimeout,
		PoolTimeout:     cfg.SocketTimeout,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	})
	return &Cluster{rdb: rdb}
}

// Set はTTL付きでキーを書き込む
func (c *Cluster) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Get はキーの値を読み出す。存在しない場合は found=false
func (c *Cluster) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Scan はカーソルベースでキーを列挙する
// クラスタクライアントはカーソル上位ビットでノードを跨いで走査する
func (c *Cluster) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	keys, next, err := c.rdb.Scan(ctx, cursor, match, count).Result()
	if err != nil {
		return nil, 0, err
	}
	return keys, next, nil
}

// Del はキーを削除する
func (c *Cluster) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Pipeline は新しいパイプラインを返す
func (c *Cluster) Pipeline() Pipeline {
	return &clusterPipeline{pipe: c.rdb.Pipeline()}
}

// ClusterInfo はCLUSTER INFO応答からヘルススナップショットを取り出す
func (c *Cluster) ClusterInfo(ctx context.Context) (ClusterHealth, error) {
	raw, err := c.rdb.ClusterInfo(ctx).Result()
	if err != nil {
		return ClusterHealth{}, err
	}
	return parseClusterInfo(raw)
}

// Close はクライアントを閉じる
func (c *Cluster) Close() error {
	return c.rdb.Close()
}

// parseClusterInfo はCLUSTER INFOのテキスト応答を解析する
func parseClusterInfo(raw string) (ClusterHealth, error) {
	var health ClusterHealth

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		switch name {
		case "cluster_state":
			health.State = value
		case "cluster_slots_assigned":
			slots, err := strconv.Atoi(value)
			if err != nil {
				return health, fmt.Errorf("invalid cluster_slots_assigned %q: %w", value, err)
			}
			health.SlotsAssigned = slots
		}
	}

	if health.State == "" {
		return health, fmt.Errorf("cluster_state missing from CLUSTER INFO reply")
	}
	return health, nil
}

// clusterPipeline はredis.PipelinerをPipelineとして包む
type clusterPipeline struct {
	pipe redis.Pipeliner
	ops  []func(ctx context.Context)
}

func (p *clusterPipeline) Set(key, value string, ttl time.Duration) {
	p.ops = append(p.ops, func(ctx context.Context) {
		p.pipe.Set(ctx, key, value, ttl)
	})
}

func (p *clusterPipeline) Get(key string) {
	p.ops = append(p.ops, func(ctx context.Context) {
		p.pipe.Get(ctx, key)
	})
}

func (p *clusterPipeline) Del(key string) {
	p.ops = append(p.ops, func(ctx context.Context) {
		p.pipe.Del(ctx, key)
	})
}

// Exec はキューイングした操作を1往復で実行する
// GETの空振りはエラーではなくMissingとして返す
func (p *clusterPipeline) Exec(ctx context.Context) ([]Reply, error) {
	for _, op := range p.ops {
		op(ctx)
	}
	p.ops = nil

	cmds, err := p.pipe.Exec(ctx)
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	replies := make([]Reply, 0, len(cmds))
	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case *redis.StringCmd:
			value, err := c.Result()
			switch {
			case errors.Is(err, redis.Nil):
				replies = append(replies, Reply{Missing: true})
			case err != nil:
				replies = append(replies, Reply{Err: err})
			default:
				replies = append(replies, Reply{Value: value})
			}
		default:
			if cmdErr := cmd.Err(); cmdErr != nil && !errors.Is(cmdErr, redis.Nil) {
				replies = append(replies, Reply{Err: cmdErr})
			} else {
				replies = append(replies, Reply{})
			}
		}
	}
	return replies, nil
}
