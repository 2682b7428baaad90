package valkey

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dial はredis:// またはrediss:// 形式のURLに接続する。
// commandTimeoutは読み取りと書き込みの両方に適用する。
func Dial(rawURL string, connectTimeout, commandTimeout time.Duration) (*redis.Client, error) {
	opts, err := FromURL(rawURL)
	if err != nil {
		return nil, err
	}
	opts.WithTimeouts(connectTimeout, commandTimeout, commandTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()
	return NewClient(ctx, opts)
}

// NewClient はValkeyクライアントを生成し、PINGで疎通を確認する。
// optsがnilの場合はDefaultOptionsを使う。
func NewClient(ctx context.Context, opts *Options) (*redis.Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	client := redis.NewClient(opts.redisOptions())
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// IsConnectionError は接続断・タイムアウト・クライアント終了によるエラーかを判定する。
// キー不在やコマンドエラーはfalse。
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsKeyNotFound はキーが存在しないことを示すエラーかを判定する。
func IsKeyNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
