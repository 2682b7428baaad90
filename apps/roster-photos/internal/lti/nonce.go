package lti

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefixNonce はnonce記録用のValkeyキープレフィックス
const KeyPrefixNonce = "lti:nonce:"

// NonceStore は使用済みnonceの記録を定義する。
type NonceStore interface {
	// Claim はnonceを記録する。既に記録済みの場合はfalseを返す。
	Claim(ctx context.Context, consumerKey, nonce string, ttl time.Duration) (bool, error)
}

// nonceStore はNonceStoreのValkey実装。
type nonceStore struct {
	client *redis.Client
}

// NewNonceStore は新しいNonceStoreを生成する。
func NewNonceStore(client *redis.Client) NonceStore {
	return &nonceStore{client: client}
}

// Claim はSET NX EXでnonceを記録する。
func (s *nonceStore) Claim(ctx context.Context, consumerKey, nonce string, ttl time.Duration) (bool, error) {
	key := KeyPrefixNonce + consumerKey + ":" + nonce
	ok, err := s.client.SetNX(ctx, key, strconv.FormatInt(time.Now().Unix(), 10), ttl).Result()
	if err != nil {
		return false, &NonceStoreError{Cause: err}
	}
	return ok, nil
}
