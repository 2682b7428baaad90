package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sfu/roster-photos-lti/pkg/model"
	"github.com/sfu/roster-photos-lti/pkg/valkey"
)

// KeyPrefixSession はセッション保存用のValkeyキープレフィックス
const KeyPrefixSession = "sess:"

// Store はセッションの永続化を定義する。
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
}

// redisStore はStoreのValkey実装。
type redisStore struct {
	client *redis.Client
}

// NewStore は新しいStoreを生成する。
func NewStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

// Load はセッションを取得する。存在しない場合はapperr.ErrSessionNotFoundを返す。
func (s *redisStore) Load(ctx context.Context, id string) (*Session, error) {
	key := KeyPrefixSession + id
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if valkey.IsKeyNotFound(err) {
			return nil, apperr.ErrSessionNotFound
		}
		return nil, apperr.NewValkeyError("GET", key, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrSessionInvalid, err)
	}
	sess.ID = id
	if sess.Launches == nil {
		sess.Launches = make(map[string]model.LaunchPayload)
	}
	return &sess, nil
}

// Save はセッションを保存し、有効期限を延長する。
func (s *redisStore) Save(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("%w: empty session id", apperr.ErrSessionInvalid)
	}
	key := KeyPrefixSession + sess.ID
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session serialization error: %w", err)
	}
	if err := s.client.Set(ctx, key, data, config.SessionTTL).Err(); err != nil {
		return apperr.NewValkeyError("SET", key, err)
	}
	return nil
}
