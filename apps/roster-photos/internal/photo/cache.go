package photo

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/pkg/apperr"
	"github.com/sfu/roster-photos-lti/pkg/model"
	"github.com/sfu/roster-photos-lti/pkg/valkey"
)

// KeyPrefixPhoto は写真キャッシュ用のValkeyキープレフィックス
const KeyPrefixPhoto = "photo:"

// Cache は写真レコードのキャッシュを定義する。
// 写真が存在しないことはキャッシュしない。
type Cache interface {
	GetMany(ctx context.Context, width int, ids []string) (map[string]*model.PhotoRecord, error)
	SetMany(ctx context.Context, width int, records []*model.PhotoRecord) error
}

// redisCache はCacheのValkey実装。
type redisCache struct {
	client *redis.Client
}

// NewCache は新しいCacheを生成する。
func NewCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

// CacheKey は写真キャッシュのキーを返す。幅ごとに別の画像を保持する。
func CacheKey(width int, id string) string {
	return KeyPrefixPhoto + strconv.Itoa(width) + ":" + id
}

// GetMany はMGETで複数の写真を取得する。見つかったものだけをマップで返す。
func (c *redisCache) GetMany(ctx context.Context, width int, ids []string) (map[string]*model.PhotoRecord, error) {
	found := make(map[string]*model.PhotoRecord)
	if len(ids) == 0 {
		return found, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = CacheKey(width, id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, apperr.NewValkeyError("MGET", keys[0], err)
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec model.PhotoRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			slog.Warn("discarding corrupted photo cache entry",
				"event_id", "PHOTO_CACHE_CORRUPT",
				"key", keys[i],
				"error", err.Error(),
			)
			continue
		}
		found[ids[i]] = &rec
	}
	return found, nil
}

// SetMany はパイプラインで写真を保存する。
func (c *redisCache) SetMany(ctx context.Context, width int, records []*model.PhotoRecord) error {
	pipe := c.client.Pipeline()
	n := 0
	for _, rec := range records {
		if rec == nil || rec.SfuID == "" {
			continue
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		pipe.Set(ctx, CacheKey(width, rec.SfuID), data, config.PhotoCacheTTL)
		n++
	}
	if n == 0 {
		return nil
	}
	if _, err := pipe.Exec(ctx); err != nil && !valkey.IsKeyNotFound(err) {
		return apperr.NewValkeyError("SET", KeyPrefixPhoto+strconv.Itoa(width), err)
	}
	return nil
}
