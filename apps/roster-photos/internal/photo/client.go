// Package photo は写真ディレクトリサービスから学生の写真を取得する。
package photo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/config"
	"github.com/sfu/roster-photos-lti/apps/roster-photos/internal/upstream"
	"github.com/sfu/roster-photos-lti/pkg/logging"
	"github.com/sfu/roster-photos-lti/pkg/model"
	"github.com/sfu/roster-photos-lti/pkg/valkey"
	"github.com/sony/gobreaker"
)

const serviceName = "photo-directory"

// photoRequest は写真ディレクトリへのリクエストボディ
type photoRequest struct {
	IDs      []string `json:"ids"`
	MaxWidth int      `json:"maxWidth"`
}

// Client は写真ディレクトリクライアント
type Client struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	cache      Cache
	baseURL    string
	username   string
	password   string
	maxBatch   int
	maxWidth   int
}

// NewClient は新しい写真ディレクトリクライアントを生成する。
// cacheがnilの場合はキャッシュを使わない。
func NewClient(cfg *config.Config, cache Cache) *Client {
	return &Client{
		httpClient: upstream.NewHTTPClient(config.PhotoRequestTimeout, cfg.IsProduction()),
		cb:         upstream.NewCircuitBreaker(config.CBNamePhoto),
		cache:      cache,
		baseURL:    strings.TrimRight(cfg.PhotoAPIURL, "/"),
		username:   cfg.PhotoAPIUsername,
		password:   cfg.PhotoAPIPassword,
		maxBatch:   cfg.PhotoMaxBatch,
		maxWidth:   cfg.PhotoMaxWidth,
	}
}

// GetPhotos はidsと同じ長さ・同じ順序で写真レコードを返す。
// 写真が存在しない学生と空のIDの位置はnilになる。
func (c *Client) GetPhotos(ctx context.Context, ids []string) ([]*model.PhotoRecord, error) {
	found := make(map[string]*model.PhotoRecord, len(ids))
	misses := c.lookupCache(ctx, uniqueIDs(ids), found)

	for _, batch := range chunk(misses, c.maxBatch) {
		records, err := c.fetchBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		fetched := make([]*model.PhotoRecord, 0, len(records))
		for i, rec := range records {
			if rec == nil {
				continue
			}
			found[batch[i]] = rec
			fetched = append(fetched, rec)
		}
		c.storeCache(ctx, fetched)
	}

	result := make([]*model.PhotoRecord, len(ids))
	for i, id := range ids {
		result[i] = found[id]
	}
	return result, nil
}

// lookupCache はキャッシュから写真を取得してfoundに追加し、未取得のIDを返す。
// キャッシュ障害時はすべて未取得として扱う。
func (c *Client) lookupCache(ctx context.Context, ids []string, found map[string]*model.PhotoRecord) []string {
	if c.cache == nil || len(ids) == 0 {
		return ids
	}
	cached, err := c.cache.GetMany(ctx, c.maxWidth, ids)
	if err != nil {
		slog.Warn("photo cache unavailable",
			"event_id", "PHOTO_CACHE_ERR",
			"trace_id", logging.TraceIDFromContext(ctx),
			"error", err.Error(),
			"connection_error", valkey.IsConnectionError(err),
		)
		return ids
	}

	misses := make([]string, 0, len(ids))
	for _, id := range ids {
		if rec, ok := cached[id]; ok {
			found[id] = rec
			continue
		}
		misses = append(misses, id)
	}
	slog.Debug("photo cache lookup",
		"trace_id", logging.TraceIDFromContext(ctx),
		"hits", len(ids)-len(misses),
		"misses", len(misses),
	)
	return misses
}

func (c *Client) storeCache(ctx context.Context, records []*model.PhotoRecord) {
	if c.cache == nil || len(records) == 0 {
		return
	}
	if err := c.cache.SetMany(ctx, c.maxWidth, records); err != nil {
		slog.Warn("photo cache write failed",
			"event_id", "PHOTO_CACHE_ERR",
			"trace_id", logging.TraceIDFromContext(ctx),
			"error", err.Error(),
		)
	}
}

// fetchBatch は1バッチ分の写真を取得し、batchと同じ長さで返す。
func (c *Client) fetchBatch(ctx context.Context, batch []string) ([]*model.PhotoRecord, error) {
	traceID := logging.TraceIDFromContext(ctx)
	start := time.Now()

	result, err := c.cb.Execute(func() (any, error) {
		req := c.httpClient.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetBody(photoRequest{IDs: batch, MaxWidth: c.maxWidth})
		if c.username != "" {
			req.SetBasicAuth(c.username, c.password)
		}

		resp, err := req.Post(c.baseURL + "/photos")
		if err != nil {
			return nil, &upstream.ConnectionError{Service: serviceName, Cause: err}
		}

		statusCode := resp.StatusCode()
		if statusCode < 200 || statusCode >= 300 {
			fetchErr := &PhotoFetchError{
				StatusCode: statusCode,
				Message:    upstream.TruncateBody(resp.Body(), 256),
			}
			slog.Error("photo directory error",
				"event_id", "PHOTO_API_ERR",
				logging.WithUpstream(serviceName),
				"trace_id", traceID,
				"error", fetchErr.Error(),
				"http_status", statusCode,
				"batch_size", len(batch),
				"latency_ms", time.Since(start).Milliseconds(),
			)
			if upstream.CountsAsFailure(statusCode) {
				return nil, fetchErr
			}
			return fetchErr, nil
		}

		slog.Debug("photo directory success",
			"trace_id", traceID,
			"batch_size", len(batch),
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return resp.Body(), nil
	})
	if err != nil {
		return nil, upstream.BreakerError(err)
	}

	if fetchErr, ok := result.(*PhotoFetchError); ok {
		return nil, fetchErr
	}
	body, ok := result.([]byte)
	if !ok {
		return nil, ErrInvalidResponse
	}

	var records []*model.PhotoRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %v", ErrInvalidResponse, err)
	}
	return joinByID(batch, records), nil
}

// joinByID は応答レコードを要求IDの位置に対応付ける。
// SfuIdが返された場合はそれで突き合わせ、返されない場合は応答内の位置を使う。
func joinByID(batch []string, records []*model.PhotoRecord) []*model.PhotoRecord {
	out := make([]*model.PhotoRecord, len(batch))
	index := make(map[string]int, len(batch))
	for i, id := range batch {
		index[id] = i
	}

	for i, rec := range records {
		if rec == nil {
			continue
		}
		if rec.SfuID != "" {
			if pos, ok := index[rec.SfuID]; ok {
				out[pos] = rec
			}
			continue
		}
		if i < len(batch) && out[i] == nil {
			r := *rec
			r.SfuID = batch[i]
			out[i] = &r
		}
	}
	return out
}

// uniqueIDs は空文字列と重複を除いたIDを出現順に返す。
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// chunk はidsを最大size件ずつに分割する。
func chunk(ids []string, size int) [][]string {
	if size <= 0 {
		size = len(ids)
	}
	var batches [][]string
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}
