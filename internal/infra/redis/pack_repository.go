package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"drone-assembly-service/internal/content"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PackLoader fetches lesson-pack content from a backing store.
type PackLoader interface {
	LoadPack(ctx context.Context, packID string) (content.Pack, error)
}

// PackRepository caches lesson packs in Redis (one JSON blob per pack, key
// lesson:pack:{packID}) and falls back to a loader on cache miss.
type PackRepository struct {
	client *redis.Client
	loader PackLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewPackRepository(client *redis.Client, loader PackLoader, ttl time.Duration) *PackRepository {
	return &PackRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PackRepository) GetPack(ctx context.Context, packID string) (content.Pack, error) {
	key := r.key(packID)

	if blob, err := r.client.Get(ctx, key).Bytes(); err == nil {
		if pack, ok := decodePack(blob); ok {
			return pack, nil
		}
	}

	result, err, _ := r.sf.Do(packID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if blob, err := r.client.Get(ctx, key).Bytes(); err == nil {
			if pack, ok := decodePack(blob); ok {
				return pack, nil
			}
		}

		pack, err := r.loader.LoadPack(ctx, packID)
		if err != nil {
			return content.Pack{}, err
		}

		if blob, err := json.Marshal(pack); err == nil {
			_ = r.client.Set(ctx, key, blob, r.ttlWithJitter()).Err()
		}
		return pack, nil
	})
	if err != nil {
		return content.Pack{}, err
	}
	return result.(content.Pack), nil
}

func decodePack(blob []byte) (content.Pack, bool) {
	var pack content.Pack
	if err := json.Unmarshal(blob, &pack); err != nil {
		return content.Pack{}, false
	}
	if err := pack.Validate(); err != nil {
		// A stale or truncated cache entry falls through to the loader.
		return content.Pack{}, false
	}
	return pack, true
}

func (r *PackRepository) key(packID string) string {
	return "lesson:pack:" + packID
}

func (r *PackRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
