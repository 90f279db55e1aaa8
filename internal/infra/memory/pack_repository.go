package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"drone-assembly-service/internal/content"
	"drone-assembly-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// PackLoader fetches lesson-pack content from a backing store.
type PackLoader interface {
	LoadPack(ctx context.Context, packID string) (content.Pack, error)
}

// PackRepository caches lesson packs with TTL to avoid repeated store hits.
type PackRepository struct {
	loader PackLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedPack
}

type cachedPack struct {
	pack      content.Pack
	expiresAt time.Time
}

func NewPackRepository(loader PackLoader, ttl time.Duration) *PackRepository {
	return &PackRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPack),
	}
}

func (r *PackRepository) GetPack(ctx context.Context, packID string) (content.Pack, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[packID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.pack, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(packID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[packID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.pack, nil
		}
		r.mu.RUnlock()

		pack, err := r.loader.LoadPack(ctx, packID)
		if err != nil {
			return content.Pack{}, err
		}

		r.mu.Lock()
		r.cache[packID] = cachedPack{
			pack:      pack,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return pack, nil
	})
	if err != nil {
		return content.Pack{}, err
	}
	return result.(content.Pack), nil
}

func (r *PackRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPackLoader is a loader backed by an in-memory map (builtin content,
// tests, demos).
type StaticPackLoader struct {
	packs map[string]content.Pack
}

func NewStaticPackLoader(packs ...content.Pack) *StaticPackLoader {
	m := make(map[string]content.Pack, len(packs))
	for _, p := range packs {
		m[p.ID] = p
	}
	return &StaticPackLoader{packs: m}
}

func (l *StaticPackLoader) LoadPack(_ context.Context, packID string) (content.Pack, error) {
	if pack, ok := l.packs[packID]; ok {
		return pack, nil
	}
	return content.Pack{}, domain.ErrPackNotFound
}
