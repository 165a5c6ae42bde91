package provider

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"transcript-rag/internal/app/logging"
)

// Cache stores encoded embeddings by key
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedProvider memoizes single-text embeddings, which is the query path.
// Batch calls go straight to the wrapped provider. Cache failures are logged
// and never fail the call.
type CachedProvider struct {
	inner  EmbeddingProvider
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewCachedProvider wraps inner with cache
func NewCachedProvider(inner EmbeddingProvider, cache Cache, ttl time.Duration, logger logging.Logger) *CachedProvider {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachedProvider{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

// GenerateEmbedding returns the cached vector when present
func (c *CachedProvider) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("embedding cache read failed", "error", err)
	} else if ok {
		if vector, err := decodeVector(raw); err == nil {
			return vector, nil
		}
		c.logger.Warn("discarding corrupt cached embedding", "key", key)
	}

	vector, err := c.inner.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, encodeVector(vector), c.ttl); err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
	return vector, nil
}

// GenerateEmbeddings delegates to the wrapped provider
func (c *CachedProvider) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.GenerateEmbeddings(ctx, texts)
}

// GetProviderInfo delegates to the wrapped provider
func (c *CachedProvider) GetProviderInfo() ProviderInfo {
	return c.inner.GetProviderInfo()
}

func (c *CachedProvider) key(text string) string {
	info := c.inner.GetProviderInfo()
	sum := sha256.Sum256([]byte(text))
	return "emb:" + info.Name + ":" + info.Model + ":" + hex.EncodeToString(sum[:])
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, errors.New("cached embedding has invalid length")
	}
	v := make([]float32, len(raw)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return v, nil
}

// RedisCache implements Cache on a redis client
type RedisCache struct {
	client *redis.Client
}

// NewRedisClient connects to redis
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisCache creates a cache on client
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the value for key, reporting false on a miss
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value under key with ttl; zero ttl keeps it forever
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close closes the underlying client
func (r *RedisCache) Close() error {
	return r.client.Close()
}
