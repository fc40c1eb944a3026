package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client            *redis.Client
	prefix            string
	defaultTTLSeconds time.Duration
}

func NewRedisClient(addr string, poolSize int, defaultTTLSeconds time.Duration) *RedisClient {
	client := redis.NewClient(&redis.Options{
		Addr: addr,

		PoolSize:     poolSize,
		MinIdleConns: 10,

		// Timeouts otimizados para cache
		DialTimeout:  5 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	return &RedisClient{
		client:            client,
		defaultTTLSeconds: defaultTTLSeconds,
	}
}

// WithPrefix retorna um client que prefixa todas as chaves. Usado nos testes
// para isolar o namespace.
func (rc *RedisClient) WithPrefix(prefix string) *RedisClient {
	return &RedisClient{
		client:            rc.client,
		prefix:            prefix,
		defaultTTLSeconds: rc.defaultTTLSeconds,
	}
}

func (rc *RedisClient) key(k string) string {
	return rc.prefix + k
}

func (rc *RedisClient) GetKey(ctx context.Context, key string) (string, bool, error) {
	result := rc.client.HGet(ctx, rc.key(key), "data")

	// Cache miss
	if result.Err() == redis.Nil {
		return "", false, nil
	}
	if result.Err() != nil {
		return "", false, result.Err()
	}

	return result.Val(), true, nil
}

// SetWithRegistry grava o valor e registra a chave em cada set de registro,
// permitindo invalidação por produto depois.
func (rc *RedisClient) SetWithRegistry(ctx context.Context, cacheKey string, cacheValue string, registryKeys []string) error {
	pipe := rc.client.Pipeline()

	fields := map[string]interface{}{
		"data":      cacheValue,
		"cached_at": time.Now().Unix(),
	}
	pipe.HSet(ctx, rc.key(cacheKey), fields)
	pipe.Expire(ctx, rc.key(cacheKey), rc.defaultTTLSeconds)

	for _, registryKey := range registryKeys {
		pipe.SAdd(ctx, rc.key(registryKey), rc.key(cacheKey))
		pipe.Expire(ctx, rc.key(registryKey), rc.defaultTTLSeconds)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// GetMultipleSetMembers retorna os membros de cada set de registro informado.
func (rc *RedisClient) GetMultipleSetMembers(ctx context.Context, registryKeys []string) (map[string][]string, error) {
	pipe := rc.client.Pipeline()

	cmds := make(map[string]*redis.StringSliceCmd, len(registryKeys))
	for _, registryKey := range registryKeys {
		cmds[rc.key(registryKey)] = pipe.SMembers(ctx, rc.key(registryKey))
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	results := make(map[string][]string, len(cmds))
	for key, cmd := range cmds {
		members, err := cmd.Result()
		if err != nil && err != redis.Nil {
			return nil, err
		}
		results[key] = members
	}

	return results, nil
}

func (rc *RedisClient) InvalidateKeys(ctx context.Context, keys []string) error {
	var errs []string

	for _, key := range keys {
		// As chaves vindas dos registries já carregam o prefixo.
		if err := rc.client.Del(ctx, key).Err(); err != nil {
			errs = append(errs, fmt.Sprintf("key %s: %v", key, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalidation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// FlushByPrefix apaga todas as chaves do prefixo atual. Só para testes.
func (rc *RedisClient) FlushByPrefix(ctx context.Context) error {
	if rc.prefix == "" {
		return fmt.Errorf("refusing to flush without a prefix")
	}

	iter := rc.client.Scan(ctx, 0, rc.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Health check
func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}
