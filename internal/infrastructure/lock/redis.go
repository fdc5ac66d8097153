// Package lock implementa el lock distribuido de la conciliación periódica sobre Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
	"github.com/jhoicas/kardex-api/pkg/config"
)

var _ inventory.Locker = (*RedisLocker)(nil)

// RedisLocker lock con expiración sobre Redis; solo una réplica obtiene cada llave.
type RedisLocker struct {
	client *redislock.Client
	prefix string
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return rdb, nil
}

// NewRedisLocker construye el locker sobre un cliente existente.
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), prefix: "lock:"}
}

// TryLock intenta tomar key por ttl sin reintentos. ok=false si otra réplica la tiene.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (inventory.Lease, bool, error) {
	lk, err := l.client.Obtain(ctx, l.prefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("obtener lock %s: %w", key, err)
	}
	return &redisLease{lock: lk, key: key}, true, nil
}

type redisLease struct {
	lock *redislock.Lock
	key  string
}

// Refresh extiende el lock solo si el token sigue siendo nuestro.
func (s *redisLease) Refresh(ctx context.Context, ttl time.Duration) error {
	err := s.lock.Refresh(ctx, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("lock %s: %w", s.key, inventory.ErrLockLost)
	}
	if err != nil {
		return fmt.Errorf("renovar lock %s: %w", s.key, err)
	}
	return nil
}

func (s *redisLease) Release(ctx context.Context) error {
	err := s.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		return nil
	}
	return err
}
