package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/kardex-api/internal/application/inventory"
)

var _ inventory.Locker = (*Locker)(nil)

// Locker lock local del proceso, para despliegues de una sola réplica sin Redis.
type Locker struct {
	mu    sync.Mutex
	held  map[string]time.Time
	clock func() time.Time
}

// NewLocker construye el lock local.
func NewLocker() *Locker {
	return &Locker{held: map[string]time.Time{}, clock: time.Now}
}

// TryLock toma key por ttl si está libre o vencido.
func (l *Locker) TryLock(_ context.Context, key string, ttl time.Duration) (inventory.Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if exp, ok := l.held[key]; ok && now.Before(exp) {
		return nil, false, nil
	}
	exp := now.Add(ttl)
	l.held[key] = exp
	return &lease{l: l, key: key, exp: exp}, true, nil
}

// lease identifica al dueño por su vencimiento vigente.
type lease struct {
	l   *Locker
	key string
	exp time.Time
}

func (s *lease) Refresh(_ context.Context, ttl time.Duration) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	now := s.l.clock()
	cur, ok := s.l.held[s.key]
	if !ok || !cur.Equal(s.exp) || !now.Before(cur) {
		return inventory.ErrLockLost
	}
	s.exp = now.Add(ttl)
	s.l.held[s.key] = s.exp
	return nil
}

func (s *lease) Release(context.Context) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if cur, ok := s.l.held[s.key]; ok && cur.Equal(s.exp) {
		delete(s.l.held, s.key)
	}
	return nil
}
