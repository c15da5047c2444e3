package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker 按 owner 加互斥锁，不同 owner 互不阻塞
type Locker interface {
	Lock(ctx context.Context, owner string) (unlock func(), err error)
}

// ErrLockTimeout 在上下文结束前没有拿到锁
var ErrLockTimeout = errors.New("owner lock timeout")

// MemoryLocker 单进程内的 owner 锁
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	ch   chan struct{}
	refs int
}

// NewMemoryLocker 创建进程内锁
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*ownerLock)}
}

func (l *MemoryLocker) Lock(ctx context.Context, owner string) (func(), error) {
	l.mu.Lock()
	ol, ok := l.locks[owner]
	if !ok {
		ol = &ownerLock{ch: make(chan struct{}, 1)}
		l.locks[owner] = ol
	}
	ol.refs++
	l.mu.Unlock()

	select {
	case ol.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(owner, ol, false)
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(owner, ol, true) })
	}, nil
}

func (l *MemoryLocker) release(owner string, ol *ownerLock, held bool) {
	if held {
		<-ol.ch
	}
	l.mu.Lock()
	ol.refs--
	if ol.refs == 0 {
		delete(l.locks, owner)
	}
	l.mu.Unlock()
}

// size 当前持有或等待中的 owner 数
func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// unlockScript 只删除自己持有的锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 多实例部署时基于 Redis 的 owner 锁（SET NX PX）
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedisLocker 创建 Redis 锁；ttl 需大于一次写请求的最长耗时
func NewRedisLocker(client redis.UniversalClient, ttl, retry time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &RedisLocker{client: client, prefix: "fundtrack:lock:", ttl: ttl, retry: retry}
}

func (l *RedisLocker) Lock(ctx context.Context, owner string) (func(), error) {
	key := l.prefix + owner
	token, err := lockToken()
	if err != nil {
		return nil, err
	}

	wait := l.retry
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("redis lock %s: %w", owner, err)
		}
		if ok {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-timer.C:
		}
		if wait < time.Second {
			wait *= 2
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求上下文可能已取消，释放锁使用独立的短超时
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = unlockScript.Run(releaseCtx, l.client, []string{key}, token).Err()
		})
	}, nil
}

func lockToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
