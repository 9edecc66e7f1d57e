package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/schedule-editor-bot/internal/models"
)

// RedisSessionRepository keeps dialogue sessions in Redis so they survive restarts.
// Keys expire after the idle timeout when one is configured.
type RedisSessionRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSessionRepository constructs a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client, prefix string, ttl time.Duration) *RedisSessionRepository {
	if prefix == "" {
		prefix = "dialogue:session:"
	}
	return &RedisSessionRepository{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisSessionRepository) key(operatorID int64) string {
	return r.prefix + strconv.FormatInt(operatorID, 10)
}

// Get returns the operator's session or nil when none is stored.
func (r *RedisSessionRepository) Get(ctx context.Context, operatorID int64) (*models.DialogueSession, error) {
	key := r.key(operatorID)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var session models.DialogueSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", key, err)
	}
	return &session, nil
}

// Save stores the session, refreshing its TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, session *models.DialogueSession) error {
	key := r.key(session.OperatorID)
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes the operator's session. Removing an absent session is not an error.
func (r *RedisSessionRepository) Delete(ctx context.Context, operatorID int64) error {
	key := r.key(operatorID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Count returns the number of stored sessions.
func (r *RedisSessionRepository) Count(ctx context.Context) (int, error) {
	count := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan sessions: %w", err)
	}
	return count, nil
}

// Sweep is a no-op; Redis expires idle sessions through key TTL.
func (r *RedisSessionRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

// MemorySessionRepository keeps dialogue sessions in process memory.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*models.DialogueSession
	ttl      time.Duration
}

// NewMemorySessionRepository constructs an in-memory session store. A positive ttl lets
// Sweep drop sessions idle for longer than ttl.
func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[int64]*models.DialogueSession), ttl: ttl}
}

// Get returns a copy of the operator's session or nil.
func (r *MemorySessionRepository) Get(ctx context.Context, operatorID int64) (*models.DialogueSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[operatorID].Clone(), nil
}

// Save stores a copy of the session.
func (r *MemorySessionRepository) Save(ctx context.Context, session *models.DialogueSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.OperatorID] = session.Clone()
	return nil
}

// Delete removes the operator's session.
func (r *MemorySessionRepository) Delete(ctx context.Context, operatorID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, operatorID)
	return nil
}

// Count returns the number of stored sessions.
func (r *MemorySessionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}

// Sweep drops expired sessions and reports how many were removed.
func (r *MemorySessionRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	if r.ttl <= 0 {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, session := range r.sessions {
		if session.Expired(now, r.ttl) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}
