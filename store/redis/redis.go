// Package redis implements store.ThreadStore on Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentkit-go/agentkit/store"
)

// RedisThreadStore implements store.ThreadStore using Redis
type RedisThreadStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "agentkit:"
	TTL      time.Duration // Expiration for thread data, default 0 (no expiration)
}

// NewRedisThreadStore creates a new Redis thread store
func NewRedisThreadStore(opts RedisOptions) *RedisThreadStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "agentkit:"
	}

	return &RedisThreadStore{
		client: client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

func (s *RedisThreadStore) threadKey(id string) string {
	return fmt.Sprintf("%sthread:%s", s.prefix, id)
}

func (s *RedisThreadStore) threadsIndexKey() string {
	return fmt.Sprintf("%sthreads", s.prefix)
}

func (s *RedisThreadStore) messagesKey(threadID string) string {
	return fmt.Sprintf("%sthread:%s:messages", s.prefix, threadID)
}

func (s *RedisThreadStore) surfacesKey(threadID string) string {
	return fmt.Sprintf("%sthread:%s:surfaces", s.prefix, threadID)
}

// CreateThread stores a thread and indexes it for listing.
func (s *RedisThreadStore) CreateThread(ctx context.Context, thread *store.Thread) error {
	cp := *thread
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}

	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to marshal thread: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.threadKey(cp.ID), data, s.ttl)
	pipe.SAdd(ctx, s.threadsIndexKey(), cp.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save thread to redis: %w", err)
	}
	return nil
}

// GetThread retrieves a thread by ID
func (s *RedisThreadStore) GetThread(ctx context.Context, threadID string) (*store.Thread, error) {
	data, err := s.client.Get(ctx, s.threadKey(threadID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, store.ErrThreadNotFound
		}
		return nil, fmt.Errorf("failed to load thread from redis: %w", err)
	}

	var thread store.Thread
	if err := json.Unmarshal(data, &thread); err != nil {
		return nil, fmt.Errorf("failed to unmarshal thread: %w", err)
	}
	return &thread, nil
}

// ListThreads returns threads for an agent, newest first. Empty agentID lists all.
func (s *RedisThreadStore) ListThreads(ctx context.Context, agentID string) ([]*store.Thread, error) {
	threadIDs, err := s.client.SMembers(ctx, s.threadsIndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	if len(threadIDs) == 0 {
		return []*store.Thread{}, nil
	}

	var keys []string
	for _, id := range threadIDs {
		keys = append(keys, s.threadKey(id))
	}

	// MGet returns nil for expired keys; those are skipped.
	results, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads: %w", err)
	}

	threads := make([]*store.Thread, 0, len(results))
	for _, result := range results {
		strData, ok := result.(string)
		if !ok {
			continue
		}

		var thread store.Thread
		if err := json.Unmarshal([]byte(strData), &thread); err != nil {
			continue
		}
		if agentID != "" && thread.AgentID != agentID {
			continue
		}
		threads = append(threads, &thread)
	}

	sort.Slice(threads, func(i, j int) bool {
		return threads[i].CreatedAt.After(threads[j].CreatedAt)
	})
	return threads, nil
}

// DeleteThread removes a thread along with its messages and surfaces.
func (s *RedisThreadStore) DeleteThread(ctx context.Context, threadID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.threadKey(threadID))
	pipe.Del(ctx, s.messagesKey(threadID))
	pipe.Del(ctx, s.surfacesKey(threadID))
	pipe.SRem(ctx, s.threadsIndexKey(), threadID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return nil
}

// AppendMessage adds a message to its thread's list.
func (s *RedisThreadStore) AppendMessage(ctx context.Context, msg *store.Message) error {
	if _, err := s.GetThread(ctx, msg.ThreadID); err != nil {
		return err
	}

	cp := *msg
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}

	data, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := s.client.Pipeline()
	key := s.messagesKey(cp.ThreadID)
	pipe.RPush(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save message to redis: %w", err)
	}
	return nil
}

// ListMessages returns a thread's messages in insertion order.
func (s *RedisThreadStore) ListMessages(ctx context.Context, threadID string) ([]*store.Message, error) {
	if _, err := s.GetThread(ctx, threadID); err != nil {
		return nil, err
	}

	results, err := s.client.LRange(ctx, s.messagesKey(threadID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	msgs := make([]*store.Message, 0, len(results))
	for _, result := range results {
		var msg store.Message
		if err := json.Unmarshal([]byte(result), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		msgs = append(msgs, &msg)
	}
	return msgs, nil
}

// SaveSurface stores or replaces a surface snapshot in the thread's hash.
func (s *RedisThreadStore) SaveSurface(ctx context.Context, threadID, surfaceID string, snapshot []byte) error {
	pipe := s.client.Pipeline()
	key := s.surfacesKey(threadID)
	pipe.HSet(ctx, key, surfaceID, snapshot)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save surface to redis: %w", err)
	}
	return nil
}

// LoadSurfaces returns all surface snapshots for a thread, keyed by surface ID.
func (s *RedisThreadStore) LoadSurfaces(ctx context.Context, threadID string) (map[string][]byte, error) {
	results, err := s.client.HGetAll(ctx, s.surfacesKey(threadID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load surfaces: %w", err)
	}

	surfaces := make(map[string][]byte, len(results))
	for surfaceID, snapshot := range results {
		surfaces[surfaceID] = []byte(snapshot)
	}
	return surfaces, nil
}

// DeleteSurface removes a surface snapshot.
func (s *RedisThreadStore) DeleteSurface(ctx context.Context, threadID, surfaceID string) error {
	if err := s.client.HDel(ctx, s.surfacesKey(threadID), surfaceID).Err(); err != nil {
		return fmt.Errorf("failed to delete surface: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisThreadStore) Close() error {
	return s.client.Close()
}
