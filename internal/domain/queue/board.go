package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

// ErrEntryNotFound means no board entry exists with the given id today.
var ErrEntryNotFound = errors.New("queue entry not found")

// Board stores the day's check-in entries. Implementations key entries by
// calendar date and forget them once the day is over.
type Board interface {
	Add(ctx context.Context, day time.Time, e Entry) error
	List(ctx context.Context, day time.Time) ([]Entry, error)
	Remove(ctx context.Context, day time.Time, entryID uuid.UUID) error
}

func boardKey(day time.Time) string {
	return "queue:" + visit.DateOnly(day).Format("2006-01-02")
}

// RedisBoard keeps the board in Redis, one hash per day, expiring the hash at
// the following midnight UTC so stale boards clean themselves up.
type RedisBoard struct {
	client *redis.Client
}

func NewRedisBoard(client *redis.Client) *RedisBoard {
	return &RedisBoard{client: client}
}

func (b *RedisBoard) Add(ctx context.Context, day time.Time, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("queue: marshal entry: %w", err)
	}
	key := boardKey(day)
	if err := b.client.HSet(ctx, key, e.ID.String(), data).Err(); err != nil {
		return fmt.Errorf("queue: persist entry: %w", err)
	}
	midnight := visit.DateOnly(day).AddDate(0, 0, 1)
	if err := b.client.ExpireAt(ctx, key, midnight).Err(); err != nil {
		return fmt.Errorf("queue: set board expiry: %w", err)
	}
	return nil
}

func (b *RedisBoard) List(ctx context.Context, day time.Time) ([]Entry, error) {
	vals, err := b.client.HGetAll(ctx, boardKey(day)).Result()
	if err != nil {
		return nil, fmt.Errorf("queue: load board: %w", err)
	}
	entries := make([]Entry, 0, len(vals))
	for _, raw := range vals {
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("queue: decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func (b *RedisBoard) Remove(ctx context.Context, day time.Time, entryID uuid.UUID) error {
	removed, err := b.client.HDel(ctx, boardKey(day), entryID.String()).Result()
	if err != nil {
		return fmt.Errorf("queue: remove entry: %w", err)
	}
	if removed == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// MemoryBoard is the single-node fallback used when no Redis is configured.
type MemoryBoard struct {
	mu   sync.RWMutex
	days map[string]map[uuid.UUID]Entry
}

func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{days: make(map[string]map[uuid.UUID]Entry)}
}

func (b *MemoryBoard) Add(_ context.Context, day time.Time, e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := boardKey(day)
	if b.days[key] == nil {
		b.days[key] = make(map[uuid.UUID]Entry)
	}
	b.days[key][e.ID] = e
	return nil
}

func (b *MemoryBoard) List(_ context.Context, day time.Time) ([]Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	entries := make([]Entry, 0, len(b.days[boardKey(day)]))
	for _, e := range b.days[boardKey(day)] {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func (b *MemoryBoard) Remove(_ context.Context, day time.Time, entryID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := boardKey(day)
	if _, ok := b.days[key][entryID]; !ok {
		return ErrEntryNotFound
	}
	delete(b.days[key], entryID)
	return nil
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CheckedInAt.Before(entries[j].CheckedInAt)
	})
}
