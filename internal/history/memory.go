package history

import (
	"context"
	"fmt"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMaxUsers = 1024

// MemoryOptions bounds the in-memory backend.
type MemoryOptions struct {
	// MaxUsers is the number of users kept before the least recently used one is evicted.
	MaxUsers int `mapstructure:"max-users"`
	// MaxPerUser caps the records kept per user. Zero keeps all of them.
	MaxPerUser int `mapstructure:"max-per-user"`
}

// Memory keeps records in a process-local LRU cache keyed by user email.
type Memory struct {
	mu         sync.Mutex
	byUser     *lru.Cache[string, []Record]
	maxPerUser int
}

var _ Store = (*Memory)(nil)

func NewMemory(opts MemoryOptions) (*Memory, error) {
	size := opts.MaxUsers
	if size <= 0 {
		size = defaultMaxUsers
	}
	cache, err := lru.New[string, []Record](size)
	if err != nil {
		return nil, fmt.Errorf("create history cache: %w", err)
	}
	return &Memory{byUser: cache, maxPerUser: opts.MaxPerUser}, nil
}

func (m *Memory) Save(_ context.Context, rec Record) error {
	key := NormalizeEmail(rec.UserEmail)
	if key == "" {
		return fmt.Errorf("%w: user email is required", ErrInvalidRecord)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	records, _ := m.byUser.Get(key)
	records = append(slices.Clone(records), rec)
	sortNewestFirst(records)
	if m.maxPerUser > 0 && len(records) > m.maxPerUser {
		records = records[:m.maxPerUser]
	}
	m.byUser.Add(key, records)
	return nil
}

func (m *Memory) ListByUser(_ context.Context, email string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records, ok := m.byUser.Get(NormalizeEmail(email))
	if !ok {
		return []Record{}, nil
	}
	return slices.Clone(records), nil
}

func (m *Memory) Close() error {
	m.byUser.Purge()
	return nil
}
