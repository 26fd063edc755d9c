package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/noah-isme/edupro-navigator/pkg/genai"
	"github.com/noah-isme/edupro-navigator/pkg/jobs"

	appErrors "github.com/noah-isme/edupro-navigator/pkg/errors"
)

type memoryCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	getErr  error
	setErr  error
	delErr  error
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	data, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = data
	return nil
}

func (m *memoryCache) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	for _, key := range keys {
		delete(m.items, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.delErr != nil {
		return m.delErr
	}
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func newTestCache() (*CacheService, *memoryCache) {
	store := newMemoryCache()
	return NewCacheService(store, nil, time.Minute, nil, true), store
}

type fakeGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	requests  []genai.Request
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{responses: make(map[string]string), errs: make(map[string]error)}
}

func (f *fakeGenerator) Generate(ctx context.Context, req genai.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err := f.errs[req.Operation]; err != nil {
		return "", err
	}
	return f.responses[req.Operation], nil
}

func (f *fakeGenerator) last() genai.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type recordingNotifier struct {
	mu    sync.Mutex
	users []string
}

func (n *recordingNotifier) RecordsChanged(ctx context.Context, userID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
}

func (n *recordingNotifier) calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.users)
}

func startQueue(t *testing.T) *jobs.Queue {
	t.Helper()
	queue := jobs.NewQueue("test", jobs.QueueConfig{Workers: 2, Timeout: 5 * time.Second})
	queue.Start(context.Background())
	t.Cleanup(queue.Stop)
	return queue
}

func ptrString(s string) *string {
	return &s
}

func ptrFloat(f float64) *float64 {
	return &f
}
