package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/collectionsdesk/internal/adapters/cache"
	"github.com/zatekoja/collectionsdesk/internal/domain/entities"
	"github.com/zatekoja/collectionsdesk/internal/domain/providers"
)

type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	getErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	v, ok := c.values[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

type mockSettingsProvider struct {
	mock.Mock
}

func (m *mockSettingsProvider) Get(ctx context.Context) (*entities.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*entities.Settings)
	return s, args.Error(1)
}

func (m *mockSettingsProvider) Put(ctx context.Context, settings *entities.Settings) error {
	return m.Called(ctx, settings).Error(0)
}

func TestCachedSettingsAdapter_ReadThrough(t *testing.T) {
	ctx := context.Background()
	store := new(mockSettingsProvider)
	stored := &entities.Settings{LiveKitHost: "ws://lk", LiveKitAPIKey: "key", LiveKitAPISecret: "secret"}
	store.On("Get", ctx).Return(stored, nil).Once()

	adapter := cache.NewCachedSettingsAdapter(store, newMemoryCache(), nil)

	first, err := adapter.Get(ctx)
	require.NoError(t, err)
	second, err := adapter.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, stored, first)
	assert.Equal(t, stored, second)
	store.AssertExpectations(t)
}

func TestCachedSettingsAdapter_PutInvalidates(t *testing.T) {
	ctx := context.Background()
	store := new(mockSettingsProvider)
	memory := newMemoryCache()
	adapter := cache.NewCachedSettingsAdapter(store, memory, nil)

	updated := &entities.Settings{LiveKitHost: "ws://new"}
	store.On("Get", ctx).Return(&entities.Settings{LiveKitHost: "ws://old"}, nil).Once()
	store.On("Put", ctx, updated).Return(nil).Once()
	store.On("Get", ctx).Return(updated, nil).Once()

	before, err := adapter.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ws://old", before.LiveKitHost)

	require.NoError(t, adapter.Put(ctx, updated))

	after, err := adapter.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ws://new", after.LiveKitHost)
	store.AssertExpectations(t)
}

func TestCachedSettingsAdapter_CacheDownFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := new(mockSettingsProvider)
	memory := newMemoryCache()
	memory.getErr = errors.New("connection refused")
	store.On("Get", ctx).Return(&entities.Settings{APIURL: "http://api"}, nil).Twice()

	adapter := cache.NewCachedSettingsAdapter(store, memory, nil)

	for i := 0; i < 2; i++ {
		s, err := adapter.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "http://api", s.APIURL)
	}
	store.AssertExpectations(t)
}

func TestCachedSettingsAdapter_PutFailureKeepsCache(t *testing.T) {
	ctx := context.Background()
	store := new(mockSettingsProvider)
	store.On("Put", ctx, mock.Anything).Return(errors.New("write failed")).Once()

	adapter := cache.NewCachedSettingsAdapter(store, newMemoryCache(), nil)
	assert.Error(t, adapter.Put(ctx, &entities.Settings{}))
}
