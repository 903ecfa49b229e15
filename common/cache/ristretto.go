package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgraph-io/ristretto/v2"
	"github.com/krau/sankaku-dl/config"
)

var (
	cache *ristretto.Cache[string, any]
	mu    sync.RWMutex
)

// Init creates the process-wide cache from the cache section of the config.
// Get and Set are no-ops until it is called.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	if cache != nil {
		return nil
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: config.C().Cache.NumCounters,
		MaxCost:     config.C().Cache.MaxCost,
		BufferItems: 64,
		OnReject: func(item *ristretto.Item[any]) {
			log.Debugf("Cache item rejected: key=%d", item.Key)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	cache = c
	return nil
}

// Close releases the cache. Init may be called again afterwards.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if cache != nil {
		cache.Close()
		cache = nil
	}
}

func Set(key string, value any) error {
	mu.RLock()
	defer mu.RUnlock()
	if cache == nil {
		return nil
	}
	ok := cache.SetWithTTL(key, value, 1, time.Duration(config.C().Cache.TTL)*time.Second)
	if !ok {
		return fmt.Errorf("failed to set value in cache")
	}
	cache.Wait()
	return nil
}

func Get[T any](key string) (T, bool) {
	mu.RLock()
	defer mu.RUnlock()
	var zero T
	if cache == nil {
		return zero, false
	}
	v, ok := cache.Get(key)
	if !ok {
		return zero, false
	}
	vT, ok := v.(T)
	if !ok {
		return zero, false
	}
	return vT, true
}
