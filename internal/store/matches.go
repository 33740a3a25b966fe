// Package store keeps cross-provider match results in memory using a Bloom filter and an LRU cache.
package store

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
)

// MatchStore maps a source track id to the id of the track matched on the other catalog.
// The Bloom filter answers most misses without touching the cache.
type MatchStore struct {
	bloom                  *bloom.BloomFilter
	lru                    *lru.Cache[string, string]
	mutex                  sync.RWMutex
	capacity               int
	bloomFalsePositiveRate float64
}

// NewMatchStore creates a store holding at most capacity matches.
func NewMatchStore(capacity int, bloomFalsePositiveRate float64) *MatchStore {
	if capacity <= 0 || capacity > int(^uint(0)>>1) {
		panic("capacity value out of range for uint conversion")
	}

	lruCache, _ := lru.New[string, string](capacity)

	return &MatchStore{
		bloom:                  bloom.NewWithEstimates(uint(capacity), bloomFalsePositiveRate),
		lru:                    lruCache,
		capacity:               capacity,
		bloomFalsePositiveRate: bloomFalsePositiveRate,
	}
}

// Lookup returns the remembered match for sourceID.
func (ms *MatchStore) Lookup(sourceID string) (string, bool) {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()

	if !ms.bloom.TestString(sourceID) {
		return "", false
	}

	return ms.lru.Get(sourceID)
}

// Remember stores the match sourceID -> targetID, evicting the least recently used entry when full.
func (ms *MatchStore) Remember(sourceID, targetID string) {
	if sourceID == "" || targetID == "" {
		return
	}

	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.bloom.AddString(sourceID)
	ms.lru.Add(sourceID, targetID)
}

// Forget drops the match for sourceID. The Bloom filter keeps the key, so a later
// Lookup falls through to the cache and misses there.
func (ms *MatchStore) Forget(sourceID string) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.lru.Remove(sourceID)
}

// Size returns the number of remembered matches.
func (ms *MatchStore) Size() int {
	ms.mutex.RLock()
	defer ms.mutex.RUnlock()
	return ms.lru.Len()
}

// Clear removes every match.
func (ms *MatchStore) Clear() {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()

	ms.bloom = bloom.NewWithEstimates(uint(ms.capacity), ms.bloomFalsePositiveRate)
	ms.lru.Purge()
}
