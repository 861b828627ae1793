package server

import (
	"bytes"
	"github.com/puzpuzpuz/xsync/v3"
	"sort"
	"time"
)

// mapEntry is a value of a map, expiresAt is a unix nano timestamp, 0 never expires
type mapEntry struct {
	value     []byte
	expiresAt int64
}

// mapStore holds all maps of the member. Keys and values are opaque
// serialized data, keys are compared by their bytes.
type mapStore struct {
	maps *xsync.MapOf[string, *xsync.MapOf[string, mapEntry]]
	now  func() time.Time
}

func newMapStore() *mapStore {
	return &mapStore{
		maps: xsync.NewMapOf[string, *xsync.MapOf[string, mapEntry]](),
		now:  time.Now,
	}
}

// getMap returns the map with the given name, maps are created on first use
func (s *mapStore) getMap(name string) *xsync.MapOf[string, mapEntry] {
	m, _ := s.maps.LoadOrCompute(name, func() *xsync.MapOf[string, mapEntry] {
		return xsync.NewMapOf[string, mapEntry]()
	})
	return m
}

// live reports whether the entry has not expired yet
func (s *mapStore) live(e mapEntry) bool {
	return e.expiresAt == 0 || s.now().UnixNano() < e.expiresAt
}

// Put stores value and returns the previous value, nil if there was none.
// ttlMillis > 0 expires the entry, all other values keep it forever.
func (s *mapStore) Put(name string, key, value []byte, ttlMillis int64) []byte {
	entry := mapEntry{value: value}
	if ttlMillis > 0 {
		entry.expiresAt = s.now().Add(time.Duration(ttlMillis) * time.Millisecond).UnixNano()
	}

	previous, loaded := s.getMap(name).LoadAndStore(string(key), entry)
	if !loaded || !s.live(previous) {
		return nil
	}
	return previous.value
}

// Get returns the value of key, nil if there is none
func (s *mapStore) Get(name string, key []byte) []byte {
	entry, ok := s.getMap(name).Load(string(key))
	if !ok || !s.live(entry) {
		return nil
	}
	return entry.value
}

// Remove deletes key and returns the removed value, nil if there was none
func (s *mapStore) Remove(name string, key []byte) []byte {
	entry, ok := s.getMap(name).LoadAndDelete(string(key))
	if !ok || !s.live(entry) {
		return nil
	}
	return entry.value
}

// Size returns the number of live entries
func (s *mapStore) Size(name string) int {
	size := 0
	s.getMap(name).Range(func(key string, entry mapEntry) bool {
		if s.live(entry) {
			size++
		}
		return true
	})
	return size
}

// Entries returns all live entries ordered by key
func (s *mapStore) Entries(name string) []entry {
	var entries []entry
	s.getMap(name).Range(func(key string, e mapEntry) bool {
		if s.live(e) {
			entries = append(entries, entry{key: []byte(key), value: e.value})
		}
		return true
	})

	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})
	return entries
}

// PutAll stores all entries without expiration
func (s *mapStore) PutAll(name string, entries []entry) {
	m := s.getMap(name)
	for _, e := range entries {
		m.Store(string(e.key), mapEntry{value: e.value})
	}
}

// entry is a key value pair returned by Entries
type entry struct {
	key   []byte
	value []byte
}
