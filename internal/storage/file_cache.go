// internal/storage/file_cache.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileCacheService keeps file contents in memory and re-reads a file only
// after it changes on disk or its entry expires.
type FileCacheService struct {
	cache      map[string]*FileCacheEntry
	mutex      sync.RWMutex
	maxSize    int
	expiration time.Duration
}

// FileCacheEntry is one cached file.
type FileCacheEntry struct {
	Data      []byte
	CreatedAt time.Time
	LastRead  time.Time
	ModTime   time.Time
	Size      int64
}

// NewFileCacheService applies defaults of 100 entries and 5 minutes.
func NewFileCacheService(maxSize int, expiration time.Duration) *FileCacheService {
	if maxSize <= 0 {
		maxSize = 100
	}
	if expiration <= 0 {
		expiration = 5 * time.Minute
	}
	return &FileCacheService{
		cache:      make(map[string]*FileCacheEntry),
		maxSize:    maxSize,
		expiration: expiration,
	}
}

// ReadFile returns the content of path and whether it changed since the
// previous call.
func (s *FileCacheService) ReadFile(path string) ([]byte, bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, false, fmt.Errorf("stat file: %w", err)
	}

	s.mutex.RLock()
	entry, exists := s.cache[absPath]
	s.mutex.RUnlock()

	if exists {
		isModified := !info.ModTime().Equal(entry.ModTime) || info.Size() != entry.Size
		isExpired := time.Since(entry.CreatedAt) > s.expiration
		if !isModified && !isExpired {
			s.mutex.Lock()
			entry.LastRead = time.Now()
			s.mutex.Unlock()
			return entry.Data, false, nil
		}
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}

	changed := !exists || string(entry.Data) != string(data)

	now := time.Now()
	s.mutex.Lock()
	s.cache[absPath] = &FileCacheEntry{
		Data:      data,
		CreatedAt: now,
		LastRead:  now,
		ModTime:   info.ModTime(),
		Size:      info.Size(),
	}
	if len(s.cache) > s.maxSize {
		s.cleanupLRU(max(1, s.maxSize/5))
	}
	s.mutex.Unlock()

	return data, changed, nil
}

// DeleteFromCache forgets path.
func (s *FileCacheService) DeleteFromCache(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	s.mutex.Lock()
	delete(s.cache, absPath)
	s.mutex.Unlock()
}

// Len returns the number of cached files.
func (s *FileCacheService) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.cache)
}

// cleanupLRU drops the count least recently read entries. Caller holds the lock.
func (s *FileCacheService) cleanupLRU(count int) {
	type keyAge struct {
		key  string
		time time.Time
	}

	entries := make([]keyAge, 0, len(s.cache))
	for k, v := range s.cache {
		entries = append(entries, keyAge{k, v.LastRead})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].time.Before(entries[j].time)
	})

	for i := 0; i < min(count, len(entries)); i++ {
		delete(s.cache, entries[i].key)
	}
}
