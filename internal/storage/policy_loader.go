package storage

import (
	"sync"

	"github.com/Corphon/LessonPlanner/internal/policy"
	"github.com/Corphon/LessonPlanner/internal/utils"
)

// PolicyLoader serves a policy engine built from an optional YAML override
// file. Edits to the file are picked up on the next call; an unreadable or
// invalid file keeps the last good engine.
type PolicyLoader struct {
	path   string
	cache  *FileCacheService
	logger *utils.Logger

	mu     sync.RWMutex
	engine *policy.Engine
}

// NewPolicyLoader starts from the embedded default policy. An empty path
// never reloads.
func NewPolicyLoader(path string, cache *FileCacheService, logger *utils.Logger) *PolicyLoader {
	if cache == nil {
		cache = NewFileCacheService(0, 0)
	}
	if logger == nil {
		logger = utils.GetLogger()
	}
	l := &PolicyLoader{
		path:   path,
		cache:  cache,
		logger: logger,
		engine: policy.NewEngine(nil),
	}
	l.Engine()
	return l
}

// Engine returns the current engine, reloading the override when it changed.
func (l *PolicyLoader) Engine() *policy.Engine {
	if l.path == "" {
		return l.current()
	}

	data, changed, err := l.cache.ReadFile(l.path)
	if err != nil {
		l.logger.Warn("policy override unreadable, keeping current policy", "path", l.path, "error", err)
		return l.current()
	}
	if !changed {
		return l.current()
	}

	p, err := policy.ParsePolicy(data)
	if err != nil {
		l.logger.Warn("policy override invalid, keeping current policy", "path", l.path, "error", err)
		return l.current()
	}

	engine := policy.NewEngine(p)
	l.mu.Lock()
	l.engine = engine
	l.mu.Unlock()
	l.logger.Info("policy override loaded", "path", l.path, "suffixes", len(p.Stem.Suffixes))
	return engine
}

func (l *PolicyLoader) current() *policy.Engine {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.engine
}
