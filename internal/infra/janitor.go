package infra

import (
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultCleanupSchedule purges expired cache entries every ten minutes.
const DefaultCleanupSchedule = "@every 10m"

// Janitor periodically removes expired entries from a Cache.
type Janitor struct {
	cron  *cron.Cron
	cache *Cache
}

// NewJanitor schedules cache cleanup with a standard cron spec or a
// descriptor such as "@every 10m".
func NewJanitor(cache *Cache, spec string) (*Janitor, error) {
	if spec == "" {
		spec = DefaultCleanupSchedule
	}
	j := &Janitor{
		cron:  cron.New(),
		cache: cache,
	}
	if _, err := j.cron.AddFunc(spec, j.sweep); err != nil {
		return nil, fmt.Errorf("schedule cache cleanup %q: %w", spec, err)
	}
	return j, nil
}

func (j *Janitor) sweep() {
	n := j.cache.Cleanup()
	log.WithFields(log.Fields{
		"removed":   n,
		"remaining": j.cache.Len(),
	}).Debug("cache cleanup completed")
}

// Start runs the schedule in its own goroutine.
func (j *Janitor) Start() {
	j.cron.Start()
	log.Debug("cache janitor started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	log.Debug("cache janitor stopped")
}
