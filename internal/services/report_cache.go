package services

import (
	"strconv"
	"time"

	"smartexpense/internal/cache"
	"smartexpense/internal/core"
	"smartexpense/internal/query"
	"smartexpense/internal/store"
)

// ReportCache memoizes weekly reports per snapshot version and calendar day,
// so a report is recomputed after every mutation and after midnight.
type ReportCache struct {
	lru *cache.LRUCache[query.Report]
}

func NewReportCache(size int, ttl time.Duration) *ReportCache {
	return &ReportCache{lru: cache.NewLRUCache[query.Report](size, ttl)}
}

// LRU exposes the underlying cache for registration with a cache.Manager.
func (rc *ReportCache) LRU() *cache.LRUCache[query.Report] {
	return rc.lru
}

func (rc *ReportCache) Get(snap store.Snapshot, now time.Time) query.Report {
	key := reportKey(snap.Version, now)
	return rc.lru.GetOrCompute(key, func() query.Report {
		return query.WeeklyReport(snap.Expenses, now)
	})
}

func (rc *ReportCache) Stats() cache.Stats {
	return rc.lru.Stats()
}

func reportKey(version uint64, now time.Time) string {
	return strconv.FormatUint(version, 10) + ":" + core.DayKey(now, now.Location())
}
