package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgf/dashboard-api/internal/api/metrics"
	"github.com/bgf/dashboard-api/internal/core/domain"
	"github.com/bgf/dashboard-api/internal/core/ports"
)

// DefaultAccessCodeTTL is how long a fetched access code table is trusted.
const DefaultAccessCodeTTL = 5 * time.Minute

// AccessCodeCache resolves staff access codes through a TTL cache in front of
// the access code store, falling back to domain.DefaultAccessCodes when the
// store is unreachable or empty.
//
// Store errors are not cached, so the next lookup retries the store. An empty
// store is cached as the fallback table for the full TTL.
type AccessCodeCache struct {
	repo ports.AccessCodeRepository
	ttl  time.Duration
	now  func() time.Time
	log  zerolog.Logger

	mu        sync.Mutex
	codes     map[string]domain.StaffAccessCode
	fetchedAt time.Time
}

// NewAccessCodeCache builds a cache. A nil now uses time.Now.
func NewAccessCodeCache(repo ports.AccessCodeRepository, ttl time.Duration, now func() time.Time, log zerolog.Logger) *AccessCodeCache {
	if ttl <= 0 {
		ttl = DefaultAccessCodeTTL
	}
	if now == nil {
		now = time.Now
	}
	return &AccessCodeCache{repo: repo, ttl: ttl, now: now, log: log}
}

// Lookup resolves code. The bool is false when the code is unknown.
func (c *AccessCodeCache) Lookup(ctx context.Context, code string) (domain.StaffAccessCode, bool) {
	code = domain.NormalizeAccessCode(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.codes != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		metrics.AccessCodeLookupsTotal.WithLabelValues("cache").Inc()
		ac, ok := c.codes[code]
		return ac, ok
	}

	codes, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("access code store unavailable, using built-in codes")
		metrics.AccessCodeLookupsTotal.WithLabelValues("fallback").Inc()
		ac, ok := domain.DefaultAccessCodes[code]
		return ac, ok
	}

	c.codes = codes
	c.fetchedAt = c.now()
	metrics.AccessCodeLookupsTotal.WithLabelValues("store").Inc()
	ac, ok := c.codes[code]
	return ac, ok
}

// Invalidate drops the cached table so the next lookup refetches.
func (c *AccessCodeCache) Invalidate() {
	c.mu.Lock()
	c.codes = nil
	c.mu.Unlock()
}

func (c *AccessCodeCache) fetch(ctx context.Context) (map[string]domain.StaffAccessCode, error) {
	rows, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		c.log.Warn().Msg("access code store is empty, using built-in codes")
		return copyCodes(domain.DefaultAccessCodes), nil
	}

	out := make(map[string]domain.StaffAccessCode, len(rows))
	for _, row := range rows {
		if !row.Role.IsStaff() {
			c.log.Warn().Str("code", row.Code).Str("role", string(row.Role)).Msg("skipping access code without a staff role")
			continue
		}
		row.Code = domain.NormalizeAccessCode(row.Code)
		out[row.Code] = row
	}
	if len(out) == 0 {
		c.log.Warn().Int("rows", len(rows)).Msg("no usable access codes in store, using built-in codes")
		return copyCodes(domain.DefaultAccessCodes), nil
	}
	return out, nil
}

func copyCodes(in map[string]domain.StaffAccessCode) map[string]domain.StaffAccessCode {
	out := make(map[string]domain.StaffAccessCode, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
