package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-assessment-api/internal/models"
	"github.com/noah-isme/gema-assessment-api/internal/observability"
)

// RosterRow is one enrolled student joined with their submission, if any.
type RosterRow struct {
	Student    models.Student     `json:"student"`
	Submission *models.Submission `json:"submission,omitempty"`
}

// RosterCache stores joined roster rows per assessment. Rows are cached before URL
// signing so cached entries never carry expiring links.
type RosterCache interface {
	Get(ctx context.Context, assessmentID string) ([]RosterRow, bool)
	Set(ctx context.Context, assessmentID string, rows []RosterRow)
	Invalidate(ctx context.Context, assessmentID string)
}

type redisRosterCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRosterCache returns a redis backed cache, or a no-op cache when client is nil.
func NewRosterCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) RosterCache {
	if client == nil {
		return noopRosterCache{}
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &redisRosterCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "roster_cache").Logger(),
	}
}

func rosterCacheKey(assessmentID string) string {
	return fmt.Sprintf("roster:assessment:%s", assessmentID)
}

func (c *redisRosterCache) Get(ctx context.Context, assessmentID string) ([]RosterRow, bool) {
	cached, err := c.client.Get(ctx, rosterCacheKey(assessmentID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			observability.RosterCacheLookups().WithLabelValues("error").Inc()
			c.logger.Warn().Err(err).Str("assessment_id", assessmentID).Msg("failed to read roster cache")
			return nil, false
		}
		observability.RosterCacheLookups().WithLabelValues("miss").Inc()
		return nil, false
	}

	var rows []RosterRow
	if err := json.Unmarshal([]byte(cached), &rows); err != nil {
		observability.RosterCacheLookups().WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Str("assessment_id", assessmentID).Msg("discarding corrupt roster cache entry")
		return nil, false
	}

	observability.RosterCacheLookups().WithLabelValues("hit").Inc()
	return rows, true
}

func (c *redisRosterCache) Set(ctx context.Context, assessmentID string, rows []RosterRow) {
	payload, err := json.Marshal(rows)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to encode roster cache entry")
		return
	}
	if err := c.client.Set(ctx, rosterCacheKey(assessmentID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("assessment_id", assessmentID).Msg("failed to store roster cache")
	}
}

func (c *redisRosterCache) Invalidate(ctx context.Context, assessmentID string) {
	if err := c.client.Del(ctx, rosterCacheKey(assessmentID)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("assessment_id", assessmentID).Msg("failed to invalidate roster cache")
	}
}

type noopRosterCache struct{}

func (noopRosterCache) Get(context.Context, string) ([]RosterRow, bool) { return nil, false }
func (noopRosterCache) Set(context.Context, string, []RosterRow)        {}
func (noopRosterCache) Invalidate(context.Context, string)              {}
