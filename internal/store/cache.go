// internal/store/cache.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"edurisk-engine/internal/common/database"
	"edurisk-engine/internal/common/logger"
	"edurisk-engine/internal/models"
)

// AssessmentCache keeps each student's latest assessment in Redis so the
// trend lookup on the hot path rarely touches Postgres.
type AssessmentCache struct {
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewAssessmentCache(rdb *database.RedisClient, ttl time.Duration, log logger.Logger) *AssessmentCache {
	return &AssessmentCache{
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "assessment-cache"}),
	}
}

func cacheKey(studentID string) string {
	return fmt.Sprintf("risk:latest:%s", studentID)
}

// Get returns the cached latest assessment, or (nil, nil) on a miss.
func (c *AssessmentCache) Get(ctx context.Context, studentID string) (*models.RiskAssessment, error) {
	raw, err := c.redis.Get(ctx, cacheKey(studentID))
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var assessment models.RiskAssessment
	if err := json.Unmarshal([]byte(raw), &assessment); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// Put stores an assessment as the student's latest.
func (c *AssessmentCache) Put(ctx context.Context, a *models.RiskAssessment) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, cacheKey(a.StudentID), payload, c.ttl)
}

// Invalidate drops a student's cached assessment.
func (c *AssessmentCache) Invalidate(ctx context.Context, studentID string) error {
	return c.redis.Del(ctx, cacheKey(studentID))
}

// CachedHistory is a read-through cache in front of the assessment store.
// Cache failures degrade to the store, never to an error.
type CachedHistory struct {
	cache *AssessmentCache
	store *AssessmentStore
}

func NewCachedHistory(cache *AssessmentCache, store *AssessmentStore) *CachedHistory {
	return &CachedHistory{cache: cache, store: store}
}

// LatestAssessment reads the cache first and falls back to Postgres,
// repopulating the cache on a hit from the store.
func (h *CachedHistory) LatestAssessment(ctx context.Context, studentID string) (*models.RiskAssessment, error) {
	if cached, err := h.cache.Get(ctx, studentID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		h.cache.logger.WithError(err).Warn("cache read failed", map[string]interface{}{
			"studentId": studentID,
		})
	}

	latest, err := h.store.LatestAssessment(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		if err := h.cache.Put(ctx, latest); err != nil {
			h.cache.logger.WithError(err).Warn("cache write failed", map[string]interface{}{
				"studentId": studentID,
			})
		}
	}
	return latest, nil
}

// Record persists a fresh assessment and updates the cache so the next
// trend lookup sees it.
func (h *CachedHistory) Record(ctx context.Context, a *models.RiskAssessment) error {
	if err := h.store.Save(ctx, a); err != nil {
		return err
	}
	if err := h.cache.Put(ctx, a); err != nil {
		h.cache.logger.WithError(err).Warn("cache write failed", map[string]interface{}{
			"studentId": a.StudentID,
		})
	}
	return nil
}
