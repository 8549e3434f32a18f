// internal/store/cache_test.go
package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"edurisk-engine/internal/common/database"
	"edurisk-engine/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*AssessmentCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := &database.RedisClient{
		Client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	t.Cleanup(func() { client.Close() })
	return NewAssessmentCache(client, ttl, logger.NewTestLogger(t)), mr
}

func TestAssessmentCache_PutGetRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	a := sampleAssessment("s1")

	require.NoError(t, cache.Put(ctx, a))

	got, err := cache.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.TotalRiskScore, got.TotalRiskScore)
	assert.Equal(t, a.RiskLevel, got.RiskLevel)
}

func TestAssessmentCache_MissReturnsNil(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)

	got, err := cache.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAssessmentCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, sampleAssessment("s1")))
	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAssessmentCache_Invalidate(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, sampleAssessment("s1")))
	require.NoError(t, cache.Invalidate(ctx, "s1"))

	got, err := cache.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

// ==========================
// Read-Through History
// ==========================

func TestCachedHistory_ReadThroughPopulatesCache(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	db, mock := newMockDB(t)
	history := NewCachedHistory(cache, NewAssessmentStore(db, logger.NewTestLogger(t)))
	ctx := context.Background()

	a := sampleAssessment("s1")
	payload, err := json.Marshal(a)
	require.NoError(t, err)

	// Only the first lookup should reach Postgres.
	mock.ExpectQuery("SELECT payload FROM risk_assessments").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	first, err := history.LatestAssessment(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := history.LatestAssessment(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedHistory_NoHistoryAnywhere(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	db, mock := newMockDB(t)
	history := NewCachedHistory(cache, NewAssessmentStore(db, logger.NewTestLogger(t)))

	mock.ExpectQuery("SELECT payload FROM risk_assessments").
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	got, err := history.LatestAssessment(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCachedHistory_RecordWritesBothStores(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	db, mock := newMockDB(t)
	history := NewCachedHistory(cache, NewAssessmentStore(db, logger.NewTestLogger(t)))
	ctx := context.Background()

	a := sampleAssessment("s1")
	mock.ExpectExec("INSERT INTO risk_assessments").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, history.Record(ctx, a))

	// The next trend lookup is served from cache, no further queries.
	got, err := history.LatestAssessment(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
