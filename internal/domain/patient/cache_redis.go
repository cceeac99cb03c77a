package patient

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/patientor/patientor/pkg/records"
)

const diagnosisCacheKey = "patientor:diagnoses"

// cachedDiagnosisRepo serves List from Redis and falls back to the wrapped
// repository when Redis is unavailable. Writes invalidate the cached list.
type cachedDiagnosisRepo struct {
	next   DiagnosisRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedDiagnosisRepo(next DiagnosisRepository, rdb redis.Cmdable, ttl time.Duration, logger zerolog.Logger) DiagnosisRepository {
	return &cachedDiagnosisRepo{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *cachedDiagnosisRepo) List(ctx context.Context) ([]records.Diagnosis, error) {
	data, err := r.rdb.Get(ctx, diagnosisCacheKey).Bytes()
	switch {
	case err == nil:
		var out []records.Diagnosis
		if jerr := json.Unmarshal(data, &out); jerr == nil {
			return out, nil
		}
		r.logger.Warn().Msg("discarding malformed diagnosis cache entry")
	case !errors.Is(err, redis.Nil):
		r.logger.Warn().Err(err).Msg("diagnosis cache read failed")
	}

	out, err := r.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(out); err == nil {
		if err := r.rdb.Set(ctx, diagnosisCacheKey, data, r.ttl).Err(); err != nil {
			r.logger.Warn().Err(err).Msg("diagnosis cache write failed")
		}
	}
	return out, nil
}

func (r *cachedDiagnosisRepo) Upsert(ctx context.Context, d records.Diagnosis) error {
	if err := r.next.Upsert(ctx, d); err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, diagnosisCacheKey).Err(); err != nil {
		r.logger.Warn().Err(err).Msg("diagnosis cache invalidation failed")
	}
	return nil
}
