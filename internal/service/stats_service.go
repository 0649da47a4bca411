package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campuspass/campuspass-api/internal/dto"
	"github.com/campuspass/campuspass-api/internal/ledger"
)

const statsGenerationKey = "stats:attendance:gen"

// StatsService aggregates the attendance ledger. Results are cached in
// redis under a generation counter; ledger mutations bump the generation
// so stale aggregates are never served past the invalidation.
type StatsService interface {
	Statistics(ctx context.Context, date, subject string) (dto.StatisticsResponse, error)
	Invalidate(ctx context.Context)
}

type statsService struct {
	store    *ledger.Store
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewStatsService builds the aggregator. The cache client is optional;
// aggregation runs uncached when it is nil.
func NewStatsService(store *ledger.Store, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) StatsService {
	return &statsService{
		store:    store,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "stats_service").Logger(),
	}
}

func (s *statsService) Statistics(ctx context.Context, date, subject string) (dto.StatisticsResponse, error) {
	if date != "" && !dateFilterPattern.MatchString(date) {
		return dto.StatisticsResponse{}, ErrInvalidDateFilter
	}

	cacheKey := s.cacheKey(ctx, date, subject)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.StatisticsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Str("key", cacheKey).Msg("statistics cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read statistics cache")
		}
	}

	records, err := s.store.ListAll()
	if err != nil {
		return dto.StatisticsResponse{}, err
	}

	response := aggregate(records, date, subject)

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store statistics cache")
			}
		}
	}

	return response, nil
}

// Invalidate bumps the cache generation so every cached aggregate becomes
// unreachable. Old entries expire via their TTL.
func (s *statsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Incr(ctx, statsGenerationKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate statistics cache")
	}
}

func (s *statsService) cacheKey(ctx context.Context, date, subject string) string {
	generation := "0"
	if s.cache != nil {
		if value, err := s.cache.Get(ctx, statsGenerationKey).Result(); err == nil {
			generation = value
		}
	}

	return fmt.Sprintf("stats:attendance:%s:%s:%s", generation, date, subject)
}

// aggregate streams the ledger once, applying both filters as a logical
// AND, and fills the top-level counts plus the per-subject and per-date
// breakdowns.
func aggregate(records []ledger.Record, dateFilter, subjectFilter string) dto.StatisticsResponse {
	response := dto.StatisticsResponse{
		StatusBreakdown: emptyBreakdown(),
		BySubject:       make(map[string]dto.StatusBreakdown),
		ByDate:          make(map[string]dto.StatusBreakdown),
	}

	for _, record := range records {
		if dateFilter != "" && record.Date != dateFilter {
			continue
		}
		if subjectFilter != "" && record.Subject != subjectFilter {
			continue
		}

		response.Total++
		switch record.Status {
		case ledger.StatusPresent:
			response.Present++
		case ledger.StatusAbsent:
			response.Absent++
		}

		tally(response.BySubject, record.Subject, record.Status)
		tally(response.ByDate, record.Date, record.Status)
	}

	response.PresentPercentage = percentage(response.Present, response.Total)
	response.AbsentPercentage = percentage(response.Absent, response.Total)

	for key, bucket := range response.BySubject {
		bucket.PresentPercentage = percentage(bucket.Present, bucket.Total)
		bucket.AbsentPercentage = percentage(bucket.Absent, bucket.Total)
		response.BySubject[key] = bucket
	}
	for key, bucket := range response.ByDate {
		bucket.PresentPercentage = percentage(bucket.Present, bucket.Total)
		bucket.AbsentPercentage = percentage(bucket.Absent, bucket.Total)
		response.ByDate[key] = bucket
	}

	return response
}

func tally(buckets map[string]dto.StatusBreakdown, key, status string) {
	bucket, ok := buckets[key]
	if !ok {
		bucket = emptyBreakdown()
	}

	bucket.Total++
	switch status {
	case ledger.StatusPresent:
		bucket.Present++
	case ledger.StatusAbsent:
		bucket.Absent++
	}

	buckets[key] = bucket
}

func emptyBreakdown() dto.StatusBreakdown {
	return dto.StatusBreakdown{
		PresentPercentage: "0.0",
		AbsentPercentage:  "0.0",
	}
}

// percentage formats part/total with one decimal place; empty groups
// report "0.0" rather than dividing by zero.
func percentage(part, total int) string {
	if total == 0 {
		return "0.0"
	}

	return strconv.FormatFloat(float64(part)/float64(total)*100, 'f', 1, 64)
}
