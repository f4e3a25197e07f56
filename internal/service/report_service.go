package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/iskolarhub/iskolar-api/internal/dto"
	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/repository"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

// trendWindowDays is the trailing window for the application trend series.
const trendWindowDays = 30

// ReportService produces the dashboard aggregates. Results are scoped by
// the caller's row-level scope, cached per scope in redis, and dense:
// every status, role, and day bucket appears even at zero.
type ReportService interface {
	Dashboard(ctx context.Context, scope tenancy.Scope) (dto.DashboardResponse, error)
}

type reportService struct {
	reports  repository.ReportRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewReportService constructs a ReportService instance. The cache client
// may be nil, in which case every call aggregates fresh.
func NewReportService(reports repository.ReportRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		reports:  reports,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "report_service").Logger(),
		now:      time.Now,
	}
}

func (s *reportService) Dashboard(ctx context.Context, scope tenancy.Scope) (dto.DashboardResponse, error) {
	cacheKey := dashboardCacheKey(scope)

	tracer := otel.Tracer("github.com/iskolarhub/iskolar-api/internal/service/report")
	ctx, span := tracer.Start(ctx, "report.dashboard")
	span.SetAttributes(attribute.String("report.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("report.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	response, err := s.aggregate(ctx, scope)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dashboard_aggregation_failed")
		return dto.DashboardResponse{}, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write dashboard cache")
			}
		}
	}

	return response, nil
}

func (s *reportService) aggregate(ctx context.Context, scope tenancy.Scope) (dto.DashboardResponse, error) {
	total, err := s.reports.CountApplications(ctx, scope)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	statusRows, err := s.reports.CountApplicationsByStatus(ctx, scope)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	roleRows, err := s.reports.CountUsersByRole(ctx, scope)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	activeScholarships, err := s.reports.CountActiveScholarships(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	since := s.now().AddDate(0, 0, -(trendWindowDays - 1)).Truncate(24 * time.Hour)
	trendRows, err := s.reports.ApplicationsPerDay(ctx, scope, since)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	statusBreakdown := make(map[string]int64, len(models.ApplicationStatuses))
	for _, status := range models.ApplicationStatuses {
		statusBreakdown[status] = 0
	}
	for _, row := range statusRows {
		statusBreakdown[row.Status] = row.Count
	}

	roleBreakdown := map[string]int64{
		models.RoleAdmin:     0,
		models.RoleCommittee: 0,
		models.RoleStudent:   0,
	}
	for _, row := range roleRows {
		roleBreakdown[row.Role] = row.Count
	}

	return dto.DashboardResponse{
		TotalApplications:  total,
		PendingReview:      statusBreakdown[models.StatusSubmitted] + statusBreakdown[models.StatusUnderReview],
		ActiveScholarships: activeScholarships,
		StatusBreakdown:    statusBreakdown,
		RoleBreakdown:      roleBreakdown,
		ApplicationTrend:   denseTrend(trendRows, since, s.now()),
	}, nil
}

// denseTrend expands the sparse per-day counts into one point per calendar
// day in the window, zero-filling days with no applications.
func denseTrend(rows []repository.DateCount, since, until time.Time) []dto.TrendPoint {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Date] = row.Count
	}

	points := make([]dto.TrendPoint, 0, trendWindowDays)
	for day := since; !day.After(until); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		points = append(points, dto.TrendPoint{Date: key, Count: counts[key]})
	}
	return points
}

func dashboardCacheKey(scope tenancy.Scope) string {
	identity := scope.Identity()
	if scope.Unrestricted() {
		return "reports:dashboard:all"
	}
	scholarship := uint(0)
	if identity.ScholarshipID != nil {
		scholarship = *identity.ScholarshipID
	}
	if identity.IsStudent() {
		return fmt.Sprintf("reports:dashboard:scholarship:%d:user:%d", scholarship, identity.UserID)
	}
	return fmt.Sprintf("reports:dashboard:scholarship:%d", scholarship)
}
