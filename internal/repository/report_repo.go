package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iskolarhub/iskolar-api/internal/models"
	"github.com/iskolarhub/iskolar-api/internal/tenancy"
)

// StatusCount is one grouped-count row keyed by application status.
type StatusCount struct {
	Status string
	Count  int64
}

// RoleCount is one grouped-count row keyed by user role.
type RoleCount struct {
	Role  string
	Count int64
}

// DateCount is one grouped-count row keyed by calendar date.
type DateCount struct {
	Date  string
	Count int64
}

// ReportRepository supplies read-only aggregates for dashboards. Every
// query runs through the caller's scope, so committee members only count
// rows from their own program.
type ReportRepository interface {
	CountApplications(ctx context.Context, scope tenancy.Scope) (int64, error)
	CountApplicationsByStatus(ctx context.Context, scope tenancy.Scope) ([]StatusCount, error)
	CountUsersByRole(ctx context.Context, scope tenancy.Scope) ([]RoleCount, error)
	CountActiveScholarships(ctx context.Context) (int64, error)
	ApplicationsPerDay(ctx context.Context, scope tenancy.Scope, since time.Time) ([]DateCount, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs a report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CountApplications(ctx context.Context, scope tenancy.Scope) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Scopes(scope.Applications()).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) CountApplicationsByStatus(ctx context.Context, scope tenancy.Scope) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Scopes(scope.Applications()).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) CountUsersByRole(ctx context.Context, scope tenancy.Scope) ([]RoleCount, error) {
	var rows []RoleCount
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Scopes(scope.Users()).
		Select("role, count(*) as count").
		Group("role").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepository) CountActiveScholarships(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Scholarship{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) ApplicationsPerDay(ctx context.Context, scope tenancy.Scope, since time.Time) ([]DateCount, error) {
	var rows []DateCount
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Scopes(scope.Applications()).
		Where("created_at >= ?", since).
		Select("date(created_at) as date, count(*) as count").
		Group("date(created_at)").
		Scan(&rows).Error
	return rows, err
}
