package dto

// TrendPoint is one day of application volume.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DashboardResponse aggregates the reporting numbers shown on the
// back office landing page. Breakdown maps are dense: every known
// status and role appears even when its count is zero.
type DashboardResponse struct {
	TotalApplications  int64            `json:"total_applications"`
	PendingReview      int64            `json:"pending_review"`
	ActiveScholarships int64            `json:"active_scholarships"`
	StatusBreakdown    map[string]int64 `json:"status_breakdown"`
	RoleBreakdown      map[string]int64 `json:"role_breakdown"`
	ApplicationTrend   []TrendPoint     `json:"application_trend"`
	CacheHit           bool             `json:"cache_hit"`
}
