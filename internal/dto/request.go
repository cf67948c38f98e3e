package dto

// GetFunnelMetricsRequest represents a funnel metrics query request
type GetFunnelMetricsRequest struct {
	From     int64  `form:"from" binding:"required" example:"1690909200"`
	To       int64  `form:"to" binding:"required" example:"1690995600"`
	GroupBy  string `form:"group_by" example:"bucket"`
	MinCount int    `form:"min_count" example:"70"`
}

// GetBouncesRequest represents a bounce report query request
type GetBouncesRequest struct {
	From int64 `form:"from" binding:"required" example:"1690909200"`
	To   int64 `form:"to" binding:"required" example:"1690995600"`
}
