package dto

type DashboardSummaryResponse struct {
	TotalKeys     int64            `json:"totalKeys"`
	ClaimedKeys   int64            `json:"claimedKeys"`
	ExpiredKeys   int64            `json:"expiredKeys"`
	TotalProducts int64            `json:"totalProducts"`
	ProductCounts map[string]int64 `json:"productCounts"`
}
