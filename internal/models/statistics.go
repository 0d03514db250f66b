package models

// PrizeCount is the number of spins that landed on a given prize value
type PrizeCount struct {
	Value int   `bson:"_id" json:"prize_value"`
	Count int64 `bson:"count" json:"count"`
}

// SpinStatistics aggregates a campaign's spins for the admin dashboard
type SpinStatistics struct {
	TotalSpins   int64 `bson:"totalSpins" json:"total_spins"`
	ActiveCount  int64 `bson:"activeCount" json:"active_count"`
	UsedCount    int64 `bson:"usedCount" json:"used_count"`
	ExpiredCount int64 `bson:"expiredCount" json:"expired_count"`

	TotalPrizeValue int64 `bson:"totalPrizeValue" json:"total_prize_value"`
	ActiveValue     int64 `bson:"activeValue" json:"active_value"`
	UsedValue       int64 `bson:"usedValue" json:"used_value"`

	NotifySuccessCount int64 `bson:"notifySuccessCount" json:"n8n_success_count"`
	NotifyFailedCount  int64 `bson:"notifyFailedCount" json:"n8n_failed_count"`

	PrizeBreakdown []PrizeCount `bson:"-" json:"prize_breakdown"`
}
