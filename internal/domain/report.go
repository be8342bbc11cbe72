package domain

import "time"

// DailyMetrics is one row of the per-day analytics series.
type DailyMetrics struct {
	Date                       time.Time `json:"date"`
	Views                      int64     `json:"views"`
	WatchTimeMinutes           int64     `json:"watch_time_minutes"`
	AverageViewDurationSeconds int64     `json:"average_view_duration_seconds"`
	SubscribersGained          int64     `json:"subscribers_gained"`
	SubscribersLost            int64     `json:"subscribers_lost"`
}

// HasActivity reports whether the day saw any views or subscriber movement.
func (d DailyMetrics) HasActivity() bool {
	return d.Views > 0 || d.SubscribersGained > 0 || d.SubscribersLost > 0
}

// ViewsBreakdown splits period views by creator content type.
type ViewsBreakdown struct {
	TotalViews      int64 `json:"total_views"`
	VideoViews      int64 `json:"video_views"`
	ShortsViews     int64 `json:"shorts_views"`
	LiveStreamViews int64 `json:"live_stream_views"`
}

// VideoPercentage returns the share of views from regular videos.
func (b ViewsBreakdown) VideoPercentage() float64 {
	return percentage(b.VideoViews, b.TotalViews)
}

// ShortsPercentage returns the share of views from Shorts.
func (b ViewsBreakdown) ShortsPercentage() float64 {
	return percentage(b.ShortsViews, b.TotalViews)
}

// GeographyEntry is one country row of a top-N breakdown. Ordering of the
// containing slice is the API sort order and is part of the report contract.
type GeographyEntry struct {
	CountryCode       string `json:"country_code"`
	Views             int64  `json:"views,omitempty"`
	WatchTimeMinutes  int64  `json:"watch_time_minutes,omitempty"`
	SubscribersGained int64  `json:"subscribers_gained,omitempty"`
}

// RevenueMetrics holds estimated revenue for the period. The struct is absent
// from a report (nil), never zeroed, when the credential cannot read monetary
// data. Ad and Premium splits may individually be unavailable.
type RevenueMetrics struct {
	Total             float64  `json:"total"`
	AdRevenue         *float64 `json:"ad_revenue,omitempty"`
	RedPartnerRevenue *float64 `json:"red_partner_revenue,omitempty"`
}

// ChannelMetrics aggregates every metric series fetched for one channel and
// period. Constructed once per report and not mutated afterwards.
type ChannelMetrics struct {
	SubscribersGained    int64            `json:"subscribers_gained"`
	SubscribersLost      int64            `json:"subscribers_lost"`
	Views                int64            `json:"views"`
	WatchTimeMinutes     int64            `json:"watch_time_minutes"`
	AverageViewDuration  int64            `json:"average_view_duration_seconds"`
	Daily                []DailyMetrics   `json:"daily,omitempty"`
	Breakdown            *ViewsBreakdown  `json:"views_breakdown,omitempty"`
	Revenue              *RevenueMetrics  `json:"revenue,omitempty"`
	GeographyViews       []GeographyEntry `json:"geography_views,omitempty"`
	GeographySubscribers []GeographyEntry `json:"geography_subscribers,omitempty"`

	// PriorSubscriberTotal is the estimated subscriber count at period start,
	// used for the relative change. Zero means unknown.
	PriorSubscriberTotal int64 `json:"prior_subscriber_total,omitempty"`
}

// NetSubscriberChange returns gained minus lost for the period.
func (m *ChannelMetrics) NetSubscriberChange() int64 {
	return m.SubscribersGained - m.SubscribersLost
}

// SubscriberChangePercent returns the net change relative to the subscriber
// total at period start. Nil when the prior total is unknown or zero; a nil
// result means "undefined", not 0%.
func (m *ChannelMetrics) SubscriberChangePercent() *float64 {
	if m.PriorSubscriberTotal <= 0 {
		return nil
	}
	pct := float64(m.NetSubscriberChange()) / float64(m.PriorSubscriberTotal) * 100
	return &pct
}

// ActiveDays counts days in the series with any activity.
func (m *ChannelMetrics) ActiveDays() int {
	n := 0
	for _, d := range m.Daily {
		if d.HasActivity() {
			n++
		}
	}
	return n
}

// Report is the immutable aggregation result for one channel and period.
type Report struct {
	Channel     Channel        `json:"channel"`
	Period      DateRange      `json:"period"`
	Metrics     ChannelMetrics `json:"metrics"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// HasRevenue reports whether monetary data was available for the period.
func (r *Report) HasRevenue() bool {
	return r.Metrics.Revenue != nil
}

func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
