package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ytabot/internal/domain"
)

// MetricsAPI is the per-endpoint contract the aggregator fans out over.
// *youtube.Client implements it; tests substitute fakes.
type MetricsAPI interface {
	OwnChannel(ctx context.Context) (*domain.Channel, error)
	ChannelByID(ctx context.Context, id string) (*domain.Channel, error)
	SearchChannel(ctx context.Context, query string) (*domain.Channel, error)
	DailyMetrics(ctx context.Context, channelID string, period domain.DateRange) ([]domain.DailyMetrics, error)
	ContentTypeBreakdown(ctx context.Context, channelID string, period domain.DateRange) (*domain.ViewsBreakdown, error)
	GeographyViews(ctx context.Context, channelID string, period domain.DateRange) ([]domain.GeographyEntry, error)
	GeographySubscribers(ctx context.Context, channelID string, period domain.DateRange) ([]domain.GeographyEntry, error)
	Revenue(ctx context.Context, channelID string, period domain.DateRange) (*domain.RevenueMetrics, error)
}

// ReportOptions tunes a single aggregation run.
type ReportOptions struct {
	// SkipRevenue omits the revenue call entirely.
	SkipRevenue bool
}

// AnalyticsService merges the independent metric fetches for one channel and
// period into a single immutable report. Revenue permission failures degrade
// to an absent revenue field; every other failure aborts the aggregation.
// The service performs no retries.
type AnalyticsService struct {
	api    MetricsAPI
	logger *zap.Logger
	now    func() time.Time
}

func NewAnalyticsService(api MetricsAPI, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		api:    api,
		logger: logger,
		now:    time.Now,
	}
}

// BuildReport resolves the identifier, fetches every metric series for the
// period and assembles the report. An empty identifier means the
// authenticated user's own channel; a raw channel ID skips search.
func (s *AnalyticsService) BuildReport(ctx context.Context, identifier string, period domain.DateRange, opts ReportOptions) (*domain.Report, error) {
	channel, err := s.resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	s.logger.Info("building report",
		zap.String("channel_id", channel.ID),
		zap.String("period", period.String()))

	daily, err := s.api.DailyMetrics(ctx, channel.ID, period)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.api.ContentTypeBreakdown(ctx, channel.ID, period)
	if err != nil {
		return nil, err
	}

	geoViews, err := s.api.GeographyViews(ctx, channel.ID, period)
	if err != nil {
		return nil, err
	}

	geoSubs, err := s.api.GeographySubscribers(ctx, channel.ID, period)
	if err != nil {
		return nil, err
	}

	metrics := domain.ChannelMetrics{
		Daily:                daily,
		Breakdown:            breakdown,
		GeographyViews:       geoViews,
		GeographySubscribers: geoSubs,
	}
	for _, d := range daily {
		metrics.Views += d.Views
		metrics.WatchTimeMinutes += d.WatchTimeMinutes
		metrics.SubscribersGained += d.SubscribersGained
		metrics.SubscribersLost += d.SubscribersLost
	}
	// View-weighted so low-traffic days do not skew the period average.
	if metrics.Views > 0 {
		var weighted int64
		for _, d := range daily {
			weighted += d.AverageViewDurationSeconds * d.Views
		}
		metrics.AverageViewDuration = weighted / metrics.Views
	}

	// Subscriber total at period start, reconstructed from the current total
	// and the period's net change. Unknown (zero) when the current total is
	// hidden or smaller than the net gain.
	if prior := int64(channel.SubscriberCount) - metrics.NetSubscriberChange(); prior > 0 && channel.SubscriberCount > 0 {
		metrics.PriorSubscriberTotal = prior
	}

	if !opts.SkipRevenue {
		revenue, err := s.api.Revenue(ctx, channel.ID, period)
		switch {
		case errors.Is(err, domain.ErrPermissionDenied):
			// Expected for non-monetized or non-owned channels; the report
			// carries an absent revenue field instead of failing.
			s.logger.Info("revenue unavailable",
				zap.String("channel_id", channel.ID))
		case err != nil:
			return nil, err
		default:
			metrics.Revenue = revenue
		}
	}

	return &domain.Report{
		Channel:     *channel,
		Period:      period,
		Metrics:     metrics,
		GeneratedAt: s.now(),
	}, nil
}

func (s *AnalyticsService) resolve(ctx context.Context, identifier string) (*domain.Channel, error) {
	switch {
	case identifier == "":
		return s.api.OwnChannel(ctx)
	case domain.IsChannelID(identifier):
		return s.api.ChannelByID(ctx, identifier)
	default:
		ch, err := s.api.SearchChannel(ctx, identifier)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", identifier, err)
		}
		return ch, nil
	}
}
