package youtube

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
	yta "google.golang.org/api/youtubeanalytics/v2"

	"ytabot/internal/cache"
	"ytabot/internal/domain"
)

const resolutionCacheTTL = 2 * time.Hour

// Limits carries the top-N country caps for the geography breakdowns.
type Limits struct {
	TopCountriesViews       int64
	TopCountriesSubscribers int64
}

// Client is a typed wrapper over the YouTube Data and Analytics APIs, built
// per user from an OAuth HTTP client. It performs no retries; upstream
// failures are classified into the domain taxonomy and surfaced as-is.
type Client struct {
	data      *yt.Service
	analytics *yta.Service
	limits    Limits
	cache     *cache.Cache
	logger    *zap.Logger
}

// NewClient builds both API services on the given authenticated HTTP client.
// The cache may be nil; resolution then always hits the Data API.
func NewClient(ctx context.Context, httpClient *http.Client, limits Limits, c *cache.Cache, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := yt.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create data service: %w", err)
	}
	analytics, err := yta.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create analytics service: %w", err)
	}

	return &Client{
		data:      data,
		analytics: analytics,
		limits:    limits,
		cache:     c,
		logger:    logger,
	}, nil
}

// OwnChannel returns the channel owned by the authenticated user.
func (c *Client) OwnChannel(ctx context.Context) (*domain.Channel, error) {
	call := c.data.Channels.List([]string{"snippet", "statistics"}).Mine(true)
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("own channel", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("own channel: %w", domain.ErrNotFound)
	}
	return channelFromItem(resp.Items[0]), nil
}

// ChannelByID performs an exact lookup by raw channel ID.
func (c *Client) ChannelByID(ctx context.Context, id string) (*domain.Channel, error) {
	call := c.data.Channels.List([]string{"snippet", "statistics"}).Id(id)
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("channel lookup", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel %s: %w", id, domain.ErrNotFound)
	}
	return channelFromItem(resp.Items[0]), nil
}

// SearchChannel resolves a handle or display name through channel search.
// The first result wins; search.list orders by relevance, which makes the
// tie-break deterministic for a given query. Resolved IDs are cached.
func (c *Client) SearchChannel(ctx context.Context, query string) (*domain.Channel, error) {
	cacheKey := "ytabot:channel:" + query

	var cachedID string
	if c.cache.Get(ctx, cacheKey, &cachedID) {
		ch, err := c.ChannelByID(ctx, cachedID)
		if err == nil {
			return ch, nil
		}
		c.logger.Warn("cached channel id no longer resolves",
			zap.String("query", query), zap.String("channel_id", cachedID))
	}

	call := c.data.Search.List([]string{"snippet"}).
		Q(query).
		Type("channel").
		MaxResults(5)
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("channel search", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Id == nil || resp.Items[0].Id.ChannelId == "" {
		return nil, fmt.Errorf("channel %q: %w", query, domain.ErrNotFound)
	}

	id := resp.Items[0].Id.ChannelId
	ch, err := c.ChannelByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, cacheKey, id, resolutionCacheTTL)
	return ch, nil
}

// DailyMetrics fetches the per-day series for the period.
func (c *Client) DailyMetrics(ctx context.Context, channelID string, period domain.DateRange) ([]domain.DailyMetrics, error) {
	resp, err := c.query(channelID, period).
		Metrics("views,estimatedMinutesWatched,averageViewDuration,subscribersGained,subscribersLost").
		Dimensions("day").
		Sort("day").
		Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("daily metrics", err)
	}

	series := make([]domain.DailyMetrics, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		day, err := time.Parse("2006-01-02", rowString(row, 0))
		if err != nil {
			continue
		}
		series = append(series, domain.DailyMetrics{
			Date:                       day,
			Views:                      rowInt(row, 1),
			WatchTimeMinutes:           rowInt(row, 2),
			AverageViewDurationSeconds: rowInt(row, 3),
			SubscribersGained:          rowInt(row, 4),
			SubscribersLost:            rowInt(row, 5),
		})
	}
	return series, nil
}

// ContentTypeBreakdown splits period views by creator content type.
func (c *Client) ContentTypeBreakdown(ctx context.Context, channelID string, period domain.DateRange) (*domain.ViewsBreakdown, error) {
	resp, err := c.query(channelID, period).
		Metrics("views").
		Dimensions("creatorContentType").
		Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("content type breakdown", err)
	}

	b := &domain.ViewsBreakdown{}
	for _, row := range resp.Rows {
		views := rowInt(row, 1)
		switch rowString(row, 0) {
		case "VIDEO_TYPE_UPLOADED", "videoOnDemand", "LONG_FORM":
			b.VideoViews += views
		case "VIDEO_TYPE_SHORTS", "SHORT_FORM", "shorts", "SHORTS":
			b.ShortsViews += views
		case "LIVE_STREAM", "liveStream":
			b.LiveStreamViews += views
		}
		b.TotalViews += views
	}
	return b, nil
}

// GeographyViews returns the top countries by views, highest first.
func (c *Client) GeographyViews(ctx context.Context, channelID string, period domain.DateRange) ([]domain.GeographyEntry, error) {
	resp, err := c.query(channelID, period).
		Metrics("views,estimatedMinutesWatched").
		Dimensions("country").
		Sort("-views").
		MaxResults(c.limits.TopCountriesViews).
		Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("geography views", err)
	}

	entries := make([]domain.GeographyEntry, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		entries = append(entries, domain.GeographyEntry{
			CountryCode:      rowString(row, 0),
			Views:            rowInt(row, 1),
			WatchTimeMinutes: rowInt(row, 2),
		})
	}
	return entries, nil
}

// GeographySubscribers returns the top countries by subscribers gained.
func (c *Client) GeographySubscribers(ctx context.Context, channelID string, period domain.DateRange) ([]domain.GeographyEntry, error) {
	resp, err := c.query(channelID, period).
		Metrics("subscribersGained").
		Dimensions("country").
		Sort("-subscribersGained").
		MaxResults(c.limits.TopCountriesSubscribers).
		Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("geography subscribers", err)
	}

	entries := make([]domain.GeographyEntry, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		entries = append(entries, domain.GeographyEntry{
			CountryCode:       rowString(row, 0),
			SubscribersGained: rowInt(row, 1),
		})
	}
	return entries, nil
}

// Revenue fetches the estimated revenue split for the period. A nil result
// with nil error means the channel reported no monetary rows.
func (c *Client) Revenue(ctx context.Context, channelID string, period domain.DateRange) (*domain.RevenueMetrics, error) {
	resp, err := c.query(channelID, period).
		Metrics("estimatedRevenue,estimatedAdRevenue,estimatedRedPartnerRevenue").
		Dimensions("day").
		Sort("day").
		Context(ctx).Do()
	if err != nil {
		return nil, classifyAPIError("revenue", err)
	}
	if len(resp.Rows) == 0 {
		return nil, nil
	}

	var total, ad, red float64
	for _, row := range resp.Rows {
		total += rowFloat(row, 1)
		ad += rowFloat(row, 2)
		red += rowFloat(row, 3)
	}

	rev := &domain.RevenueMetrics{Total: total}
	if ad > 0 {
		rev.AdRevenue = &ad
	}
	if red > 0 {
		rev.RedPartnerRevenue = &red
	}
	return rev, nil
}

func (c *Client) query(channelID string, period domain.DateRange) *yta.ReportsQueryCall {
	return c.analytics.Reports.Query().
		Ids("channel==" + channelID).
		StartDate(period.StartString()).
		EndDate(period.EndString())
}

func channelFromItem(item *yt.Channel) *domain.Channel {
	ch := &domain.Channel{ID: item.Id}
	if item.Snippet != nil {
		ch.Title = item.Snippet.Title
	}
	if item.Statistics != nil {
		ch.SubscriberCount = item.Statistics.SubscriberCount
		ch.VideoCount = item.Statistics.VideoCount
		ch.ViewCount = item.Statistics.ViewCount
	}
	return ch
}

// Analytics rows decode as []interface{} with strings for dimensions and
// float64 for metric values.

func rowString(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	s, _ := row[i].(string)
	return s
}

func rowInt(row []interface{}, i int) int64 {
	return int64(rowFloat(row, i))
}

func rowFloat(row []interface{}, i int) float64 {
	if i >= len(row) {
		return 0
	}
	f, _ := row[i].(float64)
	return f
}
