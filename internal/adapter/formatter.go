package adapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ytabot/internal/domain"
)

// Target selects the rendering of a report.
type Target int

const (
	// TargetText renders a plain-text report for terminals and files.
	TargetText Target = iota
	// TargetJSON renders the report as indented JSON.
	TargetJSON
	// TargetChat renders Telegram Markdown.
	TargetChat
)

// ReportFormatter renders aggregated reports. Stateless and deterministic:
// the same report and target always produce the same text.
type ReportFormatter struct{}

func NewReportFormatter() *ReportFormatter {
	return &ReportFormatter{}
}

// Format renders the report for the requested target.
func (f *ReportFormatter) Format(r *domain.Report, target Target) (string, error) {
	switch target {
	case TargetJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encode report: %w", err)
		}
		return string(data), nil
	case TargetChat:
		return f.formatChat(r), nil
	default:
		return f.formatText(r), nil
	}
}

func (f *ReportFormatter) formatText(r *domain.Report) string {
	var sb strings.Builder
	line := strings.Repeat("=", 60)

	sb.WriteString(line + "\n")
	sb.WriteString("YouTube Analytics Report\n")
	sb.WriteString(fmt.Sprintf("Channel: %s (%s)\n", r.Channel.Title, r.Channel.ID))
	sb.WriteString(fmt.Sprintf("Period: %s to %s\n", r.Period.StartString(), r.Period.EndString()))
	sb.WriteString(fmt.Sprintf("Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(line + "\n\n")

	m := &r.Metrics

	sb.WriteString("CHANNEL TOTALS\n")
	sb.WriteString(fmt.Sprintf("  Subscribers: %s\n", formatCount(int64(r.Channel.SubscriberCount))))
	sb.WriteString(fmt.Sprintf("  Videos: %s\n", formatCount(int64(r.Channel.VideoCount))))
	sb.WriteString(fmt.Sprintf("  Lifetime views: %s\n\n", formatCount(int64(r.Channel.ViewCount))))

	sb.WriteString("SUBSCRIBER DYNAMICS\n")
	sb.WriteString(fmt.Sprintf("  Gained: %s\n", formatCount(m.SubscribersGained)))
	sb.WriteString(fmt.Sprintf("  Lost: %s\n", formatCount(m.SubscribersLost)))
	sb.WriteString(fmt.Sprintf("  Net change: %+d\n", m.NetSubscriberChange()))
	if pct := m.SubscriberChangePercent(); pct != nil {
		sb.WriteString(fmt.Sprintf("  Relative change: %+.2f%%\n", *pct))
	} else {
		sb.WriteString("  Relative change: n/a\n")
	}
	sb.WriteString("\n")

	sb.WriteString("VIEWS\n")
	sb.WriteString(fmt.Sprintf("  Total: %s\n", formatCount(m.Views)))
	if b := m.Breakdown; b != nil && b.TotalViews > 0 {
		sb.WriteString(fmt.Sprintf("  Videos: %s (%.1f%%)\n", formatCount(b.VideoViews), b.VideoPercentage()))
		sb.WriteString(fmt.Sprintf("  Shorts: %s (%.1f%%)\n", formatCount(b.ShortsViews), b.ShortsPercentage()))
		if b.LiveStreamViews > 0 {
			sb.WriteString(fmt.Sprintf("  Live: %s\n", formatCount(b.LiveStreamViews)))
		}
	}
	sb.WriteString(fmt.Sprintf("  Watch time: %s hours\n", formatCount(m.WatchTimeMinutes/60)))
	if active := m.ActiveDays(); active > 0 {
		sb.WriteString(fmt.Sprintf("  Avg daily views: %s (%d active days)\n", formatCount(m.Views/int64(active)), active))
	}
	sb.WriteString("\n")

	sb.WriteString("REVENUE\n")
	if rev := m.Revenue; rev != nil {
		sb.WriteString(fmt.Sprintf("  Estimated: $%.2f\n", rev.Total))
		if rev.AdRevenue != nil {
			sb.WriteString(fmt.Sprintf("  Ads: $%.2f\n", *rev.AdRevenue))
		}
		if rev.RedPartnerRevenue != nil {
			sb.WriteString(fmt.Sprintf("  YouTube Premium: $%.2f\n", *rev.RedPartnerRevenue))
		}
	} else {
		sb.WriteString("  Not available (monetization required)\n")
	}
	sb.WriteString("\n")

	if len(m.GeographyViews) > 0 {
		sb.WriteString("TOP COUNTRIES BY VIEWS\n")
		for i, g := range m.GeographyViews {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, g.CountryCode, formatCount(g.Views)))
		}
		if unattributed := m.Views - sumViews(m.GeographyViews); unattributed > 0 {
			sb.WriteString(fmt.Sprintf("  Other/unspecified: %s\n", formatCount(unattributed)))
		}
		sb.WriteString("\n")
	}

	if len(m.GeographySubscribers) > 0 {
		sb.WriteString("TOP COUNTRIES BY NEW SUBSCRIBERS\n")
		for i, g := range m.GeographySubscribers {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, g.CountryCode, formatCount(g.SubscribersGained)))
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func (f *ReportFormatter) formatChat(r *domain.Report) string {
	var sb strings.Builder
	m := &r.Metrics

	sb.WriteString(fmt.Sprintf("📊 *%s*\n", r.Channel.Title))
	sb.WriteString(fmt.Sprintf("_%s — %s_\n\n", r.Period.StartString(), r.Period.EndString()))

	sb.WriteString(fmt.Sprintf("👥 *Subscribers:* %s\n", formatCount(int64(r.Channel.SubscriberCount))))
	sb.WriteString(fmt.Sprintf("🎬 *Total videos:* %s\n", formatCount(int64(r.Channel.VideoCount))))
	sb.WriteString(fmt.Sprintf("👁 *Lifetime views:* %s\n\n", formatCount(int64(r.Channel.ViewCount))))

	net := m.NetSubscriberChange()
	sb.WriteString(fmt.Sprintf("📈 *New subscribers:* %s\n", formatCount(m.SubscribersGained)))
	sb.WriteString(fmt.Sprintf("📉 *Lost subscribers:* %s\n", formatCount(m.SubscribersLost)))
	sb.WriteString(fmt.Sprintf("➡️ *Net change:* %+d", net))
	if pct := m.SubscriberChangePercent(); pct != nil {
		sb.WriteString(fmt.Sprintf(" (%+.2f%%)", *pct))
	}
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("👀 *Views:* %s\n", formatCount(m.Views)))
	if b := m.Breakdown; b != nil && b.TotalViews > 0 {
		if b.VideoViews > 0 {
			sb.WriteString(fmt.Sprintf("  • Videos: %s (%.1f%%)\n", formatCount(b.VideoViews), b.VideoPercentage()))
		}
		if b.ShortsViews > 0 {
			sb.WriteString(fmt.Sprintf("  • Shorts: %s (%.1f%%)\n", formatCount(b.ShortsViews), b.ShortsPercentage()))
		}
	}
	sb.WriteString(fmt.Sprintf("⏱ *Watch time:* %s hours\n", formatCount(m.WatchTimeMinutes/60)))
	if active := m.ActiveDays(); active > 0 {
		sb.WriteString(fmt.Sprintf("📅 *Avg daily views:* %s\n", formatCount(m.Views/int64(active))))
	}

	if rev := m.Revenue; rev != nil {
		sb.WriteString(fmt.Sprintf("\n💰 *Revenue:* $%.2f\n", rev.Total))
		if rev.AdRevenue != nil {
			sb.WriteString(fmt.Sprintf("  • Ads: $%.2f\n", *rev.AdRevenue))
		}
		if rev.RedPartnerRevenue != nil {
			sb.WriteString(fmt.Sprintf("  • YouTube Premium: $%.2f\n", *rev.RedPartnerRevenue))
		}
	}

	if len(m.GeographyViews) > 0 {
		sb.WriteString("\n🌍 *Top countries (views):*\n")
		for i, g := range m.GeographyViews {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, g.CountryCode, formatCount(g.Views)))
		}
		if unattributed := m.Views - sumViews(m.GeographyViews); unattributed > 0 {
			sb.WriteString(fmt.Sprintf("  • Unspecified regions: %s\n", formatCount(unattributed)))
		}
	}

	if len(m.GeographySubscribers) > 0 {
		sb.WriteString("\n🌏 *Top countries (new subscribers):*\n")
		for i, g := range m.GeographySubscribers {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, g.CountryCode, formatCount(g.SubscribersGained)))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatError translates a domain error into user-facing chat text. Unknown
// errors are reported generically but never swallowed.
func (f *ReportFormatter) FormatError(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "🔐 Authentication required. Use /auth to connect your Google account."
	case errors.Is(err, domain.ErrRefreshFailed):
		return "🔐 Your session expired and could not be renewed. Please re-authenticate with /auth."
	case errors.Is(err, domain.ErrInvalidCode):
		return "❌ That authorization code was rejected. It may be expired or already used — run /auth for a fresh link."
	case errors.Is(err, domain.ErrCredentialCorrupt):
		return "❌ Your stored credentials are unreadable. Use /reset and then /auth to authorize again."
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "⏳ The YouTube API quota is exhausted. Please try again later."
	case errors.Is(err, domain.ErrPermissionDenied):
		return "❌ Your account does not have access to that data."
	case errors.Is(err, domain.ErrNotFound):
		return "❌ Channel not found. Check the identifier and try again."
	default:
		return fmt.Sprintf("❌ Something went wrong: %v", err)
	}
}

// FormatWelcome is the /start reply.
func (f *ReportFormatter) FormatWelcome(firstName string) string {
	name := firstName
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(
		"👋 Welcome %s!\n\n"+
			"I fetch YouTube Analytics reports for your channel.\n\n"+
			"🔧 *Commands:*\n"+
			"/auth - Connect your Google account\n"+
			"/stats - Get your channel statistics\n"+
			"/help - Show all commands\n\n"+
			"Start with /auth to connect your account.", name)
}

// FormatHelp is the /help reply.
func (f *ReportFormatter) FormatHelp() string {
	return "📚 *Available commands:*\n\n" +
		"/start - Welcome message\n" +
		"/auth - Get a Google authorization link\n" +
		"/code <code> - Complete authorization\n" +
		"/stats [channel] - Channel report (own channel when omitted)\n" +
		"/reset - Clear stored credentials\n" +
		"/help - This message\n\n" +
		"*Examples:*\n" +
		"`/stats` — your channel\n" +
		"`/stats @SomeHandle` — channel by handle\n" +
		"`/stats UCxxxxxxxxxxxxxxxxxxxxxx` — channel by ID"
}

func formatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 10_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func sumViews(entries []domain.GeographyEntry) int64 {
	var total int64
	for _, g := range entries {
		total += g.Views
	}
	return total
}
