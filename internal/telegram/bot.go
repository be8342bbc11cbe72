package telegram

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"ytabot/internal/adapter"
	"ytabot/internal/auth"
	"ytabot/internal/domain"
	"ytabot/internal/service"
	"ytabot/internal/util"
)

const (
	pollInterval = 2 * time.Second

	// Telegram rejects messages over 4096 characters; leave headroom for the
	// truncation ellipsis.
	maxMessageRunes = 4000
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// AnalyticsFactory builds a per-user analytics service from the user's
// stored credential. Returns domain auth errors when the user cannot be
// served.
type AnalyticsFactory func(ctx context.Context, userID string) (*service.AnalyticsService, error)

// Dependencies wires the bot to the core services.
type Dependencies struct {
	Auth         *auth.Manager
	Analytics    AnalyticsFactory
	Formatter    *adapter.ReportFormatter
	DefaultStart time.Time
	Logger       *zap.Logger
}

// Bot runs the Telegram front end: long-poll for updates, dispatch each
// command on its own goroutine, serialize commands of the same user.
type Bot struct {
	api  BotAPI
	deps *Dependencies

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex

	wg conc.WaitGroup
}

func NewBot(api BotAPI, deps *Dependencies) *Bot {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Bot{
		api:       api,
		deps:      deps,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// Start polls for updates until the context is cancelled. Each update is
// handled concurrently; commands from the same user run sequentially.
func (b *Bot) Start(ctx context.Context) error {
	b.deps.Logger.Info("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		messages, err := b.api.GetUpdates()
		if err != nil {
			b.deps.Logger.Warn("get updates failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
			continue
		}

		for _, msg := range messages {
			msg := msg
			b.wg.Go(func() {
				b.handle(ctx, msg)
			})
		}
	}
}

// Shutdown waits for in-flight handlers to finish.
func (b *Bot) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) handle(ctx context.Context, msg Message) {
	if !strings.HasPrefix(msg.Text, "/") {
		return
	}

	lock := b.userLock(msg.UserID)
	lock.Lock()
	defer lock.Unlock()

	fields := strings.Fields(msg.Text)
	command := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	args := fields[1:]

	b.deps.Logger.Info("command received",
		zap.String("command", command),
		zap.Int64("user_id", msg.UserID))

	switch command {
	case "start":
		b.reply(msg.ChatID, b.deps.Formatter.FormatWelcome(msg.FirstName))
	case "help":
		b.reply(msg.ChatID, b.deps.Formatter.FormatHelp())
	case "auth":
		b.handleAuth(msg)
	case "code":
		b.handleCode(ctx, msg, args)
	case "stats":
		b.handleStats(ctx, msg, args)
	case "reset":
		b.handleReset(msg)
	default:
		b.sendPlain(msg.ChatID, "❓ Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) handleAuth(msg Message) {
	userID := userKey(msg.UserID)

	if b.deps.Auth.Authorized(userID) {
		b.reply(msg.ChatID, "✅ You're already authenticated!\nUse /stats to get channel statistics.")
		return
	}

	url := b.deps.Auth.BeginAuth(userID)
	b.reply(msg.ChatID, "🔐 *Google authorization*\n\n1. Open the link below and grant access:")
	b.sendPlain(msg.ChatID, url)
	b.reply(msg.ChatID, "2. Google will show you a code.\n3. Send it back with:\n`/code YOUR_CODE`")
}

func (b *Bot) handleCode(ctx context.Context, msg Message, args []string) {
	userID := userKey(msg.UserID)

	if b.deps.Auth.Authorized(userID) {
		b.reply(msg.ChatID, "✅ You're already authenticated!")
		return
	}
	if len(args) == 0 {
		b.reply(msg.ChatID, "Please provide the authorization code:\n`/code YOUR_CODE`")
		return
	}

	if _, err := b.deps.Auth.CompleteAuth(ctx, userID, args[0]); err != nil {
		b.reply(msg.ChatID, b.deps.Formatter.FormatError(err))
		return
	}
	b.reply(msg.ChatID, "✅ *Authorization successful!*\n\nYou can now use /stats.")
}

func (b *Bot) handleStats(ctx context.Context, msg Message, args []string) {
	userID := userKey(msg.UserID)

	identifier, period, err := b.parseStatsArgs(args)
	if err != nil {
		b.sendPlain(msg.ChatID, "❌ "+err.Error())
		return
	}

	b.sendPlain(msg.ChatID, "🔄 Fetching statistics...")

	analytics, err := b.deps.Analytics(ctx, userID)
	if err != nil {
		b.reply(msg.ChatID, b.deps.Formatter.FormatError(err))
		return
	}

	report, err := analytics.BuildReport(ctx, identifier, period, service.ReportOptions{})
	if err != nil {
		b.deps.Logger.Warn("report failed",
			zap.Int64("user_id", msg.UserID),
			zap.Error(err))
		b.reply(msg.ChatID, b.deps.Formatter.FormatError(err))
		return
	}

	text, err := b.deps.Formatter.Format(report, adapter.TargetChat)
	if err != nil {
		b.reply(msg.ChatID, b.deps.Formatter.FormatError(err))
		return
	}
	b.reply(msg.ChatID, text)
}

func (b *Bot) handleReset(msg Message) {
	if err := b.deps.Auth.Revoke(userKey(msg.UserID)); err != nil {
		b.sendPlain(msg.ChatID, "ℹ️ No credentials found to reset. Use /auth to authenticate.")
		return
	}
	b.reply(msg.ChatID, "🔄 *Authentication reset.*\nUse /auth to authenticate again.")
}

// parseStatsArgs accepts an optional channel identifier and an optional
// YYYY-MM month, in either order. Default period runs from the configured
// start date through today.
func (b *Bot) parseStatsArgs(args []string) (string, domain.DateRange, error) {
	identifier := ""
	var month string

	for _, arg := range args {
		if monthPattern.MatchString(arg) && month == "" {
			month = arg
			continue
		}
		if identifier == "" {
			identifier = arg
		}
	}

	if month == "" {
		period, err := domain.NewDateRange(b.deps.DefaultStart, time.Now())
		return identifier, period, err
	}

	start, err := time.Parse("2006-01", month)
	if err != nil {
		return "", domain.DateRange{}, err
	}
	if start.After(time.Now()) {
		return "", domain.DateRange{}, &statsArgError{month}
	}
	end := start.AddDate(0, 1, -1)
	if end.After(time.Now()) {
		end = time.Now()
	}
	period, err := domain.NewDateRange(start, end)
	return identifier, period, err
}

type statsArgError struct{ month string }

func (e *statsArgError) Error() string {
	return "cannot get statistics for future month " + e.month
}

func (b *Bot) reply(chatID int64, text string) {
	text = util.TruncateString(text, maxMessageRunes)
	if err := b.api.SendMarkdown(chatID, text); err != nil {
		b.deps.Logger.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendPlain(chatID int64, text string) {
	text = util.TruncateString(text, maxMessageRunes)
	if err := b.api.SendMessage(chatID, text); err != nil {
		b.deps.Logger.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) userLock(userID int64) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		b.userLocks[userID] = lock
	}
	return lock
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
