package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"ytabot/internal/adapter"
	"ytabot/internal/auth"
	"ytabot/internal/domain"
	"ytabot/internal/service"
)

type sentMessage struct {
	chatID   int64
	text     string
	markdown bool
}

type fakeBotAPI struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeBotAPI) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID, text, false})
	return nil
}

func (f *fakeBotAPI) SendMarkdown(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID, text, true})
	return nil
}

func (f *fakeBotAPI) GetUpdates() ([]Message, error) { return nil, nil }

func (f *fakeBotAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.text
	}
	return out
}

func (f *fakeBotAPI) joined() string {
	return strings.Join(f.texts(), "\n---\n")
}

type fakeFlow struct {
	exchangeErr error
}

func (f *fakeFlow) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (f *fakeFlow) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &oauth2.Token{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeFlow) TokenSource(_ context.Context, t *oauth2.Token) oauth2.TokenSource {
	return oauth2.StaticTokenSource(t)
}

type fakeChannelAPI struct{}

func (fakeChannelAPI) OwnChannel(context.Context) (*domain.Channel, error) {
	return &domain.Channel{ID: "UCownchannel123456789012", Title: "Own Channel", SubscriberCount: 100}, nil
}

func (f fakeChannelAPI) ChannelByID(_ context.Context, id string) (*domain.Channel, error) {
	return &domain.Channel{ID: id, Title: "By ID", SubscriberCount: 100}, nil
}

func (f fakeChannelAPI) SearchChannel(_ context.Context, query string) (*domain.Channel, error) {
	return &domain.Channel{ID: "UCsearched12345678901234", Title: query, SubscriberCount: 100}, nil
}

func (fakeChannelAPI) DailyMetrics(context.Context, string, domain.DateRange) ([]domain.DailyMetrics, error) {
	return []domain.DailyMetrics{{Date: time.Now(), Views: 10}}, nil
}

func (fakeChannelAPI) ContentTypeBreakdown(context.Context, string, domain.DateRange) (*domain.ViewsBreakdown, error) {
	return &domain.ViewsBreakdown{TotalViews: 10, VideoViews: 10}, nil
}

func (fakeChannelAPI) GeographyViews(context.Context, string, domain.DateRange) ([]domain.GeographyEntry, error) {
	return nil, nil
}

func (fakeChannelAPI) GeographySubscribers(context.Context, string, domain.DateRange) ([]domain.GeographyEntry, error) {
	return nil, nil
}

func (fakeChannelAPI) Revenue(context.Context, string, domain.DateRange) (*domain.RevenueMetrics, error) {
	return nil, domain.ErrPermissionDenied
}

func newTestBot(t *testing.T) (*Bot, *fakeBotAPI, *auth.Manager) {
	t.Helper()

	store, err := auth.NewFileStore(t.TempDir())
	require.NoError(t, err)
	manager := auth.NewManager(&fakeFlow{}, store, nil)

	factory := func(ctx context.Context, userID string) (*service.AnalyticsService, error) {
		if _, err := manager.ValidCredential(ctx, userID); err != nil {
			return nil, err
		}
		return service.NewAnalyticsService(fakeChannelAPI{}, nil), nil
	}

	api := &fakeBotAPI{}
	bot := NewBot(api, &Dependencies{
		Auth:         manager,
		Analytics:    factory,
		Formatter:    adapter.NewReportFormatter(),
		DefaultStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return bot, api, manager
}

func message(text string) Message {
	return Message{ChatID: 10, UserID: 42, FirstName: "Sam", Text: text}
}

func authorize(t *testing.T, manager *auth.Manager) {
	t.Helper()
	_, err := manager.CompleteAuth(context.Background(), "42", "good-code")
	require.NoError(t, err)
}

func TestBotStart(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handle(context.Background(), message("/start"))

	out := api.joined()
	assert.Contains(t, out, "Welcome Sam")
	assert.Contains(t, out, "/auth")
}

func TestBotHelp(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handle(context.Background(), message("/help"))
	assert.Contains(t, api.joined(), "Available commands")
}

func TestBotUnknownCommand(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handle(context.Background(), message("/frobnicate"))
	assert.Contains(t, api.joined(), "Unknown command")
}

func TestBotIgnoresPlainText(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handle(context.Background(), message("hello bot"))
	assert.Empty(t, api.texts())
}

func TestBotCommandWithBotSuffix(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handle(context.Background(), message("/help@ytabot"))
	assert.Contains(t, api.joined(), "Available commands")
}

func TestBotAuthSendsConsentURL(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handle(context.Background(), message("/auth"))

	out := api.joined()
	assert.Contains(t, out, "https://accounts.example.com/consent?state=state-42")
	assert.Contains(t, out, "/code")
}

func TestBotAuthWhenAlreadyAuthorized(t *testing.T) {
	bot, api, manager := newTestBot(t)
	authorize(t, manager)

	bot.handle(context.Background(), message("/auth"))

	out := api.joined()
	assert.Contains(t, out, "already authenticated")
	assert.NotContains(t, out, "consent")
}

func TestBotCodeCompletesAuthorization(t *testing.T) {
	bot, api, manager := newTestBot(t)

	bot.handle(context.Background(), message("/code abc123"))

	assert.Contains(t, api.joined(), "Authorization successful")
	assert.True(t, manager.Authorized("42"))
}

func TestBotCodeWithoutArgument(t *testing.T) {
	bot, api, manager := newTestBot(t)

	bot.handle(context.Background(), message("/code"))

	assert.Contains(t, api.joined(), "provide the authorization code")
	assert.False(t, manager.Authorized("42"))
}

func TestBotCodeRejected(t *testing.T) {
	bot, api, manager := newTestBot(t)

	store, err := auth.NewFileStore(t.TempDir())
	require.NoError(t, err)
	badManager := auth.NewManager(&fakeFlow{exchangeErr: errors.New("invalid_grant")}, store, nil)
	bot.deps.Auth = badManager

	bot.handle(context.Background(), message("/code bad"))

	assert.Contains(t, api.joined(), "authorization code was rejected")
	assert.False(t, manager.Authorized("42"))
}

func TestBotStatsRequiresAuth(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handle(context.Background(), message("/stats"))
	assert.Contains(t, api.joined(), "Authentication required")
}

func TestBotStatsDeliversReport(t *testing.T) {
	bot, api, manager := newTestBot(t)
	authorize(t, manager)

	bot.handle(context.Background(), message("/stats"))

	out := api.joined()
	assert.Contains(t, out, "Fetching statistics")
	assert.Contains(t, out, "Own Channel")
	assert.Contains(t, out, "*Views:*")
}

func TestBotStatsWithIdentifier(t *testing.T) {
	bot, api, manager := newTestBot(t)
	authorize(t, manager)

	bot.handle(context.Background(), message("/stats @SomeHandle"))
	assert.Contains(t, api.joined(), "@SomeHandle")
}

func TestBotStatsFutureMonthRejected(t *testing.T) {
	bot, api, manager := newTestBot(t)
	authorize(t, manager)

	future := time.Now().AddDate(1, 0, 0).Format("2006-01")
	bot.handle(context.Background(), message("/stats "+future))
	assert.Contains(t, api.joined(), "future month")
}

func TestBotResetClearsCredentials(t *testing.T) {
	bot, api, manager := newTestBot(t)
	authorize(t, manager)

	bot.handle(context.Background(), message("/reset"))

	assert.Contains(t, api.joined(), "Authentication reset")
	assert.False(t, manager.Authorized("42"))
}

func TestBotResetWithoutCredentials(t *testing.T) {
	bot, api, _ := newTestBot(t)

	bot.handle(context.Background(), message("/reset"))
	assert.Contains(t, api.joined(), "No credentials found")
}

func TestParseStatsArgs(t *testing.T) {
	bot, _, _ := newTestBot(t)

	t.Run("empty uses default range", func(t *testing.T) {
		id, period, err := bot.parseStatsArgs(nil)
		require.NoError(t, err)
		assert.Empty(t, id)
		assert.Equal(t, "2024-01-01", period.StartString())
	})

	t.Run("identifier only", func(t *testing.T) {
		id, _, err := bot.parseStatsArgs([]string{"@handle"})
		require.NoError(t, err)
		assert.Equal(t, "@handle", id)
	})

	t.Run("month only", func(t *testing.T) {
		id, period, err := bot.parseStatsArgs([]string{"2024-03"})
		require.NoError(t, err)
		assert.Empty(t, id)
		assert.Equal(t, "2024-03-01", period.StartString())
		assert.Equal(t, "2024-03-31", period.EndString())
	})

	t.Run("identifier and month in either order", func(t *testing.T) {
		id, period, err := bot.parseStatsArgs([]string{"2024-03", "@handle"})
		require.NoError(t, err)
		assert.Equal(t, "@handle", id)
		assert.Equal(t, "2024-03-01", period.StartString())
	})

	t.Run("future month fails", func(t *testing.T) {
		future := time.Now().AddDate(2, 0, 0).Format("2006-01")
		_, _, err := bot.parseStatsArgs([]string{future})
		assert.Error(t, err)
	})
}
