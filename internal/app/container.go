package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"ytabot/internal/adapter"
	"ytabot/internal/auth"
	"ytabot/internal/cache"
	"ytabot/internal/config"
	"ytabot/internal/service"
	"ytabot/internal/telegram"
	"ytabot/internal/youtube"
)

// Container bundles the assembled services both front ends consume.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Auth      *auth.Manager
	Formatter *adapter.ReportFormatter

	oauthCfg *oauth2.Config
	cache    *cache.Cache
}

// Build assembles the credential store, session manager and optional
// resolution cache. Heavy per-user API clients are built lazily through
// Analytics.
func Build(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := auth.NewFileStore(cfg.Google.TokenDir)
	if err != nil {
		return nil, fmt.Errorf("create credential store: %w", err)
	}

	oauthCfg := auth.NewOAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret)
	manager := auth.NewManager(oauthCfg, store, logger)

	var resolutionCache *cache.Cache
	if cfg.Redis.Host != "" {
		resolutionCache, err = cache.New(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create resolution cache: %w", err)
		}
	}

	return &Container{
		Config:    cfg,
		Logger:    logger,
		Auth:      manager,
		Formatter: adapter.NewReportFormatter(),
		oauthCfg:  oauthCfg,
		cache:     resolutionCache,
	}, nil
}

// Analytics builds a per-user analytics service backed by the user's stored
// credential, refreshing it first when needed.
func (c *Container) Analytics(ctx context.Context, userID string) (*service.AnalyticsService, error) {
	cred, err := c.Auth.ValidCredential(ctx, userID)
	if err != nil {
		return nil, err
	}

	httpClient := c.oauthCfg.Client(ctx, cred.Token())
	client, err := youtube.NewClient(ctx, httpClient, youtube.Limits{
		TopCountriesViews:       c.Config.Report.TopCountryLimitViews,
		TopCountriesSubscribers: c.Config.Report.TopCountryLimitSubscribers,
	}, c.cache, c.Logger)
	if err != nil {
		return nil, err
	}

	return service.NewAnalyticsService(client, c.Logger), nil
}

// NewBot wires the Telegram front end.
func (c *Container) NewBot() (*telegram.Bot, error) {
	api, err := telegram.NewTGBotAPIClient(c.Config.Telegram.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram client: %w", err)
	}

	return telegram.NewBot(api, &telegram.Dependencies{
		Auth:         c.Auth,
		Analytics:    c.Analytics,
		Formatter:    c.Formatter,
		DefaultStart: c.Config.Report.DefaultStartDate,
		Logger:       c.Logger,
	}), nil
}

// Close releases shared resources.
func (c *Container) Close() error {
	return c.cache.Close()
}
