package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cinevibe/cinevibe/internal/api"
	"github.com/cinevibe/cinevibe/internal/auth"
	"github.com/cinevibe/cinevibe/internal/config"
	"github.com/cinevibe/cinevibe/internal/logging"
	"github.com/cinevibe/cinevibe/internal/prefs"
	"github.com/cinevibe/cinevibe/internal/profile"
	"github.com/cinevibe/cinevibe/internal/social"
	"github.com/cinevibe/cinevibe/internal/ui"
)

// Options configure the CineVibe application.
type Options struct {
	ConfigPath string // empty uses ~/.config/cinevibe/config.toml
	PrefsPath  string // empty uses ~/.config/cinevibe/prefs.toml
}

// Run boots the CineVibe TUI until the context is cancelled or the user
// quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	tokens := auth.NewTokenProvider(cfg.Token, cfg.TokenPath)
	identity, err := tokens.Identity()
	if err != nil {
		return fmt.Errorf("read identity: %w", err)
	}

	client, err := api.NewClient(api.Options{
		BaseURL:           cfg.APIURL,
		Timeout:           cfg.RequestTimeout(),
		MaxRetries:        cfg.MaxRetries,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Tokens:            tokens,
		Logger:            logger.Named("api"),
	})
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}

	logger.Info("starting",
		zap.String("api_url", cfg.APIURL),
		zap.String("user_id", identity.UserID),
		zap.Int("page_size", cfg.PageSize))

	profiles := profile.New(client,
		profile.WithTTL(cfg.ProfileTTL()),
		profile.WithLogger(logger.Named("profile")),
	)

	// Keep the header's profile fresh in the background
	StartProfileRefresher(ctx, profiles, cfg.ProfileTTL(), logger.Named("refresher"))

	err = ui.Run(ui.Options{
		Context:  ctx,
		Backend:  client,
		Profile:  profiles,
		Identity: identity,
		ViewOptions: social.Options{
			PageSize:   cfg.PageSize,
			ResetDelay: cfg.OperationReset(),
			Logger:     logger,
		},
		LogPath:   cfg.LogPath,
		ThemeName: userPrefs.Theme,
		StartView: userPrefs.StartView,
		PrefsPath: opts.PrefsPath,
		Logger:    logger.Named("ui"),
	})
	logger.Info("stopped", zap.Error(err))
	return err
}
