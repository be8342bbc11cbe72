package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ytabot/internal/app"
	"ytabot/internal/config"
	"ytabot/internal/domain"
	"ytabot/internal/util"
)

type globalOptions struct {
	userID string
}

var globalFlags globalOptions

// RootCmd is the base command; without a subcommand it runs stats.
var RootCmd = &cobra.Command{
	Use:   "ytastats",
	Short: "YouTube Analytics reports from the command line",
	Long: `ytastats fetches YouTube Analytics for an authorized channel and
renders the result as text or JSON.

Run "ytastats auth" once to authorize, then "ytastats stats" (or plain
"ytastats") to build reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStats,
}

// InitRoot registers global flags and subcommands.
func InitRoot() {
	RootCmd.PersistentFlags().StringVar(&globalFlags.userID, "user", "cli", "credential record to use")
	initStatsFlags(RootCmd)
	RootCmd.AddCommand(statsCmd, authCmd)
}

// Execute runs the CLI and maps failures to exit code 1, printing the error
// kind to stderr.
func Execute() {
	InitRoot()
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s: %v\n", errorKind(err), err)
		os.Exit(1)
	}
}

func buildContainer() (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return nil, err
	}
	return app.Build(cfg, logger)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrRefreshFailed):
		return "refresh_failed"
	case errors.Is(err, domain.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, domain.ErrCredentialCorrupt):
		return "credential_corrupt"
	case errors.Is(err, domain.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, domain.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAPIUnavailable):
		return "api_unavailable"
	default:
		return "internal"
	}
}
