// Command cookbook is the terminal client for the recipe chat backend.
//
// Running it without a subcommand opens the interactive form, chat and
// result screens. The subcommands inspect or remove existing sessions.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aicookbook/recipechat/internal/client"
	"github.com/aicookbook/recipechat/internal/config"
	"github.com/aicookbook/recipechat/internal/model/recipe"
	"github.com/aicookbook/recipechat/internal/service/chat"
	"github.com/aicookbook/recipechat/internal/service/kitchen"
	"github.com/aicookbook/recipechat/internal/tui"
	"github.com/aicookbook/recipechat/pkg/logger"
)

var (
	verbose bool
	offline bool
	apiURL  string
	logFile string

	cfg      *config.Config
	log      *zap.Logger
	closeLog func()
)

// backend is what every subcommand talks to: the HTTP client or, with
// --offline, the in-process kitchen.
type backend interface {
	chat.Backend
	HealthCheck(ctx context.Context) (string, error)
	StreamMessage(ctx context.Context, sessionID, text string, onDelta func(delta string)) (*recipe.ChatReply, error)
}

var rootCmd = &cobra.Command{
	Use:   "cookbook",
	Short: "Chat your way to a recipe",
	Long: `cookbook asks for your allergies, preferences, cooking level and the
dish you want, then lets you refine the suggested recipe in a chat before
finalizing it.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLog != nil {
			closeLog()
		}
	},
	RunE: runInteractive,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Use the built-in kitchen instead of the HTTP backend")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides RECIPE_API_URL)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file (overrides LOG_FILE)")

	rootCmd.AddCommand(
		healthCmd,
		askCmd,
		historyCmd,
		infoCmd,
		recipeCmd,
		deleteCmd,
	)
}

func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = loaded

	if apiURL != "" {
		cfg.Client.BaseURL = apiURL
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	// The interactive screens own the terminal.
	if !cmd.HasParent() && cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(os.TempDir(), "cookbook.log")
	}

	l, closeFn, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	log, closeLog = l, closeFn
	return nil
}

func newBackend() backend {
	if offline {
		return kitchen.NewLocal(kitchen.NewService(nil, log))
	}

	base := config.ClientConfig{BaseURL: "http://localhost:8000"}
	if cfg != nil {
		base = cfg.Client
	}
	if apiURL != "" {
		base.BaseURL = apiURL
	}
	opts := []client.Option{client.WithLogger(log)}
	if base.BasePath != "" {
		opts = append(opts, client.WithBasePath(base.BasePath))
	}
	if base.Timeout > 0 {
		opts = append(opts, client.WithHTTPClient(&http.Client{Timeout: base.Timeout}))
	}
	return client.New(base.BaseURL, opts...)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	orch := chat.NewOrchestrator(newBackend(), chat.WithLogger(log))
	defer orch.Close()

	model := tui.New(orch,
		tui.WithRenderer(tui.DefaultRenderer(80)),
		tui.WithLogger(log),
		tui.WithContext(cmd.Context()),
	)
	defer model.Close()

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run interactive client: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
